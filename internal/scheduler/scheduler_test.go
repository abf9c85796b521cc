package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/mealledger/internal/config"
	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/repository/memory"
	"github.com/mamadbah2/mealledger/internal/service/ledger"
	"github.com/mamadbah2/mealledger/internal/service/partition"
	"github.com/mamadbah2/mealledger/internal/service/rollup"
)

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) ExportRollup(ctx context.Context, r rollup.Rollup, schoolName string) (bool, error) {
	args := m.Called(ctx, r, schoolName)
	return args.Bool(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendRollup(ctx context.Context, organizer models.Organizer, r rollup.Rollup) error {
	return m.Called(ctx, organizer, r).Error(0)
}

func (m *mockNotifier) SendWarnings(ctx context.Context, organizer models.Organizer, warnings []models.ReconciliationWarning) error {
	return m.Called(ctx, organizer, warnings).Error(0)
}

var testConfig = config.RollupConfig{
	CronSchedule:          "0 6 1 * *",
	ReconcileCronSchedule: "0 18 * * *",
	Timezone:              "UTC",
}

var (
	stocked = models.Organizer{ID: "org-a", SchoolName: "Govt Primary School", SchoolType: models.SchoolPrimary, Phone: "919800000001"}
	empty   = models.Organizer{ID: "org-b", SchoolName: "Govt Middle School", SchoolType: models.SchoolMiddle}
)

func newFixture(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SaveOrganizers(ctx, []models.Organizer{stocked, empty}))
	require.NoError(t, store.SaveLedger(ctx, stocked.ID, []models.StockLedgerEntry{
		{ID: "in_1", OrganizerID: stocked.ID, Date: "2024-04-28", ItemID: models.ItemRice, Quantity: 20, Type: models.EntryIn},
		{ID: "out_rep_1_rice", OrganizerID: stocked.ID, Date: "2024-05-15", ItemID: models.ItemRice, Quantity: 5, Type: models.EntryOut, SourceReportID: "rep_1"},
		{ID: "out_rep_2_dal", OrganizerID: stocked.ID, Date: "2024-05-16", ItemID: models.ItemDal, Quantity: 1.5, Type: models.EntryOut, SourceReportID: "rep_2"},
	}))
	return store
}

func TestRunMonthlyRollupExportsAndNotifiesPreviousMonth(t *testing.T) {
	store := newFixture(t)
	rollups := rollup.NewService(store, nil)
	exporter := new(mockExporter)
	notifier := new(mockNotifier)

	forMay := mock.MatchedBy(func(r rollup.Rollup) bool { return r.Month == "2024-05" })
	exporter.On("ExportRollup", mock.Anything, forMay, stocked.SchoolName).Return(true, nil).Once()
	exporter.On("ExportRollup", mock.Anything, forMay, empty.SchoolName).Return(false, nil).Once()
	notifier.On("SendRollup", mock.Anything, stocked, forMay).Return(nil).Once()
	notifier.On("SendRollup", mock.Anything, empty, forMay).Return(nil).Once()

	s, err := NewScheduler(testConfig, store, rollups, nil, exporter, notifier, nil)
	require.NoError(t, err)

	err = s.RunMonthlyRollup(context.Background(), time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	exporter.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRunMonthlyRollupContinuesPastFailures(t *testing.T) {
	store := newFixture(t)
	exporter := new(mockExporter)
	notifier := new(mockNotifier)

	exporter.On("ExportRollup", mock.Anything, mock.Anything, stocked.SchoolName).Return(false, errors.New("quota exceeded")).Once()
	exporter.On("ExportRollup", mock.Anything, mock.Anything, empty.SchoolName).Return(true, nil).Once()
	notifier.On("SendRollup", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	s, err := NewScheduler(testConfig, store, rollup.NewService(store, nil), nil, exporter, notifier, nil)
	require.NoError(t, err)

	err = s.RunMonthlyRollup(context.Background(), time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 step(s) failed")
	exporter.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRunMonthlyRollupWithoutExporter(t *testing.T) {
	store := newFixture(t)
	notifier := new(mockNotifier)
	notifier.On("SendRollup", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	s, err := NewScheduler(testConfig, store, rollup.NewService(store, nil), nil, nil, notifier, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunMonthlyRollup(context.Background(), time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)))
	notifier.AssertExpectations(t)
}

func TestRunReconciliationSendsNegativeBalances(t *testing.T) {
	store := newFixture(t)
	balances := ledger.NewService(store, partition.NewLocks(), nil)
	notifier := new(mockNotifier)

	notifier.On("SendWarnings", mock.Anything, stocked, []models.ReconciliationWarning{{
		OrganizerID: stocked.ID,
		ItemID:      models.ItemDal,
		Scope:       models.ScopeBalance,
		Period:      "2024-05-31",
		Value:       -1.5,
	}}).Return(nil).Once()

	s, err := NewScheduler(testConfig, store, nil, balances, nil, notifier, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunReconciliation(context.Background(), time.Date(2024, 5, 31, 18, 0, 0, 0, time.UTC)))
	notifier.AssertExpectations(t)
	notifier.AssertNotCalled(t, "SendWarnings", mock.Anything, empty, mock.Anything)
}

func TestRunReconciliationReportsNotifierFailure(t *testing.T) {
	store := newFixture(t)
	notifier := new(mockNotifier)
	notifier.On("SendWarnings", mock.Anything, stocked, mock.Anything).Return(errors.New("rate limited")).Once()

	s, err := NewScheduler(testConfig, store, nil, ledger.NewService(store, nil, nil), nil, notifier, nil)
	require.NoError(t, err)

	err = s.RunReconciliation(context.Background(), time.Date(2024, 5, 31, 18, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 organizer(s) failed")
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig
	cfg.Timezone = "Mars/Olympus"

	_, err := NewScheduler(cfg, memory.New(), nil, nil, nil, nil, nil)

	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig
	cfg.CronSchedule = "every month"

	s, err := NewScheduler(cfg, memory.New(), nil, nil, nil, nil, nil)
	require.NoError(t, err)

	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s, err := NewScheduler(testConfig, memory.New(), nil, nil, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	s.Stop()
}
