package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/repository"
)

func TestPartitionsAreIsolated(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.SaveLedger(ctx, "org-a", []models.StockLedgerEntry{{ID: "in_1", ItemID: models.ItemRice, Quantity: 1, Type: models.EntryIn}}))

	other, err := store.LoadLedger(ctx, "org-b")
	require.NoError(t, err)
	assert.Empty(t, other)

	mine, err := store.LoadLedger(ctx, "org-a")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestReportsAreCopied(t *testing.T) {
	store := New()
	ctx := context.Background()
	reports := []models.DailyReport{{
		ID:            "rep_1",
		ItemsUsed:     []models.ItemUsage{{ItemID: models.ItemRice, Quantity: 5}},
		CostBreakdown: &models.CostBreakdown{Veg: 10},
	}}
	require.NoError(t, store.SaveReports(ctx, "org-a", reports))

	reports[0].ItemsUsed[0].Quantity = 99
	reports[0].CostBreakdown.Veg = 99

	loaded, err := store.LoadReports(ctx, "org-a")
	require.NoError(t, err)
	assert.Equal(t, 5.0, loaded[0].ItemsUsed[0].Quantity)
	assert.Equal(t, 10.0, loaded[0].CostBreakdown.Veg)

	loaded[0].ItemsUsed[0].Quantity = 42
	again, err := store.LoadReports(ctx, "org-a")
	require.NoError(t, err)
	assert.Equal(t, 5.0, again[0].ItemsUsed[0].Quantity)
}

func TestPricingRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, found, err := store.LoadPricing(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SavePricing(ctx, models.DefaultPricingTable()))
	table, found, err := store.LoadPricing(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.DefaultPricingTable(), table)
}

func TestOrganizerLookup(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.SaveOrganizers(ctx, []models.Organizer{
		{ID: "org-a", SchoolType: models.SchoolPrimary},
		{ID: "org-b", SchoolType: models.SchoolMiddle},
	}))

	o, err := store.Organizer(ctx, "org-b")
	require.NoError(t, err)
	assert.Equal(t, models.SchoolMiddle, o.SchoolType)

	_, err = store.Organizer(ctx, "org-c")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := store.LoadOrganizers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
