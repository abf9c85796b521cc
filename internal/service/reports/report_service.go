package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/service/partition"
	"github.com/mamadbah2/mealledger/internal/service/pricing"
)

var (
	// ErrInvalidAttendance indicates a submission without a positive attendance.
	ErrInvalidAttendance = errors.New("students present must be positive")
	// ErrNoItemsSelected indicates a submission that counts no item at all.
	ErrNoItemsSelected = errors.New("at least one item must be selected")
	// ErrUnknownItem indicates a selection naming an item outside the catalog.
	ErrUnknownItem = errors.New("unknown item")
	// ErrUnknownMeal indicates a meal id outside the menu.
	ErrUnknownMeal = errors.New("unknown meal")
	// ErrDuplicateReport indicates a report already exists for the organizer, date and section.
	ErrDuplicateReport = errors.New("daily report already submitted")
	// ErrReportNotFound indicates no report with the id exists in the partition.
	ErrReportNotFound = errors.New("daily report not found")
)

// Store is the slice of the persistence gateway the engine rewrites.
type Store interface {
	LoadReports(ctx context.Context, organizerID string) ([]models.DailyReport, error)
	SaveReports(ctx context.Context, organizerID string, reports []models.DailyReport) error
	LoadLedger(ctx context.Context, organizerID string) ([]models.StockLedgerEntry, error)
	SaveLedger(ctx context.Context, organizerID string, entries []models.StockLedgerEntry) error
}

// PortionSource resolves the portion row for a submission.
type PortionSource interface {
	ForOrganizer(ctx context.Context, organizer models.Organizer, section models.Section) (models.PortionConfig, error)
}

// Directory looks up the organizer owning a partition.
type Directory interface {
	Organizer(ctx context.Context, id string) (models.Organizer, error)
}

// Submission is a create (empty ReportID) or edit of a daily report.
type Submission struct {
	ReportID        string         `json:"-"`
	Date            string         `json:"date" binding:"required"`
	Section         models.Section `json:"section"`
	StudentsPresent int            `json:"studentsPresent"`
	SelectedItems   []string       `json:"selectedItems"`
	MealID          string         `json:"mealId"`
}

// ListFilter narrows a report listing. Date wins over SinceDays.
type ListFilter struct {
	Date      string
	SinceDays int
	Limit     int
	Offset    int
}

// Service is the daily report engine. A report and its OUT batch are always
// rewritten together under the organizer's partition lock.
type Service struct {
	store    Store
	portions PortionSource
	dir      Directory
	locks    *partition.Locks
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the report engine. locks must be the instance shared with
// the ledger service.
func NewService(store Store, portions PortionSource, dir Directory, locks *partition.Locks, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = partition.NewLocks()
	}
	return &Service{
		store:    store,
		portions: portions,
		dir:      dir,
		locks:    locks,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return "rep_" + uuid.NewString() },
	}
}

type prepared struct {
	organizer models.Organizer
	section   models.Section
	selection Selection
	calc      Calculation
	mealID    string
}

func (s *Service) prepare(ctx context.Context, organizerID string, sub Submission) (prepared, error) {
	if err := models.ValidateDate(sub.Date); err != nil {
		return prepared{}, err
	}

	organizer, err := s.dir.Organizer(ctx, organizerID)
	if err != nil {
		return prepared{}, fmt.Errorf("resolve organizer: %w", err)
	}

	section := sub.Section
	if section == "" {
		section = models.SectionAll
		if organizer.SchoolType.Split() {
			section = models.SectionPrimary
		}
	}

	for _, id := range sub.SelectedItems {
		if _, ok := models.LookupItem(id); !ok {
			return prepared{}, fmt.Errorf("%w %q", ErrUnknownItem, id)
		}
	}
	selection := NewSelection(sub.SelectedItems...)
	if sub.SelectedItems != nil && len(sub.SelectedItems) == 0 {
		return prepared{}, ErrNoItemsSelected
	}

	mealID := sub.MealID
	if mealID == "" {
		mealID = models.DefaultMealID
	}
	if _, ok := models.LookupMeal(mealID); !ok {
		return prepared{}, fmt.Errorf("%w %q", ErrUnknownMeal, mealID)
	}

	config, err := s.portions.ForOrganizer(ctx, organizer, section)
	if err != nil {
		return prepared{}, err
	}

	return prepared{
		organizer: organizer,
		section:   section,
		selection: selection,
		calc:      Compute(config, selection, sub.StudentsPresent),
		mealID:    mealID,
	}, nil
}

// Preview derives the figures a submission would record without persisting.
func (s *Service) Preview(ctx context.Context, organizerID string, sub Submission) (Calculation, error) {
	if sub.StudentsPresent < 0 {
		return Calculation{}, ErrInvalidAttendance
	}
	p, err := s.prepare(ctx, organizerID, sub)
	if err != nil {
		return Calculation{}, err
	}
	return p.calc, nil
}

// Submit creates or edits a report and reissues its ledger OUT batch.
func (s *Service) Submit(ctx context.Context, organizerID string, sub Submission) (models.DailyReport, error) {
	if sub.StudentsPresent <= 0 {
		return models.DailyReport{}, ErrInvalidAttendance
	}
	p, err := s.prepare(ctx, organizerID, sub)
	if err != nil {
		return models.DailyReport{}, err
	}

	unlock := s.locks.Lock(organizerID)
	defer unlock()

	reports, err := s.store.LoadReports(ctx, organizerID)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load reports: %w", err)
	}
	entries, err := s.store.LoadLedger(ctx, organizerID)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load ledger: %w", err)
	}

	editIdx := -1
	if sub.ReportID != "" {
		editIdx = indexOf(reports, sub.ReportID)
		if editIdx < 0 {
			return models.DailyReport{}, fmt.Errorf("%w: %s", ErrReportNotFound, sub.ReportID)
		}
	}
	for i, r := range reports {
		if i != editIdx && r.SameKey(organizerID, sub.Date, p.section) {
			return models.DailyReport{}, fmt.Errorf("%w: %s %s (%s)", ErrDuplicateReport, sub.Date, p.section, r.ID)
		}
	}

	now := s.now().UTC()
	report := s.buildReport(organizerID, sub, p, now)
	next := make([]models.DailyReport, len(reports), len(reports)+1)
	copy(next, reports)
	if editIdx >= 0 {
		report.ID = reports[editIdx].ID
		report.CreatedAt = reports[editIdx].CreatedAt
		next[editIdx] = report
	} else {
		report.ID = s.newID()
		next = append(next, report)
	}

	ledger := append(withoutBatch(entries, report.ID), outBatch(report, now)...)
	if err := s.commit(ctx, organizerID, reports, next, entries, ledger); err != nil {
		return models.DailyReport{}, err
	}

	s.logger.Info("daily report saved",
		zap.String("organizer_id", organizerID),
		zap.String("report_id", report.ID),
		zap.String("date", report.Date),
		zap.String("section", string(report.Section)),
		zap.Int("students_present", report.StudentsPresent),
		zap.Bool("edit", editIdx >= 0),
		zap.Int("items_used", len(report.ItemsUsed)))
	return report, nil
}

// Delete removes a report and its OUT batch.
func (s *Service) Delete(ctx context.Context, organizerID, reportID string) error {
	unlock := s.locks.Lock(organizerID)
	defer unlock()

	reports, err := s.store.LoadReports(ctx, organizerID)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}
	idx := indexOf(reports, reportID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrReportNotFound, reportID)
	}
	entries, err := s.store.LoadLedger(ctx, organizerID)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	next := make([]models.DailyReport, 0, len(reports)-1)
	next = append(next, reports[:idx]...)
	next = append(next, reports[idx+1:]...)

	if err := s.commit(ctx, organizerID, reports, next, entries, withoutBatch(entries, reportID)); err != nil {
		return err
	}

	s.logger.Info("daily report deleted", zap.String("organizer_id", organizerID), zap.String("report_id", reportID))
	return nil
}

// commit writes reports then ledger. When the ledger write fails both
// partitions are written back to what was loaded, since a failed replace may
// already have cleared the stored ledger.
func (s *Service) commit(ctx context.Context, organizerID string, prevReports, reports []models.DailyReport, prevLedger, ledger []models.StockLedgerEntry) error {
	if err := s.store.SaveReports(ctx, organizerID, reports); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}
	err := s.store.SaveLedger(ctx, organizerID, ledger)
	if err == nil {
		return nil
	}

	var restoreErrs []error
	if rbErr := s.store.SaveLedger(ctx, organizerID, prevLedger); rbErr != nil {
		restoreErrs = append(restoreErrs, fmt.Errorf("restore ledger: %w", rbErr))
	}
	if rbErr := s.store.SaveReports(ctx, organizerID, prevReports); rbErr != nil {
		restoreErrs = append(restoreErrs, fmt.Errorf("restore reports: %w", rbErr))
	}
	if len(restoreErrs) > 0 {
		rbErr := errors.Join(restoreErrs...)
		s.logger.Error("failed to restore partitions after ledger write failure",
			zap.String("organizer_id", organizerID), zap.Error(rbErr))
		return fmt.Errorf("save ledger: %w (%v)", err, rbErr)
	}
	return fmt.Errorf("save ledger: %w", err)
}

func (s *Service) buildReport(organizerID string, sub Submission, p prepared, now time.Time) models.DailyReport {
	primary, middle := projectStudents(p.organizer.SchoolType, p.section, sub.StudentsPresent)
	cost := p.calc.CostBreakdown
	return models.DailyReport{
		OrganizerID:     organizerID,
		Date:            sub.Date,
		MealID:          p.mealID,
		Section:         p.section,
		StudentsPresent: sub.StudentsPresent,
		Students1to5:    primary,
		Students6to8:    middle,
		ItemsUsed:       p.calc.ItemsUsed,
		TotalCost:       cost.Total(),
		CostBreakdown:   &cost,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// projectStudents derives the per-range counters from the attendance.
func projectStudents(schoolType models.SchoolType, section models.Section, n int) (primary, middle int) {
	switch {
	case section == models.SectionPrimary:
		return n, 0
	case section == models.SectionMiddle:
		return 0, n
	case schoolType == models.SchoolPrimary:
		return n, 0
	}
	return 0, 0
}

// legacyBatchID is the id every OUT entry of a report shared before entries
// carried SourceReportID. Imported ledgers may still contain such entries.
func legacyBatchID(reportID string) string {
	return models.LegacyBatchPrefix + reportID
}

func withoutBatch(entries []models.StockLedgerEntry, reportID string) []models.StockLedgerEntry {
	legacy := legacyBatchID(reportID)
	kept := make([]models.StockLedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.SourceReportID == reportID || (e.SourceReportID == "" && e.ID == legacy) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func outBatch(report models.DailyReport, now time.Time) []models.StockLedgerEntry {
	batch := make([]models.StockLedgerEntry, 0, len(report.ItemsUsed))
	for _, used := range report.ItemsUsed {
		batch = append(batch, models.StockLedgerEntry{
			ID:             fmt.Sprintf("out_%s_%s", report.ID, used.ItemID),
			OrganizerID:    report.OrganizerID,
			Date:           report.Date,
			ItemID:         used.ItemID,
			Quantity:       used.Quantity,
			Type:           models.EntryOut,
			Description:    fmt.Sprintf("Daily usage (%s)", report.Section),
			SourceReportID: report.ID,
			CreatedAt:      now,
		})
	}
	return batch
}

func indexOf(reports []models.DailyReport, id string) int {
	for i, r := range reports {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Get returns one report.
func (s *Service) Get(ctx context.Context, organizerID, reportID string) (models.DailyReport, error) {
	reports, err := s.store.LoadReports(ctx, organizerID)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load reports: %w", err)
	}
	idx := indexOf(reports, reportID)
	if idx < 0 {
		return models.DailyReport{}, fmt.Errorf("%w: %s", ErrReportNotFound, reportID)
	}
	return reports[idx], nil
}

// Find returns the report stored under the natural key, if any.
func (s *Service) Find(ctx context.Context, organizerID, date string, section models.Section) (models.DailyReport, bool, error) {
	reports, err := s.store.LoadReports(ctx, organizerID)
	if err != nil {
		return models.DailyReport{}, false, fmt.Errorf("load reports: %w", err)
	}
	for _, r := range reports {
		if r.SameKey(organizerID, date, section) {
			return r, true, nil
		}
	}
	return models.DailyReport{}, false, nil
}

// List returns matching reports newest first, paged, with the unpaged count.
func (s *Service) List(ctx context.Context, organizerID string, filter ListFilter) ([]models.DailyReport, int, error) {
	reports, err := s.store.LoadReports(ctx, organizerID)
	if err != nil {
		return nil, 0, fmt.Errorf("load reports: %w", err)
	}

	cutoff := ""
	if filter.Date == "" && filter.SinceDays > 0 {
		cutoff = s.now().AddDate(0, 0, -filter.SinceDays).Format(models.DateLayout)
	}

	matched := make([]models.DailyReport, 0, len(reports))
	for _, r := range reports {
		switch {
		case filter.Date != "" && r.Date != filter.Date:
			continue
		case cutoff != "" && r.Date < cutoff:
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date > matched[j].Date })

	total := len(matched)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	matched = matched[offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// Stats totals attendance across all of the organizer's reports.
func (s *Service) Stats(ctx context.Context, organizerID string) (models.ReportStats, error) {
	reports, err := s.store.LoadReports(ctx, organizerID)
	if err != nil {
		return models.ReportStats{}, fmt.Errorf("load reports: %w", err)
	}
	var stats models.ReportStats
	for _, r := range reports {
		stats.Reports++
		stats.TotalPrimary += r.Students1to5
		stats.TotalMiddle += r.Students6to8
		stats.TotalStudents += r.StudentsPresent
		stats.TotalCost += r.TotalCost
	}
	return stats, nil
}

var _ PortionSource = (*pricing.Service)(nil)
