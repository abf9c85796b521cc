package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/repository"
)

// Store is an in-process Gateway. Records are copied on the way in and out so
// callers never share backing arrays with the store.
type Store struct {
	mu         sync.RWMutex
	reports    map[string][]models.DailyReport
	ledger     map[string][]models.StockLedgerEntry
	pricing    models.PricingTable
	organizers []models.Organizer
}

var _ repository.Gateway = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		reports: make(map[string][]models.DailyReport),
		ledger:  make(map[string][]models.StockLedgerEntry),
	}
}

// LoadReports returns the organizer's reports in stored order.
func (s *Store) LoadReports(_ context.Context, organizerID string) ([]models.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneReports(s.reports[organizerID]), nil
}

// SaveReports replaces the organizer's report partition.
func (s *Store) SaveReports(_ context.Context, organizerID string, reports []models.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[organizerID] = cloneReports(reports)
	return nil
}

// LoadLedger returns the organizer's ledger in stored order.
func (s *Store) LoadLedger(_ context.Context, organizerID string) ([]models.StockLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.ledger[organizerID]), nil
}

// SaveLedger replaces the organizer's ledger partition.
func (s *Store) SaveLedger(_ context.Context, organizerID string, entries []models.StockLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger[organizerID] = cloneEntries(entries)
	return nil
}

// LoadPricing returns the saved table, if any.
func (s *Store) LoadPricing(_ context.Context) (models.PricingTable, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pricing == nil {
		return nil, false, nil
	}
	return s.pricing.Clone(), true, nil
}

// SavePricing replaces the global table.
func (s *Store) SavePricing(_ context.Context, table models.PricingTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pricing = table.Clone()
	return nil
}

// SaveOrganizers replaces the organizer directory.
func (s *Store) SaveOrganizers(_ context.Context, organizers []models.Organizer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizers = append([]models.Organizer(nil), organizers...)
	return nil
}

// LoadOrganizers lists the directory.
func (s *Store) LoadOrganizers(_ context.Context) ([]models.Organizer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Organizer(nil), s.organizers...), nil
}

// Organizer looks one organizer up by id.
func (s *Store) Organizer(_ context.Context, id string) (models.Organizer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.organizers {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Organizer{}, fmt.Errorf("organizer %s: %w", id, repository.ErrNotFound)
}

func cloneReports(in []models.DailyReport) []models.DailyReport {
	if in == nil {
		return nil
	}
	out := make([]models.DailyReport, len(in))
	for i, r := range in {
		r.ItemsUsed = append([]models.ItemUsage(nil), r.ItemsUsed...)
		if r.CostBreakdown != nil {
			cb := *r.CostBreakdown
			r.CostBreakdown = &cb
		}
		out[i] = r
	}
	return out
}

func cloneEntries(in []models.StockLedgerEntry) []models.StockLedgerEntry {
	if in == nil {
		return nil
	}
	return append([]models.StockLedgerEntry(nil), in...)
}
