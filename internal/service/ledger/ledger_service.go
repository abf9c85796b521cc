package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/service/partition"
)

var (
	// ErrInvalidEntry indicates a restock that cannot be recorded.
	ErrInvalidEntry = errors.New("invalid stock entry")
	// ErrEntryNotFound indicates no entry with the id exists in the partition.
	ErrEntryNotFound = errors.New("stock entry not found")
	// ErrEntryOwnedByReport indicates an OUT entry that can only be removed with its report.
	ErrEntryOwnedByReport = errors.New("stock entry belongs to a daily report")
)

// Store is the slice of the persistence gateway the ledger needs.
type Store interface {
	LoadLedger(ctx context.Context, organizerID string) ([]models.StockLedgerEntry, error)
	SaveLedger(ctx context.Context, organizerID string, entries []models.StockLedgerEntry) error
}

// StockInput is a manual restock.
type StockInput struct {
	Date        string  `json:"date" binding:"required"`
	ItemID      string  `json:"itemId" binding:"required"`
	Quantity    float64 `json:"quantity"`
	Description string  `json:"description"`
}

// Filter narrows a history listing. Zero values match everything.
type Filter struct {
	From   string
	To     string
	ItemID string
	Type   models.EntryType
	Limit  int
	Offset int
}

func (f Filter) match(e models.StockLedgerEntry) bool {
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	if f.ItemID != "" && e.ItemID != f.ItemID {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	return true
}

// Service records restocks and answers balance queries.
type Service struct {
	store  Store
	locks  *partition.Locks
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires a ledger service. locks must be shared with every other
// writer of the ledger partition.
func NewService(store Store, locks *partition.Locks, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = partition.NewLocks()
	}
	return &Service{
		store:  store,
		locks:  locks,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return "in_" + uuid.NewString() },
	}
}

// AddStock appends an IN movement for a stocked item.
func (s *Service) AddStock(ctx context.Context, organizerID string, input StockInput) (models.StockLedgerEntry, error) {
	if organizerID == "" {
		return models.StockLedgerEntry{}, fmt.Errorf("%w: organizer id is required", ErrInvalidEntry)
	}
	if err := models.ValidateDate(input.Date); err != nil {
		return models.StockLedgerEntry{}, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if !models.IsStocked(input.ItemID) {
		return models.StockLedgerEntry{}, fmt.Errorf("%w: %q is not a stocked item", ErrInvalidEntry, input.ItemID)
	}
	if input.Quantity <= 0 {
		return models.StockLedgerEntry{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidEntry)
	}

	unlock := s.locks.Lock(organizerID)
	defer unlock()

	entries, err := s.store.LoadLedger(ctx, organizerID)
	if err != nil {
		return models.StockLedgerEntry{}, fmt.Errorf("load ledger: %w", err)
	}

	entry := models.StockLedgerEntry{
		ID:          s.newID(),
		OrganizerID: organizerID,
		Date:        input.Date,
		ItemID:      input.ItemID,
		Quantity:    input.Quantity,
		Type:        models.EntryIn,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   s.now().UTC(),
	}

	if err := s.save(ctx, organizerID, entries, append(entries, entry)); err != nil {
		return models.StockLedgerEntry{}, err
	}

	s.logger.Info("stock added",
		zap.String("organizer_id", organizerID),
		zap.String("item_id", entry.ItemID),
		zap.Float64("quantity", entry.Quantity),
		zap.String("date", entry.Date))
	return entry, nil
}

// RemoveEntry deletes one manual entry by id.
func (s *Service) RemoveEntry(ctx context.Context, organizerID, entryID string) error {
	unlock := s.locks.Lock(organizerID)
	defer unlock()

	entries, err := s.store.LoadLedger(ctx, organizerID)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	kept := make([]models.StockLedgerEntry, 0, len(entries))
	var removed *models.StockLedgerEntry
	for i := range entries {
		if entries[i].ID == entryID && removed == nil {
			removed = &entries[i]
			continue
		}
		kept = append(kept, entries[i])
	}
	if removed == nil {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	if removed.SourceReportID != "" {
		return fmt.Errorf("%w: %s", ErrEntryOwnedByReport, removed.SourceReportID)
	}
	if strings.HasPrefix(removed.ID, models.LegacyBatchPrefix) {
		return fmt.Errorf("%w: %s", ErrEntryOwnedByReport, strings.TrimPrefix(removed.ID, models.LegacyBatchPrefix))
	}

	if err := s.save(ctx, organizerID, entries, kept); err != nil {
		return err
	}

	s.logger.Info("stock entry removed", zap.String("organizer_id", organizerID), zap.String("entry_id", entryID))

	// Removing a restock can leave later consumption uncovered.
	balance := ComputeBalance(organizerID, kept, removed.ItemID, "")
	if balance.Warning != nil {
		s.logger.Warn("ledger balance negative after removal",
			zap.String("organizer_id", organizerID),
			zap.String("item_id", removed.ItemID),
			zap.Float64("balance", balance.Raw))
	}
	return nil
}

// save replaces the partition and writes previous back if the replace fails
// part way.
func (s *Service) save(ctx context.Context, organizerID string, previous, next []models.StockLedgerEntry) error {
	err := s.store.SaveLedger(ctx, organizerID, next)
	if err == nil {
		return nil
	}
	if rbErr := s.store.SaveLedger(ctx, organizerID, previous); rbErr != nil {
		s.logger.Error("failed to restore ledger after write failure",
			zap.String("organizer_id", organizerID), zap.Error(rbErr))
		return fmt.Errorf("save ledger: %w (restore ledger: %v)", err, rbErr)
	}
	return fmt.Errorf("save ledger: %w", err)
}

// List returns matching entries newest first, paged, along with the unpaged count.
func (s *Service) List(ctx context.Context, organizerID string, filter Filter) ([]models.StockLedgerEntry, int, error) {
	entries, err := s.store.LoadLedger(ctx, organizerID)
	if err != nil {
		return nil, 0, fmt.Errorf("load ledger: %w", err)
	}

	matched := make([]models.StockLedgerEntry, 0, len(entries))
	for _, e := range entries {
		if filter.match(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	return page(matched, filter.Offset, filter.Limit), total, nil
}

// Entries returns the raw partition in stored order.
func (s *Service) Entries(ctx context.Context, organizerID string) ([]models.StockLedgerEntry, error) {
	entries, err := s.store.LoadLedger(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return entries, nil
}

// Balance computes one item's stock on or before asOf.
func (s *Service) Balance(ctx context.Context, organizerID, itemID, asOf string) (Balance, error) {
	if !models.IsStocked(itemID) {
		return Balance{}, fmt.Errorf("%w: %q is not a stocked item", ErrInvalidEntry, itemID)
	}
	if asOf != "" {
		if err := models.ValidateDate(asOf); err != nil {
			return Balance{}, err
		}
	}
	entries, err := s.store.LoadLedger(ctx, organizerID)
	if err != nil {
		return Balance{}, fmt.Errorf("load ledger: %w", err)
	}
	return ComputeBalance(organizerID, entries, itemID, asOf), nil
}

// Balances computes every stocked item's balance on or before asOf.
func (s *Service) Balances(ctx context.Context, organizerID, asOf string) ([]Balance, error) {
	if asOf != "" {
		if err := models.ValidateDate(asOf); err != nil {
			return nil, err
		}
	}
	entries, err := s.store.LoadLedger(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	items := models.StockedItems()
	out := make([]Balance, 0, len(items))
	for _, item := range items {
		b := ComputeBalance(organizerID, entries, item.ID, asOf)
		if b.Warning != nil {
			s.logger.Warn("negative stock balance",
				zap.String("organizer_id", organizerID),
				zap.String("item_id", item.ID),
				zap.Float64("balance", b.Raw))
		}
		out = append(out, b)
	}
	return out, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
