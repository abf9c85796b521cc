package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/mealledger/internal/domain/models"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Gateway is the persistence contract of the reporting core. Every save is a
// full replace of the named partition and loads return records in stored
// order. There is no atomicity across collections.
type Gateway interface {
	LoadReports(ctx context.Context, organizerID string) ([]models.DailyReport, error)
	SaveReports(ctx context.Context, organizerID string, reports []models.DailyReport) error

	LoadLedger(ctx context.Context, organizerID string) ([]models.StockLedgerEntry, error)
	SaveLedger(ctx context.Context, organizerID string, entries []models.StockLedgerEntry) error

	// LoadPricing reports found=false when no table was ever saved.
	LoadPricing(ctx context.Context) (table models.PricingTable, found bool, err error)
	SavePricing(ctx context.Context, table models.PricingTable) error

	OrganizerDirectory
}

// OrganizerDirectory is the read side of the organizer accounts the core needs.
type OrganizerDirectory interface {
	Organizer(ctx context.Context, id string) (models.Organizer, error)
	LoadOrganizers(ctx context.Context) ([]models.Organizer, error)
}
