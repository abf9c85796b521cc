package rollup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/domain/models"
)

// LedgerSource loads an organizer's full ledger history.
type LedgerSource interface {
	LoadLedger(ctx context.Context, organizerID string) ([]models.StockLedgerEntry, error)
}

// Service exposes month rollups over the stock ledger.
type Service struct {
	ledger LedgerSource
	logger *zap.Logger
}

// NewService wires a new rollup service instance.
func NewService(ledger LedgerSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, logger: logger}
}

// Monthly computes the YYYY-MM rollup of every stocked item.
func (s *Service) Monthly(ctx context.Context, organizerID, month string) (Rollup, error) {
	if err := models.ValidateMonth(month); err != nil {
		return Rollup{}, err
	}

	entries, err := s.ledger.LoadLedger(ctx, organizerID)
	if err != nil {
		return Rollup{}, fmt.Errorf("load ledger: %w", err)
	}

	r := Compute(organizerID, entries, month, models.StockedItems())
	for _, w := range r.Warnings {
		s.logger.Warn("reconciliation anomaly",
			zap.String("organizer_id", organizerID),
			zap.String("month", month),
			zap.String("item_id", w.ItemID),
			zap.String("scope", string(w.Scope)),
			zap.Float64("value", w.Value))
	}
	return r, nil
}

// Summary renders the rollup as plain text for messages and exports.
func Summary(r Rollup, schoolName string) string {
	var b strings.Builder
	if schoolName != "" {
		fmt.Fprintf(&b, "Stock summary %s (%s)\n", r.Month, schoolName)
	} else {
		fmt.Fprintf(&b, "Stock summary %s\n", r.Month)
	}

	moved := false
	for _, row := range r.Rows {
		if row.Starting == 0 && row.Added == 0 && row.Spent == 0 {
			continue
		}
		moved = true
		fmt.Fprintf(&b, "%s: start %.3f, added %.3f, spent %.3f, remaining %.3f %s\n",
			row.Name, row.Starting, row.Added, row.Spent, row.Remaining, row.Unit)
	}
	if !moved {
		b.WriteString("No stock movements recorded.\n")
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "%d reconciliation warning(s):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			b.WriteString("- " + w.String() + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
