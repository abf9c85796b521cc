package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/service/rollup"
)

const rollupTab = "Rollups"

// RollupExporter appends month rollups to a spreadsheet, one row per item.
// Columns: month, organizer, school, item, unit, starting, added, spent, remaining, warnings.
type RollupExporter struct {
	repo   Repository
	logger *zap.Logger
}

// NewRollupExporter wraps a sheets repository.
func NewRollupExporter(repo Repository, logger *zap.Logger) *RollupExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RollupExporter{repo: repo, logger: logger}
}

// ExportRollup appends the rollup unless rows for the same month and organizer
// are already present. It reports whether rows were written.
func (e *RollupExporter) ExportRollup(ctx context.Context, r rollup.Rollup, schoolName string) (bool, error) {
	exported, err := e.repo.HasRowWithPrefix(ctx, rollupTab, r.Month, r.OrganizerID)
	if err != nil {
		return false, fmt.Errorf("read exported rollups: %w", err)
	}
	if exported {
		e.logger.Debug("rollup already exported", zap.String("month", r.Month), zap.String("organizer_id", r.OrganizerID))
		return false, nil
	}

	warnings := make(map[string]int)
	for _, w := range r.Warnings {
		warnings[w.ItemID]++
	}

	rows := make([][]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []interface{}{
			r.Month,
			r.OrganizerID,
			schoolName,
			row.Name,
			row.Unit,
			row.Starting,
			row.Added,
			row.Spent,
			row.Remaining,
			warnings[row.ItemID],
		})
	}

	if err := e.repo.AppendRows(ctx, rollupTab, rows); err != nil {
		return false, fmt.Errorf("write rollup rows: %w", err)
	}
	return true, nil
}
