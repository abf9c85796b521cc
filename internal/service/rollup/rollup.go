package rollup

import (
	"strings"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/service/ledger"
)

// Row is one item's month: carried-in balance, inflow, outflow and closing balance.
type Row struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	// Starting and Remaining are floored at zero; the Raw fields keep the signed values.
	Starting     float64 `json:"starting"`
	Added        float64 `json:"added"`
	Spent        float64 `json:"spent"`
	Remaining    float64 `json:"remaining"`
	RawStarting  float64 `json:"rawStarting"`
	RawRemaining float64 `json:"rawRemaining"`
}

// Rollup is the month report of one organizer.
type Rollup struct {
	OrganizerID string                         `json:"organizerId"`
	Month       string                         `json:"month"`
	Rows        []Row                          `json:"rows"`
	Warnings    []models.ReconciliationWarning `json:"warnings"`
}

// Compute folds the full ledger history into the month's figures for items.
// Starting covers every entry dated before the first of the month; Added and
// Spent cover entries whose date falls inside the month.
func Compute(organizerID string, entries []models.StockLedgerEntry, month string, items []models.StockItem) Rollup {
	firstDay := models.MonthStart(month)
	prefix := month + "-"

	out := Rollup{
		OrganizerID: organizerID,
		Month:       month,
		Rows:        make([]Row, 0, len(items)),
		Warnings:    []models.ReconciliationWarning{},
	}

	for _, item := range items {
		priorIn, priorOut := ledger.Totals(entries, func(e models.StockLedgerEntry) bool {
			return e.ItemID == item.ID && e.Date < firstDay
		})
		added, spent := ledger.Totals(entries, func(e models.StockLedgerEntry) bool {
			return e.ItemID == item.ID && strings.HasPrefix(e.Date, prefix)
		})

		starting := priorIn - priorOut
		remaining := starting + added - spent
		row := Row{
			ItemID:       item.ID,
			Name:         item.Name,
			Unit:         item.Unit,
			Starting:     floor(starting),
			Added:        added,
			Spent:        spent,
			Remaining:    floor(remaining),
			RawStarting:  starting,
			RawRemaining: remaining,
		}
		out.Rows = append(out.Rows, row)

		if starting < 0 {
			out.Warnings = append(out.Warnings, models.ReconciliationWarning{
				OrganizerID: organizerID, ItemID: item.ID, Scope: models.ScopeStarting, Period: month, Value: starting,
			})
		}
		if remaining < 0 {
			out.Warnings = append(out.Warnings, models.ReconciliationWarning{
				OrganizerID: organizerID, ItemID: item.ID, Scope: models.ScopeRemaining, Period: month, Value: remaining,
			})
		}
	}
	return out
}

func floor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
