package ledger

import "github.com/mamadbah2/mealledger/internal/domain/models"

// Balance is the stock of one item at a boundary date.
type Balance struct {
	ItemID  string  `json:"itemId"`
	Unit    string  `json:"unit"`
	AsOf    string  `json:"asOf,omitempty"`
	Raw     float64 `json:"raw"`
	Display float64 `json:"display"`
	// Warning is set when Raw is negative; Display is floored at zero.
	Warning *models.ReconciliationWarning `json:"warning,omitempty"`
}

// Totals sums IN and OUT quantities of the entries accepted by match.
func Totals(entries []models.StockLedgerEntry, match func(models.StockLedgerEntry) bool) (in, out float64) {
	for _, e := range entries {
		if !match(e) {
			continue
		}
		switch e.Type {
		case models.EntryIn:
			in += e.Quantity
		case models.EntryOut:
			out += e.Quantity
		}
	}
	return in, out
}

// ComputeBalance folds the item's entries dated on or before asOf. An empty
// asOf covers the whole history.
func ComputeBalance(organizerID string, entries []models.StockLedgerEntry, itemID, asOf string) Balance {
	in, out := Totals(entries, func(e models.StockLedgerEntry) bool {
		return e.ItemID == itemID && (asOf == "" || e.Date <= asOf)
	})

	b := Balance{ItemID: itemID, AsOf: asOf, Raw: in - out}
	if item, ok := models.LookupItem(itemID); ok {
		b.Unit = item.Unit
	}
	b.Display = b.Raw
	if b.Raw < 0 {
		b.Display = 0
		b.Warning = &models.ReconciliationWarning{
			OrganizerID: organizerID,
			ItemID:      itemID,
			Scope:       models.ScopeBalance,
			Period:      asOf,
			Value:       b.Raw,
		}
	}
	return b
}
