package models

import "fmt"

// WarningScope names the figure a reconciliation warning was raised on.
type WarningScope string

const (
	ScopeBalance   WarningScope = "balance"
	ScopeStarting  WarningScope = "starting"
	ScopeRemaining WarningScope = "remaining"
)

// ReconciliationWarning reports a ledger figure that went negative, typically
// because consumption was recorded before the matching restock or a restock was
// removed after it had been consumed.
type ReconciliationWarning struct {
	OrganizerID string       `json:"organizerId"`
	ItemID      string       `json:"itemId"`
	Scope       WarningScope `json:"scope"`
	Period      string       `json:"period,omitempty"`
	Value       float64      `json:"value"`
}

func (w ReconciliationWarning) String() string {
	if w.Period != "" {
		return fmt.Sprintf("%s %s for %s is negative (%.3f)", w.ItemID, w.Scope, w.Period, w.Value)
	}
	return fmt.Sprintf("%s %s is negative (%.3f)", w.ItemID, w.Scope, w.Value)
}
