package models

import "time"

// Tracked item identifiers.
const (
	ItemRice       = "rice"
	ItemDal        = "dal"
	ItemOil        = "oil"
	ItemChickpeas  = "chickpeas"
	ItemGreenBeans = "greenBeans"
	ItemVeg        = "veg"
	ItemGrocery    = "grocery"
	ItemGas        = "gas"
)

// StockItem describes one tracked category.
type StockItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
	// Stocked items are measured in grams/ml per student and move through the ledger.
	// The rest are priced per student and only contribute to cost.
	Stocked bool `json:"stocked"`
}

var stockItems = []StockItem{
	{ID: ItemRice, Name: "Rice", Unit: "kg", Stocked: true},
	{ID: ItemDal, Name: "Dal", Unit: "kg", Stocked: true},
	{ID: ItemOil, Name: "Oil", Unit: "L", Stocked: true},
	{ID: ItemChickpeas, Name: "Chickpeas", Unit: "kg", Stocked: true},
	{ID: ItemGreenBeans, Name: "Green Beans", Unit: "kg", Stocked: true},
	{ID: ItemVeg, Name: "Vegetables", Unit: "INR"},
	{ID: ItemGrocery, Name: "Grocery", Unit: "INR"},
	{ID: ItemGas, Name: "Gas", Unit: "INR"},
}

// StockItems returns the full catalog in display order.
func StockItems() []StockItem {
	out := make([]StockItem, len(stockItems))
	copy(out, stockItems)
	return out
}

// StockedItems returns the ledger-tracked subset of the catalog.
func StockedItems() []StockItem {
	out := make([]StockItem, 0, len(stockItems))
	for _, item := range stockItems {
		if item.Stocked {
			out = append(out, item)
		}
	}
	return out
}

// LookupItem finds a catalog entry by id.
func LookupItem(id string) (StockItem, bool) {
	for _, item := range stockItems {
		if item.ID == id {
			return item, true
		}
	}
	return StockItem{}, false
}

// IsStocked reports whether the id names a ledger-tracked item.
func IsStocked(id string) bool {
	item, ok := LookupItem(id)
	return ok && item.Stocked
}

// EntryType is the direction of a ledger movement.
type EntryType string

const (
	EntryIn  EntryType = "IN"
	EntryOut EntryType = "OUT"
)

// LegacyBatchPrefix marks the single-row OUT batches written before per-item
// entry ids. Such rows carry no source report id.
const LegacyBatchPrefix = "OUT_"

// Valid reports whether the type is IN or OUT.
func (t EntryType) Valid() bool {
	return t == EntryIn || t == EntryOut
}

// StockLedgerEntry is one dated movement of one item for one organizer.
// Quantity is never negative; Type alone decides the sign of its effect.
type StockLedgerEntry struct {
	ID             string    `bson:"entry_id" json:"id"`
	OrganizerID    string    `bson:"organizer_id" json:"organizerId"`
	Date           string    `bson:"date" json:"date"`
	ItemID         string    `bson:"item_id" json:"itemId"`
	Quantity       float64   `bson:"quantity" json:"quantity"`
	Type           EntryType `bson:"type" json:"type"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	SourceReportID string    `bson:"source_report_id,omitempty" json:"sourceReportId,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// Signed returns the quantity with the sign implied by the entry type.
func (e StockLedgerEntry) Signed() float64 {
	if e.Type == EntryOut {
		return -e.Quantity
	}
	return e.Quantity
}
