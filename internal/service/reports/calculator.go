package reports

import "github.com/mamadbah2/mealledger/internal/domain/models"

// gramsPerKilogram converts per-student grams (and millilitres) to kg (and L).
const gramsPerKilogram = 1000

// Selection is the set of item ids counted for one submission.
type Selection map[string]bool

// NewSelection builds a selection from ids. No ids selects the whole catalog.
func NewSelection(ids ...string) Selection {
	sel := make(Selection, len(ids))
	if len(ids) == 0 {
		for _, item := range models.StockItems() {
			sel[item.ID] = true
		}
		return sel
	}
	for _, id := range ids {
		sel[id] = true
	}
	return sel
}

// IDs returns the selected ids in catalog order.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, item := range models.StockItems() {
		if s[item.ID] {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// ItemCalculation is the derived figure for one catalog item.
type ItemCalculation struct {
	ItemID   string  `json:"itemId"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
	Selected bool    `json:"selected"`
	Priced   bool    `json:"priced"`
}

// Calculation is the full derivation for one attendance count.
type Calculation struct {
	StudentsPresent int                  `json:"studentsPresent"`
	Items           []ItemCalculation    `json:"items"`
	ItemsUsed       []models.ItemUsage   `json:"itemsUsed"`
	CostBreakdown   models.CostBreakdown `json:"costBreakdown"`
	TotalCost       float64              `json:"totalCost"`
}

// Compute derives consumption and cost from the portion row. Stocked items
// yield rate × students / 1000 in kg or L, priced items rate × students.
// Items outside the selection count as zero, and only stocked items with a
// positive quantity are kept in ItemsUsed.
func Compute(config models.PortionConfig, selected Selection, studentsPresent int) Calculation {
	calc := Calculation{StudentsPresent: studentsPresent, ItemsUsed: []models.ItemUsage{}}
	n := float64(studentsPresent)
	if n < 0 {
		n = 0
	}

	for _, item := range models.StockItems() {
		rate, _ := config.Rate(item.ID)
		ic := ItemCalculation{ItemID: item.ID, Unit: item.Unit, Selected: selected[item.ID], Priced: !item.Stocked}
		if ic.Selected {
			if item.Stocked {
				ic.Quantity = rate * n / gramsPerKilogram
			} else {
				ic.Quantity = rate * n
			}
		}
		calc.Items = append(calc.Items, ic)

		switch item.ID {
		case models.ItemVeg:
			calc.CostBreakdown.Veg = ic.Quantity
		case models.ItemGrocery:
			calc.CostBreakdown.Grocery = ic.Quantity
		case models.ItemGas:
			calc.CostBreakdown.Gas = ic.Quantity
		}

		if item.Stocked && ic.Quantity > 0 {
			calc.ItemsUsed = append(calc.ItemsUsed, models.ItemUsage{ItemID: item.ID, Quantity: ic.Quantity})
		}
	}

	calc.TotalCost = calc.CostBreakdown.Total()
	return calc
}
