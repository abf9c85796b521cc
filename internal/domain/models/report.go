package models

import "time"

// Section is the sub-population a report covers.
type Section string

const (
	SectionPrimary Section = "PRIMARY"
	SectionMiddle  Section = "MIDDLE"
	SectionAll     Section = "ALL"
)

// Valid reports whether the section belongs to the enumeration.
func (s Section) Valid() bool {
	switch s {
	case SectionPrimary, SectionMiddle, SectionAll:
		return true
	}
	return false
}

// ItemUsage is one consumed quantity recorded on a report.
type ItemUsage struct {
	ItemID   string  `bson:"item_id" json:"itemId"`
	Quantity float64 `bson:"quantity" json:"quantity"`
}

// CostBreakdown splits the total cost across the priced categories.
type CostBreakdown struct {
	Veg     float64 `bson:"veg" json:"veg"`
	Grocery float64 `bson:"grocery" json:"grocery"`
	Gas     float64 `bson:"gas" json:"gas"`
}

// Total sums the three priced categories.
func (c CostBreakdown) Total() float64 {
	return c.Veg + c.Grocery + c.Gas
}

// DailyReport is the attendance and consumption record of one organizer for
// one date and section. (OrganizerID, Date, Section) is unique.
type DailyReport struct {
	ID              string         `bson:"report_id" json:"id"`
	OrganizerID     string         `bson:"organizer_id" json:"organizerId"`
	Date            string         `bson:"date" json:"date"`
	MealID          string         `bson:"meal_id" json:"mealId"`
	Section         Section        `bson:"section" json:"section"`
	StudentsPresent int            `bson:"students_present" json:"studentsPresent"`
	Students1to5    int            `bson:"students_1_to_5" json:"students1to5"`
	Students6to8    int            `bson:"students_6_to_8" json:"students6to8"`
	ItemsUsed       []ItemUsage    `bson:"items_used" json:"itemsUsed"`
	TotalCost       float64        `bson:"total_cost" json:"totalCost"`
	CostBreakdown   *CostBreakdown `bson:"cost_breakdown,omitempty" json:"costBreakdown,omitempty"`
	CreatedAt       time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updated_at" json:"updatedAt"`
}

// SameKey reports whether both reports share the natural key.
func (r DailyReport) SameKey(organizerID, date string, section Section) bool {
	return r.OrganizerID == organizerID && r.Date == date && r.Section == section
}

// ReportStats aggregates attendance across an organizer's reports.
type ReportStats struct {
	Reports       int     `json:"reports"`
	TotalPrimary  int     `json:"totalPrimary"`
	TotalMiddle   int     `json:"totalMiddle"`
	TotalStudents int     `json:"totalStudents"`
	TotalCost     float64 `json:"totalCost"`
}
