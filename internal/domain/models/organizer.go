package models

import "time"

// Organizer is the school coordinator owning a report and ledger partition.
// Only ID and SchoolType matter to the calculations.
type Organizer struct {
	ID         string     `bson:"organizer_id" json:"id"`
	SchoolName string     `bson:"school_name" json:"schoolName"`
	SchoolType SchoolType `bson:"school_type" json:"schoolType"`
	Phone      string     `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
}

// Meal is a menu option a report can reference.
type Meal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultMealID is recorded when a submission names no meal.
const DefaultMealID = "standard_meal"

var meals = []Meal{
	{ID: DefaultMealID, Name: "Standard Lunch"},
	{ID: "variety_rice", Name: "Variety Rice"},
	{ID: "nutritious_meal", Name: "Nutritious Meal"},
}

// Meals returns the menu catalog.
func Meals() []Meal {
	out := make([]Meal, len(meals))
	copy(out, meals)
	return out
}

// LookupMeal reports whether the id names a known meal.
func LookupMeal(id string) (Meal, bool) {
	for _, m := range meals {
		if m.ID == id {
			return m, true
		}
	}
	return Meal{}, false
}
