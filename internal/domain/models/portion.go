package models

import (
	"errors"
	"fmt"
)

// SchoolType enumerates the school tiers a portion row can be configured for.
type SchoolType string

const (
	SchoolPrimary         SchoolType = "PRIMARY"
	SchoolMiddle          SchoolType = "MIDDLE"
	SchoolHigherSecondary SchoolType = "HIGHER_SECONDARY"
)

// ErrUnknownSchoolType indicates a tier outside the enumeration.
var ErrUnknownSchoolType = errors.New("unknown school type")

// ErrInvalidPricing indicates a pricing table that is not total or carries negative rates.
var ErrInvalidPricing = errors.New("invalid pricing table")

// SchoolTypes returns every defined tier in display order.
func SchoolTypes() []SchoolType {
	return []SchoolType{SchoolPrimary, SchoolMiddle, SchoolHigherSecondary}
}

// Valid reports whether the tier belongs to the enumeration.
func (t SchoolType) Valid() bool {
	switch t {
	case SchoolPrimary, SchoolMiddle, SchoolHigherSecondary:
		return true
	}
	return false
}

// Split reports whether schools of this tier submit one report per section.
func (t SchoolType) Split() bool {
	return t == SchoolMiddle
}

// Label is the human readable tier name.
func (t SchoolType) Label() string {
	switch t {
	case SchoolPrimary:
		return "Primary (1-5)"
	case SchoolMiddle:
		return "Middle (6-8)"
	case SchoolHigherSecondary:
		return "High/Higher Secondary (6-12)"
	}
	return string(t)
}

// PortionConfig holds the per-student rates of one tier. Quantities are grams
// (oil in millilitres); prices are currency per student.
type PortionConfig struct {
	RiceGrams       float64 `bson:"rice_grams" json:"riceGrams"`
	DalGrams        float64 `bson:"dal_grams" json:"dalGrams"`
	OilMl           float64 `bson:"oil_ml" json:"oilMl"`
	ChickpeasGrams  float64 `bson:"chickpeas_grams" json:"chickpeasGrams"`
	GreenBeansGrams float64 `bson:"green_beans_grams" json:"greenBeansGrams"`
	VegPrice        float64 `bson:"veg_price" json:"vegPrice"`
	GroceryPrice    float64 `bson:"grocery_price" json:"groceryPrice"`
	GasPrice        float64 `bson:"gas_price" json:"gasPrice"`
}

// PerStudentCost is the combined priced rate for one student.
func (p PortionConfig) PerStudentCost() float64 {
	return p.VegPrice + p.GroceryPrice + p.GasPrice
}

// Rate returns the per-student coefficient that drives the given item.
func (p PortionConfig) Rate(itemID string) (float64, bool) {
	switch itemID {
	case ItemRice:
		return p.RiceGrams, true
	case ItemDal:
		return p.DalGrams, true
	case ItemOil:
		return p.OilMl, true
	case ItemChickpeas:
		return p.ChickpeasGrams, true
	case ItemGreenBeans:
		return p.GreenBeansGrams, true
	case ItemVeg:
		return p.VegPrice, true
	case ItemGrocery:
		return p.GroceryPrice, true
	case ItemGas:
		return p.GasPrice, true
	}
	return 0, false
}

// Validate rejects negative rates.
func (p PortionConfig) Validate() error {
	fields := map[string]float64{
		"riceGrams":       p.RiceGrams,
		"dalGrams":        p.DalGrams,
		"oilMl":           p.OilMl,
		"chickpeasGrams":  p.ChickpeasGrams,
		"greenBeansGrams": p.GreenBeansGrams,
		"vegPrice":        p.VegPrice,
		"groceryPrice":    p.GroceryPrice,
		"gasPrice":        p.GasPrice,
	}
	for name, value := range fields {
		if value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidPricing, name)
		}
	}
	return nil
}

// PricingTable maps every tier to its portion row.
type PricingTable map[SchoolType]PortionConfig

// Validate ensures the table covers every tier and each row is non-negative.
func (t PricingTable) Validate() error {
	for _, tier := range SchoolTypes() {
		row, ok := t[tier]
		if !ok {
			return fmt.Errorf("%w: missing row for %s", ErrInvalidPricing, tier)
		}
		if err := row.Validate(); err != nil {
			return fmt.Errorf("%s: %w", tier, err)
		}
	}
	for tier := range t {
		if !tier.Valid() {
			return fmt.Errorf("%w: %w %q", ErrInvalidPricing, ErrUnknownSchoolType, tier)
		}
	}
	return nil
}

// For returns a copy of the row configured for the tier.
func (t PricingTable) For(tier SchoolType) (PortionConfig, error) {
	row, ok := t[tier]
	if !ok {
		return PortionConfig{}, fmt.Errorf("%w: %q", ErrUnknownSchoolType, tier)
	}
	return row, nil
}

// Clone returns an independent copy of the table.
func (t PricingTable) Clone() PricingTable {
	out := make(PricingTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func defaultPortion() PortionConfig {
	return PortionConfig{
		RiceGrams:       100,
		DalGrams:        15,
		OilMl:           5,
		ChickpeasGrams:  20,
		GreenBeansGrams: 20,
		VegPrice:        2.5,
		GroceryPrice:    1.5,
		GasPrice:        1.0,
	}
}

// DefaultPricingTable is used until an administrator saves a table.
func DefaultPricingTable() PricingTable {
	middle := defaultPortion()
	middle.RiceGrams = 150
	middle.DalGrams = 20

	higher := defaultPortion()
	higher.RiceGrams = 200
	higher.DalGrams = 25

	return PricingTable{
		SchoolPrimary:         defaultPortion(),
		SchoolMiddle:          middle,
		SchoolHigherSecondary: higher,
	}
}
