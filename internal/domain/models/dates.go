package models

import (
	"errors"
	"fmt"
	"time"
)

// Layouts shared by reports, ledger entries and rollups.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var (
	// ErrInvalidDate indicates a value that is not a YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidMonth indicates a value that is not a YYYY-MM month.
	ErrInvalidMonth = errors.New("invalid month")
)

// ValidateDate checks a YYYY-MM-DD string. Dates compare lexicographically.
func ValidateDate(value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return fmt.Errorf("%w %q", ErrInvalidDate, value)
	}
	return nil
}

// ValidateMonth checks a YYYY-MM string.
func ValidateMonth(value string) error {
	if _, err := time.Parse(MonthLayout, value); err != nil {
		return fmt.Errorf("%w %q", ErrInvalidMonth, value)
	}
	return nil
}

// MonthStart returns the first calendar day of a YYYY-MM month.
func MonthStart(month string) string {
	return month + "-01"
}

// PreviousMonth returns the YYYY-MM month before the one containing t.
func PreviousMonth(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, -1, 0).Format(MonthLayout)
}
