package model

import "time"

// Passport series and number bounds. A series is a 4-digit integer and a
// number is a 6-digit integer.
const (
	PassportSeriesMin = 1000
	PassportSeriesMax = 9999
	PassportNumberMin = 100000
	PassportNumberMax = 999999
)

// Passport represents a name + passport series/number identity record,
// unrelated to login. The (series, number) pair is unique across all records.
type Passport struct {
	ID             int64     `json:"id" db:"id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	PassportSeries int64     `json:"passport_series" db:"passport_series"`
	PassportNumber int64     `json:"passport_number" db:"passport_number"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// PassportFilter narrows a passport search. Zero-valued fields are not
// applied. Name fields match as case-insensitive substrings; passport fields
// match exactly.
type PassportFilter struct {
	FirstName      string
	LastName       string
	PassportSeries *int64
	PassportNumber *int64
}

// ValidSeries reports whether s is within the 4-digit passport series range.
func ValidSeries(s int64) bool {
	return s >= PassportSeriesMin && s <= PassportSeriesMax
}

// ValidNumber reports whether n is within the 6-digit passport number range.
func ValidNumber(n int64) bool {
	return n >= PassportNumberMin && n <= PassportNumberMax
}
