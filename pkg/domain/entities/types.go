package entities

import "time"

// OrderID identifies a customer order
type OrderID string

// ProductID identifies a finished or semi-finished product
type ProductID string

// MachineID identifies a production machine
type MachineID string

// MaterialID identifies a raw material
type MaterialID string

// ManualJobID identifies a manual labor step
type ManualJobID string

// Quantity represents an integer quantity value for discrete manufacturing units
type Quantity int64

// DateLayout is the ISO-8601 calendar date layout used on the wire
const DateLayout = "2006-01-02"

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays returns the calendar day n days after t
func AddDays(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b (negative if b precedes a).
// Each value contributes its own calendar date; locations are not converted.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
