// Package models defines data structures and domain types.
package models

// TimeRange represents the selected analytics time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRange90Days shows data from the last 90 days.
	TimeRange90Days
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRange90Days:
		return "90 Days"
	default:
		return "Unknown"
	}
}

// Query returns the value the backend expects in the `range` query parameter.
func (t TimeRange) Query() string {
	switch t {
	case TimeRange24Hours:
		return "24h"
	case TimeRange7Days:
		return "7d"
	case TimeRange30Days:
		return "30d"
	case TimeRange90Days:
		return "90d"
	default:
		return "7d"
	}
}

// Days returns the number of days for the time range.
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRange90Days:
		return 90
	default:
		return 7
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// Prev cycles to the previous time range.
func (t TimeRange) Prev() TimeRange {
	return (t + 3) % 4
}
