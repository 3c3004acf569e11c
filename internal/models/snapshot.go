// Package models defines data structures and domain types.
package models

import "time"

// SpendSnapshot is a point-in-time overview reading cached locally so the
// history view works offline and across restarts (DB model).
type SpendSnapshot struct {
	ID           int64
	Timestamp    time.Time
	TimeRange    TimeRange
	TotalCost    float64
	TotalCalls   int64
	TotalTokens  int64
	AvgLatencyMS float64
	ErrorRate    float64
}

// DailySpendPoint is one day of locally aggregated spend for trend charts.
type DailySpendPoint struct {
	Date      time.Time
	TotalCost float64
	Calls     int64
	Snapshots int
}
