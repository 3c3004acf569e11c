// Package models defines data structures and domain types.
package models

import "time"

// AnalyticsOverview aggregates spend and traffic for the selected time range.
type AnalyticsOverview struct {
	TotalCost     float64 `json:"total_cost"`
	TotalCalls    int64   `json:"total_calls"`
	TotalTokens   int64   `json:"total_tokens"`
	AvgLatencyMS  float64 `json:"avg_latency_ms"`
	ErrorRate     float64 `json:"error_rate"`
	CostChangePct float64 `json:"cost_change_pct"`
	ActiveAgents  int     `json:"active_agents"`
}

// AgentStats is the per-agent reporting projection.
type AgentStats struct {
	AgentName    string  `json:"agent_name"`
	TotalCost    float64 `json:"total_cost"`
	TotalCalls   int64   `json:"total_calls"`
	TotalTokens  int64   `json:"total_tokens"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	ErrorRate    float64 `json:"error_rate"`
	LastSeen     string  `json:"last_seen,omitempty"`
}

// ModelStats is the per-model reporting projection.
type ModelStats struct {
	Model        string  `json:"model"`
	Provider     string  `json:"provider,omitempty"`
	TotalCost    float64 `json:"total_cost"`
	TotalCalls   int64   `json:"total_calls"`
	TotalTokens  int64   `json:"total_tokens"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// TimeSeriesPoint is a single bucket of the cost/calls time series.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Cost      float64   `json:"cost"`
	Calls     int64     `json:"calls"`
	Tokens    int64     `json:"tokens"`
}

// AnalyticsFull bundles every projection for one joined fetch.
type AnalyticsFull struct {
	Overview   AnalyticsOverview `json:"overview"`
	Agents     []AgentStats      `json:"agents"`
	Models     []ModelStats      `json:"models"`
	TimeSeries []TimeSeriesPoint `json:"timeseries"`
}

// Event is a single logged LLM call.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	AgentName    string    `json:"agent_name"`
	Model        string    `json:"model"`
	Provider     string    `json:"provider,omitempty"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	Cost         float64   `json:"cost"`
	LatencyMS    float64   `json:"latency_ms"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// EventPage is one page of the event log.
type EventPage struct {
	Events []Event `json:"events"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
