// Package models defines data structures and domain types.
package models

import "time"

// RecommendationType classifies an actionable optimization.
type RecommendationType string

const (
	RecommendationModelDowngrade RecommendationType = "model_downgrade"
	RecommendationCaching        RecommendationType = "caching"
	RecommendationErrorReduction RecommendationType = "error_reduction"
	RecommendationAnomalyAlert   RecommendationType = "anomaly_alert"
	RecommendationLatency        RecommendationType = "latency"
)

// RecommendationStatus is the server-tracked lifecycle state.
// Transitions are one-way; implemented and dismissed items never return
// to pending.
type RecommendationStatus string

const (
	RecommendationPending     RecommendationStatus = "pending"
	RecommendationImplemented RecommendationStatus = "implemented"
	RecommendationDismissed   RecommendationStatus = "dismissed"
	RecommendationExpired     RecommendationStatus = "expired"
)

// Recommendation is a server-tracked, individually actionable
// cost-optimization item.
type Recommendation struct {
	ID                      string               `json:"id"`
	Type                    RecommendationType   `json:"type"`
	Status                  RecommendationStatus `json:"status"`
	Title                   string               `json:"title"`
	Description             string               `json:"description"`
	AgentName               string               `json:"agent_name,omitempty"`
	Model                   string               `json:"model,omitempty"`
	AlternativeModel        string               `json:"alternative_model,omitempty"`
	EstimatedMonthlySavings float64              `json:"estimated_monthly_savings"`
	EstimatedSavingsPercent float64              `json:"estimated_savings_percent"`
	CreatedAt               time.Time            `json:"created_at"`
	ExpiresAt               time.Time            `json:"expires_at,omitempty"`
}

// OptimizationSuggestion is a stateless display item regenerated on every
// fetch. It carries no identity; action buttons are wired by matching it to
// a Recommendation on (type, agent, model).
type OptimizationSuggestion struct {
	Type             RecommendationType `json:"type"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	AgentName        string             `json:"agent_name,omitempty"`
	Model            string             `json:"model,omitempty"`
	AlternativeModel string             `json:"alternative_model,omitempty"`
	EstimatedSavings float64            `json:"estimated_savings"`
	SavingsPercent   float64            `json:"savings_percent"`
}

// EmptyReason classifies why the suggestion list is empty. The backend owns
// this; the client only selects a message variant.
type EmptyReason string

const (
	EmptyReasonNone             EmptyReason = ""
	EmptyReasonNoData           EmptyReason = "no_data"
	EmptyReasonInsufficientData EmptyReason = "insufficient_data"
	EmptyReasonNoBaselines      EmptyReason = "no_baselines"
	EmptyReasonOptimized        EmptyReason = "optimized"
)

// OptimizationSummary aggregates the optimization surface.
type OptimizationSummary struct {
	PendingCount            int         `json:"pending_count"`
	ImplementedCount        int         `json:"implemented_count"`
	DismissedCount          int         `json:"dismissed_count"`
	EstimatedMonthlySavings float64     `json:"estimated_monthly_savings"`
	RealizedMonthlySavings  float64     `json:"realized_monthly_savings"`
	EmptyReason             EmptyReason `json:"empty_reason,omitempty"`
}

// OptimizationResponse is the payload of the optimizations endpoint.
type OptimizationResponse struct {
	Suggestions []OptimizationSuggestion `json:"suggestions"`
	EmptyReason EmptyReason              `json:"empty_reason,omitempty"`
}

// Matches reports whether the suggestion and recommendation describe the
// same optimization. The (type, agent, model) triple is a best-effort
// heuristic, not a stable foreign key.
func (s OptimizationSuggestion) Matches(r Recommendation) bool {
	return s.Type == r.Type && s.AgentName == r.AgentName && s.Model == r.Model
}
