// Package optimize manages the cost-optimization recommendation workflow.
package optimize

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentcost/agentcost-tui/internal/models"
)

// Backend is the slice of the API client the workflow needs.
type Backend interface {
	Optimizations(ctx context.Context) (models.OptimizationResponse, error)
	OptimizationSummary(ctx context.Context) (models.OptimizationSummary, error)
	Recommendations(ctx context.Context) ([]models.Recommendation, error)
	ImplementRecommendation(ctx context.Context, id string) error
	DismissRecommendation(ctx context.Context, id, feedback string) error
}

// Service holds the optimization surface: display-only suggestions, the
// actionable pending recommendations, and the summary counters. Action
// methods mutate the local pending list only on backend success, so a
// failed call leaves the item in place for retry.
type Service struct {
	mu              sync.RWMutex
	backend         Backend
	suggestions     []models.OptimizationSuggestion
	recommendations []models.Recommendation
	summary         models.OptimizationSummary
	emptyReason     models.EmptyReason
	loaded          bool
}

// New creates an optimization workflow service.
func New(backend Backend) *Service {
	return &Service{backend: backend}
}

// Refresh fetches suggestions, recommendations, and the summary. The three
// calls run concurrently and are joined; on any failure the previous state
// is kept intact.
func (s *Service) Refresh(ctx context.Context) error {
	var (
		wg       sync.WaitGroup
		resp     models.OptimizationResponse
		recs     []models.Recommendation
		summary  models.OptimizationSummary
		firstErr error
		errMu    sync.Mutex
	)

	record := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		var err error
		resp, err = s.backend.Optimizations(ctx)
		record(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		recs, err = s.backend.Recommendations(ctx)
		record(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		summary, err = s.backend.OptimizationSummary(ctx)
		record(err)
	}()
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	pending := recs[:0:0]
	for _, r := range recs {
		if r.Status == models.RecommendationPending {
			pending = append(pending, r)
		}
	}

	s.mu.Lock()
	s.suggestions = resp.Suggestions
	s.recommendations = pending
	s.summary = summary
	s.emptyReason = resp.EmptyReason
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Loaded reports whether at least one Refresh has succeeded.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Suggestions returns the display-only suggestion list.
func (s *Service) Suggestions() []models.OptimizationSuggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggestions
}

// Pending returns the actionable pending recommendations.
func (s *Service) Pending() []models.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recommendations
}

// Summary returns the optimization counters.
func (s *Service) Summary() models.OptimizationSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// EmptyReason returns the server-assigned reason for an empty suggestion
// list, or "" when suggestions exist.
func (s *Service) EmptyReason() models.EmptyReason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emptyReason
}

// Match returns the first pending recommendation describing the same
// optimization as the suggestion, or nil. A suggestion without a match
// renders without action buttons.
func (s *Service) Match(suggestion models.OptimizationSuggestion) *models.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.recommendations {
		if suggestion.Matches(s.recommendations[i]) {
			rec := s.recommendations[i]
			return &rec
		}
	}
	return nil
}

// Implement marks a recommendation implemented and removes it from the
// local pending list. It returns the guidance steps for the
// recommendation's type; callers refetch after the guidance is closed.
func (s *Service) Implement(ctx context.Context, id string) ([]string, error) {
	rec := s.find(id)
	if rec == nil {
		return nil, fmt.Errorf("recommendation %s is not pending", id)
	}

	if err := s.backend.ImplementRecommendation(ctx, id); err != nil {
		return nil, err
	}

	s.remove(id)
	return GuidanceSteps(rec.Type), nil
}

// Dismiss rejects a recommendation with optional feedback and removes it
// from the local pending list.
func (s *Service) Dismiss(ctx context.Context, id, feedback string) error {
	if s.find(id) == nil {
		return fmt.Errorf("recommendation %s is not pending", id)
	}

	if err := s.backend.DismissRecommendation(ctx, id, feedback); err != nil {
		return err
	}

	s.remove(id)
	return nil
}

func (s *Service) find(id string) *models.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.recommendations {
		if s.recommendations[i].ID == id {
			rec := s.recommendations[i]
			return &rec
		}
	}
	return nil
}

func (s *Service) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recommendations {
		if s.recommendations[i].ID == id {
			s.recommendations = append(s.recommendations[:i], s.recommendations[i+1:]...)
			return
		}
	}
}

// GuidanceSteps returns the follow-up checklist shown after implementing a
// recommendation. The content depends only on the recommendation type.
func GuidanceSteps(t models.RecommendationType) []string {
	switch t {
	case models.RecommendationModelDowngrade:
		return []string{
			"Update the agent's configuration to use the suggested model.",
			"Run your evaluation suite against the new model.",
			"Compare output quality on a sample of recent requests.",
			"Watch the cost chart over the next few days to confirm the saving.",
		}
	case models.RecommendationCaching:
		return []string{
			"Identify the repeated prompts flagged for this agent.",
			"Add a cache keyed on the normalized prompt in front of the call.",
			"Set a TTL that matches how often the underlying data changes.",
			"Verify the cache hit rate in the events feed.",
		}
	case models.RecommendationErrorReduction:
		return []string{
			"Review recent failed calls for this agent in the events feed.",
			"Fix the dominant failure cause before adding retries.",
			"Cap retries with exponential backoff to avoid paying for repeats.",
			"Confirm the error rate drops on the dashboard.",
		}
	case models.RecommendationAnomalyAlert:
		return []string{
			"Check the events feed around the time of the spike.",
			"Look for a runaway loop or an unexpectedly large batch job.",
			"Add a spend limit or rate limit if the traffic was unintended.",
		}
	case models.RecommendationLatency:
		return []string{
			"Check whether a smaller or regional model meets the latency target.",
			"Reduce the maximum output tokens where long answers are not needed.",
			"Stream responses so users see output before the call completes.",
		}
	default:
		return []string{
			"Apply the change described in the recommendation.",
			"Monitor the dashboard to confirm the expected effect.",
		}
	}
}
