package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/agentcost/agentcost-tui/internal/models"
)

// Health checks backend reachability.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.Request(ctx, http.MethodGet, "/health", nil)
	return err
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string, rememberMe bool) (models.TokenPair, error) {
	payload := map[string]any{
		"email":       email,
		"password":    password,
		"remember_me": rememberMe,
	}
	return post[models.TokenPair](ctx, c, "/v1/auth/login", payload)
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Request(ctx, http.MethodPost, "/v1/auth/logout", nil)
	return err
}

// Me fetches the current user record.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	return get[models.User](ctx, c, "/v1/auth/me")
}

// PolicyStatus lists the policies the user may still need to accept.
func (c *Client) PolicyStatus(ctx context.Context) ([]models.PolicyStatus, error) {
	resp, err := get[struct {
		Policies []models.PolicyStatus `json:"policies"`
	}](ctx, c, "/v1/auth/policies/status")
	if err != nil {
		return nil, err
	}
	return resp.Policies, nil
}

// AcceptPolicy records acceptance of a policy version.
func (c *Client) AcceptPolicy(ctx context.Context, policyType, version string) error {
	payload := map[string]string{"policy_type": policyType, "version": version}
	_, err := c.Request(ctx, http.MethodPost, "/v1/auth/policies/accept", payload)
	return err
}

// AnalyticsOverview fetches the aggregate spend projection.
func (c *Client) AnalyticsOverview(ctx context.Context, tr models.TimeRange) (models.AnalyticsOverview, error) {
	return get[models.AnalyticsOverview](ctx, c, "/v1/analytics/overview?range="+tr.Query())
}

// AnalyticsAgents fetches per-agent stats.
func (c *Client) AnalyticsAgents(ctx context.Context, tr models.TimeRange) ([]models.AgentStats, error) {
	resp, err := get[struct {
		Agents []models.AgentStats `json:"agents"`
	}](ctx, c, "/v1/analytics/agents?range="+tr.Query())
	if err != nil {
		return nil, err
	}
	return resp.Agents, nil
}

// AnalyticsModels fetches per-model stats.
func (c *Client) AnalyticsModels(ctx context.Context, tr models.TimeRange) ([]models.ModelStats, error) {
	resp, err := get[struct {
		Models []models.ModelStats `json:"models"`
	}](ctx, c, "/v1/analytics/models?range="+tr.Query())
	if err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// AnalyticsTimeseries fetches the bucketed cost series.
func (c *Client) AnalyticsTimeseries(ctx context.Context, tr models.TimeRange) ([]models.TimeSeriesPoint, error) {
	resp, err := get[struct {
		Points []models.TimeSeriesPoint `json:"timeseries"`
	}](ctx, c, "/v1/analytics/timeseries?range="+tr.Query())
	if err != nil {
		return nil, err
	}
	return resp.Points, nil
}

// AnalyticsFull fetches every projection in one call.
func (c *Client) AnalyticsFull(ctx context.Context, tr models.TimeRange) (models.AnalyticsFull, error) {
	return get[models.AnalyticsFull](ctx, c, "/v1/analytics/full?range="+tr.Query())
}

// Events fetches one page of the event log.
func (c *Client) Events(ctx context.Context, limit, offset int) (models.EventPage, error) {
	endpoint := fmt.Sprintf("/v1/events?limit=%d&offset=%d", limit, offset)
	return get[models.EventPage](ctx, c, endpoint)
}

// EventCount fetches the total event count.
func (c *Client) EventCount(ctx context.Context) (int64, error) {
	resp, err := get[struct {
		Count int64 `json:"count"`
	}](ctx, c, "/v1/events/count")
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Optimizations fetches the regenerated suggestion list.
func (c *Client) Optimizations(ctx context.Context) (models.OptimizationResponse, error) {
	return get[models.OptimizationResponse](ctx, c, "/v1/optimizations")
}

// OptimizationSummary fetches the optimization counters.
func (c *Client) OptimizationSummary(ctx context.Context) (models.OptimizationSummary, error) {
	return get[models.OptimizationSummary](ctx, c, "/v1/optimizations/summary")
}

// Recommendations fetches the pending actionable recommendations.
func (c *Client) Recommendations(ctx context.Context) ([]models.Recommendation, error) {
	resp, err := get[struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}](ctx, c, "/v1/optimizations/recommendations")
	if err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// ImplementRecommendation marks a recommendation implemented.
func (c *Client) ImplementRecommendation(ctx context.Context, id string) error {
	endpoint := "/v1/optimizations/recommendations/" + url.PathEscape(id) + "/implement"
	_, err := c.Request(ctx, http.MethodPost, endpoint, nil)
	return err
}

// DismissRecommendation rejects a recommendation with optional feedback.
func (c *Client) DismissRecommendation(ctx context.Context, id, feedback string) error {
	endpoint := "/v1/optimizations/recommendations/" + url.PathEscape(id) + "/dismiss"
	var payload any
	if feedback != "" {
		payload = map[string]string{"feedback": feedback}
	}
	_, err := c.Request(ctx, http.MethodPost, endpoint, payload)
	return err
}

// CreateProject creates a project and returns it including its API key.
func (c *Client) CreateProject(ctx context.Context, name string) (models.Project, error) {
	return post[models.Project](ctx, c, "/v1/projects", map[string]string{"name": name})
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, id string) (models.Project, error) {
	return get[models.Project](ctx, c, "/v1/projects/"+url.PathEscape(id))
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodDelete, "/v1/projects/"+url.PathEscape(id), nil)
	return err
}

// Members fetches the team roster for a project.
func (c *Client) Members(ctx context.Context, projectID string) (models.TeamRoster, error) {
	return get[models.TeamRoster](ctx, c, "/v1/projects/"+url.PathEscape(projectID)+"/members")
}

// UpdateMemberRole changes a member's role.
func (c *Client) UpdateMemberRole(ctx context.Context, projectID, userID string, role models.Role) error {
	endpoint := "/v1/projects/" + url.PathEscape(projectID) + "/members/" + url.PathEscape(userID)
	payload := map[string]string{"role": string(role)}
	_, err := c.Request(ctx, http.MethodPatch, endpoint, payload)
	return err
}

// RemoveMember removes a member from a project.
func (c *Client) RemoveMember(ctx context.Context, projectID, userID string) error {
	endpoint := "/v1/projects/" + url.PathEscape(projectID) + "/members/" + url.PathEscape(userID)
	_, err := c.Request(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// Invite creates a pending invitation.
func (c *Client) Invite(ctx context.Context, projectID, email string, role models.Role) (models.PendingInvitation, error) {
	endpoint := "/v1/projects/" + url.PathEscape(projectID) + "/invitations"
	payload := map[string]string{"email": email, "role": string(role)}
	return post[models.PendingInvitation](ctx, c, endpoint, payload)
}

// CancelInvitation withdraws a pending invitation.
func (c *Client) CancelInvitation(ctx context.Context, projectID, invitationID string) error {
	endpoint := "/v1/projects/" + url.PathEscape(projectID) + "/invitations/" + url.PathEscape(invitationID)
	_, err := c.Request(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// AcceptInvitation accepts an invitation addressed to the current user.
func (c *Client) AcceptInvitation(ctx context.Context, invitationID string) error {
	endpoint := "/v1/invitations/" + url.PathEscape(invitationID) + "/accept"
	_, err := c.Request(ctx, http.MethodPost, endpoint, nil)
	return err
}

// DeclineInvitation declines an invitation addressed to the current user.
func (c *Client) DeclineInvitation(ctx context.Context, invitationID string) error {
	endpoint := "/v1/invitations/" + url.PathEscape(invitationID) + "/decline"
	_, err := c.Request(ctx, http.MethodPost, endpoint, nil)
	return err
}

// LeaveProject removes the current user from a project.
func (c *Client) LeaveProject(ctx context.Context, projectID string) error {
	endpoint := "/v1/projects/" + url.PathEscape(projectID) + "/leave"
	_, err := c.Request(ctx, http.MethodPost, endpoint, nil)
	return err
}
