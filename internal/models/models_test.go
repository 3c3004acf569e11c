package models

import (
	"testing"
)

func TestSession_IsValid(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		want    bool
	}{
		{"Nil", nil, false},
		{"Empty", &Session{}, false},
		{"TokenOnly", &Session{AccessToken: "tok"}, false},
		{"UserOnly", &Session{User: &User{ID: "u1"}}, false},
		{"Complete", &Session{AccessToken: "tok", RefreshToken: "ref", User: &User{ID: "u1"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.IsValid(); got != tt.want {
				t.Errorf("Session.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutstandingPolicies(t *testing.T) {
	statuses := []PolicyStatus{
		{PolicyType: "terms", Version: "2", Required: true, Accepted: false},
		{PolicyType: "privacy", Version: "3", Required: true, Accepted: true},
		{PolicyType: "marketing", Version: "1", Required: false, Accepted: false},
	}

	out := OutstandingPolicies(statuses)
	if len(out) != 1 {
		t.Fatalf("OutstandingPolicies() returned %d entries, want 1", len(out))
	}
	if out[0].PolicyType != "terms" {
		t.Errorf("OutstandingPolicies()[0].PolicyType = %q, want terms", out[0].PolicyType)
	}
}

func TestSuggestion_Matches(t *testing.T) {
	rec := Recommendation{
		ID:        "rec-1",
		Type:      RecommendationModelDowngrade,
		AgentName: "support-bot",
		Model:     "gpt-4o",
	}

	tests := []struct {
		name       string
		suggestion OptimizationSuggestion
		want       bool
	}{
		{
			"ExactMatch",
			OptimizationSuggestion{Type: RecommendationModelDowngrade, AgentName: "support-bot", Model: "gpt-4o"},
			true,
		},
		{
			"DifferentType",
			OptimizationSuggestion{Type: RecommendationCaching, AgentName: "support-bot", Model: "gpt-4o"},
			false,
		},
		{
			"DifferentAgent",
			OptimizationSuggestion{Type: RecommendationModelDowngrade, AgentName: "other", Model: "gpt-4o"},
			false,
		},
		{
			"DifferentModel",
			OptimizationSuggestion{Type: RecommendationModelDowngrade, AgentName: "support-bot", Model: "gpt-4o-mini"},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.suggestion.Matches(rec); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectMember_CanBeRemovedBy(t *testing.T) {
	owner := ProjectMember{UserID: "u1", Role: RoleAdmin, IsOwner: true}
	admin := ProjectMember{UserID: "u2", Role: RoleAdmin}
	member := ProjectMember{UserID: "u3", Role: RoleMember}
	viewer := ProjectMember{UserID: "u4", Role: RoleViewer}

	tests := []struct {
		name   string
		target ProjectMember
		actor  ProjectMember
		want   bool
	}{
		{"OwnerNeverRemoved", owner, admin, false},
		{"AdminRemovesMember", member, admin, true},
		{"OwnerRemovesAdmin", admin, owner, true},
		{"MemberCannotRemove", viewer, member, false},
		{"CannotRemoveSelf", admin, admin, false},
		{"ViewerCannotRemove", member, viewer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.CanBeRemovedBy(tt.actor); got != tt.want {
				t.Errorf("CanBeRemovedBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRole_CanManageMembers(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{"Admin", RoleAdmin, true},
		{"Member", RoleMember, false},
		{"Viewer", RoleViewer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.CanManageMembers(); got != tt.want {
				t.Errorf("Role.CanManageMembers() = %v, want %v", got, tt.want)
			}
		})
	}
}
