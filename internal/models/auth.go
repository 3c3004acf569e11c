// Package models defines data structures and domain types.
package models

import "time"

// User is the account record returned by the me endpoint. A denormalized
// copy is persisted alongside the tokens.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Session holds the persisted credential pair and user copy.
// AccessToken and User are set together or both absent.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// IsValid reports whether the session can authenticate JWT-typed calls.
func (s *Session) IsValid() bool {
	return s != nil && s.AccessToken != "" && s.User != nil
}

// TokenPair is the response of the login and refresh endpoints.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// PolicyStatus describes one policy the user may still need to accept.
type PolicyStatus struct {
	PolicyType string `json:"policy_type"`
	Version    string `json:"version"`
	Accepted   bool   `json:"accepted"`
	Required   bool   `json:"required"`
}

// OutstandingPolicies returns the required policies that are not yet accepted.
func OutstandingPolicies(statuses []PolicyStatus) []PolicyStatus {
	var out []PolicyStatus
	for _, p := range statuses {
		if p.Required && !p.Accepted {
			out = append(out, p)
		}
	}
	return out
}
