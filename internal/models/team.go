// Package models defines data structures and domain types.
package models

import "time"

// Role is the membership role within a project.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// String returns the display name for a role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleMember:
		return "Member"
	case RoleViewer:
		return "Viewer"
	default:
		return string(r)
	}
}

// CanManageMembers reports whether the role may invite, remove, or change
// roles of other members.
func (r Role) CanManageMembers() bool {
	return r == RoleAdmin
}

// Project is a user-owned project with its API credential.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"api_key,omitempty"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectMember is a membership record within a project.
type ProjectMember struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Role     Role      `json:"role"`
	IsOwner  bool      `json:"is_owner"`
	JoinedAt time.Time `json:"joined_at"`
}

// CanBeRemovedBy reports whether actor may remove this member. The owner can
// never be removed; otherwise admins (and the owner) may remove anyone but
// themselves.
func (m ProjectMember) CanBeRemovedBy(actor ProjectMember) bool {
	if m.IsOwner {
		return false
	}
	if m.UserID == actor.UserID {
		return false
	}
	return actor.IsOwner || actor.Role.CanManageMembers()
}

// PendingInvitation is an outstanding invite to join a project.
type PendingInvitation struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	InvitedBy string    `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// TeamRoster is the response of the members listing endpoint.
type TeamRoster struct {
	Members     []ProjectMember     `json:"members"`
	Invitations []PendingInvitation `json:"invitations"`
}
