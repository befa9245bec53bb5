package domain

import "time"

// UserRole enumerates supported roles. The role is descriptive; per-project
// rights come from ownership and membership.
type UserRole string

const (
	UserRoleOwner  UserRole = "owner"
	UserRoleMember UserRole = "member"
)

// Valid reports whether the role is known.
func (r UserRole) Valid() bool {
	return r == UserRoleOwner || r == UserRoleMember
}

// User represents an account within the platform.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   UserRole
}

// NewActor builds an actor for the given user id. An empty id yields nil.
func NewActor(userID string, role UserRole) *Actor {
	if userID == "" {
		return nil
	}
	return &Actor{UserID: userID, Role: role}
}
