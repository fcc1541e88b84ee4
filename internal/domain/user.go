package domain

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

type Permission string

const (
	PermissionRead   Permission = "READ"
	PermissionCreate Permission = "CREATE"
	PermissionDelete Permission = "DELETE"
)

type User struct {
	ID           int32        `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PhoneNumber  string       `json:"phone_number"`
	PasswordHash string       `json:"-"`
	Role         UserRole     `json:"role"`
	Permissions  []Permission `json:"permissions,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Actor is the authenticated caller of an operation.
// An ADMIN with no permissions is a super-admin.
type Actor struct {
	UserID      int32
	Role        UserRole
	Permissions []Permission
}

// SystemActorID identifies transitions made by scheduled jobs.
const SystemActorID int32 = 0

func SystemActor() Actor {
	return Actor{UserID: SystemActorID, Role: UserRoleAdmin}
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
