package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserRole is the permission tier of a user account
type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ParseUserRole converts a stored role name into a UserRole
func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown user role %q", s)
	}
	return r, nil
}

// User represents a user account in the users table
type User struct {
	UID            uuid.UUID `json:"uid" db:"uid"`
	Username       string    `json:"username" db:"username"`
	FirstName      *string   `json:"first_name" db:"first_name"`
	LastName       *string   `json:"last_name" db:"last_name"`
	IsVerified     bool      `json:"is_verified" db:"is_verified"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"` // Hidden from JSON responses
	Role           UserRole  `json:"role" db:"role"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	IsSuperuser    bool      `json:"is_superuser" db:"is_superuser"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser returns a user with the column defaults applied
func NewUser(username, email, hashedPassword string) User {
	now := time.Now().UTC()
	return User{
		UID:            uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           RoleUser,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Touch bumps UpdatedAt to the current UTC time
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

func (u User) String() string {
	return fmt.Sprintf("<User %s>", u.Username)
}
