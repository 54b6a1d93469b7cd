// Package auth handles credential checks and session lifecycles for the
// back-office users.
package auth

import "time"

// User represents a back-office user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	Role         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
