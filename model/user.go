package model

import (
	"database/sql"
	"time"
)

// User is the identity record. Password is null for accounts created through
// Google OAuth that never set one; GoogleID is null for password-only accounts.
type User struct {
	ID                int            `json:"id"`
	Email             string         `json:"email"`
	Password          sql.NullString `json:"-"`
	GoogleID          sql.NullString `json:"-"`
	Name              string         `json:"name"`
	IsVerified        bool           `json:"is_verified"`
	VerificationToken sql.NullString `json:"-"`
	ResetToken        sql.NullString `json:"-"`
	ResetTokenExpiry  sql.NullTime   `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
}
