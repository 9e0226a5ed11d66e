// file: model/token.go

package model

import "time"

// RefreshToken is one row of the refresh-token ledger. A row whose Revoked
// flag is set must never be treated as valid again, even before ExpiresAt.
type RefreshToken struct {
	ID        int       `json:"id"`
	Token     string    `json:"-"` // The raw token is never exposed in JSON responses.
	UserID    int       `json:"user_id"`
	Revoked   bool      `json:"revoked"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
