// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"lead-crm-api/logger"
	"lead-crm-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for the refresh-token ledger.
type ITokenRepository interface {
	Create(token *model.RefreshToken) error
	GetByToken(token string) (*model.RefreshToken, error)
	Revoke(token string) (bool, error)
	RevokeAllByUserID(userID int) error
	DeleteExpired(now time.Time) (int64, error)
}

// TokenRepository implements ITokenRepository on postgres.
type TokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new live ledger row for an issued refresh token.
func (r *TokenRepository) Create(token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.DB.QueryRow(query, token.Token, token.UserID, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetByToken retrieves a ledger row by its token string.
// Returns sql.ErrNoRows when the token was never recorded or already swept.
func (r *TokenRepository) GetByToken(tokenStr string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, token, user_id, revoked, expires_at, created_at FROM refresh_tokens WHERE token = $1`
	err := r.DB.QueryRow(query, tokenStr).Scan(&token.ID, &token.Token, &token.UserID, &token.Revoked, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token query")
		}
		return nil, err
	}
	return token, nil
}

// Revoke marks one ledger row revoked. The conditional update is the consume
// step for rotation: of two concurrent callers presenting the same token,
// exactly one sees true. An unknown or already-revoked token is not an error.
func (r *TokenRepository) Revoke(tokenStr string) (bool, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 AND revoked = FALSE`
	res, err := r.DB.Exec(query, tokenStr)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute revoke refresh token query")
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RevokeAllByUserID marks every live token of a user revoked. Used for
// logout-all, password reset and account deletion.
func (r *TokenRepository) RevokeAllByUserID(userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to revoke all refresh tokens for a user")

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`
	_, err := r.DB.Exec(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke all refresh tokens query")
		return err
	}
	return nil
}

// DeleteExpired removes rows that are expired or revoked. A swept row and an
// absent row are equivalent for GetByToken, so this is pure reclamation.
func (r *TokenRepository) DeleteExpired(now time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1 OR revoked = TRUE`
	res, err := r.DB.Exec(query, now)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete expired refresh tokens query")
		return 0, err
	}
	return res.RowsAffected()
}
