package repository

import (
	"database/sql"
	"lead-crm-api/model"
	"time"
)

// IUserRepository defines the contract for the user credential store.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	GetUserByGoogleID(googleID string) (*model.User, error)
	SetPassword(userID int, hashedPassword, name string) error
	LinkGoogleID(userID int, googleID string) error
	SetVerificationToken(userID int, token string) error
	VerifyByToken(token string) (*model.User, error)
	SetResetToken(userID int, token string, expiry time.Time) error
	GetUserByResetToken(token string, now time.Time) (*model.User, error)
	ResetPassword(userID int, hashedPassword string) error
	DeleteUser(userID int) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, email, password, google_id, name, is_verified, verification_token, reset_token, reset_token_expiry, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Password, &user.GoogleID, &user.Name,
		&user.IsVerified, &user.VerificationToken, &user.ResetToken, &user.ResetTokenExpiry, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) CreateUser(user *model.User) error {
	query := `INSERT INTO users (email, password, google_id, name, is_verified) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.DB.QueryRow(query, user.Email, user.Password, user.GoogleID, user.Name, user.IsVerified).
		Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.DB.QueryRow(query, email))
}

func (r *UserRepository) GetUserByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRow(query, id))
}

func (r *UserRepository) GetUserByGoogleID(googleID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return scanUser(r.DB.QueryRow(query, googleID))
}

// SetPassword attaches a password hash to an existing account. Used when a
// Google-only user later signs up with a password (account linking by email).
func (r *UserRepository) SetPassword(userID int, hashedPassword, name string) error {
	query := `UPDATE users SET password = $1, name = COALESCE(NULLIF($2, ''), name) WHERE id = $3`
	_, err := r.DB.Exec(query, hashedPassword, name, userID)
	return err
}

// LinkGoogleID attaches a federated identity to an existing account and marks
// it verified, trusting the provider's email verification.
func (r *UserRepository) LinkGoogleID(userID int, googleID string) error {
	query := `UPDATE users SET google_id = $1, is_verified = TRUE WHERE id = $2`
	_, err := r.DB.Exec(query, googleID, userID)
	return err
}

func (r *UserRepository) SetVerificationToken(userID int, token string) error {
	query := `UPDATE users SET verification_token = $1 WHERE id = $2`
	_, err := r.DB.Exec(query, token, userID)
	return err
}

// VerifyByToken marks the matching user verified and clears the token.
// Returns sql.ErrNoRows when no user holds the token.
func (r *UserRepository) VerifyByToken(token string) (*model.User, error) {
	query := `UPDATE users SET is_verified = TRUE, verification_token = NULL
		WHERE verification_token = $1 RETURNING ` + userColumns
	return scanUser(r.DB.QueryRow(query, token))
}

func (r *UserRepository) SetResetToken(userID int, token string, expiry time.Time) error {
	query := `UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`
	_, err := r.DB.Exec(query, token, expiry, userID)
	return err
}

func (r *UserRepository) GetUserByResetToken(token string, now time.Time) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1 AND reset_token_expiry > $2`
	return scanUser(r.DB.QueryRow(query, token, now))
}

func (r *UserRepository) ResetPassword(userID int, hashedPassword string) error {
	query := `UPDATE users SET password = $1, reset_token = NULL, reset_token_expiry = NULL WHERE id = $2`
	_, err := r.DB.Exec(query, hashedPassword, userID)
	return err
}

// DeleteUser removes the account. Refresh tokens, leads and customers cascade
// at the schema level.
func (r *UserRepository) DeleteUser(userID int) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.DB.Exec(query, userID)
	return err
}
