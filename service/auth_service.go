package service

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"lead-crm-api/common"
	"lead-crm-api/logger"
	"lead-crm-api/metrics"
	"lead-crm-api/model"
	"lead-crm-api/repository"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 1 * time.Hour

// TokenPair is the result of login, OAuth callback and rotation. The refresh
// token travels only in the HTTP-only cookie, never in a JSON body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
}

// AuthService owns the session lifecycle: issuance, rotation with single-use
// enforcement, revocation and the flows that trigger mass revocation.
type AuthService struct {
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository
	codec     *TokenCodec
	mailer    IMailer
	collector *metrics.Collector
}

func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository,
	codec *TokenCodec, mailer IMailer, collector *metrics.Collector) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		codec:     codec,
		mailer:    mailer,
		collector: collector,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// randomToken returns a 32-byte hex string for verification and reset links.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Signup creates a new unverified account and mails a verification link.
// If the email belongs to a Google-only account, the password is attached to
// that account instead (account linking); an account that already has a
// password yields UserAlreadyExists.
func (s *AuthService) Signup(req model.SignupRequest) (*model.User, error) {
	existing, err := s.userRepo.GetUserByEmail(req.Email)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	hashed, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if !existing.GoogleID.Valid || existing.Password.Valid {
			return nil, common.ErrUserAlreadyExists()
		}
		if err := s.userRepo.SetPassword(existing.ID, hashed, req.Name); err != nil {
			return nil, err
		}
		logger.Log.WithField("user_id", existing.ID).Info("Password attached to Google-linked account")
		return s.userRepo.GetUserByID(existing.ID)
	}

	user := &model.User{
		Email:    req.Email,
		Password: sql.NullString{String: hashed, Valid: true},
		Name:     req.Name,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	verificationToken, err := randomToken()
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetVerificationToken(user.ID, verificationToken); err != nil {
		return nil, err
	}

	if err := s.mailer.Send(user.Email, VerificationMail, verificationToken); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to send verification email")
	}

	logger.Log.WithField("user_id", user.ID).Info("User created")
	return user, nil
}

// Login verifies the credentials and issues a token pair. Unknown email,
// OAuth-only account and wrong password all produce the same error so the
// response cannot be used to enumerate accounts.
func (s *AuthService) Login(email, password string) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			s.collector.RecordLoginFailure()
			return nil, nil, common.ErrInvalidCredentials()
		}
		return nil, nil, err
	}

	if !user.Password.Valid || !s.CheckPasswordHash(password, user.Password.String) {
		s.collector.RecordLoginFailure()
		return nil, nil, common.ErrInvalidCredentials()
	}

	pair, err := s.IssueTokens(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}

	s.collector.RecordLoginSuccess()
	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	return user, pair, nil
}

// IssueTokens signs a fresh access/refresh pair and records the refresh token
// in the ledger. Called on login, OAuth callback and rotation.
func (s *AuthService) IssueTokens(userID int, email string) (*TokenPair, error) {
	accessToken, err := s.codec.Issue(AccessToken, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.codec.Issue(RefreshToken, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	record := &model.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: time.Now().Add(RefreshTokenTTL),
	}
	if err := s.tokenRepo.Create(record); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ResolveGoogleUser implements the federated-login upsert: match on the
// Google subject first, then link by email, then create a verified account.
func (s *AuthService) ResolveGoogleUser(googleID, email, name string) (*model.User, error) {
	user, err := s.userRepo.GetUserByGoogleID(googleID)
	if err == nil {
		return user, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	user, err = s.userRepo.GetUserByEmail(email)
	if err == nil {
		if err := s.userRepo.LinkGoogleID(user.ID, googleID); err != nil {
			return nil, err
		}
		logger.Log.WithField("user_id", user.ID).Info("Google identity linked to existing account")
		return s.userRepo.GetUserByID(user.ID)
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	user = &model.User{
		Email:      email,
		GoogleID:   sql.NullString{String: googleID, Valid: true},
		Name:       name,
		IsVerified: true,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}
	logger.Log.WithField("user_id", user.ID).Info("User created from Google identity")
	return user, nil
}

// RotateRefreshToken redeems a refresh token for a new pair. A token can be
// redeemed at most once: the ledger row is consumed with a conditional update
// before the replacement is minted, so a replay of the same string, including
// one racing the legitimate rotation, fails.
func (s *AuthService) RotateRefreshToken(presented string) (*TokenPair, error) {
	claims, err := s.codec.Verify(presented, RefreshToken)
	if err != nil {
		return nil, common.ErrRefreshInvalid()
	}

	record, err := s.tokenRepo.GetByToken(presented)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, common.ErrRefreshInvalid()
		}
		return nil, err
	}
	if record.Revoked {
		// Reuse detection: the signature is still valid but the token was
		// already consumed. Only the presented token is revoked, not its
		// rotation lineage; see DESIGN.md.
		s.collector.RecordReuseDetected()
		logger.Log.WithField("user_id", record.UserID).Warn("Refresh token reuse detected")
		return nil, common.ErrRefreshInvalid()
	}

	if time.Now().After(record.ExpiresAt) {
		if _, err := s.tokenRepo.Revoke(presented); err != nil {
			return nil, err
		}
		return nil, common.ErrRefreshExpired()
	}

	// Consume before minting. The conditional update makes concurrent
	// rotations of the same token race safely: the loser sees false here.
	consumed, err := s.tokenRepo.Revoke(presented)
	if err != nil {
		return nil, err
	}
	if !consumed {
		s.collector.RecordReuseDetected()
		return nil, common.ErrRefreshInvalid()
	}

	pair, err := s.IssueTokens(claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}

	s.collector.RecordRotation()
	return pair, nil
}

// Logout revokes a single refresh token. Unknown and already-revoked tokens
// are not errors, so the response leaks nothing about which tokens exist.
func (s *AuthService) Logout(refreshToken string) error {
	_, err := s.tokenRepo.Revoke(refreshToken)
	return err
}

// LogoutAll revokes every live session of the user. Also invoked on password
// reset and account deletion.
func (s *AuthService) LogoutAll(userID int) error {
	return s.tokenRepo.RevokeAllByUserID(userID)
}

func (s *AuthService) VerifyEmail(token string) (*model.User, error) {
	user, err := s.userRepo.VerifyByToken(token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, common.ErrInvalidVerificationToken()
		}
		return nil, err
	}
	logger.Log.WithField("user_id", user.ID).Info("Email verified")
	return user, nil
}

// RequestPasswordReset mails a reset link. It reports success for unknown
// addresses, and mail failures are logged, not propagated, so the response
// never reveals whether the account exists.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}

	resetToken, err := randomToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetResetToken(user.ID, resetToken, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	if err := s.mailer.Send(user.Email, PasswordResetMail, resetToken); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to send password reset email")
	}
	return nil
}

// ResetPassword sets the new hash and revokes every session that might have
// been established before the credential change.
func (s *AuthService) ResetPassword(token, password string) error {
	user, err := s.userRepo.GetUserByResetToken(token, time.Now())
	if err != nil {
		if err == sql.ErrNoRows {
			return common.ErrInvalidResetToken()
		}
		return err
	}

	hashed, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.ResetPassword(user.ID, hashed); err != nil {
		return err
	}

	if err := s.LogoutAll(user.ID); err != nil {
		return err
	}
	logger.Log.WithField("user_id", user.ID).Info("Password reset, all sessions revoked")
	return nil
}

func (s *AuthService) GetProfile(userID int) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, common.ErrUserNotFound()
		}
		return nil, err
	}
	return user, nil
}

// DeleteAccount revokes all sessions and removes the user; dependent rows
// cascade at the schema level.
func (s *AuthService) DeleteAccount(userID int) error {
	if _, err := s.userRepo.GetUserByID(userID); err != nil {
		if err == sql.ErrNoRows {
			return common.ErrUserNotFound()
		}
		return err
	}

	if err := s.LogoutAll(userID); err != nil {
		return err
	}
	if err := s.userRepo.DeleteUser(userID); err != nil {
		return err
	}
	logger.Log.WithField("user_id", userID).Info("Account deleted")
	return nil
}

// SweepExpiredTokens deletes ledger rows that are expired or revoked. Run on
// a fixed interval; a swept row and an absent row are equivalent for lookup,
// so the sweep cannot invalidate a live session.
func (s *AuthService) SweepExpiredTokens() (int64, error) {
	deleted, err := s.tokenRepo.DeleteExpired(time.Now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.collector.RecordTokensSwept(deleted)
		logger.Log.WithField("deleted", deleted).Info("Swept expired refresh tokens")
	}
	return deleted, nil
}

// AsAppError unwraps an operational error, or wraps an unexpected one as a
// generic 500 with the internal cause preserved for the log.
func AsAppError(err error, fallbackMessage string) *common.AppError {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return common.NewAppError(http.StatusInternalServerError, fallbackMessage, err)
}
