// file: service/token_codec.go

package service

import (
	"errors"
	"lead-crm-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClass selects which signing secret applies. Access and refresh tokens
// use distinct secrets so that a leaked access secret cannot mint refresh
// tokens and vice versa.
type TokenClass int

const (
	AccessToken TokenClass = iota
	RefreshToken
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenCodec signs and verifies the stateless bearer tokens. It holds no
// persisted state; validity beyond the signature is the ledger's concern.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenCodec(accessSecret, refreshSecret string) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

func (c *TokenCodec) secretFor(class TokenClass) []byte {
	if class == RefreshToken {
		return c.refreshSecret
	}
	return c.accessSecret
}

func (c *TokenCodec) ttlFor(class TokenClass) time.Duration {
	if class == RefreshToken {
		return RefreshTokenTTL
	}
	return AccessTokenTTL
}

// Issue signs a token of the given class carrying the user identity.
func (c *TokenCodec) Issue(class TokenClass, userID int, email string) (string, error) {
	now := time.Now()
	claims := &model.AppClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttlFor(class))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secretFor(class))
}

// Verify parses and validates a token against the class secret. Expiry maps
// to ErrTokenExpired; every other signature or format failure maps to
// ErrTokenInvalid.
func (c *TokenCodec) Verify(tokenString string, class TokenClass) (*model.AppClaims, error) {
	claims := &model.AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secretFor(class), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
