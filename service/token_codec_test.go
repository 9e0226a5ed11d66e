// file: service/token_codec_test.go

package service

import (
	"lead-crm-api/model"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret")

	t.Run("access token round trip", func(t *testing.T) {
		token, err := codec.Issue(AccessToken, 42, "user@example.com")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := codec.Verify(token, AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, 42, claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
	})

	t.Run("refresh token round trip", func(t *testing.T) {
		token, err := codec.Issue(RefreshToken, 7, "other@example.com")
		assert.NoError(t, err)

		claims, err := codec.Verify(token, RefreshToken)
		assert.NoError(t, err)
		assert.Equal(t, 7, claims.UserID)
	})

	t.Run("access secret cannot verify refresh tokens", func(t *testing.T) {
		token, err := codec.Issue(RefreshToken, 7, "other@example.com")
		assert.NoError(t, err)

		_, err = codec.Verify(token, AccessToken)
		assert.Equal(t, ErrTokenInvalid, err)
	})

	t.Run("refresh secret cannot verify access tokens", func(t *testing.T) {
		token, err := codec.Issue(AccessToken, 7, "other@example.com")
		assert.NoError(t, err)

		_, err = codec.Verify(token, RefreshToken)
		assert.Equal(t, ErrTokenInvalid, err)
	})

	t.Run("malformed token is invalid", func(t *testing.T) {
		_, err := codec.Verify("not.a.token", AccessToken)
		assert.Equal(t, ErrTokenInvalid, err)
	})

	t.Run("tampered token is invalid", func(t *testing.T) {
		token, err := codec.Issue(AccessToken, 42, "user@example.com")
		assert.NoError(t, err)

		_, err = codec.Verify(token+"x", AccessToken)
		assert.Equal(t, ErrTokenInvalid, err)
	})
}

func TestTokenCodec_Expiry(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret")

	// Sign a token with the codec's secret whose expiry is already in the past.
	claims := &model.AppClaims{
		UserID: 42,
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	assert.NoError(t, err)

	_, err = codec.Verify(expired, AccessToken)
	assert.Equal(t, ErrTokenExpired, err)
}

func TestTokenCodec_RejectsUnexpectedSigningMethod(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret")

	// alg=none tokens must never verify.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &model.AppClaims{UserID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = codec.Verify(unsigned, AccessToken)
	assert.Equal(t, ErrTokenInvalid, err)
}
