// file: handler/auth_handler_test.go

package handler

import (
	"database/sql"
	"lead-crm-api/metrics"
	"lead-crm-api/model"
	"lead-crm-api/service"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type stubUserRepo struct{ mock.Mock }

func (m *stubUserRepo) CreateUser(user *model.User) error {
	return m.Called(user).Error(0)
}
func (m *stubUserRepo) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *stubUserRepo) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *stubUserRepo) GetUserByGoogleID(googleID string) (*model.User, error) {
	args := m.Called(googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *stubUserRepo) SetPassword(userID int, hashedPassword, name string) error {
	return m.Called(userID, hashedPassword, name).Error(0)
}
func (m *stubUserRepo) LinkGoogleID(userID int, googleID string) error {
	return m.Called(userID, googleID).Error(0)
}
func (m *stubUserRepo) SetVerificationToken(userID int, token string) error {
	return m.Called(userID, token).Error(0)
}
func (m *stubUserRepo) VerifyByToken(token string) (*model.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *stubUserRepo) SetResetToken(userID int, token string, expiry time.Time) error {
	return m.Called(userID, token, expiry).Error(0)
}
func (m *stubUserRepo) GetUserByResetToken(token string, now time.Time) (*model.User, error) {
	args := m.Called(token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *stubUserRepo) ResetPassword(userID int, hashedPassword string) error {
	return m.Called(userID, hashedPassword).Error(0)
}
func (m *stubUserRepo) DeleteUser(userID int) error {
	return m.Called(userID).Error(0)
}

type stubTokenRepo struct{ mock.Mock }

func (m *stubTokenRepo) Create(token *model.RefreshToken) error {
	return m.Called(token).Error(0)
}
func (m *stubTokenRepo) GetByToken(token string) (*model.RefreshToken, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}
func (m *stubTokenRepo) Revoke(token string) (bool, error) {
	args := m.Called(token)
	return args.Bool(0), args.Error(1)
}
func (m *stubTokenRepo) RevokeAllByUserID(userID int) error {
	return m.Called(userID).Error(0)
}
func (m *stubTokenRepo) DeleteExpired(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

type stubMailer struct{ mock.Mock }

func (m *stubMailer) Send(address string, kind service.MailKind, token string) error {
	return m.Called(address, kind, token).Error(0)
}

type handlerFixture struct {
	users   *stubUserRepo
	tokens  *stubTokenRepo
	codec   *service.TokenCodec
	handler *AuthHandler
}

func newHandlerFixture() *handlerFixture {
	users := new(stubUserRepo)
	tokens := new(stubTokenRepo)
	codec := service.NewTokenCodec("access-secret", "refresh-secret")
	collector := metrics.NewCollector(prometheus.NewRegistry())
	authService := service.NewAuthService(users, tokens, codec, new(stubMailer), collector)
	return &handlerFixture{
		users:   users,
		tokens:  tokens,
		codec:   codec,
		handler: NewAuthHandler(authService),
	}
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == refreshCookieName {
			return cookie
		}
	}
	t.Fatalf("response carries no %s cookie", refreshCookieName)
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	fx := newHandlerFixture()
	endpoint := ErrorHandlingMiddleware(fx.handler.Login)

	hash, err := fx.handler.service.HashPassword("password123")
	assert.NoError(t, err)
	user := &model.User{
		ID:       1,
		Email:    "user@example.com",
		Password: sql.NullString{String: hash, Valid: true},
	}

	t.Run("success sets the refresh cookie and returns the access token", func(t *testing.T) {
		fx.users.On("GetUserByEmail", "user@example.com").Return(user, nil).Once()
		fx.tokens.On("Create", mock.AnythingOfType("*model.RefreshToken")).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"password123"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		endpoint(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		body := decodeError(t, rec)
		accessToken, _ := body["access_token"].(string)
		claims, err := fx.codec.Verify(accessToken, service.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, 1, claims.UserID)
		assert.NotContains(t, rec.Body.String(), "refresh", "refresh token never travels in the body")

		cookie := refreshCookie(t, rec)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		_, err = fx.codec.Verify(cookie.Value, service.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("wrong password answers 401 without a cookie", func(t *testing.T) {
		fx.users.On("GetUserByEmail", "user@example.com").Return(user, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"nope-nope"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		endpoint(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", decodeError(t, rec)["message"])
		assert.Empty(t, rec.Result().Cookies())
	})

	fx.users.AssertExpectations(t)
	fx.tokens.AssertExpectations(t)
}

// backdatedRefreshToken signs a valid refresh token whose issued-at lies in
// the past, so the rotation's replacement cannot be byte-identical to it.
func backdatedRefreshToken(t *testing.T, userID int, email string) string {
	t.Helper()
	claims := &model.AppClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("refresh-secret"))
	assert.NoError(t, err)
	return signed
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("rotates the cookie token", func(t *testing.T) {
		fx := newHandlerFixture()
		endpoint := ErrorHandlingMiddleware(fx.handler.Refresh)

		presented := backdatedRefreshToken(t, 1, "user@example.com")

		fx.tokens.On("GetByToken", presented).Return(&model.RefreshToken{
			ID:        10,
			Token:     presented,
			UserID:    1,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil).Once()
		fx.tokens.On("Revoke", presented).Return(true, nil).Once()
		fx.tokens.On("Create", mock.AnythingOfType("*model.RefreshToken")).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: presented})
		rec := httptest.NewRecorder()
		endpoint(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decodeError(t, rec)["access_token"])

		cookie := refreshCookie(t, rec)
		assert.NotEqual(t, presented, cookie.Value, "the replacement is a different token")
		fx.tokens.AssertExpectations(t)
	})

	t.Run("missing cookie answers 401", func(t *testing.T) {
		fx := newHandlerFixture()
		endpoint := ErrorHandlingMiddleware(fx.handler.Refresh)

		rec := httptest.NewRecorder()
		endpoint(rec, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Refresh token not found or revoked", decodeError(t, rec)["message"])
	})

	t.Run("revoked cookie token answers 401", func(t *testing.T) {
		fx := newHandlerFixture()
		endpoint := ErrorHandlingMiddleware(fx.handler.Refresh)

		presented, err := fx.codec.Issue(service.RefreshToken, 1, "user@example.com")
		assert.NoError(t, err)

		fx.tokens.On("GetByToken", presented).Return(&model.RefreshToken{
			ID:        10,
			Token:     presented,
			UserID:    1,
			Revoked:   true,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: presented})
		rec := httptest.NewRecorder()
		endpoint(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		fx.tokens.AssertExpectations(t)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the cookie token and clears the cookie", func(t *testing.T) {
		fx := newHandlerFixture()
		endpoint := ErrorHandlingMiddleware(fx.handler.Logout)

		fx.tokens.On("Revoke", "some-refresh-token").Return(true, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "some-refresh-token"})
		rec := httptest.NewRecorder()
		endpoint(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		cookie := refreshCookie(t, rec)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
		fx.tokens.AssertExpectations(t)
	})

	t.Run("succeeds without a cookie", func(t *testing.T) {
		fx := newHandlerFixture()
		endpoint := ErrorHandlingMiddleware(fx.handler.Logout)

		rec := httptest.NewRecorder()
		endpoint(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		fx.tokens.AssertNotCalled(t, "Revoke", mock.Anything)
	})
}

func TestAuthHandler_LogoutAll(t *testing.T) {
	fx := newHandlerFixture()
	gate := AuthMiddleware(fx.codec)(ErrorHandlingMiddleware(fx.handler.LogoutAll))

	fx.tokens.On("RevokeAllByUserID", 1).Return(nil).Once()

	access, err := fx.codec.Issue(service.AccessToken, 1, "user@example.com")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout-all", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Negative(t, refreshCookie(t, rec).MaxAge)
	fx.tokens.AssertExpectations(t)
}
