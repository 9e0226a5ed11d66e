package handler

import (
	"encoding/json"
	"lead-crm-api/common"
	"lead-crm-api/config"
	"lead-crm-api/logger"
	"lead-crm-api/model"
	"lead-crm-api/service"
	"net/http"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// setRefreshCookie delivers the refresh token as an HTTP-only cookie so it is
// unreachable from frontend scripts.
func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   !config.IsDevelopment(),
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !config.IsDevelopment(),
		SameSite: http.SameSiteStrictMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Signup godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.SignupRequest true "signup payload"
// @Success      201 {object} model.User
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignupRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, err := h.service.Signup(req)
	if err != nil {
		return service.AsAppError(err, "Could not create user")
	}

	message := "User created successfully. Please verify your email."
	if user.IsVerified {
		message = "Account synced successfully. You can now login with password."
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": message,
		"user":    user,
	})
	return nil
}

// Login godoc
// @Summary      Issue a token pair for email/password credentials
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "login payload"
// @Success      200 {object} map[string]interface{}
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, pair, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		return service.AsAppError(err, "Could not log in")
	}

	setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": pair.AccessToken,
		"user":         user,
	})
	return nil
}

// Refresh rotates the refresh token presented in the cookie and re-sets the
// cookie with the replacement.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return common.ErrRefreshInvalid()
	}

	pair, err := h.service.RotateRefreshToken(cookie.Value)
	if err != nil {
		return service.AsAppError(err, "Could not refresh token")
	}

	setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": pair.AccessToken,
	})
	return nil
}

// Logout revokes the cookie's refresh token and clears the cookie. It always
// succeeds, even without a cookie or with an already-invalid token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		if err := h.service.Logout(cookie.Value); err != nil {
			logger.Log.WithError(err).Error("Failed to revoke refresh token on logout")
		}
	}

	clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	return nil
}

// LogoutAll revokes every session of the authenticated user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}

	if err := h.service.LogoutAll(userID); err != nil {
		return service.AsAppError(err, "Could not log out from all devices")
	}

	clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out from all devices successfully"})
	return nil
}

// VerifyEmail flips the verification flag for the token in the query string.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) *common.AppError {
	token := r.URL.Query().Get("token")
	if token == "" {
		return common.NewAppError(http.StatusBadRequest, "Verification token required", nil)
	}

	user, err := h.service.VerifyEmail(token)
	if err != nil {
		return service.AsAppError(err, "Could not verify email")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email verified successfully",
		"user":    user,
	})
	return nil
}

// RequestPasswordReset answers 200 whether or not the account exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.PasswordResetRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.service.RequestPasswordReset(req.Email); err != nil {
		return service.AsAppError(err, "Could not process password reset request")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "If the email exists, a reset link has been sent"})
	return nil
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ResetPasswordRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.service.ResetPassword(req.Token, req.Password); err != nil {
		return service.AsAppError(err, "Could not reset password")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
	return nil
}

// GetProfile godoc
// @Summary      Return the authenticated user's record
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.User
// @Router       /api/auth/profile [get]
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}

	user, err := h.service.GetProfile(userID)
	if err != nil {
		return service.AsAppError(err, "Could not retrieve profile")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	return nil
}

// DeleteAccount removes the authenticated user and all their sessions.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}

	if err := h.service.DeleteAccount(userID); err != nil {
		return service.AsAppError(err, "Could not delete account")
	}

	clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
	return nil
}
