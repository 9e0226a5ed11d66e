// file: handler/google_handler.go

package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"lead-crm-api/config"
	"lead-crm-api/logger"
	"lead-crm-api/service"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookieName = "oauthState"

// GoogleHandler drives the Google authorization-code flow. The identity
// resolution itself lives in AuthService.ResolveGoogleUser; this handler is
// only the transport wiring around it.
type GoogleHandler struct {
	service     *service.AuthService
	oauthConfig *oauth2.Config
	userInfoURL string
}

func NewGoogleHandler(authService *service.AuthService) *GoogleHandler {
	cfg := config.AppConfig.Google
	return &GoogleHandler{
		service: authService,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Login redirects the browser to Google's consent screen. The random state
// is pinned in a short-lived cookie and checked on callback.
func (h *GoogleHandler) Login(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		http.Error(w, "Could not start OAuth flow", http.StatusInternalServerError)
		return
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   !config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback exchanges the code, resolves or creates the user, issues a token
// pair and hands the access token to the frontend. Any failure redirects to
// the frontend login page rather than rendering an API error.
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	frontend := config.AppConfig.Server.FrontendURL
	failureURL := frontend + "/login?error=authentication_failed"

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		logger.Log.Warn("Google OAuth callback with missing or mismatched state")
		http.Redirect(w, r, failureURL, http.StatusTemporaryRedirect)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Log.WithError(err).Error("Google OAuth code exchange failed")
		http.Redirect(w, r, failureURL, http.StatusTemporaryRedirect)
		return
	}

	resp, err := h.oauthConfig.Client(r.Context(), token).Get(h.userInfoURL)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch Google user info")
		http.Redirect(w, r, failureURL, http.StatusTemporaryRedirect)
		return
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" || info.Email == "" {
		logger.Log.WithError(err).Error("Failed to decode Google user info")
		http.Redirect(w, r, failureURL, http.StatusTemporaryRedirect)
		return
	}

	user, err := h.service.ResolveGoogleUser(info.ID, info.Email, info.Name)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to resolve Google user")
		http.Redirect(w, r, failureURL, http.StatusTemporaryRedirect)
		return
	}

	pair, err := h.service.IssueTokens(user.ID, user.Email)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to issue tokens after Google login")
		http.Redirect(w, r, failureURL, http.StatusTemporaryRedirect)
		return
	}

	setRefreshCookie(w, pair.RefreshToken)
	http.Redirect(w, r, fmt.Sprintf("%s/auth/callback?token=%s", frontend, pair.AccessToken), http.StatusTemporaryRedirect)
}
