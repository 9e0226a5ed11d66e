package handler

import (
	"context"
	"lead-crm-api/common"
	"lead-crm-api/service"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	UserEmailKey contextKey = "userEmail"
)

// AuthMiddleware is the request gate: it authenticates the bearer access
// token and attaches the decoded identity to the request context. An expired
// token answers 401 so clients know to refresh; any other verification
// failure answers 403 and requires a fresh login.
func AuthMiddleware(codec *service.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.ErrAccessTokenRequired().Send(w)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				common.ErrAccessTokenRequired().Send(w)
				return
			}

			claims, err := codec.Verify(headerParts[1], service.AccessToken)
			if err != nil {
				if err == service.ErrTokenExpired {
					common.ErrAccessTokenExpired().Send(w)
					return
				}
				common.ErrInvalidAccessToken().Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
