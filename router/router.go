package router

import (
	"lead-crm-api/config"
	"lead-crm-api/handler"
	"lead-crm-api/service"
	"net/http"

	"github.com/rs/cors"
)

// NewRouter builds the full route table. The credential endpoints sit behind
// the per-IP rate limiter; everything under /api except the auth flows sits
// behind the access-token gate.
func NewRouter(
	authHandler *handler.AuthHandler,
	googleHandler *handler.GoogleHandler,
	leadHandler *handler.LeadHandler,
	customerHandler *handler.CustomerHandler,
	codec *service.TokenCodec,
	rateLimiter *handler.CredentialRateLimiter,
	metricsHandler http.Handler,
) http.Handler {
	mux := http.NewServeMux()
	authenticate := handler.AuthMiddleware(codec)

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", metricsHandler)

	// Credential endpoints, rate limited per client IP.
	mux.Handle("POST /api/auth/signup", rateLimiter.Middleware(handler.ErrorHandlingMiddleware(authHandler.Signup)))
	mux.Handle("POST /api/auth/login", rateLimiter.Middleware(handler.ErrorHandlingMiddleware(authHandler.Login)))
	mux.Handle("POST /api/auth/request-password-reset", rateLimiter.Middleware(handler.ErrorHandlingMiddleware(authHandler.RequestPasswordReset)))
	mux.Handle("POST /api/auth/reset-password", rateLimiter.Middleware(handler.ErrorHandlingMiddleware(authHandler.ResetPassword)))

	// Session endpoints driven by the refresh cookie.
	mux.Handle("POST /api/auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /api/auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))
	mux.Handle("GET /api/auth/verify-email", handler.ErrorHandlingMiddleware(authHandler.VerifyEmail))

	// Google OAuth flow.
	mux.HandleFunc("GET /api/auth/google", googleHandler.Login)
	mux.HandleFunc("GET /api/auth/google/callback", googleHandler.Callback)

	// Endpoints requiring a valid access token.
	mux.Handle("POST /api/auth/logout-all", authenticate(handler.ErrorHandlingMiddleware(authHandler.LogoutAll)))
	mux.Handle("GET /api/auth/profile", authenticate(handler.ErrorHandlingMiddleware(authHandler.GetProfile)))
	mux.Handle("DELETE /api/auth/delete-account", authenticate(handler.ErrorHandlingMiddleware(authHandler.DeleteAccount)))

	mux.Handle("GET /api/leads", authenticate(handler.ErrorHandlingMiddleware(leadHandler.ListLeads)))
	mux.Handle("POST /api/leads", authenticate(handler.ErrorHandlingMiddleware(leadHandler.CreateLead)))
	mux.Handle("GET /api/leads/{id}", authenticate(handler.ErrorHandlingMiddleware(leadHandler.GetLead)))
	mux.Handle("PUT /api/leads/{id}", authenticate(handler.ErrorHandlingMiddleware(leadHandler.UpdateLead)))
	mux.Handle("DELETE /api/leads/{id}", authenticate(handler.ErrorHandlingMiddleware(leadHandler.DeleteLead)))
	mux.Handle("POST /api/leads/{id}/convert", authenticate(handler.ErrorHandlingMiddleware(leadHandler.ConvertLead)))

	mux.Handle("GET /api/customers", authenticate(handler.ErrorHandlingMiddleware(customerHandler.ListCustomers)))
	mux.Handle("GET /api/customers/{id}", authenticate(handler.ErrorHandlingMiddleware(customerHandler.GetCustomer)))
	mux.Handle("PUT /api/customers/{id}", authenticate(handler.ErrorHandlingMiddleware(customerHandler.UpdateCustomer)))
	mux.Handle("DELETE /api/customers/{id}", authenticate(handler.ErrorHandlingMiddleware(customerHandler.DeleteCustomer)))

	// Credentialed CORS for the cookie-based refresh flow.
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{config.AppConfig.Server.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(mux)
}
