package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/eventhub/internal/gateway"
)

// AuthHandler serves the session endpoints.
type AuthHandler struct {
	auth      gateway.Auth
	redirect  string
	responder responder
	logger    *slog.Logger
}

// NewAuthHandler constructs an AuthHandler. defaultRedirect is used when a
// third-party sign-in request names no redirect target.
func NewAuthHandler(auth gateway.Auth, defaultRedirect string, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{auth: auth, redirect: defaultRedirect, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.credentialsFlow(w, r, "SignUp", http.StatusCreated, h.auth.SignUp)
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.credentialsFlow(w, r, "SignIn", http.StatusOK, h.auth.SignIn)
}

func (h *AuthHandler) credentialsFlow(w http.ResponseWriter, r *http.Request, operation string, status int, call func(context.Context, gateway.Credentials) (gateway.Session, error)) {
	ctx := r.Context()
	var creds gateway.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		h.log(ctx, operation, "error_kind", "bad_request").ErrorContext(ctx, "failed to decode credentials", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(creds.Email))
	logger := h.log(ctx, operation, "email", email)

	session, err := call(ctx, creds)
	if err != nil {
		logger.WarnContext(ctx, "credentials rejected", "error", err, "error_code", gateway.CodeOf(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "session issued", "user_id", session.User.ID)
	h.responder.writeJSON(ctx, w, status, session)
}

// Provider handles GET /auth/oauth/{provider} by redirecting to the
// provider's sign-in page.
func (h *AuthHandler) Provider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := r.PathValue("provider")
	redirectTo := strings.TrimSpace(r.URL.Query().Get("redirect_to"))
	if redirectTo == "" {
		redirectTo = h.redirect
	}

	target, err := h.auth.SignInWithProvider(ctx, provider, redirectTo)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Provider", "provider", provider).InfoContext(ctx, "redirecting to provider")
	http.Redirect(w, r, target, http.StatusFound)
}

// SignOut handles POST /auth/signout.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context()); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
