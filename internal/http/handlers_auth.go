package httpx

import (
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	"github.com/safemesh/mesh-console/internal/service"
)

// AuthHandlers serves login, logout and session status for a client context.
type AuthHandlers struct {
	Svc    *service.Console
	Logger *slog.Logger
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// sessionResponse describes the session of the calling client.
type sessionResponse struct {
	Token        string               `json:"token"`
	ExpiresAt    time.Time            `json:"expiresAt"`
	ExpiresInSec int64                `json:"expiresInSec"`
	User         domainauth.Principal `json:"user"`
}

func newSessionResponse(s domainauth.Session, remaining time.Duration) sessionResponse {
	return sessionResponse{
		Token:        s.Token,
		ExpiresAt:    s.ExpiresAt,
		ExpiresInSec: int64(remaining / time.Second),
		User:         s.Principal,
	}
}

// Login verifies credentials and starts a session for the client context.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	clientID := ClientIDFromContext(r.Context())
	sess, err := h.Svc.Login(r.Context(), clientID, req.Email, req.Password, req.RememberMe)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, newSessionResponse(sess, sess.ExpiresAt.Sub(sess.IssuedAt)))
}

// Logout ends the session of the client context. It always succeeds.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Logout(r.Context(), ClientIDFromContext(r.Context())); err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the current session of the client context.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	clientID := ClientIDFromContext(r.Context())
	sess, err := h.Svc.Session(r.Context(), clientID)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	remaining, err := h.Svc.TimeUntilExpiry(r.Context(), clientID)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, newSessionResponse(sess, remaining))
}
