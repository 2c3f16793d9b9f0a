package authserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"helpdesk/internal/graph"
	"helpdesk/internal/storage"
)

// Exchanger trades an authorization code for an access token.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (graph.Token, error)
}

// Server handles the OAuth2 callback: Microsoft redirects the browser here
// with a code and the Telegram user id in the state parameter.
type Server struct {
	oauth  Exchanger
	tokens storage.TokenStore
	logger *zap.Logger
}

// NewServer creates a new callback server
func NewServer(oauth Exchanger, tokens storage.TokenStore, logger *zap.Logger) *Server {
	return &Server{
		oauth:  oauth,
		tokens: tokens,
		logger: logger,
	}
}

// Router builds the HTTP router
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/callback", s.handleCallback)
	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// handleCallback exchanges the authorization code and persists the token for
// the Telegram user carried in state
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" || state == "" {
		http.Error(w, "Error: missing code or user ID", http.StatusBadRequest)
		return
	}

	userID, err := strconv.ParseInt(state, 10, 64)
	if err != nil {
		http.Error(w, "Error: invalid user ID", http.StatusBadRequest)
		return
	}

	token, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Warn("Token exchange failed", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Error during authorization", http.StatusBadGateway)
		return
	}

	expiresAt := time.Now().Add(token.TTL())
	if err := s.tokens.SaveToken(r.Context(), userID, token.AccessToken, expiresAt); err != nil {
		s.logger.Error("Failed to save token", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Error during authorization", http.StatusInternalServerError)
		return
	}

	s.logger.Info("User authorized",
		zap.Int64("user_id", userID),
		zap.Time("expires_at", expiresAt),
	)

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Authorization successful! You can now use /inbox.")
}
