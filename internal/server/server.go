// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the HTTP surface for clippy.
//
// Endpoints:
//   - GET  /           - Embedded chat page with the bouncing Clippy
//   - POST /api/chat   - Send a message, receive the assistant reply
//   - POST /api/clear  - Reset a session's conversation
//   - GET  /health     - Health check
//
// Every session is an independent conversation; the session_id field
// in requests selects it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JoranBergfeld/BouncingClippy/internal/foundry"
	"github.com/JoranBergfeld/BouncingClippy/internal/session"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the HTTP server.
	DefaultPort = 5000

	// MaxRequestBodySize caps chat request bodies to prevent DoS (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxMessageLength is the maximum length of a single chat message.
	MaxMessageLength = 100000

	// Version is the server version.
	Version = "1.0.0"
)

// ============================================================================
// SERVER
// ============================================================================

// Server is the HTTP API server for the web chat surface.
type Server struct {
	port     int
	router   *http.ServeMux
	server   *http.Server
	sessions *session.Manager
	limiter  *RateLimiter

	// gateway is swapped on config reload; guarded by gatewayMu.
	gatewayMu sync.RWMutex
	gateway   session.Gateway
}

// NewServer creates a server backed by the given gateway and session
// manager. If port is 0, the default port (5000) is used.
func NewServer(port int, gw session.Gateway, sessions *session.Manager) *Server {
	if port == 0 {
		port = DefaultPort
	}

	s := &Server{
		port:     port,
		router:   http.NewServeMux(),
		gateway:  gw,
		sessions: sessions,
		limiter:  DefaultRateLimiter(),
	}

	s.setupRoutes()
	return s
}

// SetGateway replaces the completion gateway. In-flight requests keep
// the gateway they started with.
func (s *Server) SetGateway(gw session.Gateway) {
	s.gatewayMu.Lock()
	s.gateway = gw
	s.gatewayMu.Unlock()
}

// Gateway returns the current completion gateway.
func (s *Server) Gateway() session.Gateway {
	s.gatewayMu.RLock()
	defer s.gatewayMu.RUnlock()
	return s.gateway
}

// WithRateLimiter sets a custom rate limiter.
func (s *Server) WithRateLimiter(rl *RateLimiter) *Server {
	s.limiter = rl
	return s
}

// Port returns the server port.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the full middleware-wrapped handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
		RateLimitMiddleware(s.limiter),
	)(s.router)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("POST /api/chat", s.handleChat)
	s.router.HandleFunc("POST /api/clear", s.handleClear)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// ============================================================================
// API TYPES
// ============================================================================

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the response body for a successful chat exchange.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ClearRequest is the request body for POST /api/clear.
type ClearRequest struct {
	SessionID string `json:"session_id"`
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleChat runs one conversational exchange. An unknown session_id
// starts a new conversation; an empty one gets a generated ID that the
// client must echo back to continue the same conversation.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", MaxRequestBodySize))
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if len(req.Message) > MaxMessageLength {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Message exceeds maximum length of %d", MaxMessageLength))
		return
	}

	sess := s.sessions.GetOrCreate(req.SessionID)
	reply, err := sess.Send(r.Context(), s.Gateway(), req.Message)
	if err != nil {
		if errors.Is(err, session.ErrEmptyMessage) {
			s.writeError(w, http.StatusBadRequest, "Message cannot be empty")
			return
		}
		// Full detail stays in the log; the client gets the readable
		// classification.
		log.Printf("CHAT_FAILED | session=%s err=%v", sess.ID(), err)
		s.writeError(w, http.StatusBadGateway, foundry.UserMessage(err))
		return
	}

	s.writeJSON(w, http.StatusOK, ChatResponse{
		Response:  reply,
		SessionID: sess.ID(),
	})
}

// handleClear resets a session. Clearing an unknown or idle session
// reports success; the end state is the same fresh conversation.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	s.sessions.Clear(req.SessionID)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Conversation cleared",
	})
}

// handleHealth reports server liveness and whether the gateway has the
// settings it needs to serve completions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	gw := s.Gateway()
	configured := gw != nil
	if c, ok := gw.(interface{ IsConfigured() bool }); ok {
		configured = c.IsConfigured()
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"version":    Version,
		"configured": configured,
		"sessions":   s.sessions.Len(),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s", addr, Version)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | sessions=%d", s.sessions.Len())
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"code":    status,
		},
	})
}
