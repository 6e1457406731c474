// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package api provides the HTTP surface: the authenticated WebSocket
// endpoint, the feedback and retraining APIs, and the admin session
// revocation endpoint. Routing uses chi with the go-chi middleware
// ecosystem for CORS and rate limiting.
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sentinelshield/sentinelshield/internal/auth"
	"github.com/sentinelshield/sentinelshield/internal/config"
	"github.com/sentinelshield/sentinelshield/internal/feedback"
	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/realtime"
)

// Handler bundles the dependencies behind the HTTP endpoints.
type Handler struct {
	cfg          *config.Config
	registry     *realtime.Registry
	router       *realtime.Router
	buffer       *feedback.Buffer
	orchestrator *feedback.Orchestrator
	jwtManager   *auth.JWTManager
	startedAt    time.Time
}

// NewHandler creates the API handler.
func NewHandler(
	cfg *config.Config,
	registry *realtime.Registry,
	router *realtime.Router,
	buffer *feedback.Buffer,
	orchestrator *feedback.Orchestrator,
	jwtManager *auth.JWTManager,
) *Handler {
	return &Handler{
		cfg:          cfg,
		registry:     registry,
		router:       router,
		buffer:       buffer,
		orchestrator: orchestrator,
		jwtManager:   jwtManager,
		startedAt:    time.Now().UTC(),
	}
}

// upgrader builds a WebSocket upgrader with origin checking and a
// handshake timeout against slow-client attacks.
func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: h.cfg.Realtime.HandshakeTimeout,
	}
}

// checkWebSocketOrigin validates the Origin header against the
// configured CORS origins. Non-browser clients omit Origin and are
// allowed; authentication still gates the upgrade.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("websocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the request and registers the connection under the
// caller's organization and user from the verified token claims.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication", nil)
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	connID := uuid.New().String()
	client := realtime.NewClient(connID, conn, h.registry, realtime.ClientConfig{
		WriteWait:      h.cfg.Realtime.WriteWait,
		PongWait:       h.cfg.Realtime.PongWait,
		SendBuffer:     h.cfg.Realtime.SendBuffer,
		MaxMessageSize: h.cfg.Realtime.MaxMessageSize,
	})

	if !h.registry.Connect(client, claims.OrganizationID, claims.UserID, connID, claims.Role) {
		conn.Close()
		return
	}
	client.Start()
}

// Health reports liveness plus connection and buffer gauges.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"uptime_sec": int64(time.Since(h.startedAt).Seconds()),
	})
}

// Connections reports the caller's organization connection counts.
func (h *Handler) Connections(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication", nil)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"organization_id":  claims.OrganizationID,
		"connections":      h.registry.ConnectionCount(claims.OrganizationID),
		"user_connections": h.registry.UserConnectionCount(claims.OrganizationID, claims.UserID),
	})
}
