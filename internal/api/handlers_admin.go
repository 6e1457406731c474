// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package api

import (
	"net/http"
	"time"

	"github.com/sentinelshield/sentinelshield/internal/models"
)

// RevokeSessionsRequest is the body of POST /api/v1/admin/sessions/revoke.
type RevokeSessionsRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// RevokeSessions notifies and closes every live connection of the
// target user inside the admin's organization, then broadcasts an audit
// event to the organization's admins.
func (h *Handler) RevokeSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication", nil)
		return
	}

	var req RevokeSessionsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	closed := h.router.BroadcastSessionRevocation(models.SessionRevocation{
		UserID:         req.UserID,
		OrganizationID: claims.OrganizationID,
		Reason:         req.Reason,
		Timestamp:      time.Now().UTC(),
	})

	h.router.BroadcastAudit(models.AuditEvent{
		EventType:      models.AuditEventSessionRevoked,
		ResourceType:   "session",
		UserID:         req.UserID,
		OrganizationID: claims.OrganizationID,
		Timestamp:      time.Now().UTC(),
		Details: map[string]any{
			"revoked_by": claims.UserID,
			"reason":     req.Reason,
		},
	})

	respondData(w, http.StatusOK, map[string]interface{}{
		"user_id":            req.UserID,
		"connections_closed": closed,
	})
}

// NotifyUserRequest is the body of POST /api/v1/admin/notify.
type NotifyUserRequest struct {
	UserID      string                 `json:"user_id" validate:"required,max=128"`
	MessageType string                 `json:"message_type" validate:"required,max=64"`
	Data        map[string]interface{} `json:"data"`
}

// NotifyUser delivers a message to one user in the admin's organization.
// Offline users get the message queued for their next connection.
func (h *Handler) NotifyUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication", nil)
		return
	}

	var req NotifyUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	h.router.NotifyUser(claims.OrganizationID, req.UserID,
		models.NewEnvelope(req.MessageType, req.Data))

	respondData(w, http.StatusAccepted, map[string]interface{}{
		"user_id":   req.UserID,
		"delivered": h.registry.UserConnectionCount(claims.OrganizationID, req.UserID),
	})
}
