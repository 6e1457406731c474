// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package realtime

import (
	"github.com/gorilla/websocket"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/metrics"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// Router fans typed events out to registry-selected connections.
//
// No broadcast returns an error for partial delivery failure: transport
// errors are resolved by disconnecting the offending peer, and a
// broadcast to an organization with zero connections is a no-op.
type Router struct {
	registry  *Registry
	adminRole string
}

// NewRouter creates a broadcast router over the registry. adminRole is
// the connection role that receives audit envelopes; empty disables the
// filter and audits fan out to every connection in the organization.
func NewRouter(registry *Registry, adminRole string) *Router {
	return &Router{
		registry:  registry,
		adminRole: adminRole,
	}
}

// BroadcastThreat delivers a threat event to every connection in the
// event's organization. Send failures are collected during the fan-out
// and the failing connections are disconnected only after it completes,
// so one broken peer cannot block delivery to the rest and each failure
// is reaped exactly once.
func (rt *Router) BroadcastThreat(event models.ThreatEvent) {
	conns := rt.registry.connectionsForOrg(event.OrganizationID)
	if len(conns) == 0 {
		logging.Debug().
			Str("org_id", event.OrganizationID).
			Msg("no active connections for threat broadcast")
		return
	}

	metrics.BroadcastsTotal.WithLabelValues(models.MessageTypeThreatDetected).Inc()
	env := models.NewEnvelope(models.MessageTypeThreatDetected, event)

	var failed []*conn
	for _, c := range conns {
		if err := c.transport.Send(env); err != nil {
			logging.Error().
				Err(err).
				Str("org_id", c.orgID).
				Str("conn_id", c.id).
				Msg("threat broadcast send failed")
			failed = append(failed, c)
			continue
		}
		rt.registry.touch(c)
		metrics.BroadcastDeliveries.WithLabelValues(models.MessageTypeThreatDetected).Inc()
	}

	rt.reap(failed)
}

// BroadcastSessionRevocation is the kill switch: it targets only the
// revoked user's connections within the organization, sends the
// revocation envelope, forcibly closes each transport with a policy
// violation code, and removes it from the registry, in that order. Close
// and disconnect happen even when the send fails, so no live connection
// for the user survives the call. Returns the number of connections
// closed.
func (rt *Router) BroadcastSessionRevocation(rev models.SessionRevocation) int {
	conns := rt.registry.connectionsForUser(rev.OrganizationID, rev.UserID)
	if len(conns) == 0 {
		return 0
	}

	metrics.BroadcastsTotal.WithLabelValues(models.MessageTypeSessionRevoked).Inc()
	env := models.NewEnvelope(models.MessageTypeSessionRevoked, map[string]any{
		"reason":    rev.Reason,
		"timestamp": rev.Timestamp,
	})

	closed := 0
	for _, c := range conns {
		if err := c.transport.Send(env); err != nil {
			logging.Error().
				Err(err).
				Str("conn_id", c.id).
				Msg("revocation notice send failed")
		}
		if err := c.transport.Close(websocket.ClosePolicyViolation, "session revoked"); err != nil {
			logging.Debug().Err(err).Str("conn_id", c.id).Msg("transport close failed")
		}
		rt.registry.Disconnect(c.id)
		closed++
	}

	logging.Info().
		Str("org_id", rev.OrganizationID).
		Str("user_id", rev.UserID).
		Str("reason", rev.Reason).
		Int("connections_closed", closed).
		Msg("session revoked")

	return closed
}

// BroadcastAudit delivers an audit event to the organization's admin
// connections. Non-admin connections never receive audit envelopes; the
// role was verified at admission.
func (rt *Router) BroadcastAudit(event models.AuditEvent) {
	conns := rt.registry.connectionsForOrg(event.OrganizationID)
	if len(conns) == 0 {
		return
	}

	metrics.BroadcastsTotal.WithLabelValues(models.MessageTypeAuditLog).Inc()
	env := models.NewEnvelope(models.MessageTypeAuditLog, event)

	var failed []*conn
	for _, c := range conns {
		if rt.adminRole != "" && c.role != rt.adminRole {
			continue
		}
		if err := c.transport.Send(env); err != nil {
			logging.Error().
				Err(err).
				Str("conn_id", c.id).
				Msg("audit broadcast send failed")
			failed = append(failed, c)
			continue
		}
		metrics.BroadcastDeliveries.WithLabelValues(models.MessageTypeAuditLog).Inc()
	}

	rt.reap(failed)
}

// SendPersonal delivers an envelope to a single connection. Returns false
// if the connection is unknown or the send failed; a failed send reaps
// the connection.
func (rt *Router) SendPersonal(connID string, env models.Envelope) bool {
	c := rt.registry.lookup(connID)
	if c == nil {
		return false
	}
	if err := c.transport.Send(env); err != nil {
		logging.Error().
			Err(err).
			Str("conn_id", connID).
			Msg("personal send failed")
		rt.reap([]*conn{c})
		return false
	}
	rt.registry.touch(c)
	return true
}

// NotifyUser delivers an envelope to every live connection of the user,
// or queues it in the offline outbox when the user has none.
func (rt *Router) NotifyUser(orgID, userID string, env models.Envelope) {
	conns := rt.registry.connectionsForUser(orgID, userID)
	if len(conns) == 0 {
		rt.registry.QueueForUser(orgID, userID, env)
		return
	}

	var failed []*conn
	for _, c := range conns {
		if err := c.transport.Send(env); err != nil {
			failed = append(failed, c)
		}
	}
	rt.reap(failed)
}

// reap disconnects connections whose sends failed, closing their
// transports best effort. Each connection is disconnected exactly once;
// Disconnect is idempotent for races with the heartbeat supervisor.
func (rt *Router) reap(failed []*conn) {
	for _, c := range failed {
		metrics.SendFailures.Inc()
		if err := c.transport.Close(websocket.CloseGoingAway, "send failure"); err != nil {
			logging.Debug().Err(err).Str("conn_id", c.id).Msg("transport close failed")
		}
		rt.registry.Disconnect(c.id)
	}
}
