// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package models

import "time"

// Envelope message types pushed to connected clients. Clients must ignore
// unknown types for forward compatibility.
const (
	MessageTypeThreatDetected = "threat_detected"
	MessageTypeSessionRevoked = "session_revoked"
	MessageTypeAuditLog       = "audit_log"
	MessageTypeHeartbeat      = "heartbeat"
)

// Envelope is the wire shape of every message sent to a client. Type
// discriminates the payload carried in Data.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEnvelope wraps a payload with its type and the current time.
func NewEnvelope(messageType string, data any) Envelope {
	return Envelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
