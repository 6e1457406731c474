// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package models defines the domain types shared across SentinelShield:
// threat events produced by the detection pipeline, session revocations,
// audit events, analyst feedback, and retraining jobs.
package models

import "time"

// Severity classifies the impact of a threat event.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity level.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ThreatEvent is an immutable record emitted by the detection pipeline.
// The risk score is produced by the anomaly scorer and is always in [0, 1].
type ThreatEvent struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Timestamp      time.Time `json:"timestamp"`
	SourceIP       string    `json:"source_ip"`
	DestinationIP  string    `json:"destination_ip"`
	Severity       Severity  `json:"severity"`
	RiskScore      float64   `json:"risk_score"`
	Action         string    `json:"action"`
	Resource       string    `json:"resource"`
	UserAgent      string    `json:"user_agent"`
	IsBlocked      bool      `json:"is_blocked"`
	AIFlagged      bool      `json:"ai_flagged"`
}

// SessionRevocation is a one-shot command to terminate all live
// connections of a user within an organization.
type SessionRevocation struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Reason         string    `json:"reason"`
	Timestamp      time.Time `json:"timestamp"`
}

// AuditEvent records a security-relevant action for the organization's
// audit trail. Details is an opaque key-value mapping supplied by the
// producer.
type AuditEvent struct {
	EventType      string         `json:"event_type"`
	ResourceType   string         `json:"resource_type"`
	UserID         string         `json:"user_id,omitempty"`
	OrganizationID string         `json:"organization_id"`
	Timestamp      time.Time      `json:"timestamp"`
	Details        map[string]any `json:"details"`
}

// Audit event types emitted by the core.
const (
	AuditEventSessionRevoked      = "auth.session_revoked"
	AuditEventAPIKeyDeactivated   = "apikey.deactivated"
	AuditEventFeedbackSubmitted   = "feedback.submitted"
	AuditEventRetrainingTriggered = "retraining.triggered"
)
