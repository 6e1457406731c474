// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package realtime implements the tenant-isolated WebSocket broadcast
// subsystem: the connection registry, per-connection heartbeat loops, the
// bounded offline message queue, and the broadcast router.
//
// The registry owns connection lifecycle. Broadcast and flush operations
// resolve their connection set under lock, then deliver outside any lock;
// a send never blocks a registry mutation and one tenant's fan-out never
// blocks another's.
package realtime

import (
	"errors"

	"github.com/sentinelshield/sentinelshield/internal/models"
)

// ErrSendBufferFull is returned by a Transport when the peer's outbound
// buffer is saturated. The caller treats it like any other dead-peer send
// failure.
var ErrSendBufferFull = errors.New("realtime: send buffer full")

// ErrTransportClosed is returned by a Transport after Close.
var ErrTransportClosed = errors.New("realtime: transport closed")

// Transport is the delivery surface of one live connection. The concrete
// implementation is the gorilla-backed Client; tests use in-memory fakes.
//
// Send must not block: it either enqueues the envelope for asynchronous
// delivery or fails fast. A Send error marks the peer dead and is always
// resolved by the caller disconnecting the connection.
type Transport interface {
	Send(env models.Envelope) error
	Close(code int, reason string) error
}
