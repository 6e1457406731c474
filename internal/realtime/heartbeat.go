// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package realtime

import (
	"time"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/metrics"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// runHeartbeat is the per-connection liveness loop. Every interval it
// delivers a heartbeat envelope to the connection. A single delivery
// failure is terminal: the connection is removed from the registry and
// the loop exits; the client must reconnect.
//
// The loop terminates through two paths: the stop channel, closed by
// Disconnect so a reaped connection never waits out a full interval, and
// the registry existence check at each wake, which covers any path that
// removed the connection without the signal.
func (r *Registry) runHeartbeat(c *conn) {
	ticker := time.NewTicker(r.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if !r.alive(c.id) {
				return
			}

			env := models.NewEnvelope(models.MessageTypeHeartbeat, nil)
			if err := c.transport.Send(env); err != nil {
				metrics.HeartbeatFailures.Inc()
				logging.Warn().
					Err(err).
					Str("org_id", c.orgID).
					Str("conn_id", c.id).
					Msg("heartbeat delivery failed, reaping connection")
				r.Disconnect(c.id)
				return
			}
			r.touch(c)
		}
	}
}
