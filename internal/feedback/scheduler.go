// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package feedback

import (
	"context"
	"time"

	"github.com/sentinelshield/sentinelshield/internal/logging"
)

// DefaultCheckInterval is how often the scheduler checks the buffer when
// no interval is configured.
const DefaultCheckInterval = 30 * time.Second

// Scheduler periodically checks whether the feedback buffer has reached
// its retraining threshold and triggers a job when it has. Retraining is
// also triggered synchronously through the API; the scheduler covers
// deployments where nobody calls the trigger endpoint.
//
// Scheduler implements suture.Service.
type Scheduler struct {
	orchestrator *Orchestrator
	interval     time.Duration
}

// NewScheduler creates a scheduler that checks every interval.
func NewScheduler(orchestrator *Orchestrator, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Scheduler{
		orchestrator: orchestrator,
		interval:     interval,
	}
}

// Serve runs the check loop until ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", s.interval).
		Msg("retraining scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("retraining scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if s.orchestrator.TriggerRetraining() {
				logging.Info().Msg("scheduled retraining triggered")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Scheduler) String() string {
	return "retraining-scheduler"
}
