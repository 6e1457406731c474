// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package realtime

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/metrics"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// DefaultQueueCapacity bounds each per-(org,user) outbox.
const DefaultQueueCapacity = 1000

// queueKey identifies one user's outbox. Scoping the key by organization
// first keeps the store tenant-isolated.
type queueKey struct {
	orgID  string
	userID string
}

// QueueStore is the bounded per-(organization, user) outbox for messages
// addressed to users with no live connection. When a queue is at
// capacity, new messages are dropped: the oldest undelivered context is
// the most useful to a reconnecting analyst, so the policy is
// drop-newest. Drops are counted, never errors.
type QueueStore struct {
	mu       sync.Mutex
	queues   map[queueKey][]models.Envelope
	capacity int

	// overflowLog throttles drop warnings so a hot key cannot flood the
	// logs.
	overflowLog *rate.Limiter
	overflows   uint64
}

// NewQueueStore creates a queue store with the given per-key capacity.
// A capacity of 0 uses DefaultQueueCapacity.
func NewQueueStore(capacity int) *QueueStore {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &QueueStore{
		queues:      make(map[queueKey][]models.Envelope),
		capacity:    capacity,
		overflowLog: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// Queue appends the envelope to the user's outbox if the outbox is below
// capacity. Beyond capacity the message is dropped and counted; this is
// deliberate backpressure, not an error.
func (q *QueueStore) Queue(orgID, userID string, env models.Envelope) {
	key := queueKey{orgID: orgID, userID: userID}

	q.mu.Lock()
	if len(q.queues[key]) >= q.capacity {
		q.overflows++
		shouldLog := q.overflowLog.Allow()
		q.mu.Unlock()

		metrics.QueueOverflows.Inc()
		if shouldLog {
			logging.Warn().
				Str("org_id", orgID).
				Str("user_id", userID).
				Msg("offline queue at capacity, dropping message")
		}
		return
	}
	q.queues[key] = append(q.queues[key], env)
	q.mu.Unlock()

	metrics.QueuedMessages.Inc()
}

// Drain removes and returns the user's queued messages in enqueue order.
// A missing key returns nil.
func (q *QueueStore) Drain(orgID, userID string) []models.Envelope {
	key := queueKey{orgID: orgID, userID: userID}

	q.mu.Lock()
	defer q.mu.Unlock()
	messages := q.queues[key]
	delete(q.queues, key)
	return messages
}

// Len returns the current depth of the user's outbox.
func (q *QueueStore) Len(orgID, userID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[queueKey{orgID: orgID, userID: userID}])
}

// Overflows returns the number of messages dropped at capacity since
// creation.
func (q *QueueStore) Overflows() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.overflows
}
