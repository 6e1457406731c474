// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package realtime

import (
	"sync"
	"time"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/metrics"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// conn is one live connection. Identity is (orgID, userID, id); the
// registry is its exclusive owner.
type conn struct {
	id     string
	orgID  string
	userID string
	role   string

	transport Transport

	connectedAt time.Time

	// lastHeartbeat is guarded by the owning shard's mutex.
	lastHeartbeat time.Time

	// stop cancels the heartbeat loop without waiting out an interval.
	stop     chan struct{}
	stopOnce sync.Once
}

func (c *conn) signalStop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// orgShard holds all connections of one organization. Each shard carries
// its own mutex so one tenant's churn never contends with another's.
type orgShard struct {
	mu     sync.RWMutex
	conns  map[string]*conn            // connID -> conn
	byUser map[string]map[string]*conn // userID -> connID -> conn
}

func newOrgShard() *orgShard {
	return &orgShard{
		conns:  make(map[string]*conn),
		byUser: make(map[string]map[string]*conn),
	}
}

// Registry tracks live connections keyed by (organization, user,
// connection). Every lookup is scoped by organization first; no read or
// write ever crosses an organization boundary.
type Registry struct {
	// mu guards the shard map and the flat byID index. Critical sections
	// under mu are map operations only, never sends.
	mu     sync.RWMutex
	shards map[string]*orgShard
	byID   map[string]*conn

	queue             *QueueStore
	heartbeatInterval time.Duration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithHeartbeatInterval overrides the default 30s heartbeat interval.
func WithHeartbeatInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.heartbeatInterval = d
		}
	}
}

// NewRegistry creates a connection registry backed by the given offline
// queue store.
func NewRegistry(queue *QueueStore, opts ...RegistryOption) *Registry {
	r := &Registry{
		shards:            make(map[string]*orgShard),
		byID:              make(map[string]*conn),
		queue:             queue,
		heartbeatInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// shard returns the organization's shard, creating it if needed.
func (r *Registry) shard(orgID string) *orgShard {
	r.mu.RLock()
	s, ok := r.shards[orgID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.shards[orgID]; ok {
		return s
	}
	s = newOrgShard()
	r.shards[orgID] = s
	return s
}

// Connect registers a new live connection under (orgID, userID). The
// transport handshake has already succeeded and the identity pair is
// trusted. Any messages queued for the user are flushed to every live
// connection of that user, in enqueue order, and the queue entry cleared.
// A heartbeat loop scoped to the connection is started.
//
// A connection ID, once removed, never reappears; callers allocate a
// fresh ID per handshake. Connect refuses an ID that is currently live.
func (r *Registry) Connect(t Transport, orgID, userID, connID, role string) bool {
	now := time.Now().UTC()
	c := &conn{
		id:            connID,
		orgID:         orgID,
		userID:        userID,
		role:          role,
		transport:     t,
		connectedAt:   now,
		lastHeartbeat: now,
		stop:          make(chan struct{}),
	}

	r.mu.Lock()
	if _, exists := r.byID[connID]; exists {
		r.mu.Unlock()
		logging.Warn().
			Str("conn_id", connID).
			Str("org_id", orgID).
			Msg("duplicate connection id rejected")
		return false
	}
	r.byID[connID] = c
	s, ok := r.shards[orgID]
	if !ok {
		s = newOrgShard()
		r.shards[orgID] = s
	}
	r.mu.Unlock()

	s.mu.Lock()
	s.conns[connID] = c
	userConns, ok := s.byUser[userID]
	if !ok {
		userConns = make(map[string]*conn)
		s.byUser[userID] = userConns
	}
	userConns[connID] = c
	s.mu.Unlock()

	metrics.ConnectionsActive.Inc()
	metrics.ConnectionsTotal.Inc()

	logging.Info().
		Str("org_id", orgID).
		Str("user_id", userID).
		Str("conn_id", connID).
		Msg("websocket connected")

	// Flush happens after registration so the new connection is included
	// in the delivery set. Sends run outside all locks.
	r.flushQueue(orgID, userID)

	go r.runHeartbeat(c)

	return true
}

// Disconnect removes a connection from the registry and cancels its
// heartbeat loop. It is idempotent and safe to call concurrently from
// broadcast failure paths and the heartbeat supervisor; calling it for an
// unknown ID is a no-op.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	c, ok := r.byID[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byID, connID)
	s := r.shards[c.orgID]
	r.mu.Unlock()

	if s != nil {
		s.mu.Lock()
		delete(s.conns, connID)
		if userConns, ok := s.byUser[c.userID]; ok {
			delete(userConns, connID)
			if len(userConns) == 0 {
				delete(s.byUser, c.userID)
			}
		}
		s.mu.Unlock()
	}

	c.signalStop()
	metrics.ConnectionsActive.Dec()

	logging.Info().
		Str("org_id", c.orgID).
		Str("user_id", c.userID).
		Str("conn_id", connID).
		Msg("websocket disconnected")
}

// alive reports whether the connection is still registered.
func (r *Registry) alive(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[connID]
	return ok
}

// lookup returns the live connection for connID, or nil.
func (r *Registry) lookup(connID string) *conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[connID]
}

// ConnectionCount returns the number of live connections in the
// organization.
func (r *Registry) ConnectionCount(orgID string) int {
	r.mu.RLock()
	s, ok := r.shards[orgID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// UserConnectionCount returns the number of live connections for one user
// within the organization.
func (r *Registry) UserConnectionCount(orgID, userID string) int {
	r.mu.RLock()
	s, ok := r.shards[orgID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser[userID])
}

// connectionsForOrg returns a point-in-time snapshot of every connection
// in the organization. The caller delivers outside any lock.
func (r *Registry) connectionsForOrg(orgID string) []*conn {
	r.mu.RLock()
	s, ok := r.shards[orgID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out
}

// connectionsForUser returns a snapshot of the user's connections within
// the organization.
func (r *Registry) connectionsForUser(orgID, userID string) []*conn {
	r.mu.RLock()
	s, ok := r.shards[orgID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	userConns := s.byUser[userID]
	out := make([]*conn, 0, len(userConns))
	for _, c := range userConns {
		out = append(out, c)
	}
	return out
}

// touch refreshes the connection's liveness timestamp after a successful
// delivery.
func (r *Registry) touch(c *conn) {
	r.mu.RLock()
	s, ok := r.shards[c.orgID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	s.mu.Lock()
	c.lastHeartbeat = time.Now().UTC()
	s.mu.Unlock()
}

// flushQueue delivers the user's queued messages to every live connection
// for (orgID, userID), oldest first, then clears the queue entry.
// Delivery is best effort: a failure to one connection skips the rest of
// that connection's backlog but does not affect siblings or the flush.
func (r *Registry) flushQueue(orgID, userID string) {
	if r.queue == nil {
		return
	}
	messages := r.queue.Drain(orgID, userID)
	if len(messages) == 0 {
		return
	}

	conns := r.connectionsForUser(orgID, userID)
	for _, c := range conns {
		for _, env := range messages {
			if err := c.transport.Send(env); err != nil {
				logging.Error().
					Err(err).
					Str("conn_id", c.id).
					Msg("queue flush delivery failed")
				break
			}
			metrics.QueueFlushed.Inc()
		}
	}

	logging.Info().
		Str("org_id", orgID).
		Str("user_id", userID).
		Int("messages", len(messages)).
		Msg("flushed queued messages")
}

// QueueForUser appends an envelope to the user's offline outbox. It is
// used by callers that target a user with no live connections.
func (r *Registry) QueueForUser(orgID, userID string, env models.Envelope) {
	if r.queue != nil {
		r.queue.Queue(orgID, userID, env)
	}
}
