// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

const (
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultSendBuffer     = 256
	defaultMaxMessageSize = 512 * 1024 // 512 KB
)

// ClientConfig tunes the transport pumps.
type ClientConfig struct {
	// WriteWait bounds a single socket write.
	WriteWait time.Duration

	// PongWait bounds the silence tolerated from the peer. The protocol
	// ping period is derived from it; the application-level heartbeat
	// envelope is separate and owned by the registry.
	PongWait time.Duration

	// SendBuffer is the outbound channel size. A full buffer fails the
	// send, which reaps the connection.
	SendBuffer int

	// MaxMessageSize bounds inbound frames.
	MaxMessageSize int64
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaultWriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}
}

// Client adapts one gorilla WebSocket connection to the Transport
// interface. Writes are serialized through a buffered channel drained by
// a single write pump; the read pump exists to process control frames and
// detect peer disconnects.
type Client struct {
	id       string
	conn     *websocket.Conn
	registry *Registry
	cfg      ClientConfig

	send chan models.Envelope

	closeOnce sync.Once
	closed    chan struct{}
}

// NewClient wraps an upgraded connection. The connection ID must match
// the one registered with the registry.
func NewClient(connID string, conn *websocket.Conn, registry *Registry, cfg ClientConfig) *Client {
	cfg.applyDefaults()
	return &Client{
		id:       connID,
		conn:     conn,
		registry: registry,
		cfg:      cfg,
		send:     make(chan models.Envelope, cfg.SendBuffer),
		closed:   make(chan struct{}),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string {
	return c.id
}

// Send enqueues an envelope for delivery. It never blocks: a saturated
// buffer or a closed transport fails immediately and the caller reaps the
// connection.
func (c *Client) Send(env models.Envelope) error {
	select {
	case <-c.closed:
		return ErrTransportClosed
	default:
	}

	select {
	case c.send <- env:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close writes a close control frame with the given code, best effort,
// then closes the underlying socket. Safe to call multiple times.
func (c *Client) Close(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		deadline := time.Now().Add(c.cfg.WriteWait)
		msg := websocket.FormatCloseMessage(code, reason)
		if werr := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); werr != nil {
			logging.Debug().Err(werr).Str("conn_id", c.id).Msg("close frame write failed")
		}
		err = c.conn.Close()
	})
	return err
}

// Start launches the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump consumes inbound frames until the peer goes away, then
// removes the connection from the registry. Clients are not expected to
// send application messages; inbound payloads are discarded.
func (c *Client) readPump() {
	defer func() {
		c.registry.Disconnect(c.id)
		_ = c.Close(websocket.CloseNormalClosure, "")
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.ClosePolicyViolation) {
				logging.Error().Err(err).Str("conn_id", c.id).Msg("unexpected websocket close")
			}
			return
		}
	}
}

// writePump drains the send channel to the socket and keeps the protocol
// ping/pong alive. A write error terminates the pump; the read pump then
// observes the closed socket and unregisters the connection.
func (c *Client) writePump() {
	pingPeriod := (c.cfg.PongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close(websocket.CloseNormalClosure, "")
	}()

	for {
		select {
		case <-c.closed:
			return

		case env := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to set write deadline")
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to write envelope")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
