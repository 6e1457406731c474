// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package ingest consumes threat detection events from NATS JetStream
// and forwards them to the realtime broadcast layer. The detection
// pipeline publishes to threats.detected.<org_id>; this package is the
// bridge from that stream to connected WebSocket clients.
package ingest

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/metrics"
	"github.com/sentinelshield/sentinelshield/internal/models"
	"github.com/sentinelshield/sentinelshield/internal/realtime"
)

// Bridge subscribes to the threat subject and broadcasts each event to
// the publishing organization's connections.
//
// Bridge implements suture.Service.
type Bridge struct {
	subscriber *Subscriber
	router     *realtime.Router
	topic      string
}

// NewBridge creates a bridge from subscriber to router for topic.
func NewBridge(subscriber *Subscriber, router *realtime.Router, topic string) *Bridge {
	return &Bridge{
		subscriber: subscriber,
		router:     router,
		topic:      topic,
	}
}

// Serve consumes messages until ctx is canceled. Malformed events are
// acked and dropped so they cannot poison the stream; broadcast itself
// cannot fail, so every well-formed event is acked.
func (b *Bridge) Serve(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.topic, err)
	}

	logging.Info().Str("topic", b.topic).Msg("threat ingest started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription to %s closed", b.topic)
			}
			b.process(msg)
		}
	}
}

func (b *Bridge) process(msg *message.Message) {
	var event models.ThreatEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		metrics.IngestEvents.WithLabelValues("malformed").Inc()
		logging.Error().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("dropping malformed threat event")
		msg.Ack()
		return
	}
	if event.OrganizationID == "" {
		metrics.IngestEvents.WithLabelValues("malformed").Inc()
		logging.Error().
			Str("message_uuid", msg.UUID).
			Msg("dropping threat event without organization")
		msg.Ack()
		return
	}

	b.router.BroadcastThreat(event)
	metrics.IngestEvents.WithLabelValues("broadcast").Inc()
	msg.Ack()
}

// String implements fmt.Stringer for supervisor logging.
func (b *Bridge) String() string {
	return "threat-ingest"
}
