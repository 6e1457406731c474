// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/sentinelshield/sentinelshield/internal/config"
	"github.com/sentinelshield/sentinelshield/internal/logging"
)

// EnsureStream provisions the threat event stream before subscribers
// bind to it. Idempotent: an existing stream is updated in place.
func EnsureStream(ctx context.Context, url string, cfg config.NATSConfig) error {
	nc, err := natsgo.Connect(url,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
	)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream context: %w", err)
	}

	streamCfg := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Subjects:    []string{cfg.ThreatSubject},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		Duplicates:  2 * time.Minute,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		AllowDirect: true,
	}

	if _, err := js.Stream(ctx, cfg.StreamName); err == nil {
		if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("update stream %s: %w", cfg.StreamName, err)
		}
		logging.Debug().Str("stream", cfg.StreamName).Msg("threat stream updated")
		return nil
	} else if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("check stream %s: %w", cfg.StreamName, err)
	}

	if _, err := js.CreateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("create stream %s: %w", cfg.StreamName, err)
	}
	logging.Info().
		Str("stream", cfg.StreamName).
		Str("subject", cfg.ThreatSubject).
		Msg("threat stream created")
	return nil
}
