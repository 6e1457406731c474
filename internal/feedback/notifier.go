// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package feedback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// TrainerConfig configures the webhook that tells the external training
// worker a retraining job is ready.
type TrainerConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Timeout time.Duration     `json:"timeout"`
}

// trainerPayload is the JSON body POSTed to the training worker.
type trainerPayload struct {
	Job       *models.RetrainingJob `json:"job"`
	EventType string                `json:"event_type"` // retraining_job_created
	Timestamp time.Time             `json:"timestamp"`
	Source    string                `json:"source"` // sentinelshield
}

// TrainerNotifier dispatches retraining jobs to the training worker over
// HTTP. A circuit breaker stops hammering the worker while it is down;
// callers treat dispatch failures as non-fatal because the worker also
// polls job state.
type TrainerNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewTrainerNotifier creates a notifier for cfg.URL. Returns nil when no
// URL is configured, which disables dispatch entirely.
func NewTrainerNotifier(cfg TrainerConfig) *TrainerNotifier {
	if cfg.URL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	settings := gobreaker.Settings{
		Name:        "trainer-webhook",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("trainer webhook breaker state change")
		},
	}

	return &TrainerNotifier{
		url:     cfg.URL,
		headers: headers,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Dispatch notifies the training worker about a newly created job.
func (n *TrainerNotifier) Dispatch(ctx context.Context, job *models.RetrainingJob) error {
	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.post(ctx, job)
	})
	return err
}

func (n *TrainerNotifier) post(ctx context.Context, job *models.RetrainingJob) error {
	payload := trainerPayload{
		Job:       job,
		EventType: "retraining_job_created",
		Timestamp: time.Now().UTC(),
		Source:    "sentinelshield",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal trainer payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create trainer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range n.headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send trainer request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode >= 400 {
		return fmt.Errorf("trainer returned status %d", resp.StatusCode)
	}
	return nil
}
