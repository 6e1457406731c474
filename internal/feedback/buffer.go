// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package feedback implements the analyst feedback buffer and the
// retraining orchestration state machine built on top of it.
//
// The buffer accumulates analyst corrections of model classifications and
// computes retraining readiness. The orchestrator consumes the buffer
// atomically: the snapshot of unprocessed items and their processed marks
// happen in one critical section, so no feedback item is ever counted
// toward two jobs and feedback arriving mid-trigger lands in the next
// job.
package feedback

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/metrics"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// DefaultRetrainThreshold is the unprocessed-item count that gates
// retraining.
const DefaultRetrainThreshold = 100

// ErrInvalidClassification rejects feedback whose corrected
// classification is not threat, anomaly, or normal.
var ErrInvalidClassification = errors.New("feedback: invalid corrected classification")

// Buffer accumulates analyst corrections and reports retraining
// readiness. All state is guarded by a single mutex; the only long
// critical section is the snapshot+mark in ConsumeForRetraining, which
// must exclude concurrent AddFeedback calls.
type Buffer struct {
	mu        sync.Mutex
	items     []*models.FeedbackItem
	threshold int
	store     Store
}

// NewBuffer creates a feedback buffer. A threshold of 0 uses
// DefaultRetrainThreshold. When a store is supplied, previously persisted
// items are loaded so unprocessed feedback survives restarts.
func NewBuffer(threshold int, store Store) (*Buffer, error) {
	if threshold <= 0 {
		threshold = DefaultRetrainThreshold
	}
	b := &Buffer{
		threshold: threshold,
		store:     store,
	}

	if store != nil {
		items, err := store.LoadFeedback()
		if err != nil {
			return nil, err
		}
		b.items = make([]*models.FeedbackItem, 0, len(items))
		for i := range items {
			item := items[i]
			b.items = append(b.items, &item)
		}
	}

	return b, nil
}

// Threshold returns the configured retraining threshold.
func (b *Buffer) Threshold() int {
	return b.threshold
}

// AddFeedback validates and records one analyst correction. The
// corrected classification must be a known value; an out-of-range
// confidence score is clamped into [0, 1] with a warning rather than
// rejected. CreatedAt and the unprocessed state are stamped here.
func (b *Buffer) AddFeedback(item models.FeedbackItem) error {
	if !item.CorrectedClassification.Valid() {
		metrics.FeedbackRejected.Inc()
		logging.Error().
			Str("classification", string(item.CorrectedClassification)).
			Str("threat_log_id", item.ThreatLogID).
			Msg("invalid corrected classification")
		return ErrInvalidClassification
	}

	if item.ConfidenceScore < 0 || item.ConfidenceScore > 1 {
		logging.Warn().
			Float64("confidence_score", item.ConfidenceScore).
			Str("threat_log_id", item.ThreatLogID).
			Msg("confidence score out of range, clamping to [0, 1]")
		item.ConfidenceScore = math.Max(0, math.Min(1, item.ConfidenceScore))
	}

	item.CreatedAt = time.Now().UTC()
	item.IsProcessed = false
	item.ProcessedAt = nil

	b.mu.Lock()
	b.items = append(b.items, &item)
	unprocessed := b.unprocessedLocked()
	b.mu.Unlock()

	if b.store != nil {
		if err := b.store.SaveFeedback(&item); err != nil {
			logging.Error().Err(err).Str("threat_log_id", item.ThreatLogID).Msg("feedback persist failed")
		}
	}

	metrics.FeedbackReceived.WithLabelValues(string(item.CorrectedClassification)).Inc()
	logging.Info().
		Str("threat_log_id", item.ThreatLogID).
		Str("analyst_id", item.AnalystID).
		Int("unprocessed", unprocessed).
		Int("threshold", b.threshold).
		Msg("feedback added")

	return nil
}

// unprocessedLocked counts unprocessed items. Caller holds b.mu.
func (b *Buffer) unprocessedLocked() int {
	n := 0
	for _, item := range b.items {
		if !item.IsProcessed {
			n++
		}
	}
	return n
}

// ShouldRetrain reports whether the unprocessed count has reached the
// threshold.
func (b *Buffer) ShouldRetrain() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unprocessedLocked() >= b.threshold
}

// UnprocessedCount returns the current unprocessed item count.
func (b *Buffer) UnprocessedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unprocessedLocked()
}

// MarkProcessed flips the processed flag for items matching the given
// threat log IDs and stamps their processed time. Unknown or
// already-processed IDs are no-ops. Returns the number of items actually
// changed.
func (b *Buffer) MarkProcessed(ids []string) int {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	now := time.Now().UTC()

	b.mu.Lock()
	changed := b.markLocked(idSet, now)
	b.mu.Unlock()

	b.persistProcessed(changed)
	return len(changed)
}

// markLocked marks unprocessed items whose ID is in idSet. Caller holds
// b.mu.
func (b *Buffer) markLocked(idSet map[string]struct{}, now time.Time) []*models.FeedbackItem {
	var changed []*models.FeedbackItem
	for _, item := range b.items {
		if item.IsProcessed {
			continue
		}
		if _, ok := idSet[item.ThreatLogID]; !ok {
			continue
		}
		item.IsProcessed = true
		t := now
		item.ProcessedAt = &t
		changed = append(changed, item)
	}
	return changed
}

// ConsumeForRetraining atomically snapshots the IDs of all unprocessed
// items and marks them processed, provided the threshold is met. The
// snapshot and the marks happen under one lock acquisition: feedback
// added concurrently is neither included in the snapshot nor marked.
// Returns ok=false, leaving the buffer untouched, when the count is below
// the threshold.
func (b *Buffer) ConsumeForRetraining() (ids []string, ok bool) {
	now := time.Now().UTC()

	b.mu.Lock()
	if b.unprocessedLocked() < b.threshold {
		b.mu.Unlock()
		return nil, false
	}

	var changed []*models.FeedbackItem
	for _, item := range b.items {
		if item.IsProcessed {
			continue
		}
		item.IsProcessed = true
		t := now
		item.ProcessedAt = &t
		ids = append(ids, item.ThreatLogID)
		changed = append(changed, item)
	}
	b.mu.Unlock()

	b.persistProcessed(changed)
	return ids, true
}

// persistProcessed writes processed-state changes through to the store.
func (b *Buffer) persistProcessed(changed []*models.FeedbackItem) {
	if b.store == nil {
		return
	}
	for _, item := range changed {
		if err := b.store.SaveFeedback(item); err != nil {
			logging.Error().Err(err).Str("threat_log_id", item.ThreatLogID).Msg("feedback persist failed")
		}
	}
}

// Statistics summarizes the buffer. An empty buffer reports zero counts
// and a correction rate of 0.0. The correction rate is the share of items
// where the analyst disagreed with the model, rounded to four decimal
// places.
func (b *Buffer) Statistics() models.FeedbackStatistics {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := len(b.items)
	if total == 0 {
		return models.FeedbackStatistics{
			FeedbackUntilRetrain: b.threshold,
		}
	}

	processed := 0
	corrections := 0
	for _, item := range b.items {
		if item.IsProcessed {
			processed++
		}
		if item.Corrected() {
			corrections++
		}
	}
	unprocessed := total - processed

	rate := float64(corrections) / float64(total)
	rate = math.Round(rate*10000) / 10000

	remaining := b.threshold - unprocessed
	if remaining < 0 {
		remaining = 0
	}

	return models.FeedbackStatistics{
		Total:                total,
		Processed:            processed,
		Unprocessed:          unprocessed,
		CorrectionRate:       rate,
		FeedbackUntilRetrain: remaining,
	}
}

// ClassificationDistribution counts corrected classifications among
// unprocessed items only.
func (b *Buffer) ClassificationDistribution() map[models.Classification]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dist := make(map[models.Classification]int)
	for _, item := range b.items {
		if item.IsProcessed {
			continue
		}
		dist[item.CorrectedClassification]++
	}
	return dist
}

// TrainingLabels exports the numeric training labels of all unprocessed
// items, in insertion order, for the training worker contract.
func (b *Buffer) TrainingLabels() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var labels []float64
	for _, item := range b.items {
		if item.IsProcessed {
			continue
		}
		labels = append(labels, item.CorrectedClassification.Weight())
	}
	return labels
}
