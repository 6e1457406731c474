// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package models

import "time"

// Classification is an analyst's verdict on a threat log entry.
type Classification string

const (
	ClassificationThreat  Classification = "threat"
	ClassificationAnomaly Classification = "anomaly"
	ClassificationNormal  Classification = "normal"
)

// Valid reports whether c is a known classification.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationThreat, ClassificationAnomaly, ClassificationNormal:
		return true
	}
	return false
}

// Weight returns the numeric training label for the classification:
// threat=1.0, anomaly=0.5, normal=0.0. Unknown classifications map to 0.
func (c Classification) Weight() float64 {
	switch c {
	case ClassificationThreat:
		return 1.0
	case ClassificationAnomaly:
		return 0.5
	default:
		return 0.0
	}
}

// FeedbackItem is an analyst correction of a model classification.
// Items are created unprocessed and flipped to processed exactly once,
// atomically with the retraining job that consumes them.
type FeedbackItem struct {
	ThreatLogID             string         `json:"threat_log_id"`
	OriginalClassification  Classification `json:"original_classification"`
	CorrectedClassification Classification `json:"corrected_classification"`
	ConfidenceScore         float64        `json:"confidence_score"`
	Reason                  string         `json:"reason"`
	AnalystID               string         `json:"analyst_id"`
	CreatedAt               time.Time      `json:"created_at"`
	IsProcessed             bool           `json:"is_processed"`
	ProcessedAt             *time.Time     `json:"processed_at,omitempty"`
}

// Corrected reports whether the analyst disagreed with the model.
func (f *FeedbackItem) Corrected() bool {
	return f.OriginalClassification != f.CorrectedClassification
}

// FeedbackStatistics summarizes the state of a feedback buffer.
type FeedbackStatistics struct {
	Total                int     `json:"total_feedback"`
	Processed            int     `json:"processed"`
	Unprocessed          int     `json:"unprocessed"`
	CorrectionRate       float64 `json:"correction_rate"`
	FeedbackUntilRetrain int     `json:"feedback_until_retrain"`
}
