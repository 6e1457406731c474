// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package feedback

import (
	"sync"

	"github.com/sentinelshield/sentinelshield/internal/models"
)

// Store persists feedback items and retraining jobs so buffer state and
// job history survive restarts. Save calls are upserts keyed by the
// item's threat log ID (plus creation time) and the job's ID.
type Store interface {
	SaveFeedback(item *models.FeedbackItem) error
	LoadFeedback() ([]models.FeedbackItem, error)
	SaveJob(job *models.RetrainingJob) error
	LoadJobs() ([]models.RetrainingJob, error)
	Close() error
}

// MemoryStore is an in-memory Store for tests and persistence-disabled
// deployments.
type MemoryStore struct {
	mu       sync.Mutex
	feedback map[string]models.FeedbackItem
	jobs     map[string]models.RetrainingJob
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		feedback: make(map[string]models.FeedbackItem),
		jobs:     make(map[string]models.RetrainingJob),
	}
}

// SaveFeedback stores a copy of the item.
func (s *MemoryStore) SaveFeedback(item *models.FeedbackItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback[feedbackStoreKey(item)] = *item
	return nil
}

// LoadFeedback returns all stored items.
func (s *MemoryStore) LoadFeedback() ([]models.FeedbackItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FeedbackItem, 0, len(s.feedback))
	for _, item := range s.feedback {
		out = append(out, item)
	}
	return out, nil
}

// SaveJob stores a copy of the job.
func (s *MemoryStore) SaveJob(job *models.RetrainingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = *job
	return nil
}

// LoadJobs returns all stored jobs.
func (s *MemoryStore) LoadJobs() ([]models.RetrainingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RetrainingJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
