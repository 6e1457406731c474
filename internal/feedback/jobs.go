// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package feedback

import (
	"sync"

	"github.com/sentinelshield/sentinelshield/internal/models"
)

// jobIndex holds retraining jobs in creation order with ID lookup.
type jobIndex struct {
	mu    sync.RWMutex
	order []*models.RetrainingJob
	byID  map[string]*models.RetrainingJob
}

func (j *jobIndex) init() {
	j.byID = make(map[string]*models.RetrainingJob)
}

func (j *jobIndex) add(job *models.RetrainingJob) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.byID[job.JobID]; ok {
		return
	}
	j.order = append(j.order, job)
	j.byID[job.JobID] = job
}

// update applies fn to the job under the lock. Returns a copy of the job
// after fn ran, and fn's result; nil when the ID is unknown.
func (j *jobIndex) update(jobID string, fn func(*models.RetrainingJob) bool) (*models.RetrainingJob, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.byID[jobID]
	if !ok {
		return nil, false
	}
	changed := fn(job)
	cp := *job
	return &cp, changed
}

func (j *jobIndex) get(jobID string) (models.RetrainingJob, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	job, ok := j.byID[jobID]
	if !ok {
		return models.RetrainingJob{}, false
	}
	return *job, true
}

func (j *jobIndex) snapshot() []models.RetrainingJob {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]models.RetrainingJob, 0, len(j.order))
	for _, job := range j.order {
		out = append(out, *job)
	}
	return out
}

func (j *jobIndex) aggregate() models.RetrainingStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var s models.RetrainingStatus
	s.TotalJobs = len(j.order)
	for _, job := range j.order {
		switch job.Status {
		case models.JobStatusPending:
			s.Pending++
		case models.JobStatusRunning:
			s.Running++
		case models.JobStatusCompleted:
			s.Completed++
		case models.JobStatusFailed:
			s.Failed++
		}
	}
	if n := len(j.order); n > 0 {
		last := *j.order[n-1]
		s.LastJob = &last
	}
	return s
}
