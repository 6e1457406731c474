// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package feedback

import (
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/sentinelshield/sentinelshield/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	feedbackKeyPrefix = "feedback:"
	jobKeyPrefix      = "job:"
)

// feedbackStoreKey builds the storage key for an item. The creation time
// disambiguates repeated corrections of the same threat log entry; the
// key is stable across processed-state updates because CreatedAt never
// changes after AddFeedback.
func feedbackStoreKey(item *models.FeedbackItem) string {
	return item.ThreatLogID + ":" + strconv.FormatInt(item.CreatedAt.UnixNano(), 10)
}

// BadgerStore implements Store using BadgerDB for durable storage.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a badger database at dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's interface logger is noisy; zerolog covers operations
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreFromDB wraps an already-open database, used when the
// process shares one badger instance across stores.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// SaveFeedback upserts one feedback item.
func (s *BadgerStore) SaveFeedback(item *models.FeedbackItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	key := []byte(feedbackKeyPrefix + feedbackStoreKey(item))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// LoadFeedback returns every stored feedback item.
func (s *BadgerStore) LoadFeedback() ([]models.FeedbackItem, error) {
	var items []models.FeedbackItem
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(feedbackKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var item models.FeedbackItem
				if err := json.Unmarshal(val, &item); err != nil {
					return fmt.Errorf("unmarshal feedback: %w", err)
				}
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SaveJob upserts one retraining job.
func (s *BadgerStore) SaveJob(job *models.RetrainingJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	key := []byte(jobKeyPrefix + job.JobID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// LoadJobs returns every stored retraining job.
func (s *BadgerStore) LoadJobs() ([]models.RetrainingJob, error) {
	var jobs []models.RetrainingJob
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var job models.RetrainingJob
				if err := json.Unmarshal(val, &job); err != nil {
					return fmt.Errorf("unmarshal job: %w", err)
				}
				jobs = append(jobs, job)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
