// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package realtime

import (
	"testing"

	"github.com/sentinelshield/sentinelshield/internal/models"
)

func TestQueueStoreDrainOrder(t *testing.T) {
	q := NewQueueStore(10)

	for i := 0; i < 5; i++ {
		q.Queue("org-a", "user-1", models.NewEnvelope(models.MessageTypeThreatDetected, i))
	}

	messages := q.Drain("org-a", "user-1")
	if len(messages) != 5 {
		t.Fatalf("Drain returned %d messages, want 5", len(messages))
	}
	for i, env := range messages {
		if env.Data != i {
			t.Errorf("message %d carried %v, want %d", i, env.Data, i)
		}
	}

	if again := q.Drain("org-a", "user-1"); again != nil {
		t.Errorf("second Drain returned %d messages, want nil", len(again))
	}
}

func TestQueueStoreDropNewestAtCapacity(t *testing.T) {
	q := NewQueueStore(3)

	for i := 0; i < 5; i++ {
		q.Queue("org-a", "user-1", models.NewEnvelope(models.MessageTypeThreatDetected, i))
	}

	if got := q.Len("org-a", "user-1"); got != 3 {
		t.Fatalf("Len = %d, want capacity 3", got)
	}
	if got := q.Overflows(); got != 2 {
		t.Errorf("Overflows = %d, want 2", got)
	}

	// The oldest messages survive; the newest were dropped.
	messages := q.Drain("org-a", "user-1")
	for i, env := range messages {
		if env.Data != i {
			t.Errorf("message %d carried %v, want %d", i, env.Data, i)
		}
	}
}

func TestQueueStoreKeyIsolation(t *testing.T) {
	q := NewQueueStore(10)

	q.Queue("org-a", "user-1", models.NewEnvelope(models.MessageTypeThreatDetected, "a1"))
	q.Queue("org-a", "user-2", models.NewEnvelope(models.MessageTypeThreatDetected, "a2"))
	q.Queue("org-b", "user-1", models.NewEnvelope(models.MessageTypeThreatDetected, "b1"))

	if got := q.Len("org-a", "user-1"); got != 1 {
		t.Errorf("Len(org-a, user-1) = %d, want 1", got)
	}

	messages := q.Drain("org-a", "user-1")
	if len(messages) != 1 || messages[0].Data != "a1" {
		t.Fatal("Drain returned messages from another key")
	}
	if got := q.Len("org-a", "user-2"); got != 1 {
		t.Errorf("draining one user touched a sibling queue")
	}
	if got := q.Len("org-b", "user-1"); got != 1 {
		t.Errorf("draining one org touched another org's queue")
	}
}

func TestQueueStoreDefaultCapacity(t *testing.T) {
	q := NewQueueStore(0)
	if q.capacity != DefaultQueueCapacity {
		t.Errorf("capacity = %d, want %d", q.capacity, DefaultQueueCapacity)
	}
}
