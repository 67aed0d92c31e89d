package memory

import (
	"context"
	"sync"
	"time"
)

type AuditEntry struct {
	UserID     string
	Action     string
	Details    map[string]any
	RecordedAt time.Time
}

// AuditRecorder keeps committed roster actions in memory. Used when the
// audit queue is disabled, and in tests to assert on recorded actions.
type AuditRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func NewAuditRecorder() *AuditRecorder {
	return &AuditRecorder{}
}

func (r *AuditRecorder) RecordAction(_ context.Context, userID, action string, details map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, AuditEntry{
		UserID:     userID,
		Action:     action,
		Details:    details,
		RecordedAt: time.Now().UTC(),
	})
}

func (r *AuditRecorder) Entries() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]AuditEntry(nil), r.entries...)
}
