package roster

import "context"

// AuditSink records committed roster actions for traceability. It is
// fire-and-forget: a sink failure must never roll back a committed mutation.
type AuditSink interface {
	RecordAction(ctx context.Context, userID, action string, details map[string]any)
}
