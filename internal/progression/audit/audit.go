// Package audit records operational events on the progression pipeline so
// swallowed failures stay visible to operators.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/glimmerhq/progression/internal/progression/storage"
)

// Emitter appends audit events to a store, filling in identifiers and
// timestamps the caller left empty. A nil emitter is safe to use and drops
// every event.
type Emitter struct {
	store storage.AuditStore
	clock func() time.Time
}

// NewEmitter creates an emitter backed by the given audit store. When clock is
// nil, time.Now is used.
func NewEmitter(store storage.AuditStore, clock func() time.Time) *Emitter {
	if clock == nil {
		clock = time.Now
	}
	return &Emitter{store: store, clock: clock}
}

// Emit appends one audit event. Failures are logged rather than returned; the
// audit trail must never break the operation it describes.
func (e *Emitter) Emit(ctx context.Context, evt storage.AuditEvent) {
	if e == nil || e.store == nil {
		return
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.clock().UTC()
	}
	if evt.Severity == "" {
		evt.Severity = storage.SeverityInfo
	}
	if err := e.store.AppendAuditEvent(ctx, evt); err != nil {
		log.Printf("append audit event %s for user %s: %v", evt.Kind, evt.UserID, err)
	}
}

// Info emits an informational event for one user.
func (e *Emitter) Info(ctx context.Context, userID, kind, detail string) {
	e.Emit(ctx, storage.AuditEvent{
		UserID:   userID,
		Severity: storage.SeverityInfo,
		Kind:     kind,
		Detail:   detail,
	})
}

// Warn emits a warning event for one user.
func (e *Emitter) Warn(ctx context.Context, userID, kind, detail string) {
	e.Emit(ctx, storage.AuditEvent{
		UserID:   userID,
		Severity: storage.SeverityWarn,
		Kind:     kind,
		Detail:   detail,
	})
}

// Error emits an error event for one user.
func (e *Emitter) Error(ctx context.Context, userID, kind, detail string) {
	e.Emit(ctx, storage.AuditEvent{
		UserID:   userID,
		Severity: storage.SeverityError,
		Kind:     kind,
		Detail:   detail,
	})
}
