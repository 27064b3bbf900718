package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glimmerhq/progression/internal/progression/storage"
)

type captureStore struct {
	events []storage.AuditEvent
	err    error
}

func (c *captureStore) AppendAuditEvent(_ context.Context, evt storage.AuditEvent) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *captureStore) ListAuditEvents(context.Context, string, int) ([]storage.AuditEvent, error) {
	return nil, nil
}

// TestEmitFillsDefaults assigns an ID and a clock timestamp when the caller
// leaves them empty.
func TestEmitFillsDefaults(t *testing.T) {
	store := &captureStore{}
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	emitter := NewEmitter(store, func() time.Time { return now })

	emitter.Emit(context.Background(), storage.AuditEvent{
		UserID: "user-1",
		Kind:   storage.AuditAchievementUnlocked,
		Detail: "first_snap",
	})

	if len(store.events) != 1 {
		t.Fatalf("got %d events, want 1", len(store.events))
	}
	evt := store.events[0]
	if evt.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if !evt.Timestamp.Equal(now) {
		t.Fatalf("Timestamp = %v, want %v", evt.Timestamp, now)
	}
	if evt.Severity != storage.SeverityInfo {
		t.Fatalf("Severity = %q, want %q", evt.Severity, storage.SeverityInfo)
	}
}

// TestEmitKeepsCallerFields does not overwrite an event the caller filled.
func TestEmitKeepsCallerFields(t *testing.T) {
	store := &captureStore{}
	emitter := NewEmitter(store, nil)
	stamped := time.Date(2024, time.May, 20, 8, 0, 0, 0, time.UTC)

	emitter.Emit(context.Background(), storage.AuditEvent{
		ID:        "evt-fixed",
		UserID:    "user-1",
		Severity:  storage.SeverityError,
		Kind:      storage.AuditActivityDropped,
		Timestamp: stamped,
	})

	evt := store.events[0]
	if evt.ID != "evt-fixed" {
		t.Fatalf("ID = %q, want evt-fixed", evt.ID)
	}
	if !evt.Timestamp.Equal(stamped) {
		t.Fatalf("Timestamp = %v, want %v", evt.Timestamp, stamped)
	}
	if evt.Severity != storage.SeverityError {
		t.Fatalf("Severity = %q, want %q", evt.Severity, storage.SeverityError)
	}
}

// TestSeverityHelpers map to the matching severity levels.
func TestSeverityHelpers(t *testing.T) {
	store := &captureStore{}
	emitter := NewEmitter(store, nil)
	ctx := context.Background()

	emitter.Info(ctx, "user-1", storage.AuditAchievementUnlocked, "first_snap")
	emitter.Warn(ctx, "user-1", storage.AuditCheckFailed, "record missing")
	emitter.Error(ctx, "user-1", storage.AuditActivityDropped, "store unavailable")

	if len(store.events) != 3 {
		t.Fatalf("got %d events, want 3", len(store.events))
	}
	want := []storage.Severity{storage.SeverityInfo, storage.SeverityWarn, storage.SeverityError}
	for i, severity := range want {
		if store.events[i].Severity != severity {
			t.Fatalf("event %d severity = %q, want %q", i, store.events[i].Severity, severity)
		}
	}
}

// TestEmitSwallowsStoreError never propagates append failures.
func TestEmitSwallowsStoreError(t *testing.T) {
	store := &captureStore{err: errors.New("disk full")}
	emitter := NewEmitter(store, nil)

	emitter.Emit(context.Background(), storage.AuditEvent{UserID: "user-1", Kind: storage.AuditCheckFailed})
}

// TestNilEmitterIsNoOp tolerates a nil receiver.
func TestNilEmitterIsNoOp(t *testing.T) {
	var emitter *Emitter
	emitter.Emit(context.Background(), storage.AuditEvent{UserID: "user-1"})
	emitter.Info(context.Background(), "user-1", storage.AuditAchievementUnlocked, "")
}
