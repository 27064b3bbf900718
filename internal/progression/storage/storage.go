// Package storage defines persistence contracts for per-user progression
// records and the operational audit trail.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/glimmerhq/progression/internal/progression/domain"
)

// ErrNotFound indicates a requested user record is missing.
var ErrNotFound = errors.New("record not found")

// Record stores one user's cumulative stats plus the append-only set of
// granted achievements. A user has at most one record.
type Record struct {
	UserID    string
	Stats     domain.UserStats
	Unlocked  []domain.Unlock
	UpdatedAt time.Time
}

// Clone returns a deep copy so callers cannot mutate store-held state.
func (r Record) Clone() Record {
	out := r
	if len(r.Unlocked) > 0 {
		out.Unlocked = make([]domain.Unlock, len(r.Unlocked))
		copy(out.Unlocked, r.Unlocked)
	}
	return out
}

// HasUnlock reports whether the record already holds an achievement ID.
func (r Record) HasUnlock(achievementID string) bool {
	for _, unlock := range r.Unlocked {
		if unlock.AchievementID == achievementID {
			return true
		}
	}
	return false
}

// TransformFunc receives the current record (or a fresh default) and returns
// the value to persist. Implementations run it at most once per update.
type TransformFunc func(Record) (Record, error)

// RecordStore persists per-user progression records. UpdateRecord is the
// atomic read-modify-write every stats mutation and achievement grant flows
// through; implementations serialize updates per user against concurrent
// callers.
type RecordStore interface {
	GetRecord(ctx context.Context, userID string) (Record, error)
	UpdateRecord(ctx context.Context, userID string, transform TransformFunc) error
}

// Severity describes the audit severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Audit event kinds recorded by the tracking pipeline.
const (
	AuditActivityDropped     = "activity_dropped"
	AuditCheckFailed         = "check_failed"
	AuditAchievementUnlocked = "achievement_unlocked"
)

// AuditEvent is one operational event: a dropped activity, a failed
// achievement check, or a grant.
type AuditEvent struct {
	ID        string
	UserID    string
	Severity  Severity
	Kind      string
	Detail    string
	Timestamp time.Time
}

// AuditStore persists the operational audit trail.
type AuditStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
	ListAuditEvents(ctx context.Context, userID string, limit int) ([]AuditEvent, error)
}

// Store combines the persistence capabilities one backend provides.
type Store interface {
	RecordStore
	AuditStore
	Close() error
}
