// Package memory provides an in-memory progression store for tests and
// development tooling.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/glimmerhq/progression/internal/progression/storage"
)

// Store keeps progression records and audit events in process memory. Updates
// are serialized by a store-wide mutex, which trivially satisfies the
// per-user serialization the record contract requires.
type Store struct {
	mu      sync.Mutex
	records map[string]storage.Record
	audit   []storage.AuditEvent
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string]storage.Record)}
}

// GetRecord returns one user's record.
func (s *Store) GetRecord(ctx context.Context, userID string) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if s == nil {
		return storage.Record{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Record{}, fmt.Errorf("user id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID]
	if !ok {
		return storage.Record{}, storage.ErrNotFound
	}
	return record.Clone(), nil
}

// UpdateRecord applies one atomic read-modify-write. The transform receives
// the current record, or a fresh default when the user has none.
func (s *Store) UpdateRecord(ctx context.Context, userID string, transform storage.TransformFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if transform == nil {
		return fmt.Errorf("transform is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[userID]
	if !ok {
		current = storage.Record{UserID: userID}
	}
	next, err := transform(current.Clone())
	if err != nil {
		return err
	}
	next.UserID = userID
	s.records[userID] = next.Clone()
	return nil
}

// AppendAuditEvent records one operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("storage is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, evt)
	return nil
}

// ListAuditEvents returns audit events for one user, newest first.
func (s *Store) ListAuditEvents(ctx context.Context, userID string, limit int) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	userID = strings.TrimSpace(userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	var events []storage.AuditEvent
	for i := len(s.audit) - 1; i >= 0 && len(events) < limit; i-- {
		if userID != "" && s.audit[i].UserID != userID {
			continue
		}
		events = append(events, s.audit[i])
	}
	return events, nil
}

// Close releases nothing; it exists to satisfy the combined store contract.
func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)
