// Package bolt provides a BoltDB-backed progression storage implementation.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/glimmerhq/progression/internal/progression/domain"
	"github.com/glimmerhq/progression/internal/progression/storage"
	"go.etcd.io/bbolt"
)

const (
	recordBucket = "records"
	auditBucket  = "audit"
)

// Store provides a BoltDB-backed progression store. Bolt's single-writer
// Update callback gives the record contract its per-user serialization for
// free.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{recordBucket, auditBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensure buckets: %w", err)
	}
	return nil
}

// recordPayload is the serialized bucket value for one user record.
type recordPayload struct {
	Stats     statsPayload    `json:"stats"`
	Unlocked  []unlockPayload `json:"unlocked,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type statsPayload struct {
	Victories          int         `json:"victories"`
	Highlights         int         `json:"highlights"`
	Friends            int         `json:"friends"`
	Achievements       int         `json:"achievements"`
	SnapsSent          int         `json:"snaps_sent"`
	StoriesCreated     int         `json:"stories_created"`
	MessagesExchanged  int         `json:"messages_exchanged"`
	SessionsCompleted  int         `json:"sessions_completed"`
	TotalAppOpenings   int         `json:"total_app_openings"`
	GamingSessions     int         `json:"gaming_sessions"`
	MidnightActivities int         `json:"midnight_activities"`
	StatusUpdates      int         `json:"status_updates"`
	LastActiveDate     domain.Date `json:"last_active_date"`
	ConsecutiveDays    int         `json:"consecutive_days"`
	StreakDays         int         `json:"streak_days"`
	LongestStreak      int         `json:"longest_streak"`
}

type unlockPayload struct {
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

func toPayload(record storage.Record) recordPayload {
	payload := recordPayload{
		Stats: statsPayload{
			Victories:          record.Stats.Victories,
			Highlights:         record.Stats.Highlights,
			Friends:            record.Stats.Friends,
			Achievements:       record.Stats.Achievements,
			SnapsSent:          record.Stats.SnapsSent,
			StoriesCreated:     record.Stats.StoriesCreated,
			MessagesExchanged:  record.Stats.MessagesExchanged,
			SessionsCompleted:  record.Stats.SessionsCompleted,
			TotalAppOpenings:   record.Stats.TotalAppOpenings,
			GamingSessions:     record.Stats.GamingSessions,
			MidnightActivities: record.Stats.MidnightActivities,
			StatusUpdates:      record.Stats.StatusUpdates,
			LastActiveDate:     record.Stats.LastActiveDate,
			ConsecutiveDays:    record.Stats.ConsecutiveDays,
			StreakDays:         record.Stats.StreakDays,
			LongestStreak:      record.Stats.LongestStreak,
		},
		UpdatedAt: record.UpdatedAt,
	}
	for _, unlock := range record.Unlocked {
		payload.Unlocked = append(payload.Unlocked, unlockPayload{
			AchievementID: unlock.AchievementID,
			UnlockedAt:    unlock.UnlockedAt,
		})
	}
	return payload
}

func fromPayload(userID string, payload recordPayload) storage.Record {
	record := storage.Record{
		UserID: userID,
		Stats: domain.UserStats{
			Victories:          payload.Stats.Victories,
			Highlights:         payload.Stats.Highlights,
			Friends:            payload.Stats.Friends,
			Achievements:       payload.Stats.Achievements,
			SnapsSent:          payload.Stats.SnapsSent,
			StoriesCreated:     payload.Stats.StoriesCreated,
			MessagesExchanged:  payload.Stats.MessagesExchanged,
			SessionsCompleted:  payload.Stats.SessionsCompleted,
			TotalAppOpenings:   payload.Stats.TotalAppOpenings,
			GamingSessions:     payload.Stats.GamingSessions,
			MidnightActivities: payload.Stats.MidnightActivities,
			StatusUpdates:      payload.Stats.StatusUpdates,
			LastActiveDate:     payload.Stats.LastActiveDate,
			ConsecutiveDays:    payload.Stats.ConsecutiveDays,
			StreakDays:         payload.Stats.StreakDays,
			LongestStreak:      payload.Stats.LongestStreak,
		},
		UpdatedAt: payload.UpdatedAt,
	}
	for _, unlock := range payload.Unlocked {
		record.Unlocked = append(record.Unlocked, domain.Unlock{
			AchievementID: unlock.AchievementID,
			UnlockedAt:    unlock.UnlockedAt,
		})
	}
	return record
}

// GetRecord returns one user's progression record.
func (s *Store) GetRecord(ctx context.Context, userID string) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if s == nil || s.db == nil {
		return storage.Record{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Record{}, fmt.Errorf("user id is required")
	}

	var record storage.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return storage.ErrNotFound
		}
		raw := bucket.Get([]byte(userID))
		if raw == nil {
			return storage.ErrNotFound
		}
		var payload recordPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		record = fromPayload(userID, payload)
		return nil
	})
	if err != nil {
		return storage.Record{}, err
	}
	return record, nil
}

// UpdateRecord applies one atomic read-modify-write inside a Bolt write
// transaction. The transform receives the current record, or a fresh default
// when the user has none.
func (s *Store) UpdateRecord(ctx context.Context, userID string, transform storage.TransformFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if transform == nil {
		return fmt.Errorf("transform is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}

		current := storage.Record{UserID: userID}
		if raw := bucket.Get([]byte(userID)); raw != nil {
			var payload recordPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			current = fromPayload(userID, payload)
		}

		next, err := transform(current)
		if err != nil {
			return err
		}
		next.UserID = userID

		encoded, err := json.Marshal(toPayload(next))
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		if err := bucket.Put([]byte(userID), encoded); err != nil {
			return fmt.Errorf("put record: %w", err)
		}
		return nil
	})
}

// auditKey orders audit entries by timestamp, then by bucket sequence for
// same-millisecond events.
func auditKey(evt storage.AuditEvent, seq uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(evt.Timestamp.UTC().UnixMilli()))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}

// AppendAuditEvent records one operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.ID) == "" {
		return fmt.Errorf("audit event id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(auditBucket))
		if bucket == nil {
			return fmt.Errorf("audit bucket is missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("audit sequence: %w", err)
		}
		encoded, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("encode audit event: %w", err)
		}
		if err := bucket.Put(auditKey(evt, seq), encoded); err != nil {
			return fmt.Errorf("put audit event: %w", err)
		}
		return nil
	})
}

// ListAuditEvents returns audit events for one user, newest first.
func (s *Store) ListAuditEvents(ctx context.Context, userID string, limit int) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	userID = strings.TrimSpace(userID)

	var events []storage.AuditEvent
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(auditBucket))
		if bucket == nil {
			return nil
		}
		cursor := bucket.Cursor()
		for key, raw := cursor.Last(); key != nil && len(events) < limit; key, raw = cursor.Prev() {
			if raw == nil {
				continue
			}
			var evt storage.AuditEvent
			if err := json.Unmarshal(raw, &evt); err != nil {
				return fmt.Errorf("decode audit event: %w", err)
			}
			if userID != "" && evt.UserID != userID {
				continue
			}
			events = append(events, evt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

var _ storage.Store = (*Store)(nil)
