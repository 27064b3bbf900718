// Package sqlite provides a SQLite-backed progression storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/glimmerhq/progression/internal/platform/storage/sqlitemigrate"
	"github.com/glimmerhq/progression/internal/progression/domain"
	"github.com/glimmerhq/progression/internal/progression/storage"
	"github.com/glimmerhq/progression/internal/progression/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists progression state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite progression store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const selectRecordSQL = `SELECT victories, highlights, friends, achievements,
       snaps_sent, stories_created, messages_exchanged, sessions_completed,
       total_app_openings, gaming_sessions, midnight_activities, status_updates,
       last_active_date, consecutive_days, streak_days, longest_streak, updated_at
  FROM user_records
 WHERE user_id = ?`

// readRecord loads one record inside the provided querier. Missing users
// surface storage.ErrNotFound.
func readRecord(ctx context.Context, q rowQuerier, userID string) (storage.Record, error) {
	record := storage.Record{UserID: userID}
	var lastActive string
	var updatedAt int64
	err := q.QueryRowContext(ctx, selectRecordSQL, userID).Scan(
		&record.Stats.Victories,
		&record.Stats.Highlights,
		&record.Stats.Friends,
		&record.Stats.Achievements,
		&record.Stats.SnapsSent,
		&record.Stats.StoriesCreated,
		&record.Stats.MessagesExchanged,
		&record.Stats.SessionsCompleted,
		&record.Stats.TotalAppOpenings,
		&record.Stats.GamingSessions,
		&record.Stats.MidnightActivities,
		&record.Stats.StatusUpdates,
		&lastActive,
		&record.Stats.ConsecutiveDays,
		&record.Stats.StreakDays,
		&record.Stats.LongestStreak,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Record{}, storage.ErrNotFound
		}
		return storage.Record{}, fmt.Errorf("get record: %w", err)
	}
	if lastActive != "" {
		date, err := domain.ParseDate(lastActive)
		if err != nil {
			return storage.Record{}, fmt.Errorf("get record: %w", err)
		}
		record.Stats.LastActiveDate = date
	}
	record.UpdatedAt = fromMillis(updatedAt)

	rows, err := q.QueryContext(ctx,
		`SELECT achievement_id, unlocked_at
		   FROM user_achievements
		  WHERE user_id = ?
		  ORDER BY unlocked_at ASC, achievement_id ASC`,
		userID,
	)
	if err != nil {
		return storage.Record{}, fmt.Errorf("get unlocks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var unlock domain.Unlock
		var unlockedAt int64
		if err := rows.Scan(&unlock.AchievementID, &unlockedAt); err != nil {
			return storage.Record{}, fmt.Errorf("get unlocks: %w", err)
		}
		unlock.UnlockedAt = fromMillis(unlockedAt)
		record.Unlocked = append(record.Unlocked, unlock)
	}
	if err := rows.Err(); err != nil {
		return storage.Record{}, fmt.Errorf("get unlocks: %w", err)
	}
	return record, nil
}

// GetRecord returns one user's progression record.
func (s *Store) GetRecord(ctx context.Context, userID string) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Record{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Record{}, fmt.Errorf("user id is required")
	}
	return readRecord(ctx, s.sqlDB, userID)
}

// UpdateRecord applies one atomic read-modify-write inside a serializable
// transaction. The transform receives the current record, or a fresh default
// when the user has none.
func (s *Store) UpdateRecord(ctx context.Context, userID string, transform storage.TransformFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if transform == nil {
		return fmt.Errorf("transform is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}

	current, err := readRecord(ctx, tx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			_ = tx.Rollback()
			return err
		}
		current = storage.Record{UserID: userID}
	}

	next, err := transform(current.Clone())
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	next.UserID = userID

	if err := writeRecord(ctx, tx, next); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// writeRecord upserts the stats row and the achievement rows.
func writeRecord(ctx context.Context, tx *sql.Tx, record storage.Record) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_records (
		     user_id, victories, highlights, friends, achievements,
		     snaps_sent, stories_created, messages_exchanged, sessions_completed,
		     total_app_openings, gaming_sessions, midnight_activities, status_updates,
		     last_active_date, consecutive_days, streak_days, longest_streak, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     victories = excluded.victories,
		     highlights = excluded.highlights,
		     friends = excluded.friends,
		     achievements = excluded.achievements,
		     snaps_sent = excluded.snaps_sent,
		     stories_created = excluded.stories_created,
		     messages_exchanged = excluded.messages_exchanged,
		     sessions_completed = excluded.sessions_completed,
		     total_app_openings = excluded.total_app_openings,
		     gaming_sessions = excluded.gaming_sessions,
		     midnight_activities = excluded.midnight_activities,
		     status_updates = excluded.status_updates,
		     last_active_date = excluded.last_active_date,
		     consecutive_days = excluded.consecutive_days,
		     streak_days = excluded.streak_days,
		     longest_streak = excluded.longest_streak,
		     updated_at = excluded.updated_at`,
		record.UserID,
		record.Stats.Victories,
		record.Stats.Highlights,
		record.Stats.Friends,
		record.Stats.Achievements,
		record.Stats.SnapsSent,
		record.Stats.StoriesCreated,
		record.Stats.MessagesExchanged,
		record.Stats.SessionsCompleted,
		record.Stats.TotalAppOpenings,
		record.Stats.GamingSessions,
		record.Stats.MidnightActivities,
		record.Stats.StatusUpdates,
		record.Stats.LastActiveDate.String(),
		record.Stats.ConsecutiveDays,
		record.Stats.StreakDays,
		record.Stats.LongestStreak,
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}

	for _, unlock := range record.Unlocked {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT(user_id, achievement_id) DO NOTHING`,
			record.UserID,
			unlock.AchievementID,
			toMillis(unlock.UnlockedAt),
		)
		if err != nil {
			return fmt.Errorf("put unlock %s: %w", unlock.AchievementID, err)
		}
	}
	return nil
}

// AppendAuditEvent records one operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.ID) == "" {
		return fmt.Errorf("audit event id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO audit_events (id, user_id, severity, kind, detail, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		evt.ID,
		evt.UserID,
		string(evt.Severity),
		evt.Kind,
		evt.Detail,
		toMillis(evt.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns audit events for one user, newest first.
func (s *Store) ListAuditEvents(ctx context.Context, userID string, limit int) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	userID = strings.TrimSpace(userID)

	query := `SELECT id, user_id, severity, kind, detail, timestamp
	            FROM audit_events`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []storage.AuditEvent
	for rows.Next() {
		var evt storage.AuditEvent
		var severity string
		var timestamp int64
		if err := rows.Scan(&evt.ID, &evt.UserID, &severity, &evt.Kind, &evt.Detail, &timestamp); err != nil {
			return nil, fmt.Errorf("list audit events: %w", err)
		}
		evt.Severity = storage.Severity(severity)
		evt.Timestamp = fromMillis(timestamp)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}

var _ storage.Store = (*Store)(nil)
