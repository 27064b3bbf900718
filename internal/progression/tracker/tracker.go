// Package tracker is the orchestration facade over the progression pipeline.
// It folds activity events into per-user stats, sweeps the achievement
// catalog, and projects achievement state for display.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glimmerhq/progression/internal/progression/audit"
	"github.com/glimmerhq/progression/internal/progression/catalog"
	"github.com/glimmerhq/progression/internal/progression/domain"
	"github.com/glimmerhq/progression/internal/progression/evaluate"
	"github.com/glimmerhq/progression/internal/progression/storage"
)

// AccountAgeFunc reports how long ago one user's account was created. The
// duration feeds special conditions such as veteran checks.
type AccountAgeFunc func(ctx context.Context, userID string) (time.Duration, error)

// Config carries the optional collaborators of a tracker.
type Config struct {
	// Clock supplies the current time; time.Now when nil. Streak day
	// boundaries key off this clock, not off event timestamps.
	Clock func() time.Time
	// AccountAge resolves account age for special conditions. When nil,
	// account age evaluates as zero.
	AccountAge AccountAgeFunc
	// Audit receives operational events for dropped activities, failed
	// checks, and grants. Optional.
	Audit *audit.Emitter
}

// Tracker coordinates the record store, the catalog, and the condition
// registry. One tracker is constructed at process start and shared by every
// call site; it holds no mutable state of its own.
type Tracker struct {
	store      storage.RecordStore
	catalog    *catalog.Catalog
	conditions *catalog.ConditionRegistry
	clock      func() time.Time
	accountAge AccountAgeFunc
	audit      *audit.Emitter
}

// New creates a tracker over the given store and catalog.
func New(store storage.RecordStore, cat *catalog.Catalog, conditions *catalog.ConditionRegistry, cfg Config) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		store:      store,
		catalog:    cat,
		conditions: conditions,
		clock:      clock,
		accountAge: cfg.AccountAge,
		audit:      cfg.Audit,
	}, nil
}

// TrackActivity folds one activity event into the user's stats. The call is
// fire-and-forget: failures are logged and audited, never returned, so a
// dropped event cannot disturb the caller's primary flow. The event is not
// retried.
func (t *Tracker) TrackActivity(ctx context.Context, evt domain.ActivityEvent) {
	if t == nil {
		return
	}
	userID := strings.TrimSpace(evt.UserID)
	if userID == "" {
		log.Printf("track activity %s: user id is required", evt.Kind)
		return
	}

	today := domain.DateOf(t.clock())
	err := t.store.UpdateRecord(ctx, userID, func(rec storage.Record) (storage.Record, error) {
		rec.Stats = domain.Apply(rec.Stats, evt, today)
		rec.UpdatedAt = t.clock()
		return rec, nil
	})
	if err != nil {
		log.Printf("track activity %s for user %s: %v", evt.Kind, userID, err)
		t.audit.Error(ctx, userID, storage.AuditActivityDropped, fmt.Sprintf("%s: %v", evt.Kind, err))
	}
}

// TriggerAchievementCheck sweeps the catalog against the user's current stats
// and grants every newly satisfied achievement. Each grant records a follow-up
// achievement-unlock activity so the achievements counter tracks the unlocked
// set, then one bounded second sweep picks up achievements satisfied by that
// counter. The second sweep never triggers a third.
//
// The call is fire-and-forget like TrackActivity: a missing record is a
// logged skip, and store failures are logged and audited, never returned.
func (t *Tracker) TriggerAchievementCheck(ctx context.Context, userID string) {
	if t == nil {
		return
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		log.Printf("achievement check: user id is required")
		return
	}

	if _, err := t.store.GetRecord(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("achievement check for user %s: no record, skipping", userID)
			return
		}
		log.Printf("achievement check for user %s: %v", userID, err)
		t.audit.Error(ctx, userID, storage.AuditCheckFailed, err.Error())
		return
	}

	unlocked := t.sweep(ctx, userID)
	if len(unlocked) > 0 {
		t.sweep(ctx, userID)
	}
}

// sweep runs one evaluation pass inside an atomic record update and returns
// the achievements it granted. Grant side effects (audit trail, follow-up
// unlock activity) run after the transaction commits.
func (t *Tracker) sweep(ctx context.Context, userID string) []domain.Unlock {
	now := t.clock()
	age := t.resolveAccountAge(ctx, userID)

	var granted []domain.Unlock
	err := t.store.UpdateRecord(ctx, userID, func(rec storage.Record) (storage.Record, error) {
		granted = evaluate.Evaluate(t.catalog, t.conditions, evaluate.Input{
			Stats:       rec.Stats,
			UnlockedIDs: evaluate.UnlockedSet(rec.Unlocked),
			AccountAge:  age,
			Now:         now,
		})
		if len(granted) == 0 {
			return rec, nil
		}
		rec.Unlocked = append(rec.Unlocked, granted...)
		rec.UpdatedAt = now
		return rec, nil
	})
	if err != nil {
		log.Printf("achievement check for user %s: %v", userID, err)
		t.audit.Error(ctx, userID, storage.AuditCheckFailed, err.Error())
		return nil
	}

	for _, unlock := range granted {
		t.audit.Info(ctx, userID, storage.AuditAchievementUnlocked, unlock.AchievementID)
		t.TrackActivity(ctx, domain.NewAchievementUnlock(userID, unlock.AchievementID, unlock.UnlockedAt))
	}
	return granted
}

func (t *Tracker) resolveAccountAge(ctx context.Context, userID string) time.Duration {
	if t.accountAge == nil {
		return 0
	}
	age, err := t.accountAge(ctx, userID)
	if err != nil {
		log.Printf("resolve account age for user %s: %v", userID, err)
		return 0
	}
	return age
}

// UserStats returns one user's cumulative stats, or zero-value stats when the
// user has no record yet.
func (t *Tracker) UserStats(ctx context.Context, userID string) (domain.UserStats, error) {
	if t == nil {
		return domain.UserStats{}, fmt.Errorf("tracker is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserStats{}, fmt.Errorf("user id is required")
	}

	record, err := t.store.GetRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.UserStats{}, nil
		}
		return domain.UserStats{}, fmt.Errorf("get user stats: %w", err)
	}
	return record.Stats, nil
}

// AchievementView merges one catalog definition with the user's unlock state
// and, for locked single-key thresholds, a progress projection.
type AchievementView struct {
	Definition catalog.Definition
	Unlocked   bool
	UnlockedAt time.Time
	Progress   *evaluate.ProgressView
}

// AchievementsWithProgress returns one view per catalog definition in catalog
// order. Users without a record see the whole catalog locked.
func (t *Tracker) AchievementsWithProgress(ctx context.Context, userID string) ([]AchievementView, error) {
	if t == nil {
		return nil, fmt.Errorf("tracker is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	record, err := t.store.GetRecord(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get achievements: %w", err)
	}

	unlockedAt := make(map[string]time.Time, len(record.Unlocked))
	for _, unlock := range record.Unlocked {
		unlockedAt[unlock.AchievementID] = unlock.UnlockedAt
	}

	views := make([]AchievementView, 0, t.catalog.Len())
	for _, def := range t.catalog.Definitions() {
		view := AchievementView{Definition: def}
		if at, ok := unlockedAt[def.ID]; ok {
			view.Unlocked = true
			view.UnlockedAt = at
		} else if progress, ok := evaluate.Progress(def, record.Stats); ok {
			view.Progress = &progress
		}
		views = append(views, view)
	}
	return views, nil
}
