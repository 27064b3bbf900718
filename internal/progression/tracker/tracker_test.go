package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glimmerhq/progression/internal/progression/audit"
	"github.com/glimmerhq/progression/internal/progression/catalog"
	"github.com/glimmerhq/progression/internal/progression/domain"
	"github.com/glimmerhq/progression/internal/progression/storage"
	"github.com/glimmerhq/progression/internal/progression/storage/memory"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func thresholdDef(id string, key domain.StatKey, threshold int) catalog.Definition {
	return catalog.Definition{
		ID:       id,
		Title:    id,
		Rarity:   catalog.RarityCommon,
		Category: catalog.CategorySocial,
		Criterion: catalog.Criterion{
			Kind:       catalog.CriterionStatThreshold,
			Thresholds: []catalog.Threshold{{Key: key, Threshold: threshold}},
		},
	}
}

func newTestTracker(t *testing.T, store storage.RecordStore, defs ...catalog.Definition) *Tracker {
	t.Helper()
	cat, err := catalog.New(defs)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	tracker, err := New(store, cat, catalog.DefaultConditions(), Config{
		Clock: fixedClock(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("build tracker: %v", err)
	}
	return tracker
}

// TestTrackActivityCreatesRecord folds the first event for a new user into a
// fresh record.
func TestTrackActivityCreatesRecord(t *testing.T) {
	store := memory.New()
	tracker := newTestTracker(t, store)
	ctx := context.Background()

	tracker.TrackActivity(ctx, domain.NewGamingSession("user-1", domain.ResultVictory, time.Date(2024, time.June, 1, 11, 0, 0, 0, time.UTC)))

	record, err := store.GetRecord(ctx, "user-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Stats.GamingSessions != 1 || record.Stats.Victories != 1 {
		t.Fatalf("stats = %+v, want one session and one victory", record.Stats)
	}
}

// TestTrackActivityStreakUsesClockDate keys day transitions off the injected
// clock, not the event timestamp.
func TestTrackActivityStreakUsesClockDate(t *testing.T) {
	store := memory.New()
	tracker := newTestTracker(t, store)
	ctx := context.Background()

	// Event stamped yesterday, processed today: the streak lands on today.
	stale := time.Date(2024, time.May, 31, 23, 50, 0, 0, time.UTC)
	tracker.TrackActivity(ctx, domain.NewAppOpen("user-1", stale))

	stats, err := tracker.UserStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	want := domain.Date{Year: 2024, Month: time.June, Day: 1}
	if !stats.LastActiveDate.Equal(want) {
		t.Fatalf("LastActiveDate = %s, want %s", stats.LastActiveDate, want)
	}
	if stats.ConsecutiveDays != 1 || stats.TotalAppOpenings != 1 {
		t.Fatalf("stats = %+v, want one opening and a one-day streak", stats)
	}
}

type failingStore struct {
	memory.Store
}

func (f *failingStore) UpdateRecord(context.Context, string, storage.TransformFunc) error {
	return errors.New("store unavailable")
}

// TestTrackActivitySwallowsStoreFailure logs and audits a dropped activity
// without surfacing the error.
func TestTrackActivitySwallowsStoreFailure(t *testing.T) {
	auditStore := memory.New()
	cat, err := catalog.New(nil)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	tracker, err := New(&failingStore{}, cat, nil, Config{
		Clock: fixedClock(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)),
		Audit: audit.NewEmitter(auditStore, nil),
	})
	if err != nil {
		t.Fatalf("build tracker: %v", err)
	}

	tracker.TrackActivity(context.Background(), domain.NewMessageSend("user-1", time.Now()))

	events, err := auditStore.ListAuditEvents(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d audit events, want 1", len(events))
	}
	if events[0].Kind != storage.AuditActivityDropped || events[0].Severity != storage.SeverityError {
		t.Fatalf("unexpected audit event: %+v", events[0])
	}
}

// TestTriggerSkipsMissingRecord treats a user without a record as a logged
// no-op rather than creating one.
func TestTriggerSkipsMissingRecord(t *testing.T) {
	store := memory.New()
	tracker := newTestTracker(t, store, thresholdDef("first_victory", domain.StatVictories, 1))

	tracker.TriggerAchievementCheck(context.Background(), "ghost")

	if _, err := store.GetRecord(context.Background(), "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no record after skipped check, got %v", err)
	}
}

// TestTriggerGrantsThresholdAchievement unlocks once the stat crosses its
// threshold and bumps the achievements counter through the follow-up event.
func TestTriggerGrantsThresholdAchievement(t *testing.T) {
	store := memory.New()
	tracker := newTestTracker(t, store, thresholdDef("first_victory", domain.StatVictories, 1))
	ctx := context.Background()

	tracker.TrackActivity(ctx, domain.NewGamingSession("user-1", domain.ResultVictory, time.Now()))
	tracker.TriggerAchievementCheck(ctx, "user-1")

	record, err := store.GetRecord(ctx, "user-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if len(record.Unlocked) != 1 || record.Unlocked[0].AchievementID != "first_victory" {
		t.Fatalf("unlocks = %+v, want first_victory", record.Unlocked)
	}
	if record.Stats.Achievements != 1 {
		t.Fatalf("Achievements = %d, want 1", record.Stats.Achievements)
	}
}

// TestTriggerIsIdempotent grants nothing on a second check with unchanged
// stats.
func TestTriggerIsIdempotent(t *testing.T) {
	store := memory.New()
	tracker := newTestTracker(t, store, thresholdDef("first_victory", domain.StatVictories, 1))
	ctx := context.Background()

	tracker.TrackActivity(ctx, domain.NewGamingSession("user-1", domain.ResultVictory, time.Now()))
	tracker.TriggerAchievementCheck(ctx, "user-1")
	tracker.TriggerAchievementCheck(ctx, "user-1")

	record, err := store.GetRecord(ctx, "user-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if len(record.Unlocked) != 1 {
		t.Fatalf("got %d unlocks after repeated checks, want 1", len(record.Unlocked))
	}
	if record.Stats.Achievements != 1 {
		t.Fatalf("Achievements = %d, want 1", record.Stats.Achievements)
	}
}

// TestTriggerFeedbackLoopIsBounded runs exactly one extra sweep after a grant:
// an achievement satisfied by the first sweep's follow-up counter unlocks in
// the same check, but a chain needing a third sweep waits for the next check.
func TestTriggerFeedbackLoopIsBounded(t *testing.T) {
	store := memory.New()
	tracker := newTestTracker(t, store,
		thresholdDef("first_victory", domain.StatVictories, 1),
		thresholdDef("collector", domain.StatAchievements, 1),
		thresholdDef("curator", domain.StatAchievements, 2),
	)
	ctx := context.Background()

	tracker.TrackActivity(ctx, domain.NewGamingSession("user-1", domain.ResultVictory, time.Now()))
	tracker.TriggerAchievementCheck(ctx, "user-1")

	record, err := store.GetRecord(ctx, "user-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !record.HasUnlock("first_victory") || !record.HasUnlock("collector") {
		t.Fatalf("first check should grant first_victory and collector, got %+v", record.Unlocked)
	}
	if record.HasUnlock("curator") {
		t.Fatalf("curator requires a third sweep and must wait for the next check")
	}

	// The next check sees achievements = 2 and completes the chain.
	tracker.TriggerAchievementCheck(ctx, "user-1")
	record, err = store.GetRecord(ctx, "user-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !record.HasUnlock("curator") {
		t.Fatalf("second check should grant curator, got %+v", record.Unlocked)
	}
}

// TestUserStatsMissingUserReturnsDefaults reads zero stats, not an error.
func TestUserStatsMissingUserReturnsDefaults(t *testing.T) {
	tracker := newTestTracker(t, memory.New())

	stats, err := tracker.UserStats(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if stats != (domain.UserStats{}) {
		t.Fatalf("stats = %+v, want defaults", stats)
	}
}

// TestAchievementsWithProgress merges unlock state and locked-threshold
// progress in catalog order.
func TestAchievementsWithProgress(t *testing.T) {
	store := memory.New()
	tracker := newTestTracker(t, store,
		thresholdDef("first_victory", domain.StatVictories, 1),
		thresholdDef("champion", domain.StatVictories, 100),
	)
	ctx := context.Background()

	tracker.TrackActivity(ctx, domain.NewGamingSession("user-1", domain.ResultVictory, time.Now()))
	tracker.TriggerAchievementCheck(ctx, "user-1")

	views, err := tracker.AchievementsWithProgress(ctx, "user-1")
	if err != nil {
		t.Fatalf("achievements with progress: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}

	if !views[0].Unlocked || views[0].Definition.ID != "first_victory" {
		t.Fatalf("first view should be the unlocked first_victory, got %+v", views[0])
	}
	if views[0].Progress != nil {
		t.Fatalf("unlocked achievements must not carry progress")
	}
	if views[0].UnlockedAt.IsZero() {
		t.Fatalf("unlocked view should carry its unlock time")
	}

	if views[1].Unlocked {
		t.Fatalf("champion should stay locked")
	}
	if views[1].Progress == nil {
		t.Fatalf("locked single-key threshold should carry progress")
	}
	if views[1].Progress.Current != 1 || views[1].Progress.Total != 100 {
		t.Fatalf("progress = %+v, want 1 of 100", views[1].Progress)
	}
}

// TestAchievementsWithProgressMissingUser shows the whole catalog locked.
func TestAchievementsWithProgressMissingUser(t *testing.T) {
	tracker := newTestTracker(t, memory.New(), thresholdDef("first_snap", domain.StatSnapsSent, 1))

	views, err := tracker.AchievementsWithProgress(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("achievements with progress: %v", err)
	}
	if len(views) != 1 || views[0].Unlocked {
		t.Fatalf("expected one locked view, got %+v", views)
	}
	if views[0].Progress == nil || views[0].Progress.Current != 0 {
		t.Fatalf("missing user should project zero progress, got %+v", views[0].Progress)
	}
}
