// Package seed populates a progression store with deterministic demo data by
// driving the real tracking pipeline, day by simulated day.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	platformcmd "github.com/glimmerhq/progression/internal/platform/cmd"
	"github.com/glimmerhq/progression/internal/progression/audit"
	"github.com/glimmerhq/progression/internal/progression/catalog"
	"github.com/glimmerhq/progression/internal/progression/domain"
	"github.com/glimmerhq/progression/internal/progression/storage"
	"github.com/glimmerhq/progression/internal/progression/storage/bolt"
	"github.com/glimmerhq/progression/internal/progression/storage/memory"
	"github.com/glimmerhq/progression/internal/progression/storage/sqlite"
	"github.com/glimmerhq/progression/internal/progression/tracker"
)

// Config holds seed command configuration.
type Config struct {
	Backend     string `env:"GLIMMER_PROGRESSION_BACKEND" envDefault:"sqlite"`
	DBPath      string `env:"GLIMMER_PROGRESSION_DB_PATH"`
	CatalogPath string `env:"GLIMMER_CATALOG_PATH"`
	Users       int
	Days        int
	Seed        int64
	Verbose     bool
}

// ParseConfig loads env defaults and parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "progression.db")
	}

	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend (memory, sqlite, bolt)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the progression database (default: GLIMMER_PROGRESSION_DB_PATH or data/progression.db)")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "optional YAML achievement catalog overlay (default: GLIMMER_CATALOG_PATH)")
	fs.IntVar(&cfg.Users, "users", 5, "number of demo users to simulate")
	fs.IntVar(&cfg.Days, "days", 14, "number of calendar days to simulate")
	fs.Int64Var(&cfg.Seed, "seed", 1, "random seed for reproducible runs")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// OpenStore opens the configured storage backend.
func OpenStore(cfg Config) (storage.Store, error) {
	switch cfg.Backend {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(cfg.DBPath)
	case "bolt":
		return bolt.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown backend %q (want memory, sqlite, or bolt)", cfg.Backend)
	}
}

// simClock is a settable clock the simulation advances between activities.
type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Run simulates activity for the configured demo users and reports the
// resulting stats and unlocks.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Users <= 0 {
		return fmt.Errorf("users must be > 0")
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("days must be > 0")
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close store: %v\n", closeErr)
		}
	}()

	// Simulated accounts all open on day one; account age grows with the
	// simulation so age-gated achievements stay reachable on long runs.
	start := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	clock := &simClock{now: start}
	accountAge := func(context.Context, string) (time.Duration, error) {
		return clock.Now().Sub(start), nil
	}

	trk, err := tracker.New(store, cat, catalog.DefaultConditions(), tracker.Config{
		Clock:      clock.Now,
		AccountAge: accountAge,
		Audit:      audit.NewEmitter(store, clock.Now),
	})
	if err != nil {
		return fmt.Errorf("build tracker: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	users := make([]string, cfg.Users)
	for i := range users {
		users[i] = fmt.Sprintf("demo-user-%02d", i+1)
	}

	for day := 0; day < cfg.Days; day++ {
		for _, userID := range users {
			if err := ctx.Err(); err != nil {
				return err
			}
			simulateDay(ctx, trk, clock, rng, userID, start.AddDate(0, 0, day))
			trk.TriggerAchievementCheck(ctx, userID)
		}
	}

	for _, userID := range users {
		stats, err := trk.UserStats(ctx, userID)
		if err != nil {
			return fmt.Errorf("stats for %s: %w", userID, err)
		}
		views, err := trk.AchievementsWithProgress(ctx, userID)
		if err != nil {
			return fmt.Errorf("achievements for %s: %w", userID, err)
		}
		unlocked := 0
		for _, view := range views {
			if view.Unlocked {
				unlocked++
			}
		}
		fmt.Fprintf(out, "%s: %d/%d achievements, %d snaps, %d messages, streak %d (longest %d)\n",
			userID, unlocked, len(views), stats.SnapsSent, stats.MessagesExchanged, stats.StreakDays, stats.LongestStreak)
		if cfg.Verbose {
			for _, view := range views {
				switch {
				case view.Unlocked:
					fmt.Fprintf(out, "  [x] %s (%s)\n", view.Definition.ID, view.UnlockedAt.Format("2006-01-02"))
				case view.Progress != nil:
					fmt.Fprintf(out, "  [ ] %s (%d of %d)\n", view.Definition.ID, view.Progress.Current, view.Progress.Total)
				default:
					fmt.Fprintf(out, "  [ ] %s\n", view.Definition.ID)
				}
			}
		}
	}
	return nil
}

// simulateDay records one day of randomized activity for a user. Users skip
// some days entirely so streak resets show up in demo data.
func simulateDay(ctx context.Context, trk *tracker.Tracker, clock *simClock, rng *rand.Rand, userID string, day time.Time) {
	if rng.Intn(10) == 0 {
		return
	}

	// The first open of the day lands at a random hour; early-morning opens
	// also count toward the midnight tally, gated on the wall-clock hour at
	// recording time.
	hour := rng.Intn(24)
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, rng.Intn(60), 0, 0, time.UTC)
	clock.Set(at)
	trk.TrackActivity(ctx, domain.NewAppOpen(userID, at))
	if domain.IsMidnightHour(clock.Now()) {
		trk.TrackActivity(ctx, domain.NewMidnightActivity(userID, at))
	}

	actions := 1 + rng.Intn(6)
	for i := 0; i < actions; i++ {
		at = at.Add(time.Duration(1+rng.Intn(30)) * time.Minute)
		clock.Set(at)
		switch rng.Intn(6) {
		case 0:
			mediaType := domain.MediaTypeImage
			if rng.Intn(3) == 0 {
				mediaType = domain.MediaTypeVideo
			}
			trk.TrackActivity(ctx, domain.NewCameraCapture(userID, mediaType, at))
		case 1:
			trk.TrackActivity(ctx, domain.NewMessageSend(userID, at))
		case 2:
			trk.TrackActivity(ctx, domain.NewStoryCreate(userID, at))
		case 3:
			result := domain.ResultDefeat
			if rng.Intn(2) == 0 {
				result = domain.ResultVictory
			}
			trk.TrackActivity(ctx, domain.NewGamingSession(userID, result, at))
		case 4:
			trk.TrackActivity(ctx, domain.NewFriendAdd(userID, at))
		case 5:
			trk.TrackActivity(ctx, domain.NewStatusUpdate(userID, at))
		}
	}
}
