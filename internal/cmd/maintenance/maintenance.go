// Package maintenance provides operator utilities for a progression store:
// catalog validation, per-user inspection, audit trail dumps, and a
// raise-only achievements counter reconcile.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	platformcmd "github.com/glimmerhq/progression/internal/platform/cmd"
	"github.com/glimmerhq/progression/internal/progression/catalog"
	"github.com/glimmerhq/progression/internal/progression/domain"
	"github.com/glimmerhq/progression/internal/progression/storage"
	"github.com/glimmerhq/progression/internal/progression/storage/bolt"
	"github.com/glimmerhq/progression/internal/progression/storage/memory"
	"github.com/glimmerhq/progression/internal/progression/storage/sqlite"
	"github.com/glimmerhq/progression/internal/progression/tracker"
)

// Config holds maintenance command configuration.
type Config struct {
	Backend         string        `env:"GLIMMER_PROGRESSION_BACKEND" envDefault:"sqlite"`
	DBPath          string        `env:"GLIMMER_PROGRESSION_DB_PATH"`
	CatalogPath     string        `env:"GLIMMER_CATALOG_PATH"`
	Timeout         time.Duration `env:"GLIMMER_MAINTENANCE_TIMEOUT" envDefault:"10m"`
	UserID          string
	ValidateCatalog bool
	AuditLimit      int
	Reconcile       bool
	DryRun          bool
	JSONOutput      bool
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
	fs.StringVar(&cfg.UserID, "user-id", "", "user to inspect or reconcile")
	fs.BoolVar(&cfg.ValidateCatalog, "validate-catalog", false, "validate the achievement catalog and exit")
	fs.IntVar(&cfg.AuditLimit, "audit", 0, "print up to N audit events for -user-id")
	fs.BoolVar(&cfg.Reconcile, "reconcile", false, "raise the achievements counter to the unlocked-set size for -user-id")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "report what -reconcile would change without writing")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON reports")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func openStore(cfg Config) (storage.Store, error) {
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

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if cfg.ValidateCatalog {
		return reportCatalog(cat, cfg.JSONOutput, out)
	}

	if strings.TrimSpace(cfg.UserID) == "" {
		return errors.New("-user-id is required (or use -validate-catalog)")
	}
	if cfg.Reconcile && cfg.AuditLimit > 0 {
		return errors.New("-reconcile cannot be combined with -audit")
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close store: %v\n", closeErr)
		}
	}()

	switch {
	case cfg.AuditLimit > 0:
		return reportAudit(ctx, store, cfg.UserID, cfg.AuditLimit, cfg.JSONOutput, out)
	case cfg.Reconcile:
		return reconcileAchievements(ctx, store, cfg.UserID, cfg.DryRun, out)
	default:
		return reportUser(ctx, store, cat, cfg.UserID, cfg.JSONOutput, out)
	}
}

type catalogReport struct {
	Definitions int            `json:"definitions"`
	ByKind      map[string]int `json:"by_kind"`
}

func reportCatalog(cat *catalog.Catalog, jsonOutput bool, out io.Writer) error {
	report := catalogReport{
		Definitions: cat.Len(),
		ByKind:      make(map[string]int),
	}
	for _, def := range cat.Definitions() {
		report.ByKind[string(def.Criterion.Kind)]++
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(out, "catalog OK: %d definitions\n", report.Definitions)
	for kind, count := range report.ByKind {
		fmt.Fprintf(out, "  %s: %d\n", kind, count)
	}
	return nil
}

func reportAudit(ctx context.Context, store storage.Store, userID string, limit int, jsonOutput bool, out io.Writer) error {
	events, err := store.ListAuditEvents(ctx, userID, limit)
	if err != nil {
		return fmt.Errorf("list audit events: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}
	if len(events) == 0 {
		fmt.Fprintf(out, "no audit events for %s\n", userID)
		return nil
	}
	for _, evt := range events {
		fmt.Fprintf(out, "%s %-5s %-20s %s\n", evt.Timestamp.Format(time.RFC3339), evt.Severity, evt.Kind, evt.Detail)
	}
	return nil
}

type userReport struct {
	UserID       string                    `json:"user_id"`
	Stats        domain.UserStats          `json:"stats"`
	Achievements []tracker.AchievementView `json:"achievements"`
}

func reportUser(ctx context.Context, store storage.Store, cat *catalog.Catalog, userID string, jsonOutput bool, out io.Writer) error {
	trk, err := tracker.New(store, cat, catalog.DefaultConditions(), tracker.Config{})
	if err != nil {
		return fmt.Errorf("build tracker: %w", err)
	}
	stats, err := trk.UserStats(ctx, userID)
	if err != nil {
		return err
	}
	views, err := trk.AchievementsWithProgress(ctx, userID)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(userReport{UserID: userID, Stats: stats, Achievements: views})
	}

	fmt.Fprintf(out, "%s\n", userID)
	fmt.Fprintf(out, "  snaps %d, stories %d, messages %d, friends %d\n",
		stats.SnapsSent, stats.StoriesCreated, stats.MessagesExchanged, stats.Friends)
	fmt.Fprintf(out, "  sessions %d (victories %d), openings %d, status updates %d, midnight %d\n",
		stats.GamingSessions, stats.Victories, stats.TotalAppOpenings, stats.StatusUpdates, stats.MidnightActivities)
	fmt.Fprintf(out, "  streak %d (longest %d), last active %s\n",
		stats.StreakDays, stats.LongestStreak, stats.LastActiveDate)
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
	return nil
}

// reconcileAchievements raises the achievements counter to the unlocked-set
// size. The counter is monotonic, so a counter already at or above the set
// size is left alone.
func reconcileAchievements(ctx context.Context, store storage.Store, userID string, dryRun bool, out io.Writer) error {
	record, err := store.GetRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintf(out, "no record for %s\n", userID)
			return nil
		}
		return fmt.Errorf("get record: %w", err)
	}

	unlocked := len(record.Unlocked)
	if record.Stats.Achievements >= unlocked {
		fmt.Fprintf(out, "%s: counter %d >= %d unlocked, nothing to do\n", userID, record.Stats.Achievements, unlocked)
		return nil
	}
	if dryRun {
		fmt.Fprintf(out, "%s: would raise counter %d -> %d (dry run)\n", userID, record.Stats.Achievements, unlocked)
		return nil
	}

	err = store.UpdateRecord(ctx, userID, func(rec storage.Record) (storage.Record, error) {
		if size := len(rec.Unlocked); rec.Stats.Achievements < size {
			rec.Stats.Achievements = size
		}
		return rec, nil
	})
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	fmt.Fprintf(out, "%s: raised counter %d -> %d\n", userID, record.Stats.Achievements, unlocked)
	return nil
}
