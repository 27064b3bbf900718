// Package evaluate applies catalog unlock criteria to user stats and projects
// progress toward locked threshold achievements.
package evaluate

import (
	"time"

	"github.com/glimmerhq/progression/internal/progression/catalog"
	"github.com/glimmerhq/progression/internal/progression/domain"
)

// Input is one evaluation request: the stats snapshot, the IDs already
// granted, and the auxiliary context special conditions may consult.
type Input struct {
	Stats       domain.UserStats
	UnlockedIDs map[string]struct{}
	AccountAge  time.Duration
	Now         time.Time
}

// Evaluate sweeps the catalog and returns the achievements newly satisfied by
// the stats snapshot. IDs already present in the unlocked set are never
// re-emitted, and definitions are judged independently: one definition that
// cannot be evaluated (unknown stat key, unregistered condition) counts as
// unsatisfied without aborting the sweep.
func Evaluate(cat *catalog.Catalog, registry *catalog.ConditionRegistry, input Input) []domain.Unlock {
	if cat == nil {
		return nil
	}

	var unlocked []domain.Unlock
	for _, def := range cat.Definitions() {
		if _, granted := input.UnlockedIDs[def.ID]; granted {
			continue
		}
		if !satisfied(def.Criterion, registry, input) {
			continue
		}
		unlocked = append(unlocked, domain.Unlock{
			AchievementID: def.ID,
			UnlockedAt:    input.Now,
		})
	}
	return unlocked
}

// satisfied judges one criterion against the snapshot.
func satisfied(criterion catalog.Criterion, registry *catalog.ConditionRegistry, input Input) bool {
	switch criterion.Kind {
	case catalog.CriterionStatThreshold, catalog.CriterionStreak:
		if len(criterion.Thresholds) == 0 {
			return false
		}
		for _, th := range criterion.Thresholds {
			value, ok := input.Stats.Value(th.Key)
			if !ok || value < th.Threshold {
				return false
			}
		}
		return true
	case catalog.CriterionSpecial:
		return registry.Eval(criterion.Condition, catalog.ConditionContext{
			Stats:      input.Stats,
			AccountAge: input.AccountAge,
			Now:        input.Now,
			Params:     criterion.Params,
		})
	default:
		return false
	}
}

// UnlockedSet builds the granted-ID set the evaluator consumes.
func UnlockedSet(unlocks []domain.Unlock) map[string]struct{} {
	set := make(map[string]struct{}, len(unlocks))
	for _, unlock := range unlocks {
		set[unlock.AchievementID] = struct{}{}
	}
	return set
}
