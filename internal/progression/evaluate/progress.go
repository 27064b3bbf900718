package evaluate

import (
	"github.com/glimmerhq/progression/internal/progression/catalog"
	"github.com/glimmerhq/progression/internal/progression/domain"
)

// ProgressView is one "x of y" projection toward a locked achievement.
type ProgressView struct {
	Current int
	Total   int
}

// Progress projects progress for a locked definition. Only single-key
// stat-threshold criteria produce a value; streak, multi-key, and special
// criteria report false. The caller filters out already-unlocked definitions.
func Progress(def catalog.Definition, stats domain.UserStats) (ProgressView, bool) {
	if def.Criterion.Kind != catalog.CriterionStatThreshold {
		return ProgressView{}, false
	}
	if len(def.Criterion.Thresholds) != 1 {
		return ProgressView{}, false
	}
	th := def.Criterion.Thresholds[0]
	value, ok := stats.Value(th.Key)
	if !ok {
		return ProgressView{}, false
	}
	if value > th.Threshold {
		value = th.Threshold
	}
	return ProgressView{Current: value, Total: th.Threshold}, true
}
