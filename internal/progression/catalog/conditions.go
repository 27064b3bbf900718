package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glimmerhq/progression/internal/progression/domain"
)

// ConditionContext carries the facts a special-condition predicate may
// consult: the user's stats plus auxiliary context resolved by the host.
type ConditionContext struct {
	Stats      domain.UserStats
	AccountAge time.Duration
	Now        time.Time
	Params     map[string]string
}

// IntParam returns a named integer parameter, falling back when absent or
// malformed.
func (c ConditionContext) IntParam(name string, fallback int) int {
	raw, ok := c.Params[name]
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

// ConditionFunc is one named special-condition predicate.
type ConditionFunc func(ConditionContext) bool

// ConditionRegistry resolves special-condition names to predicates. The
// registry is populated at construction and treated as read-only afterwards.
type ConditionRegistry struct {
	funcs map[string]ConditionFunc
}

// NewConditionRegistry creates an empty registry.
func NewConditionRegistry() *ConditionRegistry {
	return &ConditionRegistry{funcs: make(map[string]ConditionFunc)}
}

// Register adds a named predicate. Re-registering a name is an authoring
// error.
func (r *ConditionRegistry) Register(name string, fn ConditionFunc) error {
	if r == nil || r.funcs == nil {
		return fmt.Errorf("condition registry is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("condition name is required")
	}
	if fn == nil {
		return fmt.Errorf("condition %q: predicate is required", name)
	}
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("condition %q is already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Eval runs the named predicate. Unregistered names evaluate to false so a
// catalog shipped ahead of its predicate never grants by accident.
func (r *ConditionRegistry) Eval(name string, ctx ConditionContext) bool {
	if r == nil {
		return false
	}
	fn, ok := r.funcs[strings.TrimSpace(name)]
	if !ok || fn == nil {
		return false
	}
	return fn(ctx)
}

// Names of the conditions shipped with the service.
const (
	ConditionAccountAgeDays = "account_age_days"
	ConditionNightOwl       = "night_owl"
)

// Parameter names understood by the shipped conditions.
const (
	ParamMinDays       = "min_days"
	ParamMinActivities = "min_activities"
	ParamMinOpenings   = "min_openings"
)

// DefaultConditions returns a registry with the shipped predicates.
func DefaultConditions() *ConditionRegistry {
	registry := NewConditionRegistry()
	// Registration of compiled-in names cannot collide.
	_ = registry.Register(ConditionAccountAgeDays, accountAgeDays)
	_ = registry.Register(ConditionNightOwl, nightOwl)
	return registry
}

// accountAgeDays is satisfied once the account is at least min_days old.
func accountAgeDays(ctx ConditionContext) bool {
	minDays := ctx.IntParam(ParamMinDays, 365)
	if minDays <= 0 {
		return false
	}
	return ctx.AccountAge >= time.Duration(minDays)*24*time.Hour
}

// nightOwl is satisfied by sustained late-night usage: enough midnight
// activities alongside a minimum number of app openings.
func nightOwl(ctx ConditionContext) bool {
	minActivities := ctx.IntParam(ParamMinActivities, 5)
	minOpenings := ctx.IntParam(ParamMinOpenings, 0)
	if minActivities <= 0 {
		return false
	}
	return ctx.Stats.MidnightActivities >= minActivities &&
		ctx.Stats.TotalAppOpenings >= minOpenings
}
