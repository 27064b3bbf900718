// Package catalog holds the immutable achievement definition table and the
// typed unlock criteria evaluated against user stats.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glimmerhq/progression/internal/progression/domain"
)

// ErrDuplicateID indicates two definitions share an achievement ID.
var ErrDuplicateID = errors.New("duplicate achievement id")

// Rarity grades how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Category groups achievements by product surface.
type Category string

const (
	CategoryMessaging Category = "messaging"
	CategoryCapture   Category = "capture"
	CategorySocial    Category = "social"
	CategoryGaming    Category = "gaming"
	CategoryStreak    Category = "streak"
	CategorySpecial   Category = "special"
)

// CriterionKind tags the unlock criterion variant.
type CriterionKind string

const (
	// CriterionStatThreshold gates on one or more counter thresholds.
	CriterionStatThreshold CriterionKind = "stat_threshold"
	// CriterionStreak gates on streak fields; evaluation is identical to
	// CriterionStatThreshold, the tag is kept for catalog readability.
	CriterionStreak CriterionKind = "streak"
	// CriterionSpecial gates on a named predicate from the condition registry.
	CriterionSpecial CriterionKind = "special_condition"
)

// Threshold is one stat-key requirement. When a criterion lists several, all
// must hold.
type Threshold struct {
	Key       domain.StatKey
	Threshold int
}

// Criterion is the tagged unlock rule for one definition.
type Criterion struct {
	Kind       CriterionKind
	Thresholds []Threshold
	Condition  string
	Params     map[string]string
}

// Reward is optional metadata handed to the host when an achievement unlocks.
type Reward struct {
	Kind  string
	Value string
}

// Definition is one immutable achievement rule plus its display metadata.
type Definition struct {
	ID          string
	Title       string
	Description string
	Rarity      Rarity
	Tier        int
	Points      int
	Category    Category
	Criterion   Criterion
	Reward      *Reward
}

// Catalog is the validated, immutable definition table.
type Catalog struct {
	defs []Definition
	byID map[string]Definition
}

// New validates definitions and builds a catalog. Definitions keep their
// given order for host display.
func New(defs []Definition) (*Catalog, error) {
	byID := make(map[string]Definition, len(defs))
	ordered := make([]Definition, 0, len(defs))
	for _, def := range defs {
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("definition %q: %w", def.ID, err)
		}
		if _, exists := byID[def.ID]; exists {
			return nil, fmt.Errorf("definition %q: %w", def.ID, ErrDuplicateID)
		}
		byID[def.ID] = def
		ordered = append(ordered, def)
	}
	return &Catalog{defs: ordered, byID: byID}, nil
}

// Merge builds a new catalog from the base definitions plus the overlay,
// rejecting overlay IDs that collide with the base.
func Merge(base *Catalog, overlay []Definition) (*Catalog, error) {
	if base == nil {
		return New(overlay)
	}
	merged := make([]Definition, 0, len(base.defs)+len(overlay))
	merged = append(merged, base.defs...)
	merged = append(merged, overlay...)
	return New(merged)
}

// Definitions returns the definition table in catalog order.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Get returns the definition for an achievement ID.
func (c *Catalog) Get(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	def, ok := c.byID[id]
	return def, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// validateDefinition checks one definition is well formed. Thresholds must be
// positive and address known stat keys; a negative or zero threshold is a
// catalog authoring error, not a runtime condition.
func validateDefinition(def Definition) error {
	if strings.TrimSpace(def.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(def.Title) == "" {
		return errors.New("title is required")
	}
	switch def.Criterion.Kind {
	case CriterionStatThreshold, CriterionStreak:
		if len(def.Criterion.Thresholds) == 0 {
			return errors.New("threshold criterion requires at least one threshold")
		}
		for _, th := range def.Criterion.Thresholds {
			if !domain.KnownStatKey(th.Key) {
				return fmt.Errorf("unknown stat key %q", th.Key)
			}
			if th.Threshold <= 0 {
				return fmt.Errorf("threshold for %q must be positive, got %d", th.Key, th.Threshold)
			}
		}
	case CriterionSpecial:
		if strings.TrimSpace(def.Criterion.Condition) == "" {
			return errors.New("special criterion requires a condition name")
		}
	default:
		return fmt.Errorf("unknown criterion kind %q", def.Criterion.Kind)
	}
	return nil
}
