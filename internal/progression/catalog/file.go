package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/glimmerhq/progression/internal/progression/domain"
	"gopkg.in/yaml.v3"
)

// fileDocument is the YAML overlay schema.
type fileDocument struct {
	Achievements []fileDefinition `yaml:"achievements"`
}

type fileDefinition struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Rarity      string            `yaml:"rarity"`
	Tier        int               `yaml:"tier"`
	Points      int               `yaml:"points"`
	Category    string            `yaml:"category"`
	Criterion   fileCriterion     `yaml:"criterion"`
	Reward      map[string]string `yaml:"reward"`
}

type fileCriterion struct {
	Kind       string            `yaml:"kind"`
	Thresholds []fileThreshold   `yaml:"thresholds"`
	Condition  string            `yaml:"condition"`
	Params     map[string]string `yaml:"params"`
}

type fileThreshold struct {
	Key       string `yaml:"key"`
	Threshold int    `yaml:"threshold"`
}

// LoadFile reads achievement definitions from a YAML overlay file. The
// returned definitions are validated when merged into a catalog.
func LoadFile(path string) ([]Definition, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	defs := make([]Definition, 0, len(doc.Achievements))
	for _, entry := range doc.Achievements {
		def := Definition{
			ID:          strings.TrimSpace(entry.ID),
			Title:       strings.TrimSpace(entry.Title),
			Description: strings.TrimSpace(entry.Description),
			Rarity:      Rarity(strings.TrimSpace(entry.Rarity)),
			Tier:        entry.Tier,
			Points:      entry.Points,
			Category:    Category(strings.TrimSpace(entry.Category)),
			Criterion: Criterion{
				Kind:      CriterionKind(strings.TrimSpace(entry.Criterion.Kind)),
				Condition: strings.TrimSpace(entry.Criterion.Condition),
				Params:    entry.Criterion.Params,
			},
		}
		for _, th := range entry.Criterion.Thresholds {
			def.Criterion.Thresholds = append(def.Criterion.Thresholds, Threshold{
				Key:       domain.StatKey(strings.TrimSpace(th.Key)),
				Threshold: th.Threshold,
			})
		}
		if kind, ok := entry.Reward["kind"]; ok {
			def.Reward = &Reward{Kind: kind, Value: entry.Reward["value"]}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Load returns the builtin catalog, optionally merged with an overlay file.
// An empty path yields the builtin catalog unchanged.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}
	overlay, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	merged, err := Merge(Builtin(), overlay)
	if err != nil {
		return nil, fmt.Errorf("merge catalog overlay: %w", err)
	}
	return merged, nil
}
