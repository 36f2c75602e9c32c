// Package checklist scores a trade setup against a weighted, user-editable
// checklist and maps the score to a qualitative verdict.
package checklist

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMinScore is the "allowed to take" gate used when none is configured.
const DefaultMinScore = 70

// Item is one yes/no criterion. Weight must be at least 1.
type Item struct {
	Text   string `json:"text" yaml:"text"`
	Weight int    `json:"weight" yaml:"weight"`
}

// Category groups related items under a stable id such as "ms" or "of".
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Subtitle    string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Items       []Item `json:"items" yaml:"items"`
}

// MaxWeight is the sum of the category's item weights.
func (c Category) MaxWeight() int {
	total := 0
	for _, it := range c.Items {
		if it.Weight > 0 {
			total += it.Weight
		}
	}
	return total
}

// Settings holds document-wide options. A nil MinScore means the document
// does not set one, which is not the same as a gate of 0.
type Settings struct {
	MinScore *int `json:"minScore,omitempty" yaml:"min_score,omitempty"`
}

// Config is the whole checklist document. It is always saved and loaded as a unit.
type Config struct {
	Categories []Category `json:"categories" yaml:"categories"`
	Settings   Settings   `json:"settings" yaml:"settings"`
}

// Category returns the category with the given id.
func (c Config) Category(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// MinScore is the configured gate, or DefaultMinScore when unset.
func (c Config) MinScore() int {
	if c.Settings.MinScore == nil {
		return DefaultMinScore
	}
	return *c.Settings.MinScore
}

// SetMinScore sets the gate. 0 is a valid gate that allows everything.
func (c *Config) SetMinScore(v int) {
	c.Settings.MinScore = &v
}

// Allowed applies the MinScore gate. It is independent of the verdict tiers.
func (c Config) Allowed(percentage int) bool {
	return percentage >= c.MinScore()
}

var (
	ErrEmptyCategoryID     = errors.New("category id is required")
	ErrDuplicateCategoryID = errors.New("duplicate category id")
	ErrInvalidWeight       = errors.New("item weight must be at least 1")
	ErrInvalidMinScore     = errors.New("minScore must be between 0 and 100")
)

// Validate checks the structure of a checklist document.
func (c Config) Validate() error {
	if m := c.Settings.MinScore; m != nil && (*m < 0 || *m > 100) {
		return fmt.Errorf("%w: %d", ErrInvalidMinScore, *m)
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat.ID) == "" {
			return ErrEmptyCategoryID
		}
		if seen[cat.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateCategoryID, cat.ID)
		}
		seen[cat.ID] = true
		for i, it := range cat.Items {
			if it.Weight < 1 {
				return fmt.Errorf("%w: %s item %d (%q) has weight %d",
					ErrInvalidWeight, cat.ID, i, it.Text, it.Weight)
			}
		}
	}
	return nil
}

// Merge fills in whatever a stored document is missing from defaults.
// A stored document without categories takes the default categories; a
// stored MinScore, including 0, is always kept.
func Merge(stored *Config, defaults Config) Config {
	if stored == nil {
		return defaults
	}
	out := *stored
	if len(out.Categories) == 0 {
		out.Categories = defaults.Categories
	}
	if out.Settings.MinScore == nil {
		out.Settings.MinScore = defaults.Settings.MinScore
	}
	return out
}

// DefaultConfig is the seed checklist used on first run and on reset.
func DefaultConfig() Config {
	return Config{
		Categories: []Category{
			{
				ID:       "ms",
				Title:    "Market Structure",
				Subtitle: "Where is price in the bigger picture?",
				Items: []Item{
					{Text: "Higher-timeframe trend aligned with trade direction", Weight: 3},
					{Text: "Entry at a marked key level", Weight: 2},
					{Text: "Clean break of structure on the entry timeframe", Weight: 2},
				},
			},
			{
				ID:       "of",
				Title:    "Order Flow",
				Subtitle: "Is anyone actually trading it?",
				Items: []Item{
					{Text: "Volume confirms the move", Weight: 2},
					{Text: "Absorption or delta supports the entry", Weight: 2},
					{Text: "Liquidity sweep before entry", Weight: 1},
				},
			},
			{
				ID:       "rk",
				Title:    "Risk",
				Subtitle: "Can the trade be wrong cheaply?",
				Items: []Item{
					{Text: "Stop loss beyond the invalidation point", Weight: 3},
					{Text: "Risk at most 1% of the account", Weight: 3},
					{Text: "Reward to risk at least 2:1", Weight: 2},
				},
			},
			{
				ID:       "ps",
				Title:    "Psychology",
				Subtitle: "Am I trading my plan?",
				Items: []Item{
					{Text: "Not revenge trading after a loss", Weight: 2},
					{Text: "Inside the daily loss limit", Weight: 2},
					{Text: "Setup is in the playbook", Weight: 1},
				},
			},
		},
		Settings: Settings{MinScore: intPtr(DefaultMinScore)},
	}
}

func intPtr(v int) *int { return &v }
