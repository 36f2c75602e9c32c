package checklist

import (
	"fmt"
	"strconv"
	"strings"
)

// State records which items are ticked for the trade being planned.
// Keys come from Key; it is never persisted on its own.
type State map[string]bool

// Key identifies item index i of category id.
func Key(categoryID string, i int) string {
	return categoryID + "." + strconv.Itoa(i)
}

// ParseKey splits a Key back into its category id and item index.
func ParseKey(key string) (string, int, error) {
	dot := strings.LastIndexByte(key, '.')
	if dot <= 0 || dot == len(key)-1 {
		return "", 0, fmt.Errorf("checklist key %q: want <category>.<index>", key)
	}
	i, err := strconv.Atoi(key[dot+1:])
	if err != nil || i < 0 {
		return "", 0, fmt.Errorf("checklist key %q: bad index", key)
	}
	return key[:dot], i, nil
}

// Check ticks an item.
func (s State) Check(categoryID string, i int) {
	s[Key(categoryID, i)] = true
}

// GroupResult is the per-category part of a snapshot.
type GroupResult struct {
	Score      int    `json:"score"`
	Max        int    `json:"max"`
	Percentage int    `json:"percentage"`
	Checked    []Item `json:"checked"`
}

// Snapshot is what a trade record keeps of the checklist at save time.
type Snapshot struct {
	Score  int                    `json:"score"`
	Groups map[string]GroupResult `json:"groups"`
}

// Summary is the display-side reading of a snapshot.
type Summary struct {
	Result  Result
	Verdict Verdict
	Allowed bool
	Strong  []string // category titles
	Weak    []string
}

// Text renders the strong/weak summary line.
func (s Summary) Text() string {
	if !s.Result.Rated {
		return "Not rated"
	}
	var parts []string
	if len(s.Strong) > 0 {
		parts = append(parts, "Strong: "+strings.Join(s.Strong, ", "))
	}
	if len(s.Weak) > 0 {
		parts = append(parts, "Weak: "+strings.Join(s.Weak, ", "))
	}
	if len(parts) == 0 {
		return "Balanced setup"
	}
	return strings.Join(parts, ". ")
}

// Evaluate scores every category of cfg against state.
func Evaluate(cfg Config, state State) (Snapshot, Summary) {
	snap := Snapshot{Groups: make(map[string]GroupResult, len(cfg.Categories))}
	var all []Scored
	var sum Summary

	for _, cat := range cfg.Categories {
		var group []Scored
		g := GroupResult{Checked: []Item{}}
		for i, it := range cat.Items {
			checked := state[Key(cat.ID, i)]
			group = append(group, Scored{Weight: it.Weight, Checked: checked})
			if checked && it.Weight > 0 {
				g.Checked = append(g.Checked, it)
			}
		}
		r := Score(group)
		g.Score = r.AchievedWeight
		g.Max = r.TotalWeight
		g.Percentage = r.Percentage
		snap.Groups[cat.ID] = g
		all = append(all, group...)

		name := cat.Title
		if name == "" {
			name = cat.ID
		}
		switch ClassifyGroup(g.Score, g.Max) {
		case Strong:
			sum.Strong = append(sum.Strong, name)
		case Weak:
			sum.Weak = append(sum.Weak, name)
		}
	}

	sum.Result = Score(all)
	snap.Score = sum.Result.Percentage
	sum.Verdict = VerdictFor(sum.Result.Percentage)
	sum.Allowed = sum.Result.Rated && cfg.Allowed(sum.Result.Percentage)
	return snap, sum
}
