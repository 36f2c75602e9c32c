package checklist

// Scored is an item weight paired with whether it was ticked.
type Scored struct {
	Weight  int
	Checked bool
}

// Result is a weighted percentage score. When TotalWeight is zero the setup
// is not rated and Percentage carries no meaning.
type Result struct {
	Percentage     int  `json:"percentage"`
	TotalWeight    int  `json:"totalWeight"`
	AchievedWeight int  `json:"achievedWeight"`
	Rated          bool `json:"rated"`
}

// Score computes round-half-up(achieved / total * 100). Items with a
// non-positive weight contribute nothing.
func Score(items []Scored) Result {
	var r Result
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		r.TotalWeight += it.Weight
		if it.Checked {
			r.AchievedWeight += it.Weight
		}
	}
	if r.TotalWeight == 0 {
		return r
	}
	r.Rated = true
	r.Percentage = percent(r.AchievedWeight, r.TotalWeight)
	return r
}

// percent rounds half up using integer arithmetic only.
func percent(achieved, total int) int {
	return (200*achieved + total) / (2 * total)
}

// Strength classifies how well a single category was satisfied.
type Strength int

const (
	Neutral Strength = iota
	Strong
	Weak
	Unrated
)

func (s Strength) String() string {
	switch s {
	case Strong:
		return "strong"
	case Weak:
		return "weak"
	case Unrated:
		return "unrated"
	default:
		return "neutral"
	}
}

const (
	strongRatio = 0.70
	weakRatio   = 0.40
)

// ClassifyGroup labels a category by its achieved/max ratio. Empty categories
// are Unrated and count as neither strong nor weak.
func ClassifyGroup(achieved, max int) Strength {
	if max <= 0 {
		return Unrated
	}
	ratio := float64(achieved) / float64(max)
	switch {
	case ratio >= strongRatio:
		return Strong
	case ratio <= weakRatio:
		return Weak
	default:
		return Neutral
	}
}

// Tier is the risk band a score falls into.
type Tier string

const (
	TierHighRisk Tier = "high-risk"
	TierMid      Tier = "mid"
	TierLowRisk  Tier = "low-risk"
)

type Verdict struct {
	Label        string `json:"label"`
	AllowedLabel string `json:"allowedLabel"`
	Tier         Tier   `json:"tier"`
}

// The verdict bands are fixed; Settings.MinScore is a separate gate.
const (
	weakBelow       = 40
	strongAtOrAbove = 70
)

// VerdictFor maps a percentage to its verdict tier.
func VerdictFor(percentage int) Verdict {
	switch {
	case percentage < weakBelow:
		return Verdict{Label: "Weak setup", AllowedLabel: "Not allowed to take", Tier: TierHighRisk}
	case percentage < strongAtOrAbove:
		return Verdict{Label: "OK, but not A+", AllowedLabel: "Only with A+ context", Tier: TierMid}
	default:
		return Verdict{Label: "Strong setup", AllowedLabel: "Within rule set", Tier: TierLowRisk}
	}
}
