package journal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/tradedesk/checklist"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode entry. Structured
// facts live in the PROPERTIES drawer; notes fill the Review section.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** %s %s (%s)", strings.ToUpper(string(t.Result)), t.Instrument, shortID(t.ID))
	if t.Result == "" {
		heading = fmt.Sprintf("** %s (%s)", t.Instrument, shortID(t.ID))
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", t.Instrument)
	prop(&b, "DIRECTION", string(t.Direction))
	fmt.Fprintf(&b, ":TIMESTAMP: %s\n", t.Timestamp.UTC().Format(time.RFC3339))
	prop(&b, "CATEGORY", string(t.Category))
	prop(&b, "ACCOUNT", t.AccountID)
	prop(&b, "SETUP", t.SetupID)
	prop(&b, "ENTRY", t.Plan.Entry)
	prop(&b, "SL", t.Plan.StopLoss)
	prop(&b, "TP", t.Plan.TakeProfit)
	prop(&b, "SIZE", t.Plan.Size)
	prop(&b, "LEVERAGE", t.Plan.Leverage)
	if t.Plan.RiskReward > 0 {
		fmt.Fprintf(&b, ":RR: %.2f\n", t.Plan.RiskReward)
	}
	if t.PnL != nil {
		fmt.Fprintf(&b, ":PNL: %.2f\n", *t.PnL)
	}
	if s, ok := t.Score(); ok {
		fmt.Fprintf(&b, ":SCORE: %d\n", s)
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")

	if t.Checklist != nil && len(t.Checklist.Groups) > 0 {
		b.WriteString("*** Checklist\n")
		for _, gid := range sortedGroupIDs(t.Checklist) {
			g := t.Checklist.Groups[gid]
			fmt.Fprintf(&b, "- %s: %d/%d (%d%%)\n", gid, g.Score, g.Max, g.Percentage)
		}
		b.WriteString("\n")
	}

	b.WriteString("*** Review\n")
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		b.WriteString(notes)
		b.WriteString("\n")
	} else {
		b.WriteString("- \n")
	}
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func prop(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, ":%s: %s\n", name, value)
}

// shortID keeps the random tail of a ULID; the head is a timestamp shared by
// trades logged close together.
func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}

func sortedGroupIDs(s *checklist.Snapshot) []string {
	ids := make([]string, 0, len(s.Groups))
	for id := range s.Groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
