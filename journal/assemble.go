package journal

import (
	"strings"
	"time"

	"github.com/rustyeddy/tradedesk/checklist"
	"github.com/rustyeddy/tradedesk/market"
	"github.com/rustyeddy/tradedesk/pkg/id"
	"github.com/rustyeddy/tradedesk/pnl"
	"github.com/rustyeddy/tradedesk/risk"
)

// DisplayLayout is how the human-readable "time" field is rendered.
const DisplayLayout = "2006-01-02 15:04:05"

// Sources recorded on trade records.
const (
	SourceQuick  = "quick"
	SourceManual = "manual"
	SourceImport = "import"
)

// Assembler turns a scored, priced plan into an immutable TradeRecord.
// It does no I/O.
type Assembler struct {
	Now      func() time.Time
	IDs      *id.Generator
	Accounts AccountLookup
	Location *time.Location // for the display time; defaults to time.Local
}

// NewAssembler returns an Assembler using the wall clock.
func NewAssembler(accounts AccountLookup) *Assembler {
	return &Assembler{Now: time.Now, IDs: id.NewGenerator(), Accounts: accounts}
}

// AssembleInput is everything a trade record is built from.
type AssembleInput struct {
	Instrument   string
	Direction    pnl.Direction
	Plan         pnl.Plan
	PnL          *float64
	Result       pnl.Result
	Checklist    *checklist.Snapshot
	Link         string // category or legacy account id
	SetupID      string
	IdeaNotes    string
	JournalNotes string
	Screenshots  []string
	Source       string
	At           time.Time // zero means now
}

// Assemble builds the record. id, timestamp and time all derive from one instant.
func (a *Assembler) Assemble(in AssembleInput) (TradeRecord, error) {
	instrument := market.NormalizeSymbol(in.Instrument)
	if instrument == "" {
		return TradeRecord{}, ErrMissingInstrument
	}

	at := in.At
	if at.IsZero() {
		at = a.now()
	}
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	gen := a.IDs
	if gen == nil {
		gen = id.NewGenerator()
		a.IDs = gen
	}

	rec := TradeRecord{
		ID:          gen.NewAt(at),
		Instrument:  instrument,
		Direction:   in.Direction,
		Timestamp:   at.UTC(),
		Time:        at.In(loc).Format(DisplayLayout),
		Plan:        PlanSnapshot{Plan: in.Plan, RiskReward: pnl.Round2(risk.PlanRR(in.Plan))},
		Result:      in.Result,
		Checklist:   in.Checklist,
		SetupID:     strings.TrimSpace(in.SetupID),
		Notes:       JoinNotes(in.IdeaNotes, in.JournalNotes),
		Screenshots: in.Screenshots,
		Source:      in.Source,
	}
	if in.PnL != nil {
		v := pnl.Round2(*in.PnL)
		rec.PnL = &v
	}
	ResolveLinkage(in.Link, a.Accounts).apply(&rec)
	return rec, nil
}

// QuickInput is a one-click win/loss log from the checklist screen.
type QuickInput struct {
	Instrument   string
	Direction    pnl.Direction
	Plan         pnl.Plan
	Win          bool
	Checklist    *checklist.Snapshot
	Link         string
	SetupID      string
	IdeaNotes    string
	JournalNotes string
}

// Quick computes P&L from the plan and assembles the record. Any P&L input
// error is returned untouched so nothing gets saved. The result follows the
// button pressed, not the sign of the P&L.
func (a *Assembler) Quick(in QuickInput) (TradeRecord, pnl.Outcome, error) {
	out, err := pnl.QuickFromPlan(in.Plan, in.Direction, in.Win, in.Instrument)
	if err != nil {
		return TradeRecord{}, pnl.Outcome{}, err
	}
	result := pnl.Loss
	if in.Win {
		result = pnl.Win
	}
	v := out.PnL
	rec, err := a.Assemble(AssembleInput{
		Instrument:   in.Instrument,
		Direction:    in.Direction,
		Plan:         in.Plan,
		PnL:          &v,
		Result:       result,
		Checklist:    in.Checklist,
		Link:         in.Link,
		SetupID:      in.SetupID,
		IdeaNotes:    in.IdeaNotes,
		JournalNotes: in.JournalNotes,
		Source:       SourceQuick,
	})
	return rec, out, err
}

// FromClosed turns a FIFO-matched round trip into a record stamped at its close time.
func (a *Assembler) FromClosed(c pnl.Closed, link string) (TradeRecord, error) {
	v := c.PnL
	return a.Assemble(AssembleInput{
		Instrument: c.Instrument,
		Direction:  c.Direction,
		Plan: pnl.Plan{
			Entry: formatPrice(c.Entry),
			Size:  formatPrice(c.Size),
		},
		PnL:          &v,
		Result:       c.Result,
		Link:         link,
		JournalNotes: "Exit " + formatPrice(c.Exit) + " (" + c.Kind.String() + ")",
		Source:       SourceImport,
		At:           c.CloseTime,
	})
}

// JoinNotes drops blank parts and separates the rest with a blank line.
func JoinNotes(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

func (a *Assembler) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
