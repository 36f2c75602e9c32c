// Package journal assembles, stores and exports trade records.
package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradedesk/checklist"
	"github.com/rustyeddy/tradedesk/pnl"
)

// Category is the asset class an account or trade belongs to.
type Category string

const (
	Crypto  Category = "crypto"
	Forex   Category = "forex"
	Stocks  Category = "stocks"
	Futures Category = "futures"
	Options Category = "options"
	Other   Category = "other"
)

// Categories is the fixed category enum in display order.
var Categories = []Category{Crypto, Forex, Stocks, Futures, Options, Other}

// ParseCategory reports whether s names one of the fixed categories.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Categories {
		if c == k {
			return c, true
		}
	}
	return "", false
}

var (
	ErrNotFound          = errors.New("not found")
	ErrMissingInstrument = errors.New("instrument is required")
	ErrInvalidAccount    = errors.New("invalid account")
	ErrQuotaExceeded     = errors.New("storage quota exceeded")
)

// PlanSnapshot is the plan as it stood when the trade was saved.
type PlanSnapshot struct {
	pnl.Plan
	RiskReward float64 `json:"riskReward,omitempty"`
}

// TradeRecord is one journal entry. Only Notes and SupabaseID change after creation.
type TradeRecord struct {
	ID          string              `json:"id"`
	Instrument  string              `json:"instrument"`
	Direction   pnl.Direction       `json:"direction"`
	Timestamp   time.Time           `json:"timestamp"`
	Time        string              `json:"time"`
	Plan        PlanSnapshot        `json:"plan"`
	PnL         *float64            `json:"pnl,omitempty"`
	Result      pnl.Result          `json:"result"`
	Checklist   *checklist.Snapshot `json:"checklist,omitempty"`
	Category    Category            `json:"category,omitempty"`
	AccountID   string              `json:"accountId,omitempty"`
	SetupID     string              `json:"setupId,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Screenshots []string            `json:"screenshots,omitempty"`
	Source      string              `json:"source,omitempty"`
	SupabaseID  string              `json:"supabaseId,omitempty"`
}

// HasPnL distinguishes "no P&L entered" from a P&L of zero.
func (t TradeRecord) HasPnL() bool { return t.PnL != nil }

// PnLValue returns the P&L or zero when none was entered.
func (t TradeRecord) PnLValue() float64 {
	if t.PnL == nil {
		return 0
	}
	return *t.PnL
}

// Score returns the checklist score and whether the trade carries one.
func (t TradeRecord) Score() (int, bool) {
	if t.Checklist == nil {
		return 0, false
	}
	return t.Checklist.Score, true
}

// Account is a trading account. Its current balance is always derived from trades.
type Account struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	InitialBalance float64   `json:"initialBalance"`
	Category       Category  `json:"category"`
	CreatedAt      time.Time `json:"createdAt"`
	SupabaseID     string    `json:"supabaseId,omitempty"`
}

// Validate checks that the account has a name, a known category and a non-negative balance.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	if a.InitialBalance < 0 {
		return fmt.Errorf("%w: initial balance must not be negative", ErrInvalidAccount)
	}
	if _, ok := ParseCategory(string(a.Category)); !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidAccount, a.Category)
	}
	return nil
}

// AccountLookup finds accounts by id.
type AccountLookup interface {
	Account(id string) (Account, bool)
}

// LinkKind says which side of a Linkage is set.
type LinkKind int

const (
	LinkNone LinkKind = iota
	LinkCategory
	LinkAccount
)

// Linkage ties a trade to a category, either directly or through a legacy account id.
type Linkage struct {
	Kind      LinkKind
	Category  Category
	AccountID string
}

// ResolveLinkage decides once whether value is a category or an account id.
// Account ids are resolved to the account's category immediately; an
// unknown account keeps its id with an empty category.
func ResolveLinkage(value string, accounts AccountLookup) Linkage {
	value = strings.TrimSpace(value)
	if value == "" {
		return Linkage{Kind: LinkNone}
	}
	if c, ok := ParseCategory(value); ok {
		return Linkage{Kind: LinkCategory, Category: c}
	}
	l := Linkage{Kind: LinkAccount, AccountID: value}
	if accounts != nil {
		if acc, ok := accounts.Account(value); ok {
			l.Category = acc.Category
		}
	}
	return l
}

func (l Linkage) apply(t *TradeRecord) {
	t.Category = l.Category
	if l.Kind == LinkAccount {
		t.AccountID = l.AccountID
	}
}
