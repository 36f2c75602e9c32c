package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/tradedesk/checklist"
	"github.com/rustyeddy/tradedesk/pkg/id"
)

// Book owns the in-memory journal and writes every change back to the Store
// as a whole document. Writes are serialized; each one is load-modify-save of
// the full collection.
type Book struct {
	mu    sync.Mutex
	store Store
	log   zerolog.Logger

	syncer Syncer
	wg     sync.WaitGroup

	loaded   bool
	trades   []TradeRecord
	accounts []Account
	balances map[Category]float64
}

type Option func(*Book)

func WithLogger(l zerolog.Logger) Option {
	return func(b *Book) { b.log = l }
}

func WithSyncer(s Syncer) Option {
	return func(b *Book) { b.syncer = s }
}

func NewBook(store Store, opts ...Option) *Book {
	b := &Book{store: store, log: zerolog.Nop()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Init loads all collections from the store. Unreadable or corrupt documents
// are logged and replaced by empty collections.
func (b *Book) Init(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = false
	b.ensureLoaded(ctx)
}

// Reset drops the in-memory state; the next call reloads from the store.
func (b *Book) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = false
	b.trades = nil
	b.accounts = nil
	b.balances = nil
}

func (b *Book) ensureLoaded(ctx context.Context) {
	if b.loaded {
		return
	}
	b.trades = nil
	b.accounts = nil
	b.balances = make(map[Category]float64)

	b.loadJSON(ctx, KeyAccounts, &b.accounts)
	b.loadJSON(ctx, KeyTrades, &b.trades)
	b.loadJSON(ctx, KeyBalances, &b.balances)
	if b.balances == nil {
		b.balances = make(map[Category]float64)
	}
	for i := range b.trades {
		b.normalize(&b.trades[i])
	}
	sortTrades(b.trades)
	b.loaded = true
}

// normalize resolves legacy account-only records to a category once, at load.
func (b *Book) normalize(t *TradeRecord) {
	if t.Category != "" || t.AccountID == "" {
		return
	}
	if acc, ok := b.account(t.AccountID); ok {
		t.Category = acc.Category
	}
}

func (b *Book) loadJSON(ctx context.Context, key string, dst any) {
	data, err := b.store.Load(ctx, key)
	if err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("load failed, using empty collection")
		return
	}
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("corrupt document, using empty collection")
		// Unmarshal may have partially filled dst.
		switch v := dst.(type) {
		case *[]TradeRecord:
			*v = nil
		case *[]Account:
			*v = nil
		case *map[Category]float64:
			*v = make(map[Category]float64)
		}
	}
}

func (b *Book) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// saveTrades persists the trade collection. When the store is over quota it
// drops screenshots, newest record first, then everywhere, and retries.
func (b *Book) saveTrades(ctx context.Context) error {
	err := b.saveJSON(ctx, KeyTrades, b.trades)
	if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	if n := len(b.trades); n > 0 && len(b.trades[n-1].Screenshots) > 0 {
		b.log.Warn().Str("trade_id", b.trades[n-1].ID).Msg("quota exceeded, dropping screenshots of new trade")
		b.trades[n-1].Screenshots = nil
		err = b.saveJSON(ctx, KeyTrades, b.trades)
		if !errors.Is(err, ErrQuotaExceeded) {
			return err
		}
	}

	b.log.Warn().Msg("quota exceeded, dropping all screenshots")
	for i := range b.trades {
		b.trades[i].Screenshots = nil
	}
	return b.saveJSON(ctx, KeyTrades, b.trades)
}

// AddTrade appends rec and persists the journal. The trade counts as saved
// once local persistence succeeds; remote sync runs in the background.
func (b *Book) AddTrade(ctx context.Context, rec TradeRecord) (TradeRecord, error) {
	b.mu.Lock()
	b.ensureLoaded(ctx)

	if rec.ID == "" {
		rec.ID = id.New()
	}
	for _, t := range b.trades {
		if t.ID == rec.ID {
			b.mu.Unlock()
			return TradeRecord{}, fmt.Errorf("trade %s already exists", rec.ID)
		}
	}
	b.normalize(&rec)

	prev := b.trades
	b.trades = append(append([]TradeRecord(nil), prev...), rec)
	if err := b.saveTrades(ctx); err != nil {
		b.trades = prev
		b.mu.Unlock()
		return TradeRecord{}, err
	}
	saved := b.trades[len(b.trades)-1]
	sortTrades(b.trades)
	b.mu.Unlock()

	b.log.Info().Str("trade_id", saved.ID).Str("instrument", saved.Instrument).
		Str("result", string(saved.Result)).Msg("trade saved")
	b.syncTrade(saved)
	return saved, nil
}

// AddTrades saves a batch with a single write, as an import does.
func (b *Book) AddTrades(ctx context.Context, recs []TradeRecord) error {
	if len(recs) == 0 {
		return nil
	}
	b.mu.Lock()
	b.ensureLoaded(ctx)

	prev := b.trades
	next := append([]TradeRecord(nil), prev...)
	for _, r := range recs {
		b.normalize(&r)
		next = append(next, r)
	}
	b.trades = next
	if err := b.saveTrades(ctx); err != nil {
		b.trades = prev
		b.mu.Unlock()
		return err
	}
	added := append([]TradeRecord(nil), b.trades[len(prev):]...)
	sortTrades(b.trades)
	b.mu.Unlock()

	b.log.Info().Int("count", len(added)).Msg("trades imported")
	for _, t := range added {
		b.syncTrade(t)
	}
	return nil
}

// mutate applies fn to the trade with the given id and persists the result.
func (b *Book) mutate(ctx context.Context, tradeID string, fn func(*TradeRecord)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)

	for i := range b.trades {
		if b.trades[i].ID != tradeID {
			continue
		}
		prev := b.trades
		b.trades = append([]TradeRecord(nil), prev...)
		fn(&b.trades[i])
		if err := b.saveTrades(ctx); err != nil {
			b.trades = prev
			return err
		}
		return nil
	}
	return fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
}

// UpdateNotes replaces a trade's notes, the only user-editable field.
func (b *Book) UpdateNotes(ctx context.Context, tradeID, notes string) error {
	return b.mutate(ctx, tradeID, func(t *TradeRecord) { t.Notes = notes })
}

// AttachSyncID records the remote id handed back by the Syncer.
func (b *Book) AttachSyncID(ctx context.Context, tradeID, remoteID string) error {
	return b.mutate(ctx, tradeID, func(t *TradeRecord) { t.SupabaseID = remoteID })
}

// DeleteTrade removes a trade.
func (b *Book) DeleteTrade(ctx context.Context, tradeID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)

	for i, t := range b.trades {
		if t.ID != tradeID {
			continue
		}
		prev := b.trades
		next := append(append([]TradeRecord(nil), prev[:i]...), prev[i+1:]...)
		b.trades = next
		if err := b.saveTrades(ctx); err != nil {
			b.trades = prev
			return err
		}
		return nil
	}
	return fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
}

// Trades returns every trade, oldest first.
func (b *Book) Trades(ctx context.Context) []TradeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)
	return append([]TradeRecord(nil), b.trades...)
}

// Trade finds one trade by id.
func (b *Book) Trade(ctx context.Context, tradeID string) (TradeRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)
	for _, t := range b.trades {
		if t.ID == tradeID {
			return t, nil
		}
	}
	return TradeRecord{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
}

// TradesFor returns trades in category c, oldest first.
func (b *Book) TradesFor(ctx context.Context, c Category) []TradeRecord {
	var out []TradeRecord
	for _, t := range b.Trades(ctx) {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// TradesBetween returns trades stamped within [start, end).
func (b *Book) TradesBetween(ctx context.Context, start, end time.Time) []TradeRecord {
	var out []TradeRecord
	for _, t := range b.Trades(ctx) {
		if !t.Timestamp.Before(start) && t.Timestamp.Before(end) {
			out = append(out, t)
		}
	}
	return out
}

// AddAccount validates and stores a new account.
func (b *Book) AddAccount(ctx context.Context, a Account) (Account, error) {
	if c, ok := ParseCategory(string(a.Category)); ok {
		a.Category = c
	}
	if err := a.Validate(); err != nil {
		return Account{}, err
	}

	b.mu.Lock()
	b.ensureLoaded(ctx)
	if a.ID == "" {
		a.ID = id.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, ok := b.account(a.ID); ok {
		b.mu.Unlock()
		return Account{}, fmt.Errorf("%w: account %s already exists", ErrInvalidAccount, a.ID)
	}
	prev := b.accounts
	b.accounts = append(append([]Account(nil), prev...), a)
	if err := b.saveJSON(ctx, KeyAccounts, b.accounts); err != nil {
		b.accounts = prev
		b.mu.Unlock()
		return Account{}, err
	}
	b.mu.Unlock()

	b.syncAccount(a)
	return a, nil
}

// Account implements AccountLookup. It reads the loaded state without reloading.
func (b *Book) Account(accountID string) (Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account(accountID)
}

func (b *Book) account(accountID string) (Account, bool) {
	for _, a := range b.accounts {
		if a.ID == accountID {
			return a, true
		}
	}
	return Account{}, false
}

// Accounts returns all accounts.
func (b *Book) Accounts(ctx context.Context) []Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)
	return append([]Account(nil), b.accounts...)
}

// Balance derives an account's current balance from its initial balance and
// the P&L of trades linked to it. It is never stored.
func (b *Book) Balance(ctx context.Context, accountID string) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)

	acc, ok := b.account(accountID)
	if !ok {
		return 0, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
	}
	bal := acc.InitialBalance
	for _, t := range b.trades {
		if t.AccountID == accountID {
			bal += t.PnLValue()
		}
	}
	return bal, nil
}

// SetStartingBalance sets the starting balance of a whole category.
func (b *Book) SetStartingBalance(ctx context.Context, c Category, amount float64) error {
	if _, ok := ParseCategory(string(c)); !ok {
		return fmt.Errorf("unknown category %q", c)
	}
	if amount < 0 {
		return errors.New("starting balance must not be negative")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)

	old, had := b.balances[c]
	b.balances[c] = amount
	if err := b.saveJSON(ctx, KeyBalances, b.balances); err != nil {
		if had {
			b.balances[c] = old
		} else {
			delete(b.balances, c)
		}
		return err
	}
	return nil
}

// StartingBalance returns the configured starting balance of a category.
func (b *Book) StartingBalance(ctx context.Context, c Category) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)
	return b.balances[c]
}

// CategoryBalance is the category starting balance plus the P&L of every
// trade in that category.
func (b *Book) CategoryBalance(ctx context.Context, c Category) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)

	bal := b.balances[c]
	for _, t := range b.trades {
		if t.Category == c {
			bal += t.PnLValue()
		}
	}
	return bal
}

// LoadChecklist returns the stored checklist merged over the defaults. A
// missing or corrupt document yields the defaults.
func (b *Book) LoadChecklist(ctx context.Context) checklist.Config {
	b.mu.Lock()
	defer b.mu.Unlock()

	var stored *checklist.Config
	data, err := b.store.Load(ctx, KeyChecklist)
	switch {
	case err != nil:
		b.log.Warn().Err(err).Msg("load checklist failed, using defaults")
	case len(data) > 0:
		var cfg checklist.Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			b.log.Warn().Err(err).Msg("corrupt checklist, using defaults")
		} else {
			stored = &cfg
		}
	}
	return checklist.Merge(stored, checklist.DefaultConfig())
}

// SaveChecklist validates cfg and replaces the stored document.
func (b *Book) SaveChecklist(ctx context.Context, cfg checklist.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveJSON(ctx, KeyChecklist, cfg)
}

// ResetChecklist restores the seed checklist.
func (b *Book) ResetChecklist(ctx context.Context) (checklist.Config, error) {
	cfg := checklist.DefaultConfig()
	if err := b.SaveChecklist(ctx, cfg); err != nil {
		return checklist.Config{}, err
	}
	return cfg, nil
}

func sortTrades(ts []TradeRecord) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Timestamp.Equal(ts[j].Timestamp) {
			return ts[i].ID < ts[j].ID
		}
		return ts[i].Timestamp.Before(ts[j].Timestamp)
	})
}
