package journal

import (
	"context"
	"time"
)

// Syncer is an optional remote copy of the journal. Local storage stays
// authoritative; Syncer failures are logged and otherwise ignored.
type Syncer interface {
	SaveTrade(ctx context.Context, t TradeRecord) (string, error)
	SaveAccount(ctx context.Context, a Account) (string, error)
	LoadTrades(ctx context.Context) ([]TradeRecord, error)
	LoadAccounts(ctx context.Context) ([]Account, error)
}

// syncTimeout bounds each background sync call.
const syncTimeout = 30 * time.Second

func (b *Book) syncTrade(t TradeRecord) {
	if b.syncer == nil {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		remoteID, err := b.syncer.SaveTrade(ctx, t)
		if err != nil {
			b.log.Warn().Err(err).Str("trade_id", t.ID).Msg("trade sync failed")
			return
		}
		if remoteID == "" || remoteID == t.SupabaseID {
			return
		}
		if err := b.AttachSyncID(ctx, t.ID, remoteID); err != nil {
			b.log.Warn().Err(err).Str("trade_id", t.ID).Msg("attach sync id")
		}
	}()
}

func (b *Book) syncAccount(a Account) {
	if b.syncer == nil {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if _, err := b.syncer.SaveAccount(ctx, a); err != nil {
			b.log.Warn().Err(err).Str("account_id", a.ID).Msg("account sync failed")
		}
	}()
}

// Wait blocks until in-flight background syncs finish.
func (b *Book) Wait() {
	b.wg.Wait()
}

// PullResult counts the records Pull merged into the local journal.
type PullResult struct {
	Trades   int
	Accounts int
}

// Pull merges remote trades and accounts that are missing locally. A failing
// Syncer leaves the local journal unchanged. A failed local save undoes both
// collections, so the journal never keeps half of a pull.
func (b *Book) Pull(ctx context.Context) (PullResult, error) {
	var res PullResult
	if b.syncer == nil {
		return res, nil
	}
	remoteTrades, err := b.syncer.LoadTrades(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("pull trades failed")
		return res, nil
	}
	remoteAccounts, err := b.syncer.LoadAccounts(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("pull accounts failed")
		remoteAccounts = nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoaded(ctx)

	prevAccounts, prevTrades := b.accounts, b.trades

	accounts := append([]Account(nil), prevAccounts...)
	haveAcc := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		haveAcc[a.ID] = true
	}
	for _, a := range remoteAccounts {
		if haveAcc[a.ID] {
			continue
		}
		accounts = append(accounts, a)
		haveAcc[a.ID] = true
		res.Accounts++
	}
	// Remote trades may link to accounts that arrived in this pull.
	b.accounts = accounts

	trades := append([]TradeRecord(nil), prevTrades...)
	have := make(map[string]bool, len(trades))
	for _, t := range trades {
		have[t.ID] = true
	}
	for _, t := range remoteTrades {
		if have[t.ID] {
			continue
		}
		b.normalize(&t)
		trades = append(trades, t)
		have[t.ID] = true
		res.Trades++
	}

	if res.Accounts > 0 {
		if err := b.saveJSON(ctx, KeyAccounts, b.accounts); err != nil {
			b.accounts = prevAccounts
			return PullResult{}, err
		}
	}
	if res.Trades > 0 {
		sortTrades(trades)
		b.trades = trades
		if err := b.saveTrades(ctx); err != nil {
			b.trades = prevTrades
			b.accounts = prevAccounts
			if res.Accounts > 0 {
				if rerr := b.saveJSON(ctx, KeyAccounts, prevAccounts); rerr != nil {
					b.log.Warn().Err(rerr).Msg("restore accounts after failed pull")
				}
			}
			return PullResult{}, err
		}
	}
	return res, nil
}
