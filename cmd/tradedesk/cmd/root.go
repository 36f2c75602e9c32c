package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rustyeddy/tradedesk/config"
	"github.com/rustyeddy/tradedesk/internal/logging"
	"github.com/rustyeddy/tradedesk/journal"
)

var rootCmd = &cobra.Command{
	Use:   "tradedesk",
	Short: "A discretionary trader's journal and pre-trade checklist",
	Long: `Tradedesk scores trade setups against a weighted checklist, computes
realized P&L for closed positions and keeps a local trade journal.

It provides tools for:
  - Scoring a setup before entry
  - Logging quick wins and losses from a trade plan
  - Importing broker fills and FIFO-matching them into round trips
  - Win rate, profit factor, expectancy, streaks and drawdown
  - Monte Carlo projections of the equity curve

Settings come from the config file, TRADEDESK_* environment variables and
flags, in increasing order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// app is the state every command shares after setup.
var app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     zerolog.Logger
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	app.v = config.NewViper()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&app.cfgFile, "config", "", "config file (default is "+config.DefaultPath()+")")
	pf.String("store", "", "journal store: sqlite or memory")
	pf.String("db", "", "path to the SQLite journal")
	pf.String("mirror", "", "path to a SQLite mirror trades are synced to")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("currency", "", "account currency")

	_ = app.v.BindPFlag(config.KeyStoreType, pf.Lookup("store"))
	_ = app.v.BindPFlag(config.KeyDBPath, pf.Lookup("db"))
	_ = app.v.BindPFlag(config.KeyMirrorPath, pf.Lookup("mirror"))
	_ = app.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = app.v.BindPFlag(config.KeyCurrency, pf.Lookup("currency"))
}

func setup(cmd *cobra.Command, _ []string) error {
	path, explicit := app.cfgFile, app.cfgFile != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit, app.v)
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.log = logging.New(cfg.Log)
	cmd.SetContext(logging.WithLogger(cmdContext(cmd), app.log))
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openBook opens the configured store and loads the journal. The returned
// func waits for background syncs and closes everything.
func openBook(ctx context.Context) (*journal.Book, func(), error) {
	log := logging.FromContext(ctx)
	jc := app.cfg.Journal

	var (
		store   journal.Store
		closers []func() error
	)
	switch jc.Type {
	case config.StoreMemory:
		m := journal.NewMemoryStore()
		m.MaxValueBytes = jc.MaxValueBytes
		store = m
	default:
		db, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		db.MaxValueBytes = jc.MaxValueBytes
		store = db
		closers = append(closers, db.Close)
	}

	opts := []journal.Option{journal.WithLogger(log)}
	if jc.MirrorPath != "" {
		mirror, err := journal.NewSQLite(jc.MirrorPath)
		if err != nil {
			for _, c := range closers {
				_ = c()
			}
			return nil, nil, fmt.Errorf("open mirror: %w", err)
		}
		opts = append(opts, journal.WithSyncer(mirror))
		closers = append(closers, mirror.Close)
	}

	b := journal.NewBook(store, opts...)
	b.Init(ctx)
	log.Debug().Str("store", jc.Type).Str("db", jc.DBPath).Msg("journal opened")

	return b, func() {
		b.Wait()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn().Err(err).Msg("close store")
			}
		}
	}, nil
}
