package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradedesk/internal/logging"
	"github.com/rustyeddy/tradedesk/risk"
)

// Config is the tradedesk configuration file.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Checklist ChecklistConfig `json:"checklist" yaml:"checklist"`
	Risk      risk.Policy     `json:"risk" yaml:"risk"`
	Log       logging.Config  `json:"log" yaml:"log"`
}

// AccountConfig describes the trader's home account for sizing and simulation.
type AccountConfig struct {
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// JournalConfig selects the journal store.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "sqlite" or "memory"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	// MirrorPath, when set, is a second SQLite database trades and accounts
	// are synced to in the background.
	MirrorPath    string `json:"mirror_path,omitempty" yaml:"mirror_path,omitempty"`
	MaxValueBytes int    `json:"max_value_bytes,omitempty" yaml:"max_value_bytes,omitempty"`
}

type ChecklistConfig struct {
	MinScore int `json:"min_score" yaml:"min_score"`
}

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Account.Currency) != 3 {
		return fmt.Errorf("account.currency must be a 3-letter code")
	}
	if c.Account.Balance < 0 {
		return fmt.Errorf("account.balance must not be negative")
	}
	switch c.Journal.Type {
	case StoreSQLite:
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("journal.type must be 'sqlite' or 'memory'")
	}
	if c.Journal.MaxValueBytes < 0 {
		return fmt.Errorf("journal.max_value_bytes must not be negative")
	}
	if c.Checklist.MinScore < 0 || c.Checklist.MinScore > 100 {
		return fmt.Errorf("checklist.min_score must be between 0 and 100")
	}
	if c.Risk.MaxRiskPct <= 0 || c.Risk.MaxRiskPct > 1 {
		return fmt.Errorf("risk.max_risk_pct must be between 0 and 1")
	}
	if c.Risk.MinRR < 0 {
		return fmt.Errorf("risk.min_rr must not be negative")
	}
	if c.Risk.MaxDailyLossPct < 0 || c.Risk.MaxWeeklyLossPct < 0 {
		return fmt.Errorf("risk loss limits must not be negative")
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q is not a known level", c.Log.Level)
	}
	return nil
}

// DefaultDir is where the config file and journal database live by default.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tradedesk"
	}
	return filepath.Join(home, ".config", "tradedesk")
}

// DefaultPath is the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
			Balance:  10000,
		},
		Journal: JournalConfig{
			Type:   StoreSQLite,
			DBPath: filepath.Join(DefaultDir(), "journal.db"),
		},
		Checklist: ChecklistConfig{MinScore: 70},
		Risk:      risk.DefaultPolicy(),
		Log:       logging.DefaultConfig(),
	}
}

// Override keys understood by ApplyOverrides. Flags and TRADEDESK_* env
// vars are bound to these names.
const (
	KeyCurrency   = "account.currency"
	KeyBalance    = "account.balance"
	KeyStoreType  = "journal.type"
	KeyDBPath     = "journal.db_path"
	KeyMirrorPath = "journal.mirror_path"
	KeyMinScore   = "checklist.min_score"
	KeyLogLevel   = "log.level"
)

// NewViper returns a viper instance reading TRADEDESK_* environment
// variables, e.g. TRADEDESK_JOURNAL_DB_PATH for journal.db_path.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TRADEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range []string{KeyCurrency, KeyBalance, KeyStoreType, KeyDBPath, KeyMirrorPath, KeyMinScore, KeyLogLevel} {
		_ = v.BindEnv(k)
	}
	return v
}

// ApplyOverrides copies values set in v over c. Unset keys leave c alone.
func (c *Config) ApplyOverrides(v *viper.Viper) {
	if v.IsSet(KeyCurrency) {
		c.Account.Currency = strings.ToUpper(v.GetString(KeyCurrency))
	}
	if v.IsSet(KeyBalance) {
		c.Account.Balance = v.GetFloat64(KeyBalance)
	}
	if v.IsSet(KeyStoreType) {
		c.Journal.Type = v.GetString(KeyStoreType)
	}
	if v.IsSet(KeyDBPath) {
		c.Journal.DBPath = v.GetString(KeyDBPath)
	}
	if v.IsSet(KeyMirrorPath) {
		c.Journal.MirrorPath = v.GetString(KeyMirrorPath)
	}
	if v.IsSet(KeyMinScore) {
		c.Checklist.MinScore = v.GetInt(KeyMinScore)
	}
	if v.IsSet(KeyLogLevel) {
		c.Log.Level = v.GetString(KeyLogLevel)
	}
}

// Load reads path, or the defaults when path does not exist and
// mustExist is false, then applies v's overrides and validates.
func Load(path string, mustExist bool, v *viper.Viper) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil || mustExist {
			loaded, err := LoadFromFile(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	}
	if v != nil {
		cfg.ApplyOverrides(v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
