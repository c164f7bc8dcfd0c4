// Package config
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

/*
YAML config example:
alpaca_api_key: "..."
alpaca_api_secret: "..."
live_trading: false
watchlist: ["AAPL", "MSFT", "GOOGL"]
cash_allocation_percent: 0.05
lookback_days: 5
dry_run: false
data_feed: "iex"
db_conn_str: "postgres://..."
telegram_token: "..."
telegram_chat_id: "..."
metrics_addr: ":9100"
log_level: "info"
*/

type Config struct {
	AlpacaAPIKey    string `yaml:"alpaca_api_key" validate:"required"`
	AlpacaAPISecret string `yaml:"alpaca_api_secret" validate:"required"`
	// LiveTrading routes orders at the live API; the zero value is the
	// paper environment.
	LiveTrading           bool          `yaml:"live_trading"`
	Watchlist             []string      `yaml:"watchlist" validate:"required,min=1,dive,required"`
	CashAllocationPercent float64       `yaml:"cash_allocation_percent" validate:"gt=0,lte=1"`
	LookbackDays          int           `yaml:"lookback_days" validate:"gte=1"`
	DryRun                bool          `yaml:"dry_run"`
	DataFeed              string        `yaml:"data_feed"`
	DBConnStr             string        `yaml:"db_conn_str"`
	DBMaxOpen             int           `yaml:"db_max_open"`
	DBMaxIdle             int           `yaml:"db_max_idle"`
	TelegramToken         string        `yaml:"telegram_token"`
	TelegramChatID        string        `yaml:"telegram_chat_id"`
	NotificationRetries   int           `yaml:"notification_retries"`
	NotificationDelay     time.Duration `yaml:"notification_delay"`
	MetricsAddr           string        `yaml:"metrics_addr"`
	LogLevel              string        `yaml:"log_level"`
}

var validate = validator.New()

// Validate checks the loaded configuration and normalizes the watchlist to
// uppercase trimmed symbols.
func (c *Config) Validate() error {
	for i, symbol := range c.Watchlist {
		c.Watchlist[i] = strings.ToUpper(strings.TrimSpace(symbol))
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// FromYAML parses a YAML config document.
func FromYAML(data []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// applyEnv fills credentials and knobs from the environment, keeping any
// value already set.
func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	setString(&cfg.AlpacaAPIKey, "ALPACA_API_KEY")
	setString(&cfg.AlpacaAPISecret, "ALPACA_API_SECRET")
	setString(&cfg.DBConnStr, "DB_CONN_STR")
	setString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	setString(&cfg.TelegramChatID, "TELEGRAM_CHAT_ID")
	setString(&cfg.DataFeed, "DATA_FEED")
	setString(&cfg.MetricsAddr, "METRICS_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if len(cfg.Watchlist) == 0 {
		if v := os.Getenv("WATCHLIST"); v != "" {
			cfg.Watchlist = splitSymbols(v)
		}
	}
	if cfg.CashAllocationPercent == 0 {
		if v := os.Getenv("CASH_ALLOCATION_PERCENT"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cfg.CashAllocationPercent = f
			}
		}
	}
	if cfg.LookbackDays == 0 {
		if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.LookbackDays = n
			}
		}
	}
	if v := os.Getenv("PAPER_TRADING"); v != "" {
		cfg.LiveTrading = strings.ToLower(v) != "true"
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		cfg.DryRun = strings.ToLower(v) == "true"
	}
}

// applyDefaults fills anything still unset after file, flags, and env.
func applyDefaults(cfg *Config) {
	if cfg.CashAllocationPercent == 0 {
		cfg.CashAllocationPercent = 0.05
	}
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = 5
	}
	if cfg.DBMaxOpen == 0 {
		cfg.DBMaxOpen = 10
	}
	if cfg.DBMaxIdle == 0 {
		cfg.DBMaxIdle = 5
	}
	if cfg.NotificationRetries == 0 {
		cfg.NotificationRetries = 3
	}
	if cfg.NotificationDelay == 0 {
		cfg.NotificationDelay = 5 * time.Second
	}
	if cfg.DataFeed == "" {
		cfg.DataFeed = "iex"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func loadConfig() (Config, error) {
	configFile := flag.String("config", "", "Path to YAML config file")
	dryRun := flag.Bool("dry-run", false, "Log orders without placing them")
	live := flag.Bool("live", false, "Trade against the live API instead of paper")
	symbolsFlag := flag.String("symbols", "", "Comma-separated watchlist symbols (e.g., AAPL,MSFT,TSLA)")
	allocation := flag.Float64("allocation", 0, "Fraction of available cash to allocate per trade (0-1)")
	lookbackDays := flag.Int("lookback", 0, "Trading-day window for the average candle range")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus listen address (empty disables metrics)")
	logLevel := flag.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flag.Parse()

	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		cfg, err = FromYAML(data)
		if err != nil {
			return Config{}, err
		}
	}

	// Flags override the file.
	if *symbolsFlag != "" {
		cfg.Watchlist = splitSymbols(*symbolsFlag)
	}
	if *allocation != 0 {
		cfg.CashAllocationPercent = *allocation
	}
	if *lookbackDays != 0 {
		cfg.LookbackDays = *lookbackDays
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dryRun {
		cfg.DryRun = true
	}
	if *live {
		cfg.LiveTrading = true
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoadConfig loads configuration from flags, config file, and
// environment, exiting on any error.
func MustLoadConfig() Config {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
