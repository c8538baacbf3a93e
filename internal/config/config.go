package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// QuoteConfig holds configuration values loaded from flags, env, or config file.
type QuoteConfig struct {
	Snapshot     string
	Out          string
	PGDSN        string
	DepegCache   string
	SlippageBps  uint16
	Amount       string
	AmountA      string
	AmountB      string
	InMint       string
	OutMint      string
	Balanced     bool
	ExactOut     bool
	Now          int64
	LogLevel     string
	MaxRetries   int
	RetryBackoff time.Duration
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("QUOTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/quotes.jsonl")
	v.SetDefault("slippage-bps", 100)
	v.SetDefault("balanced", true)
	v.SetDefault("log-level", "info")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 200*time.Millisecond)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return QuoteConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return QuoteConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return QuoteConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	slippage := v.GetInt("slippage-bps")
	if slippage < 0 || slippage > 10_000 {
		return QuoteConfig{}, fmt.Errorf("slippage-bps must be within [0, 10000], got %d", slippage)
	}
	if v.GetInt("max-retries") < 0 {
		return QuoteConfig{}, fmt.Errorf("max-retries must be >= 0")
	}
	now, err := ParseTimestamp(v.GetString("now"))
	if err != nil {
		return QuoteConfig{}, fmt.Errorf("parse now: %w", err)
	}

	cfg := QuoteConfig{
		Snapshot:     v.GetString("snapshot"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		DepegCache:   v.GetString("depeg-cache"),
		SlippageBps:  uint16(slippage),
		Amount:       strings.TrimSpace(v.GetString("amount")),
		AmountA:      strings.TrimSpace(v.GetString("amount-a")),
		AmountB:      strings.TrimSpace(v.GetString("amount-b")),
		InMint:       strings.TrimSpace(v.GetString("in-mint")),
		OutMint:      strings.TrimSpace(v.GetString("out-mint")),
		Balanced:     v.GetBool("balanced"),
		ExactOut:     v.GetBool("exact-out"),
		Now:          now,
		LogLevel:     v.GetString("log-level"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
	}

	return cfg, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339). Empty
// input yields 0.
func ParseTimestamp(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}

	if isNumeric(input) {
		return strconv.ParseInt(input, 10, 64)
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return tm.Unix(), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
