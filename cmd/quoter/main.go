package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "quoter",
		Short:        "Off-chain dynamic AMM quote engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Quote an exact-in swap",
		RunE:  runSwap,
	}
	addCommonFlags(swapCmd)
	swapCmd.Flags().String("in-mint", "", "mint of the token paid in")
	swapCmd.Flags().String("out-mint", "", "mint of the token received (with --exact-out)")
	swapCmd.Flags().String("amount", "", "amount in base units, or a decimal UI amount")
	swapCmd.Flags().Bool("exact-out", false, "treat --amount as the desired output of --out-mint")
	root.AddCommand(swapCmd)

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Quote a liquidity deposit",
		RunE:  runDeposit,
	}
	addCommonFlags(depositCmd)
	depositCmd.Flags().String("amount-a", "0", "token A amount in base units, or a decimal UI amount")
	depositCmd.Flags().String("amount-b", "0", "token B amount in base units, or a decimal UI amount")
	depositCmd.Flags().Bool("balanced", true, "derive the other side from the pool ratio when one amount is zero")
	root.AddCommand(depositCmd)

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Quote a liquidity withdrawal",
		RunE:  runWithdraw,
	}
	addCommonFlags(withdrawCmd)
	withdrawCmd.Flags().String("amount", "", "pool LP amount to burn in base units")
	withdrawCmd.Flags().String("out-mint", "", "withdraw only this token (stable pools)")
	root.AddCommand(withdrawCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("snapshot", "", "pool snapshot JSON path")
	cmd.Flags().String("out", "./data/quotes.jsonl", "quote journal JSONL path")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the quote journal and depeg cache")
	cmd.Flags().String("depeg-cache", "", "optional depeg cache JSON file")
	cmd.Flags().Uint16("slippage-bps", 100, "slippage tolerance in basis points")
	cmd.Flags().String("now", "", "override snapshot clock (unix seconds or RFC3339)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts for Postgres writes")
	cmd.Flags().Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
