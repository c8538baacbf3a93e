package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func runDeposit(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.quoter.Snapshot()
	amountA, err := parseAmount("amount-a", s.cfg.AmountA, snap.TokenADecimals)
	if err != nil {
		return err
	}
	amountB, err := parseAmount("amount-b", s.cfg.AmountB, snap.TokenBDecimals)
	if err != nil {
		return err
	}

	result, err := s.quoter.DepositQuote(amountA, amountB, s.cfg.Balanced, s.cfg.SlippageBps)
	if err != nil {
		return err
	}
	return s.emit(ctx, s.quoter.DepositRecord(result, s.cfg.SlippageBps, s.quotedAt()))
}
