package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func runWithdraw(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	lpAmount, err := parseAmount("amount", s.cfg.Amount, 0)
	if err != nil {
		return err
	}

	var outMint *solana.PublicKey
	if s.cfg.OutMint != "" {
		mint, err := parseMint("out-mint", s.cfg.OutMint)
		if err != nil {
			return err
		}
		outMint = &mint
	}

	result, err := s.quoter.WithdrawQuote(lpAmount, s.cfg.SlippageBps, outMint)
	if err != nil {
		return err
	}
	return s.emit(ctx, s.quoter.WithdrawRecord(result, outMint, s.cfg.SlippageBps, s.quotedAt()))
}
