package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ammQuote/internal/curve"
	"ammQuote/internal/quote"
)

func runSwap(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.quoter.Snapshot()
	if s.cfg.ExactOut {
		return s.exactOut(ctx)
	}

	inMint, err := parseMint("in-mint", s.cfg.InMint)
	if err != nil {
		return err
	}
	decimals := snap.TokenADecimals
	if inMint.Equals(snap.TokenBMint) {
		decimals = snap.TokenBDecimals
	}
	amount, err := parseAmount("amount", s.cfg.Amount, decimals)
	if err != nil {
		return err
	}

	result, err := s.quoter.SwapQuote(inMint, amount, s.cfg.SlippageBps)
	if err != nil {
		return err
	}
	return s.emit(ctx, s.quoter.SwapRecord(result, s.cfg.SlippageBps, s.quotedAt()))
}

func (s *session) exactOut(ctx context.Context) error {
	snap := s.quoter.Snapshot()
	outMint, err := parseMint("out-mint", s.cfg.OutMint)
	if err != nil {
		return err
	}
	decimals := snap.TokenBDecimals
	if outMint.Equals(snap.TokenAMint) {
		decimals = snap.TokenADecimals
	}
	amount, err := parseAmount("amount", s.cfg.Amount, decimals)
	if err != nil {
		return err
	}

	in, err := s.quoter.SwapInAmount(outMint, amount)
	if err != nil {
		return err
	}

	direction := curve.AToB
	if outMint.Equals(snap.TokenAMint) {
		direction = curve.BToA
	}
	record := s.quoter.SwapRecord(quote.SwapQuote{
		Direction:        direction,
		SwapInAmount:     in,
		SwapOutAmount:    amount,
		MinSwapOutAmount: amount,
	}, s.cfg.SlippageBps, s.quotedAt())
	record.Path = "exact_out"
	return s.emit(ctx, record)
}
