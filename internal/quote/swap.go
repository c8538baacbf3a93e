package quote

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"ammQuote/internal/curve"
	"ammQuote/internal/vault"
)

// SwapQuote is the result of an exact-in swap quote.
type SwapQuote struct {
	Direction        curve.TradeDirection
	SwapInAmount     *big.Int
	SwapOutAmount    *big.Int
	MinSwapOutAmount *big.Int
	// Fee is the trade fee plus the owner trade fee, in input token units.
	Fee         *big.Int
	TradeFee    *big.Int
	OwnerFee    *big.Int
	PriceImpact *big.Rat
}

// SwapQuote quotes an exact-in swap of inAmount units of inMint.
func (q *Quoter) SwapQuote(inMint solana.PublicKey, inAmount *big.Int, slippageBps uint16) (SwapQuote, error) {
	if inAmount == nil || inAmount.Sign() <= 0 {
		return SwapQuote{}, ErrZeroAmount
	}
	direction, err := q.direction(inMint)
	if err != nil {
		return SwapQuote{}, err
	}
	source, destination := q.sides(direction)
	if source.amount.Sign() == 0 || destination.amount.Sign() == 0 {
		return SwapQuote{}, ErrEmptyPool
	}

	tradeFee := q.snap.Fees.TradeFee(inAmount)
	ownerFee := q.snap.Fees.OwnerTradeFee(inAmount)
	netIn := new(big.Int).Sub(inAmount, tradeFee)
	netIn.Sub(netIn, ownerFee)
	if netIn.Sign() <= 0 {
		return SwapQuote{}, fmt.Errorf("input consumed by fees: %w", curve.ErrAmountTooSmall)
	}

	actualIn, err := vault.ActualDepositAmount(netIn, source.amount, source.poolVaultLp, source.vaultLp, source.withdrawable)
	if err != nil {
		return SwapQuote{}, fmt.Errorf("source vault: %w", err)
	}
	if actualIn.Sign() == 0 {
		return SwapQuote{}, fmt.Errorf("vault deposit rounds to zero: %w", curve.ErrAmountTooSmall)
	}

	curveOut, err := q.curve.ComputeOutAmount(actualIn, source.amount, destination.amount, direction)
	if err != nil {
		return SwapQuote{}, fmt.Errorf("compute out amount: %w", err)
	}
	spot, err := q.curve.SpotOutAmount(actualIn, source.amount, destination.amount, direction)
	if err != nil {
		return SwapQuote{}, fmt.Errorf("spot out amount: %w", err)
	}

	out, err := vault.ActualWithdrawAmount(curveOut, destination.withdrawable, destination.vaultLp)
	if err != nil {
		return SwapQuote{}, fmt.Errorf("destination vault: %w", err)
	}
	if out.Cmp(destination.reserve) >= 0 {
		return SwapQuote{}, fmt.Errorf("out %s >= reserve %s: %w", out, destination.reserve, ErrInsufficientVaultReserve)
	}

	minOut, err := MinAmountWithSlippage(out, slippageBps)
	if err != nil {
		return SwapQuote{}, err
	}

	return SwapQuote{
		Direction:        direction,
		SwapInAmount:     new(big.Int).Set(inAmount),
		SwapOutAmount:    out,
		MinSwapOutAmount: minOut,
		Fee:              new(big.Int).Add(tradeFee, ownerFee),
		TradeFee:         tradeFee,
		OwnerFee:         ownerFee,
		PriceImpact:      PriceImpact(spot, out),
	}, nil
}

// SwapInAmount returns the curve input of the other token needed to receive
// outAmount units of outMint. Fees and vault rounding are not included.
func (q *Quoter) SwapInAmount(outMint solana.PublicKey, outAmount *big.Int) (*big.Int, error) {
	if outAmount == nil || outAmount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	var direction curve.TradeDirection
	switch {
	case outMint.Equals(q.snap.TokenBMint):
		direction = curve.AToB
	case outMint.Equals(q.snap.TokenAMint):
		direction = curve.BToA
	default:
		return nil, fmt.Errorf("%s: %w", outMint, ErrInvalidMint)
	}
	source, destination := q.sides(direction)
	if source.amount.Sign() == 0 || destination.amount.Sign() == 0 {
		return nil, ErrEmptyPool
	}
	if outAmount.Cmp(destination.amount) >= 0 {
		return nil, fmt.Errorf("out %s >= pool amount %s: %w", outAmount, destination.amount, ErrInsufficientVaultReserve)
	}
	in, err := q.curve.ComputeInAmount(outAmount, source.amount, destination.amount, direction)
	if err != nil {
		return nil, fmt.Errorf("compute in amount: %w", err)
	}
	return in, nil
}

// PriceImpact returns (spot - actual) / spot as an exact fraction. A zero or
// missing spot yields zero. The result is negative when actual exceeds spot.
func PriceImpact(spot *big.Rat, actual *big.Int) *big.Rat {
	if spot == nil || spot.Sign() == 0 {
		return new(big.Rat)
	}
	impact := new(big.Rat).Sub(spot, new(big.Rat).SetInt(actual))
	return impact.Quo(impact, spot)
}
