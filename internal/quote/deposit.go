package quote

import (
	"fmt"
	"math/big"

	"ammQuote/internal/vault"
)

// DepositPath names the branch a deposit quote took.
type DepositPath uint8

const (
	DepositBootstrap DepositPath = iota
	DepositBalanced
	DepositImbalance
)

func (p DepositPath) String() string {
	switch p {
	case DepositBootstrap:
		return "bootstrap"
	case DepositBalanced:
		return "balanced"
	case DepositImbalance:
		return "imbalance"
	default:
		return fmt.Sprintf("path(%d)", uint8(p))
	}
}

// Balanced single-side deposits mint 998/1000 of the proportional share so
// yield accrued between quote and execution does not fail the slippage guard.
const (
	unlockAmountBufferNumerator   = 998
	unlockAmountBufferDenominator = 1000
)

// DepositQuote is the result of a deposit quote.
type DepositQuote struct {
	Path                  DepositPath
	PoolTokenAmountOut    *big.Int
	MinPoolTokenAmountOut *big.Int
	TokenAInAmount        *big.Int
	TokenBInAmount        *big.Int
}

// DepositQuote quotes a liquidity deposit. With balanced set and one amount
// zero, the other side is derived from the pool ratio. Otherwise the amounts
// are deposited as given, which only stable pools accept.
func (q *Quoter) DepositQuote(tokenAInAmount, tokenBInAmount *big.Int, balanced bool, slippageBps uint16) (DepositQuote, error) {
	if tokenAInAmount == nil {
		tokenAInAmount = new(big.Int)
	}
	if tokenBInAmount == nil {
		tokenBInAmount = new(big.Int)
	}
	if tokenAInAmount.Sign() < 0 || tokenBInAmount.Sign() < 0 {
		return DepositQuote{}, fmt.Errorf("negative deposit amount")
	}
	if tokenAInAmount.Sign() == 0 && tokenBInAmount.Sign() == 0 {
		return DepositQuote{}, ErrZeroAmount
	}
	if slippageBps > bpsDenominator {
		return DepositQuote{}, ErrInvalidSlippage
	}

	switch {
	case q.snap.PoolLpSupply.Sign() == 0:
		return q.bootstrapDeposit(tokenAInAmount, tokenBInAmount)
	case balanced && (tokenAInAmount.Sign() == 0 || tokenBInAmount.Sign() == 0):
		return q.balancedDeposit(tokenAInAmount, tokenBInAmount, slippageBps)
	default:
		return q.imbalanceDeposit(tokenAInAmount, tokenBInAmount, slippageBps)
	}
}

func (q *Quoter) bootstrapDeposit(tokenAInAmount, tokenBInAmount *big.Int) (DepositQuote, error) {
	if tokenAInAmount.Sign() == 0 || tokenBInAmount.Sign() == 0 {
		return DepositQuote{}, fmt.Errorf("bootstrap deposit needs both tokens: %w", ErrZeroAmount)
	}
	out, err := q.curve.ComputeD(tokenAInAmount, tokenBInAmount)
	if err != nil {
		return DepositQuote{}, fmt.Errorf("bootstrap deposit: %w", err)
	}
	return DepositQuote{
		Path:                  DepositBootstrap,
		PoolTokenAmountOut:    out,
		MinPoolTokenAmountOut: new(big.Int).Set(out),
		TokenAInAmount:        new(big.Int).Set(tokenAInAmount),
		TokenBInAmount:        new(big.Int).Set(tokenBInAmount),
	}, nil
}

func (q *Quoter) balancedDeposit(tokenAInAmount, tokenBInAmount *big.Int, slippageBps uint16) (DepositQuote, error) {
	amount, poolAmount := tokenAInAmount, q.tokenAAmount
	if tokenAInAmount.Sign() == 0 {
		amount, poolAmount = tokenBInAmount, q.tokenBAmount
	}
	if poolAmount.Sign() == 0 {
		return DepositQuote{}, ErrEmptyPool
	}

	share := new(big.Int).Mul(amount, q.snap.PoolLpSupply)
	share.Div(share, poolAmount)
	share.Mul(share, big.NewInt(unlockAmountBufferNumerator))
	share.Div(share, big.NewInt(unlockAmountBufferDenominator))
	if share.Sign() == 0 {
		return DepositQuote{}, fmt.Errorf("balanced deposit rounds to zero: %w", ErrZeroAmount)
	}

	actualA, actualB, err := q.actualInAmounts(share)
	if err != nil {
		return DepositQuote{}, err
	}

	out := share
	minOut, err := MinAmountWithSlippage(out, slippageBps)
	if err != nil {
		return DepositQuote{}, err
	}
	return DepositQuote{
		Path:                  DepositBalanced,
		PoolTokenAmountOut:    out,
		MinPoolTokenAmountOut: minOut,
		TokenAInAmount:        actualA,
		TokenBInAmount:        actualB,
	}, nil
}

func (q *Quoter) imbalanceDeposit(tokenAInAmount, tokenBInAmount *big.Int, slippageBps uint16) (DepositQuote, error) {
	out, err := q.mintedForDeposit(tokenAInAmount, tokenBInAmount)
	if err != nil {
		return DepositQuote{}, err
	}
	minOut, err := MinAmountWithSlippage(out, slippageBps)
	if err != nil {
		return DepositQuote{}, err
	}
	return DepositQuote{
		Path:                  DepositImbalance,
		PoolTokenAmountOut:    out,
		MinPoolTokenAmountOut: minOut,
		TokenAInAmount:        new(big.Int).Set(tokenAInAmount),
		TokenBInAmount:        new(big.Int).Set(tokenBInAmount),
	}, nil
}

// mintedForDeposit runs both amounts through their vaults and asks the curve
// how many pool tokens the resulting uneven deposit mints.
func (q *Quoter) mintedForDeposit(tokenAInAmount, tokenBInAmount *big.Int) (*big.Int, error) {
	a, b := q.sideA(), q.sideB()
	actualA, err := vault.ActualDepositAmount(tokenAInAmount, a.amount, a.poolVaultLp, a.vaultLp, a.withdrawable)
	if err != nil {
		return nil, fmt.Errorf("vault a: %w", err)
	}
	actualB, err := vault.ActualDepositAmount(tokenBInAmount, b.amount, b.poolVaultLp, b.vaultLp, b.withdrawable)
	if err != nil {
		return nil, fmt.Errorf("vault b: %w", err)
	}
	out, err := q.curve.ComputeImbalanceDeposit(actualA, actualB, a.amount, b.amount, q.snap.PoolLpSupply, q.snap.Fees)
	if err != nil {
		return nil, fmt.Errorf("imbalance deposit: %w", err)
	}
	return out, nil
}

// actualInAmounts returns the token amounts needed on each side to mint
// poolTokenAmount, rounding every step against the depositor.
func (q *Quoter) actualInAmounts(poolTokenAmount *big.Int) (*big.Int, *big.Int, error) {
	amountA, err := q.tokenForPoolShare(poolTokenAmount, q.sideA(), true)
	if err != nil {
		return nil, nil, fmt.Errorf("token a in amount: %w", err)
	}
	amountB, err := q.tokenForPoolShare(poolTokenAmount, q.sideB(), true)
	if err != nil {
		return nil, nil, fmt.Errorf("token b in amount: %w", err)
	}
	return amountA, amountB, nil
}

// tokenForPoolShare converts a pool token amount into the vault LP it
// represents on one side, then into underlying tokens.
func (q *Quoter) tokenForPoolShare(poolTokenAmount *big.Int, s side, roundUp bool) (*big.Int, error) {
	vaultLp, err := vault.AmountByShare(poolTokenAmount, s.poolVaultLp, q.snap.PoolLpSupply, roundUp)
	if err != nil {
		return nil, err
	}
	if s.vaultLp.Sign() == 0 {
		return big.NewInt(0), nil
	}
	return vault.AmountByShare(vaultLp, s.withdrawable, s.vaultLp, roundUp)
}
