package quote

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"ammQuote/internal/curve"
	"ammQuote/internal/vault"
)

// WithdrawQuote is the result of a withdraw quote. For a single-side
// withdrawal the other token's amounts are zero.
type WithdrawQuote struct {
	PoolTokenAmountIn  *big.Int
	TokenAOutAmount    *big.Int
	TokenBOutAmount    *big.Int
	MinTokenAOutAmount *big.Int
	MinTokenBOutAmount *big.Int
}

// WithdrawQuote quotes burning lpAmount pool tokens. A nil tokenMint
// withdraws both tokens in pool proportion; otherwise only tokenMint is paid
// out, which constant product pools reject.
func (q *Quoter) WithdrawQuote(lpAmount *big.Int, slippageBps uint16, tokenMint *solana.PublicKey) (WithdrawQuote, error) {
	if lpAmount == nil || lpAmount.Sign() <= 0 {
		return WithdrawQuote{}, ErrZeroAmount
	}
	if q.snap.PoolLpSupply.Sign() == 0 {
		return WithdrawQuote{}, ErrEmptyPool
	}
	if lpAmount.Cmp(q.snap.PoolLpSupply) > 0 {
		return WithdrawQuote{}, fmt.Errorf("lp amount %s exceeds supply %s", lpAmount, q.snap.PoolLpSupply)
	}
	if slippageBps > bpsDenominator {
		return WithdrawQuote{}, ErrInvalidSlippage
	}

	if tokenMint == nil {
		return q.balancedWithdraw(lpAmount, slippageBps)
	}
	return q.singleSideWithdraw(lpAmount, slippageBps, *tokenMint)
}

func (q *Quoter) balancedWithdraw(lpAmount *big.Int, slippageBps uint16) (WithdrawQuote, error) {
	outA, err := q.tokenForPoolShare(lpAmount, q.sideA(), false)
	if err != nil {
		return WithdrawQuote{}, fmt.Errorf("token a out amount: %w", err)
	}
	outB, err := q.tokenForPoolShare(lpAmount, q.sideB(), false)
	if err != nil {
		return WithdrawQuote{}, fmt.Errorf("token b out amount: %w", err)
	}
	return q.withdrawQuote(lpAmount, outA, outB, slippageBps)
}

func (q *Quoter) singleSideWithdraw(lpAmount *big.Int, slippageBps uint16, tokenMint solana.PublicKey) (WithdrawQuote, error) {
	var direction curve.TradeDirection
	switch {
	case tokenMint.Equals(q.snap.TokenBMint):
		direction = curve.AToB
	case tokenMint.Equals(q.snap.TokenAMint):
		direction = curve.BToA
	default:
		return WithdrawQuote{}, fmt.Errorf("%s: %w", tokenMint, ErrInvalidMint)
	}

	curveOut, err := q.curve.ComputeWithdrawOne(lpAmount, q.snap.PoolLpSupply, q.tokenAAmount, q.tokenBAmount, q.snap.Fees, direction)
	if err != nil {
		return WithdrawQuote{}, fmt.Errorf("withdraw one: %w", err)
	}

	s := q.sideA()
	if direction == curve.AToB {
		s = q.sideB()
	}
	out, err := vault.ActualWithdrawAmount(curveOut, s.withdrawable, s.vaultLp)
	if err != nil {
		return WithdrawQuote{}, fmt.Errorf("vault withdraw: %w", err)
	}
	if out.Cmp(s.reserve) >= 0 {
		return WithdrawQuote{}, fmt.Errorf("out %s >= reserve %s: %w", out, s.reserve, ErrInsufficientVaultReserve)
	}

	if direction == curve.AToB {
		return q.withdrawQuote(lpAmount, new(big.Int), out, slippageBps)
	}
	return q.withdrawQuote(lpAmount, out, new(big.Int), slippageBps)
}

func (q *Quoter) withdrawQuote(lpAmount, outA, outB *big.Int, slippageBps uint16) (WithdrawQuote, error) {
	minA, err := MinAmountWithSlippage(outA, slippageBps)
	if err != nil {
		return WithdrawQuote{}, err
	}
	minB, err := MinAmountWithSlippage(outB, slippageBps)
	if err != nil {
		return WithdrawQuote{}, err
	}
	return WithdrawQuote{
		PoolTokenAmountIn:  new(big.Int).Set(lpAmount),
		TokenAOutAmount:    outA,
		TokenBOutAmount:    outB,
		MinTokenAOutAmount: minA,
		MinTokenBOutAmount: minB,
	}, nil
}
