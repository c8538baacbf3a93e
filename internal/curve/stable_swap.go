package curve

import (
	"fmt"
	"math/big"

	"ammQuote/internal/depeg"
)

// TokenMultiplier normalizes token decimals to a common scale.
type TokenMultiplier struct {
	TokenAMultiplier uint64
	TokenBMultiplier uint64
	PrecisionFactor  uint8
}

// StableSwap is the amplified stable swap curve with optional depeg correction.
// Depeg must already be refreshed for Now; a stale cache makes every method
// fail with ErrStaleDepegCache.
type StableSwap struct {
	Amp        uint64
	Multiplier TokenMultiplier
	Depeg      depeg.State
	Now        int64
}

func (s StableSwap) Kind() Kind { return KindStableSwap }

func (StableSwap) sealed() {}

func (s StableSwap) check() error {
	if s.Depeg.Stale(s.Now) {
		return ErrStaleDepegCache
	}
	if s.Multiplier.TokenAMultiplier == 0 || s.Multiplier.TokenBMultiplier == 0 {
		return fmt.Errorf("token multiplier is zero: %w", ErrArithmetic)
	}
	return nil
}

func (s StableSwap) scaleA() *big.Int {
	scale := new(big.Int).SetUint64(s.Multiplier.TokenAMultiplier)
	if s.Depeg.Enabled() {
		scale.Mul(scale, big.NewInt(depeg.Precision))
	}
	return scale
}

func (s StableSwap) scaleB() *big.Int {
	scale := new(big.Int).SetUint64(s.Multiplier.TokenBMultiplier)
	if s.Depeg.Enabled() {
		scale.Mul(scale, s.Depeg.BaseVirtualPrice)
	}
	return scale
}

func (s StableSwap) scales(direction TradeDirection) (source, destination *big.Int) {
	if direction == AToB {
		return s.scaleA(), s.scaleB()
	}
	return s.scaleB(), s.scaleA()
}

func upscale(amount, scale *big.Int) *big.Int {
	return new(big.Int).Mul(amount, scale)
}

func downscale(amount, scale *big.Int) *big.Int {
	return new(big.Int).Div(amount, scale)
}

func downscaleCeil(amount, scale *big.Int) *big.Int {
	quotient, remainder := new(big.Int).QuoRem(amount, scale, new(big.Int))
	if remainder.Sign() > 0 {
		quotient.Add(quotient, bigOne)
	}
	return quotient
}

func (s StableSwap) ComputeOutAmount(sourceAmount, swapSourceAmount, swapDestinationAmount *big.Int, direction TradeDirection) (*big.Int, error) {
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("stable out: %w", err)
	}
	sourceScale, destinationScale := s.scales(direction)

	upSource := upscale(sourceAmount, sourceScale)
	upSwapSource := upscale(swapSourceAmount, sourceScale)
	upSwapDestination := upscale(swapDestinationAmount, destinationScale)

	d, err := ComputeD(s.Amp, upSwapSource, upSwapDestination)
	if err != nil {
		return nil, fmt.Errorf("stable out: %w", err)
	}
	newSwapSource := new(big.Int).Add(upSwapSource, upSource)
	newSwapDestination, err := ComputeY(s.Amp, newSwapSource, d)
	if err != nil {
		return nil, fmt.Errorf("stable out: %w", err)
	}

	// one unit is kept by the pool against rounding in the solver
	out := new(big.Int).Sub(upSwapDestination, newSwapDestination)
	out.Sub(out, bigOne)
	out = downscale(out, destinationScale)
	if out.Sign() <= 0 {
		return nil, fmt.Errorf("stable out: swap result is zero: %w", ErrAmountTooSmall)
	}
	return out, nil
}

func (s StableSwap) ComputeInAmount(destinationAmount, swapSourceAmount, swapDestinationAmount *big.Int, direction TradeDirection) (*big.Int, error) {
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("stable in: %w", err)
	}
	sourceScale, destinationScale := s.scales(direction)

	upDestination := upscale(destinationAmount, destinationScale)
	upSwapSource := upscale(swapSourceAmount, sourceScale)
	upSwapDestination := upscale(swapDestinationAmount, destinationScale)

	d, err := ComputeD(s.Amp, upSwapSource, upSwapDestination)
	if err != nil {
		return nil, fmt.Errorf("stable in: %w", err)
	}
	newSwapDestination := new(big.Int).Sub(upSwapDestination, upDestination)
	if newSwapDestination.Sign() <= 0 {
		return nil, fmt.Errorf("stable in: out amount drains reserve: %w", ErrArithmetic)
	}
	newSwapSource, err := ComputeY(s.Amp, newSwapDestination, d)
	if err != nil {
		return nil, fmt.Errorf("stable in: %w", err)
	}

	in := new(big.Int).Sub(newSwapSource, upSwapSource)
	in.Add(in, bigOne)
	if in.Sign() <= 0 {
		return nil, fmt.Errorf("stable in: %w", ErrAmountTooSmall)
	}
	return downscaleCeil(in, sourceScale), nil
}

// SpotOutAmount uses the exact slope of Ann*(x+y) + D = Ann*D + D^3/(4xy):
//
//	-dy/dx = y*(4*Ann*x^2*y + D^3) / (x*(4*Ann*x*y^2 + D^3))
func (s StableSwap) SpotOutAmount(sourceAmount, swapSourceAmount, swapDestinationAmount *big.Int, direction TradeDirection) (*big.Rat, error) {
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("stable spot: %w", err)
	}
	sourceScale, destinationScale := s.scales(direction)

	x := upscale(swapSourceAmount, sourceScale)
	y := upscale(swapDestinationAmount, destinationScale)
	if x.Sign() <= 0 || y.Sign() <= 0 {
		return nil, fmt.Errorf("stable spot: empty reserve: %w", ErrArithmetic)
	}

	d, err := ComputeD(s.Amp, x, y)
	if err != nil {
		return nil, fmt.Errorf("stable spot: %w", err)
	}
	d3 := new(big.Int).Mul(d, d)
	d3.Mul(d3, d)
	ann4 := new(big.Int).SetUint64(s.Amp)
	ann4.Mul(ann4, big.NewInt(4*nCoins))

	num := new(big.Int).Mul(ann4, x)
	num.Mul(num, x)
	num.Mul(num, y)
	num.Add(num, d3)
	num.Mul(num, y)

	den := new(big.Int).Mul(ann4, x)
	den.Mul(den, y)
	den.Mul(den, y)
	den.Add(den, d3)
	den.Mul(den, x)

	// spot(raw) = upscale(in) * slope / destinationScale
	num.Mul(num, upscale(sourceAmount, sourceScale))
	den.Mul(den, destinationScale)
	return new(big.Rat).SetFrac(num, den), nil
}

// ComputeD returns the invariant of the upscaled token amounts. The result
// stays in upscaled units; it is the pool token supply minted by a bootstrap deposit.
func (s StableSwap) ComputeD(tokenAAmount, tokenBAmount *big.Int) (*big.Int, error) {
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("stable d: %w", err)
	}
	return ComputeD(s.Amp, upscale(tokenAAmount, s.scaleA()), upscale(tokenBAmount, s.scaleB()))
}

func (s StableSwap) ComputeImbalanceDeposit(depositAAmount, depositBAmount, swapTokenAAmount, swapTokenBAmount, poolLpSupply *big.Int, fees Fees) (*big.Int, error) {
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("stable imbalance deposit: %w", err)
	}
	if depositAAmount.Sign() == 0 && depositBAmount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	scaleA, scaleB := s.scaleA(), s.scaleB()

	oldBalances := [nCoins]*big.Int{upscale(swapTokenAAmount, scaleA), upscale(swapTokenBAmount, scaleB)}
	newBalances := [nCoins]*big.Int{
		new(big.Int).Add(oldBalances[0], upscale(depositAAmount, scaleA)),
		new(big.Int).Add(oldBalances[1], upscale(depositBAmount, scaleB)),
	}

	d0, err := ComputeD(s.Amp, oldBalances[0], oldBalances[1])
	if err != nil {
		return nil, fmt.Errorf("stable imbalance deposit: d0: %w", err)
	}
	if d0.Sign() == 0 {
		return nil, fmt.Errorf("stable imbalance deposit: empty pool: %w", ErrArithmetic)
	}
	d1, err := ComputeD(s.Amp, newBalances[0], newBalances[1])
	if err != nil {
		return nil, fmt.Errorf("stable imbalance deposit: d1: %w", err)
	}
	if d1.Cmp(d0) < 0 {
		return nil, fmt.Errorf("stable imbalance deposit: invariant decreased: %w", ErrArithmetic)
	}

	var adjusted [nCoins]*big.Int
	for i := range newBalances {
		ideal := new(big.Int).Mul(d1, oldBalances[i])
		ideal.Div(ideal, d0)
		difference := new(big.Int).Sub(ideal, newBalances[i])
		difference.Abs(difference)
		adjusted[i] = new(big.Int).Sub(newBalances[i], fees.normalizedTradeFee(difference))
	}

	d2, err := ComputeD(s.Amp, adjusted[0], adjusted[1])
	if err != nil {
		return nil, fmt.Errorf("stable imbalance deposit: d2: %w", err)
	}

	minted := new(big.Int).Sub(d2, d0)
	if minted.Sign() < 0 {
		return big.NewInt(0), nil
	}
	minted.Mul(minted, poolLpSupply)
	return minted.Div(minted, d0), nil
}

func (s StableSwap) ComputeWithdrawOne(poolTokenAmount, poolLpSupply, swapTokenAAmount, swapTokenBAmount *big.Int, fees Fees, direction TradeDirection) (*big.Int, error) {
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("stable withdraw one: %w", err)
	}
	if poolLpSupply.Sign() <= 0 {
		return nil, fmt.Errorf("stable withdraw one: empty pool: %w", ErrArithmetic)
	}
	if poolTokenAmount.Cmp(poolLpSupply) > 0 {
		return nil, fmt.Errorf("stable withdraw one: burn exceeds supply: %w", ErrArithmetic)
	}

	// base is the withdrawn token, quote stays in the pool
	baseScale, quoteScale := s.scaleA(), s.scaleB()
	baseReserve, quoteReserve := swapTokenAAmount, swapTokenBAmount
	if direction == AToB {
		baseScale, quoteScale = quoteScale, baseScale
		baseReserve, quoteReserve = quoteReserve, baseReserve
	}
	base := upscale(baseReserve, baseScale)
	quote := upscale(quoteReserve, quoteScale)

	d0, err := ComputeD(s.Amp, base, quote)
	if err != nil {
		return nil, fmt.Errorf("stable withdraw one: d0: %w", err)
	}
	d1 := new(big.Int).Mul(poolTokenAmount, d0)
	d1.Div(d1, poolLpSupply)
	d1.Sub(d0, d1)

	newY, err := ComputeY(s.Amp, quote, d1)
	if err != nil {
		return nil, fmt.Errorf("stable withdraw one: y: %w", err)
	}

	expectedBase := new(big.Int).Mul(base, d1)
	expectedBase.Div(expectedBase, d0)
	expectedBase.Sub(expectedBase, newY)
	if expectedBase.Sign() < 0 {
		return nil, fmt.Errorf("stable withdraw one: negative base delta: %w", ErrArithmetic)
	}
	expectedQuote := new(big.Int).Mul(quote, d1)
	expectedQuote.Div(expectedQuote, d0)
	expectedQuote.Sub(quote, expectedQuote)

	newBase := new(big.Int).Sub(base, fees.normalizedTradeFee(expectedBase))
	newQuote := new(big.Int).Sub(quote, fees.normalizedTradeFee(expectedQuote))

	finalY, err := ComputeY(s.Amp, newQuote, d1)
	if err != nil {
		return nil, fmt.Errorf("stable withdraw one: final y: %w", err)
	}
	dy := newBase.Sub(newBase, finalY)
	dy.Sub(dy, bigOne)
	if dy.Sign() <= 0 {
		return nil, fmt.Errorf("stable withdraw one: %w", ErrAmountTooSmall)
	}
	return downscale(dy, baseScale), nil
}
