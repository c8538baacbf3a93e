package curve

import (
	"fmt"
	"math/big"
)

// ConstantProduct is the x*y=k curve.
type ConstantProduct struct{}

func (ConstantProduct) Kind() Kind { return KindConstantProduct }

func (ConstantProduct) sealed() {}

func (ConstantProduct) ComputeOutAmount(sourceAmount, swapSourceAmount, swapDestinationAmount *big.Int, _ TradeDirection) (*big.Int, error) {
	invariant := new(big.Int).Mul(swapSourceAmount, swapDestinationAmount)
	newSwapSourceAmount := new(big.Int).Add(swapSourceAmount, sourceAmount)

	newSwapDestinationAmount, _, err := CeilDiv(invariant, newSwapSourceAmount)
	if err != nil {
		return nil, fmt.Errorf("constant product out: %w", err)
	}

	out := new(big.Int).Sub(swapDestinationAmount, newSwapDestinationAmount)
	if out.Sign() <= 0 {
		return nil, fmt.Errorf("constant product out: swap result is zero: %w", ErrAmountTooSmall)
	}
	return out, nil
}

func (ConstantProduct) ComputeInAmount(destinationAmount, swapSourceAmount, swapDestinationAmount *big.Int, _ TradeDirection) (*big.Int, error) {
	invariant := new(big.Int).Mul(swapSourceAmount, swapDestinationAmount)
	newSwapDestinationAmount := new(big.Int).Sub(swapDestinationAmount, destinationAmount)
	if newSwapDestinationAmount.Sign() <= 0 {
		return nil, fmt.Errorf("constant product in: out amount drains reserve: %w", ErrArithmetic)
	}

	newSwapSourceAmount, _, err := CeilDiv(invariant, newSwapDestinationAmount)
	if err != nil {
		return nil, fmt.Errorf("constant product in: %w", err)
	}

	return newSwapSourceAmount.Sub(newSwapSourceAmount, swapSourceAmount), nil
}

func (ConstantProduct) SpotOutAmount(sourceAmount, swapSourceAmount, swapDestinationAmount *big.Int, _ TradeDirection) (*big.Rat, error) {
	if swapSourceAmount.Sign() <= 0 {
		return nil, fmt.Errorf("constant product spot: empty source reserve: %w", ErrArithmetic)
	}
	num := new(big.Int).Mul(sourceAmount, swapDestinationAmount)
	return new(big.Rat).SetFrac(num, swapSourceAmount), nil
}

// ComputeD returns floor(sqrt(a*b)), the initial pool token supply of a fresh pool.
func (ConstantProduct) ComputeD(tokenAAmount, tokenBAmount *big.Int) (*big.Int, error) {
	if tokenAAmount.Sign() < 0 || tokenBAmount.Sign() < 0 {
		return nil, fmt.Errorf("constant product d: negative amount: %w", ErrArithmetic)
	}
	product := new(big.Int).Mul(tokenAAmount, tokenBAmount)
	return product.Sqrt(product), nil
}

func (ConstantProduct) ComputeImbalanceDeposit(_, _, _, _, _ *big.Int, _ Fees) (*big.Int, error) {
	return nil, fmt.Errorf("constant product imbalance deposit: %w", ErrUnsupportedOperation)
}

func (ConstantProduct) ComputeWithdrawOne(_, _, _, _ *big.Int, _ Fees, _ TradeDirection) (*big.Int, error) {
	return nil, fmt.Errorf("constant product withdraw one: %w", ErrUnsupportedOperation)
}
