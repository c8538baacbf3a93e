package curve

import (
	"fmt"
	"math/big"
	"strings"
)

// Kind identifies a curve variant.
type Kind uint8

const (
	KindConstantProduct Kind = iota
	KindStableSwap
)

func (k Kind) String() string {
	switch k {
	case KindConstantProduct:
		return "constant_product"
	case KindStableSwap:
		return "stable"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind accepts the names produced by Kind.String plus a few aliases.
func ParseKind(input string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "constant_product", "constantproduct", "cp", "":
		return KindConstantProduct, nil
	case "stable", "stable_swap", "stableswap":
		return KindStableSwap, nil
	default:
		return 0, fmt.Errorf("unknown curve type: %s", input)
	}
}

// TradeDirection says which reserve is the swap source.
type TradeDirection uint8

const (
	AToB TradeDirection = iota
	BToA
)

func (d TradeDirection) String() string {
	if d == AToB {
		return "a_to_b"
	}
	return "b_to_a"
}

// Fees mirrors the pool fee record. Numerators never exceed their denominators.
type Fees struct {
	TradeFeeNumerator        uint64
	TradeFeeDenominator      uint64
	OwnerTradeFeeNumerator   uint64
	OwnerTradeFeeDenominator uint64
}

// Validate checks the numerator/denominator invariant.
func (f Fees) Validate() error {
	if f.TradeFeeNumerator > 0 && f.TradeFeeDenominator == 0 {
		return fmt.Errorf("trade fee denominator is zero")
	}
	if f.TradeFeeNumerator > f.TradeFeeDenominator {
		return fmt.Errorf("trade fee numerator %d exceeds denominator %d", f.TradeFeeNumerator, f.TradeFeeDenominator)
	}
	if f.OwnerTradeFeeNumerator > 0 && f.OwnerTradeFeeDenominator == 0 {
		return fmt.Errorf("owner trade fee denominator is zero")
	}
	if f.OwnerTradeFeeNumerator > f.OwnerTradeFeeDenominator {
		return fmt.Errorf("owner trade fee numerator %d exceeds denominator %d", f.OwnerTradeFeeNumerator, f.OwnerTradeFeeDenominator)
	}
	return nil
}

// TradeFee returns floor(amount * tradeFeeNumerator / tradeFeeDenominator).
func (f Fees) TradeFee(amount *big.Int) *big.Int {
	return feeOf(amount, f.TradeFeeNumerator, f.TradeFeeDenominator)
}

// OwnerTradeFee returns floor(amount * ownerTradeFeeNumerator / ownerTradeFeeDenominator).
func (f Fees) OwnerTradeFee(amount *big.Int) *big.Int {
	return feeOf(amount, f.OwnerTradeFeeNumerator, f.OwnerTradeFeeDenominator)
}

// normalizedTradeFee spreads the trade fee over both coins: fee * n / (4 * (n - 1)).
func (f Fees) normalizedTradeFee(amount *big.Int) *big.Int {
	if f.TradeFeeDenominator == 0 {
		return big.NewInt(0)
	}
	numerator := new(big.Int).SetUint64(f.TradeFeeNumerator)
	numerator.Mul(numerator, bigNCoins)
	numerator.Div(numerator, big.NewInt(4*(nCoins-1)))

	fee := new(big.Int).Mul(amount, numerator)
	return fee.Div(fee, new(big.Int).SetUint64(f.TradeFeeDenominator))
}

func feeOf(amount *big.Int, numerator, denominator uint64) *big.Int {
	if denominator == 0 || numerator == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(numerator))
	return fee.Div(fee, new(big.Int).SetUint64(denominator))
}

// Curve is the quote contract shared by every curve variant. The set of
// implementations is closed: ConstantProduct and StableSwap.
type Curve interface {
	Kind() Kind
	// ComputeOutAmount returns the destination amount received for sourceAmount.
	ComputeOutAmount(sourceAmount, swapSourceAmount, swapDestinationAmount *big.Int, direction TradeDirection) (*big.Int, error)
	// ComputeInAmount returns the source amount required to receive destinationAmount.
	ComputeInAmount(destinationAmount, swapSourceAmount, swapDestinationAmount *big.Int, direction TradeDirection) (*big.Int, error)
	// SpotOutAmount extrapolates the marginal price at zero trade size to sourceAmount.
	SpotOutAmount(sourceAmount, swapSourceAmount, swapDestinationAmount *big.Int, direction TradeDirection) (*big.Rat, error)
	// ComputeD returns the pool invariant for the given token amounts.
	ComputeD(tokenAAmount, tokenBAmount *big.Int) (*big.Int, error)
	// ComputeImbalanceDeposit returns pool tokens minted for an uneven deposit.
	ComputeImbalanceDeposit(depositAAmount, depositBAmount, swapTokenAAmount, swapTokenBAmount, poolLpSupply *big.Int, fees Fees) (*big.Int, error)
	// ComputeWithdrawOne returns the amount of a single token paid out for burning poolTokenAmount.
	// AToB withdraws token B, BToA withdraws token A.
	ComputeWithdrawOne(poolTokenAmount, poolLpSupply, swapTokenAAmount, swapTokenBAmount *big.Int, fees Fees, direction TradeDirection) (*big.Int, error)

	sealed()
}
