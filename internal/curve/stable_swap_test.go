package curve

import (
	"errors"
	"math/big"
	"testing"

	"ammQuote/internal/depeg"
)

func balancedStable() StableSwap {
	return StableSwap{
		Amp:        100,
		Multiplier: TokenMultiplier{TokenAMultiplier: 1, TokenBMultiplier: 1, PrecisionFactor: 9},
	}
}

func TestStableSwapOutAndIn(t *testing.T) {
	s := balancedStable()
	reserve := big.NewInt(1_000_000_000)

	out, err := s.ComputeOutAmount(big.NewInt(1_000_000), reserve, reserve, AToB)
	if err != nil {
		t.Fatalf("out: %v", err)
	}
	if out.Cmp(big.NewInt(999_990)) != 0 {
		t.Fatalf("expected 999990, got %s", out)
	}

	in, err := s.ComputeInAmount(out, reserve, reserve, AToB)
	if err != nil {
		t.Fatalf("in: %v", err)
	}
	if in.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("expected 1000000, got %s", in)
	}

	cpOut, err := ConstantProduct{}.ComputeOutAmount(big.NewInt(1_000_000), reserve, reserve, AToB)
	if err != nil {
		t.Fatalf("cp out: %v", err)
	}
	if out.Cmp(cpOut) <= 0 {
		t.Fatalf("stable curve should beat constant product near balance: %s <= %s", out, cpOut)
	}
}

func TestStableSwapSpotAtBalanceIsPar(t *testing.T) {
	s := balancedStable()
	reserve := big.NewInt(1_000_000_000)
	spot, err := s.SpotOutAmount(big.NewInt(1_000_000), reserve, reserve, BToA)
	if err != nil {
		t.Fatalf("spot: %v", err)
	}
	if spot.Cmp(big.NewRat(1_000_000, 1)) != 0 {
		t.Fatalf("expected par spot 1000000, got %s", spot.RatString())
	}
}

func TestStableSwapTokenMultiplier(t *testing.T) {
	s := StableSwap{Amp: 100, Multiplier: TokenMultiplier{TokenAMultiplier: 1000, TokenBMultiplier: 1}}
	reserveA := big.NewInt(1_000_000)
	reserveB := big.NewInt(1_000_000_000)

	aToB, err := s.ComputeOutAmount(big.NewInt(1_000_000), reserveA, reserveB, AToB)
	if err != nil {
		t.Fatalf("a to b: %v", err)
	}
	if aToB.Cmp(big.NewInt(934_112_765)) != 0 {
		t.Fatalf("expected 934112765, got %s", aToB)
	}
	bToA, err := s.ComputeOutAmount(big.NewInt(1_000_000_000), reserveB, reserveA, BToA)
	if err != nil {
		t.Fatalf("b to a: %v", err)
	}
	if bToA.Cmp(big.NewInt(934_112)) != 0 {
		t.Fatalf("expected 934112, got %s", bToA)
	}
}

func TestStableSwapDepegPrice(t *testing.T) {
	s := StableSwap{
		Amp:        100,
		Multiplier: TokenMultiplier{TokenAMultiplier: 1, TokenBMultiplier: 1},
		Depeg: depeg.State{
			Type:               depeg.TypeMarinade,
			BaseVirtualPrice:   big.NewInt(125_000_000),
			BaseCacheUpdatedAt: 1000,
		},
		Now: 1500,
	}
	reserveA := big.NewInt(1_250_000_000)
	reserveB := big.NewInt(1_000_000_000)

	out, err := s.ComputeOutAmount(big.NewInt(1_000_000), reserveA, reserveB, AToB)
	if err != nil {
		t.Fatalf("out: %v", err)
	}
	if out.Cmp(big.NewInt(799_993)) != 0 {
		t.Fatalf("expected 799993, got %s", out)
	}
	back, err := s.ComputeOutAmount(big.NewInt(1_000_000), reserveA, reserveB, BToA)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if back.Cmp(big.NewInt(1_244_011)) != 0 {
		t.Fatalf("expected 1244011, got %s", back)
	}

	s.Depeg.BaseVirtualPrice = big.NewInt(100_000_000)
	par, err := s.ComputeOutAmount(big.NewInt(1_000_000), reserveA, reserveB, AToB)
	if err != nil {
		t.Fatalf("par: %v", err)
	}
	if par.Cmp(big.NewInt(997_738)) != 0 {
		t.Fatalf("expected 997738, got %s", par)
	}
}

func TestStableSwapRejectsStaleDepeg(t *testing.T) {
	s := StableSwap{
		Amp:        100,
		Multiplier: TokenMultiplier{TokenAMultiplier: 1, TokenBMultiplier: 1},
		Depeg: depeg.State{
			Type:               depeg.TypeLido,
			BaseVirtualPrice:   big.NewInt(105_000_000),
			BaseCacheUpdatedAt: 1000,
		},
		Now: 1601,
	}
	reserve := big.NewInt(1_000_000_000)
	if _, err := s.ComputeOutAmount(big.NewInt(1000), reserve, reserve, AToB); !errors.Is(err, ErrStaleDepegCache) {
		t.Fatalf("expected stale depeg error, got %v", err)
	}
}

func TestStableSwapComputeDMatchesSolver(t *testing.T) {
	s := balancedStable()
	got, err := s.ComputeD(big.NewInt(1_000_000), big.NewInt(2_000_000))
	if err != nil {
		t.Fatalf("d: %v", err)
	}
	want, err := ComputeD(100, big.NewInt(1_000_000), big.NewInt(2_000_000))
	if err != nil {
		t.Fatalf("solver: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestStableSwapImbalanceDeposit(t *testing.T) {
	s := balancedStable()
	reserve := big.NewInt(1_000_000_000)
	supply := big.NewInt(2_000_000_000)
	fees := Fees{TradeFeeNumerator: 25, TradeFeeDenominator: 10_000}

	balanced, err := s.ComputeImbalanceDeposit(big.NewInt(1_000_000), big.NewInt(1_000_000), reserve, reserve, supply, fees)
	if err != nil {
		t.Fatalf("balanced: %v", err)
	}
	if balanced.Cmp(big.NewInt(2_000_000)) != 0 {
		t.Fatalf("balanced deposit should mint proportionally, got %s", balanced)
	}

	single, err := s.ComputeImbalanceDeposit(big.NewInt(1_000_000), big.NewInt(0), reserve, reserve, supply, fees)
	if err != nil {
		t.Fatalf("single: %v", err)
	}
	if single.Cmp(big.NewInt(998_798)) != 0 {
		t.Fatalf("expected 998798, got %s", single)
	}
}

func TestStableSwapWithdrawOne(t *testing.T) {
	s := balancedStable()
	reserve := big.NewInt(1_000_000_000)
	supply := big.NewInt(2_000_000_000)
	fees := Fees{TradeFeeNumerator: 25, TradeFeeDenominator: 10_000}

	tokenB, err := s.ComputeWithdrawOne(big.NewInt(1_000_000), supply, reserve, reserve, fees, AToB)
	if err != nil {
		t.Fatalf("withdraw b: %v", err)
	}
	tokenA, err := s.ComputeWithdrawOne(big.NewInt(1_000_000), supply, reserve, reserve, fees, BToA)
	if err != nil {
		t.Fatalf("withdraw a: %v", err)
	}
	if tokenA.Cmp(tokenB) != 0 || tokenA.Cmp(big.NewInt(998_798)) != 0 {
		t.Fatalf("expected symmetric 998798, got a=%s b=%s", tokenA, tokenB)
	}

	free, err := s.ComputeWithdrawOne(big.NewInt(1_000_000), supply, reserve, reserve, Fees{}, AToB)
	if err != nil {
		t.Fatalf("withdraw without fee: %v", err)
	}
	if free.Cmp(big.NewInt(999_997)) != 0 {
		t.Fatalf("expected 999997, got %s", free)
	}

	if _, err := s.ComputeWithdrawOne(big.NewInt(3_000_000_000), supply, reserve, reserve, fees, AToB); !errors.Is(err, ErrArithmetic) {
		t.Fatalf("expected arithmetic error when burning more than supply, got %v", err)
	}
}
