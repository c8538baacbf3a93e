package curve

import (
	"errors"
	"math/big"
	"testing"
)

func TestCeilDiv(t *testing.T) {
	cases := []struct {
		a, b            string
		quotient, refit string
	}{
		{"7", "2", "4", "2"},
		{"10", "5", "2", "5"},
		{"700000000000000000000", "100997500", "6930864625363", "100997500"},
	}
	for _, tc := range cases {
		a, _ := new(big.Int).SetString(tc.a, 10)
		b, _ := new(big.Int).SetString(tc.b, 10)
		q, divisor, err := CeilDiv(a, b)
		if err != nil {
			t.Fatalf("ceil div %s/%s: %v", tc.a, tc.b, err)
		}
		if q.String() != tc.quotient || divisor.String() != tc.refit {
			t.Fatalf("ceil div %s/%s: expected (%s, %s), got (%s, %s)", tc.a, tc.b, tc.quotient, tc.refit, q, divisor)
		}
		if a.Cmp(new(big.Int).Mul(q, divisor)) > 0 {
			t.Fatalf("ceil div %s/%s: quotient*divisor below dividend", tc.a, tc.b)
		}
	}
}

func TestCeilDivCeilingProperty(t *testing.T) {
	for a := int64(1); a <= 200; a++ {
		for b := int64(1); b <= a; b++ {
			q, divisor, err := CeilDiv(big.NewInt(a), big.NewInt(b))
			if err != nil {
				t.Fatalf("ceil div %d/%d: %v", a, b, err)
			}
			if new(big.Int).Mul(q, divisor).Cmp(big.NewInt(a)) < 0 {
				t.Fatalf("ceil div %d/%d: %s*%s < a", a, b, q, divisor)
			}
			if divisor.Cmp(big.NewInt(b)) > 0 {
				t.Fatalf("ceil div %d/%d: divisor grew to %s", a, b, divisor)
			}
		}
	}
}

func TestCeilDivTooSmall(t *testing.T) {
	if _, _, err := CeilDiv(big.NewInt(3), big.NewInt(5)); !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected amount too small, got %v", err)
	}
	if _, _, err := CeilDiv(big.NewInt(3), big.NewInt(0)); !errors.Is(err, ErrArithmetic) {
		t.Fatalf("expected arithmetic error, got %v", err)
	}
}

func TestConstantProductOutAmount(t *testing.T) {
	var c ConstantProduct
	out, err := c.ComputeOutAmount(big.NewInt(997_500), big.NewInt(100_000_000), big.NewInt(7_000_000_000_000), AToB)
	if err != nil {
		t.Fatalf("out: %v", err)
	}
	if out.Cmp(big.NewInt(69_135_374_637)) != 0 {
		t.Fatalf("expected 69135374637, got %s", out)
	}

	if _, err := c.ComputeOutAmount(big.NewInt(200), big.NewInt(1_000_000), big.NewInt(10), AToB); !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected amount too small, got %v", err)
	}
}

func TestConstantProductRoundTripNeverFree(t *testing.T) {
	var c ConstantProduct
	cases := []struct{ source, destination, in int64 }{
		{1000, 10, 200},
		{100_000_000, 7_000_000_000_000, 997_500},
		{1_000_000_000, 3_000_000_000, 12_345_678},
		{123_456_789, 987_654_321, 1000},
	}
	for _, tc := range cases {
		source, destination, in := big.NewInt(tc.source), big.NewInt(tc.destination), big.NewInt(tc.in)

		out, err := c.ComputeOutAmount(in, source, destination, AToB)
		if err != nil {
			t.Fatalf("out %+v: %v", tc, err)
		}
		back, err := c.ComputeInAmount(out, source, destination, AToB)
		if err != nil {
			t.Fatalf("in %+v: %v", tc, err)
		}
		// ceilDiv rounds the new destination reserve up, so out is never above the exact
		// amount and inverting it can only need in' <= in; what must hold is that k never shrinks
		if back.Cmp(in) > 0 {
			t.Fatalf("%+v: inverse needs %s, more than the original %s", tc, back, in)
		}

		// the pool invariant never shrinks across the round trip
		before := new(big.Int).Mul(source, destination)
		after := new(big.Int).Mul(new(big.Int).Add(source, back), new(big.Int).Sub(destination, out))
		if after.Cmp(before) < 0 {
			t.Fatalf("%+v: invariant decreased from %s to %s", tc, before, after)
		}

		// one unit less buys strictly less
		less := new(big.Int).Sub(back, big.NewInt(1))
		if less.Sign() > 0 {
			cheaper, err := c.ComputeOutAmount(less, source, destination, AToB)
			if err == nil && cheaper.Cmp(out) >= 0 {
				t.Fatalf("%+v: %s buys %s, the same as %s", tc, less, cheaper, back)
			}
		}
	}
}

func TestConstantProductSpotAndD(t *testing.T) {
	var c ConstantProduct
	spot, err := c.SpotOutAmount(big.NewInt(10), big.NewInt(400), big.NewInt(1000), AToB)
	if err != nil {
		t.Fatalf("spot: %v", err)
	}
	if spot.Cmp(big.NewRat(25, 1)) != 0 {
		t.Fatalf("expected 25, got %s", spot.RatString())
	}

	d, err := c.ComputeD(big.NewInt(400), big.NewInt(900))
	if err != nil {
		t.Fatalf("d: %v", err)
	}
	if d.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("expected 600, got %s", d)
	}
}

func TestConstantProductRejectsUnbalancedLiquidity(t *testing.T) {
	var c Curve = ConstantProduct{}
	one := big.NewInt(1)
	if _, err := c.ComputeImbalanceDeposit(one, one, one, one, one, Fees{}); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
	if _, err := c.ComputeWithdrawOne(one, one, one, one, Fees{}, AToB); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
}

func TestFees(t *testing.T) {
	fees := Fees{TradeFeeNumerator: 25, TradeFeeDenominator: 10_000, OwnerTradeFeeNumerator: 5, OwnerTradeFeeDenominator: 10_000}
	if err := fees.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := fees.TradeFee(big.NewInt(1_000_000)); got.Cmp(big.NewInt(2500)) != 0 {
		t.Fatalf("expected trade fee 2500, got %s", got)
	}
	if got := fees.OwnerTradeFee(big.NewInt(1_000_000)); got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected owner fee 500, got %s", got)
	}
	if got := fees.normalizedTradeFee(big.NewInt(1_000_000)); got.Cmp(big.NewInt(1200)) != 0 {
		t.Fatalf("expected normalized fee 1200, got %s", got)
	}

	bad := Fees{TradeFeeNumerator: 2, TradeFeeDenominator: 1}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for numerator above denominator")
	}
}
