package curve

import (
	"fmt"
	"math/big"
)

const (
	nCoins        = 2
	maxIterations = 20
)

var (
	bigOne    = big.NewInt(1)
	bigNCoins = big.NewInt(nCoins)
)

// ComputeD solves the stable swap invariant D for two reserves using Newton's method.
// After maxIterations the last iterate is returned even if it has not converged.
func ComputeD(amp uint64, amountA, amountB *big.Int) (*big.Int, error) {
	if amp == 0 {
		return nil, fmt.Errorf("compute d: amplification is zero: %w", ErrArithmetic)
	}
	if amountA.Sign() < 0 || amountB.Sign() < 0 {
		return nil, fmt.Errorf("compute d: negative reserve: %w", ErrArithmetic)
	}

	sum := new(big.Int).Add(amountA, amountB)
	if sum.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if amountA.Sign() == 0 || amountB.Sign() == 0 {
		return nil, fmt.Errorf("compute d: one sided reserve: %w", ErrArithmetic)
	}

	ann := new(big.Int).Mul(new(big.Int).SetUint64(amp), bigNCoins)
	annSum := new(big.Int).Mul(ann, sum)
	annMinusOne := new(big.Int).Sub(ann, bigOne)
	amountATimesN := new(big.Int).Mul(amountA, bigNCoins)
	amountBTimesN := new(big.Int).Mul(amountB, bigNCoins)
	nPlusOne := big.NewInt(nCoins + 1)

	d := new(big.Int).Set(sum)
	prev := new(big.Int)
	dP := new(big.Int)
	num := new(big.Int)
	den := new(big.Int)
	tmp := new(big.Int)
	diff := new(big.Int)

	for i := 0; i < maxIterations; i++ {
		// dP = D^3 / (4xy), divided in two steps as on chain
		dP.Mul(d, d)
		dP.Div(dP, amountATimesN)
		dP.Mul(dP, d)
		dP.Div(dP, amountBTimesN)

		prev.Set(d)

		num.Mul(dP, bigNCoins)
		num.Add(num, annSum)
		num.Mul(num, d)

		den.Mul(d, annMinusOne)
		tmp.Mul(dP, nPlusOne)
		den.Add(den, tmp)
		if den.Sign() == 0 {
			return nil, fmt.Errorf("compute d: zero denominator: %w", ErrArithmetic)
		}
		d.Div(num, den)

		if diff.Sub(d, prev).CmpAbs(bigOne) <= 0 {
			break
		}
	}

	return d, nil
}

// ComputeY returns the reserve of the other token that keeps the invariant at d
// when one reserve is set to x. Like ComputeD it never fails on non-convergence.
func ComputeY(amp uint64, x, d *big.Int) (*big.Int, error) {
	if amp == 0 {
		return nil, fmt.Errorf("compute y: amplification is zero: %w", ErrArithmetic)
	}
	if x.Sign() <= 0 {
		return nil, fmt.Errorf("compute y: non-positive reserve: %w", ErrArithmetic)
	}
	if d.Sign() < 0 {
		return nil, fmt.Errorf("compute y: negative invariant: %w", ErrArithmetic)
	}

	ann := new(big.Int).Mul(new(big.Int).SetUint64(amp), bigNCoins)

	// b = x + D/Ann - D
	b := new(big.Int).Div(d, ann)
	b.Add(b, x)
	b.Sub(b, d)

	// c = D^3 / (n^2 * x * Ann)
	c := new(big.Int).Mul(d, d)
	c.Mul(c, d)
	cDen := new(big.Int).Mul(bigNCoins, bigNCoins)
	cDen.Mul(cDen, x)
	cDen.Mul(cDen, ann)
	c.Div(c, cDen)

	y := new(big.Int).Set(d)
	prev := new(big.Int)
	num := new(big.Int)
	den := new(big.Int)
	diff := new(big.Int)

	for i := 0; i < maxIterations; i++ {
		prev.Set(y)

		num.Mul(y, y)
		num.Add(num, c)

		den.Mul(y, bigNCoins)
		den.Add(den, b)
		if den.Sign() <= 0 {
			return nil, fmt.Errorf("compute y: non-positive denominator: %w", ErrArithmetic)
		}
		y.Div(num, den)

		if diff.Sub(y, prev).CmpAbs(bigOne) <= 0 {
			break
		}
	}

	return y, nil
}
