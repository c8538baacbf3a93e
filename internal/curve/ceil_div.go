package curve

import (
	"fmt"
	"math/big"
)

// CeilDiv divides a by b rounding up. The returned divisor is b refined so that
// a <= quotient*divisor holds exactly, which keeps the pool invariant from shrinking.
// A quotient that truncates to zero yields ErrAmountTooSmall.
func CeilDiv(a, b *big.Int) (quotient *big.Int, divisor *big.Int, err error) {
	if b.Sign() <= 0 {
		return nil, nil, fmt.Errorf("ceil div: non-positive divisor: %w", ErrArithmetic)
	}

	quotient, remainder := new(big.Int).QuoRem(a, b, new(big.Int))
	if quotient.Sign() == 0 {
		return nil, nil, ErrAmountTooSmall
	}

	divisor = new(big.Int).Set(b)
	if remainder.Sign() > 0 {
		quotient.Add(quotient, bigOne)
		divisor.QuoRem(a, quotient, remainder)
		if remainder.Sign() > 0 {
			divisor.Add(divisor, bigOne)
		}
	}

	return quotient, divisor, nil
}
