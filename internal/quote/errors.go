package quote

import "errors"

var (
	ErrInvalidMint              = errors.New("mint does not belong to pool")
	ErrInsufficientVaultReserve = errors.New("out amount exceeds vault reserve")
	ErrEmptyPool                = errors.New("pool has no liquidity")
	ErrInvalidSlippage          = errors.New("slippage exceeds 10000 bps")
	ErrZeroAmount               = errors.New("amount is zero")
)
