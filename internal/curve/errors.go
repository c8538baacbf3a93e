package curve

import "errors"

var (
	// ErrAmountTooSmall indicates a division truncated to zero or a swap produced no output.
	ErrAmountTooSmall = errors.New("amount too small")
	// ErrArithmetic indicates a division by zero or a negative intermediate value.
	ErrArithmetic = errors.New("arithmetic error")
	// ErrUnsupportedOperation indicates the curve variant rejects the requested operation.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrStaleDepegCache indicates a stable curve was built from a depeg cache that needs a refresh.
	ErrStaleDepegCache = errors.New("depeg cache is stale")
)
