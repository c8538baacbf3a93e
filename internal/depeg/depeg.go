// Package depeg maintains the cached virtual price of liquid staking base
// assets used by stable pools whose token B drifts from its base asset.
package depeg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Precision scales virtual prices and the non-derivative side of a depeg pool.
	Precision = 100_000_000
	// CacheExpirySeconds is how long a cached base virtual price stays fresh.
	CacheExpirySeconds = 600

	// Marinade State: 8 byte discriminator, msol_price u64 LE at 512.
	marinadeMsolPriceOffset = 512
	// Lido: st_sol_supply u64 LE at 73, sol_balance u64 LE at 81.
	lidoStSolSupplyOffset = 73
	lidoSolBalanceOffset  = 81
)

var (
	ErrMissingDepegAccount = errors.New("missing depeg account")
	ErrUnsupportedBasePool = errors.New("unsupported base pool")
)

var (
	bigPrecision     = big.NewInt(Precision)
	marinadePriceDen = new(big.Int).Lsh(big.NewInt(1), 32)
)

// Type is the kind of external staking protocol backing a pool.
type Type uint8

const (
	TypeNone Type = iota
	TypeMarinade
	TypeLido
	TypeSplStake
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeMarinade:
		return "marinade"
	case TypeLido:
		return "lido"
	case TypeSplStake:
		return "spl_stake"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ParseType converts a depeg type name into a Type.
func ParseType(input string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "none":
		return TypeNone, nil
	case "marinade":
		return TypeMarinade, nil
	case "lido":
		return TypeLido, nil
	case "spl_stake", "splstake":
		return TypeSplStake, nil
	default:
		return 0, fmt.Errorf("unknown depeg type: %s", input)
	}
}

// State is the depeg cache of a pool. It is a value: Refresh returns a new
// State instead of mutating the receiver.
type State struct {
	Type               Type
	BaseVirtualPrice   *big.Int
	BaseCacheUpdatedAt int64
}

// Enabled reports whether the pool applies a virtual price correction.
func (s State) Enabled() bool {
	return s.Type != TypeNone
}

// Stale reports whether the cache must be refreshed before use at now.
func (s State) Stale(now int64) bool {
	if !s.Enabled() {
		return false
	}
	return now-s.BaseCacheUpdatedAt > CacheExpirySeconds || s.BaseVirtualPrice == nil || s.BaseVirtualPrice.Sign() == 0
}

// Refresh recomputes the base virtual price from the raw base pool account
// when the cache is stale at now. Fresh states are returned unchanged.
func (s State) Refresh(now int64, baseAccount []byte) (State, error) {
	if !s.Stale(now) {
		return s, nil
	}
	price, err := BaseVirtualPrice(s.Type, baseAccount)
	if err != nil {
		return s, err
	}
	return State{
		Type:               s.Type,
		BaseVirtualPrice:   price,
		BaseCacheUpdatedAt: now,
	}, nil
}

// Equal compares two states by value.
func (s State) Equal(other State) bool {
	if s.Type != other.Type || s.BaseCacheUpdatedAt != other.BaseCacheUpdatedAt {
		return false
	}
	if s.BaseVirtualPrice == nil || other.BaseVirtualPrice == nil {
		return s.BaseVirtualPrice == nil && other.BaseVirtualPrice == nil
	}
	return s.BaseVirtualPrice.Cmp(other.BaseVirtualPrice) == 0
}

// BaseVirtualPrice reads the redemption rate of the staking derivative from
// the external protocol's state account, scaled by Precision.
func BaseVirtualPrice(t Type, data []byte) (*big.Int, error) {
	switch t {
	case TypeMarinade:
		msolPrice, err := readUint64(data, marinadeMsolPriceOffset)
		if err != nil {
			return nil, fmt.Errorf("marinade msol price: %w", err)
		}
		price := new(big.Int).SetUint64(msolPrice)
		price.Mul(price, bigPrecision)
		return price.Div(price, marinadePriceDen), nil
	case TypeLido:
		supply, err := readUint64(data, lidoStSolSupplyOffset)
		if err != nil {
			return nil, fmt.Errorf("lido st sol supply: %w", err)
		}
		balance, err := readUint64(data, lidoSolBalanceOffset)
		if err != nil {
			return nil, fmt.Errorf("lido sol balance: %w", err)
		}
		if supply == 0 {
			return nil, fmt.Errorf("lido st sol supply is zero: %w", ErrMissingDepegAccount)
		}
		price := new(big.Int).SetUint64(balance)
		price.Mul(price, bigPrecision)
		return price.Div(price, new(big.Int).SetUint64(supply)), nil
	default:
		return nil, fmt.Errorf("%s: %w", t, ErrUnsupportedBasePool)
	}
}

func readUint64(data []byte, offset int) (uint64, error) {
	if len(data) < offset+8 {
		return 0, fmt.Errorf("account data has %d bytes, need %d: %w", len(data), offset+8, ErrMissingDepegAccount)
	}
	return binary.LittleEndian.Uint64(data[offset : offset+8]), nil
}
