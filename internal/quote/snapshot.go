package quote

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"ammQuote/internal/curve"
	"ammQuote/internal/depeg"
	"ammQuote/internal/vault"
)

// VaultSnapshot is a decoded yield vault with its LP mint supply and the
// token balance currently held by the vault.
type VaultSnapshot struct {
	State    vault.State
	LpSupply *big.Int
	Reserve  *big.Int
}

// Snapshot holds every already-decoded input needed to quote against a pool
// at one on-chain time. Freshness is the caller's responsibility.
type Snapshot struct {
	Address    solana.PublicKey
	TokenAMint solana.PublicKey
	TokenBMint solana.PublicKey
	// Decimals are only used to render human-readable amounts.
	TokenADecimals uint8
	TokenBDecimals uint8

	CurveKind  curve.Kind
	Amp        uint64
	Multiplier curve.TokenMultiplier
	// Depeg is the cache as stored in the pool account.
	Depeg depeg.State
	// DepegAccount is the raw state account of the base staking protocol.
	DepegAccount []byte

	Fees curve.Fees

	VaultA       VaultSnapshot
	VaultB       VaultSnapshot
	PoolVaultALp *big.Int
	PoolVaultBLp *big.Int
	PoolLpSupply *big.Int

	Now int64
}

// Validate checks that the numeric fields a quote relies on are present.
func (s Snapshot) Validate() error {
	if s.TokenAMint.Equals(s.TokenBMint) {
		return fmt.Errorf("token a and token b mints are equal")
	}
	if err := s.Fees.Validate(); err != nil {
		return err
	}
	fields := []struct {
		name  string
		value *big.Int
	}{
		{"vault a lp supply", s.VaultA.LpSupply},
		{"vault b lp supply", s.VaultB.LpSupply},
		{"vault a reserve", s.VaultA.Reserve},
		{"vault b reserve", s.VaultB.Reserve},
		{"pool vault a lp", s.PoolVaultALp},
		{"pool vault b lp", s.PoolVaultBLp},
		{"pool lp supply", s.PoolLpSupply},
	}
	for _, field := range fields {
		if field.value == nil {
			return fmt.Errorf("%s is missing", field.name)
		}
		if field.value.Sign() < 0 {
			return fmt.Errorf("%s is negative", field.name)
		}
	}
	if s.CurveKind == curve.KindStableSwap && s.Amp == 0 {
		return fmt.Errorf("stable pool amplification is zero")
	}
	return nil
}
