package snapshot

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"

	"ammQuote/internal/curve"
	"ammQuote/internal/depeg"
	"ammQuote/internal/model"
	"ammQuote/internal/quote"
	"ammQuote/internal/vault"
)

// Load reads a JSON pool snapshot from path.
func Load(path string) (model.PoolSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap model.PoolSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Decode converts the JSON form into the numeric snapshot the quoter consumes.
func Decode(raw model.PoolSnapshot) (quote.Snapshot, error) {
	var (
		out quote.Snapshot
		err error
	)

	if raw.Address != "" {
		if out.Address, err = solana.PublicKeyFromBase58(raw.Address); err != nil {
			return quote.Snapshot{}, fmt.Errorf("pool address: %w", err)
		}
	}
	if out.TokenAMint, err = solana.PublicKeyFromBase58(raw.TokenA.Mint); err != nil {
		return quote.Snapshot{}, fmt.Errorf("token a mint: %w", err)
	}
	if out.TokenBMint, err = solana.PublicKeyFromBase58(raw.TokenB.Mint); err != nil {
		return quote.Snapshot{}, fmt.Errorf("token b mint: %w", err)
	}
	out.TokenADecimals = raw.TokenA.Decimals
	out.TokenBDecimals = raw.TokenB.Decimals

	if out.CurveKind, err = curve.ParseKind(raw.Curve); err != nil {
		return quote.Snapshot{}, err
	}
	out.Amp = raw.Amp
	out.Multiplier = curve.TokenMultiplier{
		TokenAMultiplier: raw.TokenMultiplier.TokenAMultiplier,
		TokenBMultiplier: raw.TokenMultiplier.TokenBMultiplier,
		PrecisionFactor:  raw.TokenMultiplier.PrecisionFactor,
	}
	if out.CurveKind == curve.KindStableSwap {
		if out.Multiplier.TokenAMultiplier == 0 {
			out.Multiplier.TokenAMultiplier = 1
		}
		if out.Multiplier.TokenBMultiplier == 0 {
			out.Multiplier.TokenBMultiplier = 1
		}
	}

	if raw.Depeg != nil {
		if out.Depeg, out.DepegAccount, err = decodeDepeg(*raw.Depeg); err != nil {
			return quote.Snapshot{}, err
		}
	}

	out.Fees = curve.Fees{
		TradeFeeNumerator:        raw.Fees.TradeFeeNumerator,
		TradeFeeDenominator:      raw.Fees.TradeFeeDenominator,
		OwnerTradeFeeNumerator:   raw.Fees.OwnerTradeFeeNumerator,
		OwnerTradeFeeDenominator: raw.Fees.OwnerTradeFeeDenominator,
	}

	if out.VaultA, err = decodeVault(raw.VaultA); err != nil {
		return quote.Snapshot{}, fmt.Errorf("vault a: %w", err)
	}
	if out.VaultB, err = decodeVault(raw.VaultB); err != nil {
		return quote.Snapshot{}, fmt.Errorf("vault b: %w", err)
	}
	if out.PoolVaultALp, err = parseBig("pool_vault_a_lp", raw.PoolVaultALp); err != nil {
		return quote.Snapshot{}, err
	}
	if out.PoolVaultBLp, err = parseBig("pool_vault_b_lp", raw.PoolVaultBLp); err != nil {
		return quote.Snapshot{}, err
	}
	if out.PoolLpSupply, err = parseBig("pool_lp_supply", raw.PoolLpSupply); err != nil {
		return quote.Snapshot{}, err
	}
	out.Now = raw.Timestamp

	if err := out.Validate(); err != nil {
		return quote.Snapshot{}, err
	}
	return out, nil
}

func decodeDepeg(raw model.DepegSnapshot) (depeg.State, []byte, error) {
	depegType, err := depeg.ParseType(raw.Type)
	if err != nil {
		return depeg.State{}, nil, err
	}
	price, err := parseBig("depeg.base_virtual_price", raw.BaseVirtualPrice)
	if err != nil {
		return depeg.State{}, nil, err
	}
	state := depeg.State{
		Type:               depegType,
		BaseVirtualPrice:   price,
		BaseCacheUpdatedAt: raw.BaseCacheUpdatedAt,
	}
	if raw.Account == "" {
		return state, nil, nil
	}
	account, err := hexutil.Decode(raw.Account)
	if err != nil {
		return depeg.State{}, nil, fmt.Errorf("depeg.account: %w", err)
	}
	return state, account, nil
}

func decodeVault(raw model.VaultSnapshot) (quote.VaultSnapshot, error) {
	total, err := parseUint64("total_amount", raw.TotalAmount)
	if err != nil {
		return quote.VaultSnapshot{}, err
	}
	lockedProfit, err := parseUint64("last_updated_locked_profit", raw.LastUpdatedLockedProfit)
	if err != nil {
		return quote.VaultSnapshot{}, err
	}
	degradation, err := parseUint64("locked_profit_degradation", raw.LockedProfitDegradation)
	if err != nil {
		return quote.VaultSnapshot{}, err
	}
	lpSupply, err := parseBig("lp_supply", raw.LpSupply)
	if err != nil {
		return quote.VaultSnapshot{}, err
	}
	reserve, err := parseBig("reserve", raw.Reserve)
	if err != nil {
		return quote.VaultSnapshot{}, err
	}
	return quote.VaultSnapshot{
		State: vault.State{
			TotalAmount: total,
			LockedProfitTracker: vault.LockedProfitTracker{
				LastUpdatedLockedProfit: lockedProfit,
				LastReport:              raw.LastReport,
				LockedProfitDegradation: degradation,
			},
		},
		LpSupply: lpSupply,
		Reserve:  reserve,
	}, nil
}

// parseBig parses a non-negative decimal integer. Empty means zero.
func parseBig(name, value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%s: invalid integer %q", name, value)
	}
	if parsed.Sign() < 0 {
		return nil, fmt.Errorf("%s: negative value %q", name, value)
	}
	return parsed, nil
}

func parseUint64(name, value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return parsed, nil
}
