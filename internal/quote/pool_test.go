package quote

import (
	"encoding/binary"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"

	"ammQuote/internal/curve"
	"ammQuote/internal/depeg"
	"ammQuote/internal/vault"
)

var (
	testPool  = solana.MustPublicKeyFromBase58("32D4zRxNc1EssbJieVHfPhZM3rH6CzfUPrWUuWxD9prG")
	mintSOL   = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	mintUSDC  = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	mintMSOL  = solana.MustPublicKeyFromBase58("mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So")
	mintOther = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

const snapshotTime = 1_700_000_000

func parVault(total int64) VaultSnapshot {
	return VaultSnapshot{
		State:    vault.State{TotalAmount: uint64(total)},
		LpSupply: big.NewInt(total),
		Reserve:  big.NewInt(total),
	}
}

// constantProductSnapshot holds A=100,000,000 and B=7,000,000,000,000 with a
// 25 bps trade fee. Both vaults are at par.
func constantProductSnapshot() Snapshot {
	return Snapshot{
		Address:        testPool,
		TokenAMint:     mintUSDC,
		TokenBMint:     mintOther,
		TokenADecimals: 6,
		TokenBDecimals: 6,
		CurveKind:      curve.KindConstantProduct,
		Fees:           curve.Fees{TradeFeeNumerator: 25, TradeFeeDenominator: 10_000, OwnerTradeFeeDenominator: 10_000},
		VaultA:         parVault(200_000_000),
		VaultB:         parVault(10_000_000_000_000),
		PoolVaultALp:   big.NewInt(100_000_000),
		PoolVaultBLp:   big.NewInt(7_000_000_000_000),
		PoolLpSupply:   big.NewInt(26_457_513_110),
		Now:            snapshotTime,
	}
}

func marinadeAccount(msolPrice uint64) []byte {
	data := make([]byte, 760)
	binary.LittleEndian.PutUint64(data[512:], msolPrice)
	return data
}

// stableSnapshot is a SOL/mSOL pool whose depeg cache was written at
// snapshotTime with a price of 1.1 while the account now reports 1.25.
func stableSnapshot(now int64) Snapshot {
	return Snapshot{
		Address:        testPool,
		TokenAMint:     mintSOL,
		TokenBMint:     mintMSOL,
		TokenADecimals: 9,
		TokenBDecimals: 9,
		CurveKind:      curve.KindStableSwap,
		Amp:            100,
		Multiplier:     curve.TokenMultiplier{TokenAMultiplier: 1, TokenBMultiplier: 1, PrecisionFactor: 9},
		Depeg: depeg.State{
			Type:               depeg.TypeMarinade,
			BaseVirtualPrice:   big.NewInt(110_000_000),
			BaseCacheUpdatedAt: snapshotTime,
		},
		DepegAccount: marinadeAccount(5_368_709_120),
		Fees:         curve.Fees{TradeFeeNumerator: 25, TradeFeeDenominator: 10_000, OwnerTradeFeeDenominator: 10_000},
		VaultA:       parVault(2_500_000_000),
		VaultB:       parVault(2_000_000_000),
		PoolVaultALp: big.NewInt(1_250_000_000),
		PoolVaultBLp: big.NewInt(1_000_000_000),
		PoolLpSupply: big.NewInt(2_000_000_000),
		Now:          now,
	}
}

func mustQuoter(t *testing.T, snap Snapshot) *Quoter {
	t.Helper()
	q, err := NewPool(snap.Address, nil, nil).Update(snap)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	return q
}

func TestPoolTokenAmountsFollowVaultShares(t *testing.T) {
	snap := constantProductSnapshot()
	snap.VaultA.State.LockedProfitTracker = vault.LockedProfitTracker{
		LastUpdatedLockedProfit: 100_000_000,
		LastReport:              snapshotTime,
		LockedProfitDegradation: vault.LockedProfitDegradationDenominator,
	}
	snap.Now = snapshotTime

	q := mustQuoter(t, snap)
	a, b := q.PoolTokenAmounts()
	// half the vault is locked profit, the pool owns half the shares
	if a.Cmp(big.NewInt(50_000_000)) != 0 {
		t.Fatalf("expected token a 50000000, got %s", a)
	}
	if b.Cmp(big.NewInt(7_000_000_000_000)) != 0 {
		t.Fatalf("expected token b 7000000000000, got %s", b)
	}

	snap.Now = snapshotTime + 1
	q = mustQuoter(t, snap)
	if a, _ := q.PoolTokenAmounts(); a.Cmp(big.NewInt(100_000_000)) != 0 {
		t.Fatalf("expected profit unlocked after one second, got %s", a)
	}
}

func TestPoolRefreshesStaleDepegCache(t *testing.T) {
	pool := NewPool(testPool, nil, nil)

	freshQuoter, err := pool.Update(stableSnapshot(snapshotTime + 600))
	if err != nil {
		t.Fatalf("fresh update: %v", err)
	}
	state, ok := pool.Depeg()
	if !ok || state.BaseVirtualPrice.Cmp(big.NewInt(110_000_000)) != 0 {
		t.Fatalf("fresh cache should be kept, got %+v", state)
	}
	fresh, err := freshQuoter.SwapQuote(mintSOL, big.NewInt(10_000_000), 100)
	if err != nil {
		t.Fatalf("fresh swap: %v", err)
	}
	if fresh.SwapOutAmount.Cmp(big.NewInt(9_055_854)) != 0 {
		t.Fatalf("expected 9055854 at the cached price, got %s", fresh.SwapOutAmount)
	}

	staleQuoter, err := pool.Update(stableSnapshot(snapshotTime + 601))
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	state, _ = pool.Depeg()
	if state.BaseVirtualPrice.Cmp(big.NewInt(125_000_000)) != 0 || state.BaseCacheUpdatedAt != snapshotTime+601 {
		t.Fatalf("expected refreshed cache, got %+v", state)
	}
	refreshed, err := staleQuoter.SwapQuote(mintSOL, big.NewInt(10_000_000), 100)
	if err != nil {
		t.Fatalf("refreshed swap: %v", err)
	}
	if refreshed.SwapOutAmount.Cmp(big.NewInt(7_979_369)) != 0 {
		t.Fatalf("expected 7979369 at the refreshed price, got %s", refreshed.SwapOutAmount)
	}
}

func TestPoolKeepsNewerCachedDepeg(t *testing.T) {
	pool := NewPool(testPool, nil, nil)
	if _, err := pool.Update(stableSnapshot(snapshotTime + 601)); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// the snapshot still carries the old on-chain cache and no account
	snap := stableSnapshot(snapshotTime + 700)
	snap.DepegAccount = nil
	if _, err := pool.Update(snap); err != nil {
		t.Fatalf("second update should reuse the handle cache: %v", err)
	}
	state, _ := pool.Depeg()
	if state.BaseCacheUpdatedAt != snapshotTime+601 {
		t.Fatalf("expected cache from first refresh, got %+v", state)
	}
}

func TestPoolConcurrentRefresh(t *testing.T) {
	pool := NewPool(testPool, nil, nil)
	snap := stableSnapshot(snapshotTime + 601)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := pool.Update(snap)
			if err != nil {
				errs <- err
				return
			}
			if _, err := q.SwapQuote(mintMSOL, big.NewInt(1_000_000), 50); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent quote: %v", err)
	}

	state, _ := pool.Depeg()
	if state.BaseVirtualPrice.Cmp(big.NewInt(125_000_000)) != 0 {
		t.Fatalf("expected refreshed price, got %s", state.BaseVirtualPrice)
	}
}

func TestPoolRejectsMissingDepegAccount(t *testing.T) {
	snap := stableSnapshot(snapshotTime + 601)
	snap.DepegAccount = nil
	if _, err := NewPool(testPool, nil, nil).Update(snap); !errors.Is(err, depeg.ErrMissingDepegAccount) {
		t.Fatalf("expected ErrMissingDepegAccount for stale cache without account, got %v", err)
	}
}

func TestPoolRejectsForeignSnapshot(t *testing.T) {
	pool := NewPool(mintOther, nil, nil)
	if _, err := pool.Update(constantProductSnapshot()); err == nil {
		t.Fatalf("expected error for snapshot of another pool")
	}
}
