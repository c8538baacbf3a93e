package quote

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"ammQuote/internal/curve"
	"ammQuote/internal/depeg"
	"ammQuote/internal/vault"
)

// Pool is a long-lived handle on one pool. Its only state is the depeg cache,
// which outlives individual snapshots. Concurrent refreshes of a stale cache
// are idempotent and the last write wins.
type Pool struct {
	address solana.PublicKey
	logger  *zap.Logger
	depeg   atomic.Pointer[depeg.State]
}

// NewPool creates a handle. cached may be nil when no depeg cache was persisted.
func NewPool(address solana.PublicKey, cached *depeg.State, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{address: address, logger: logger}
	if cached != nil {
		state := *cached
		p.depeg.Store(&state)
	}
	return p
}

// Address returns the pool address.
func (p *Pool) Address() solana.PublicKey {
	return p.address
}

// Depeg returns the current depeg cache and whether one is set.
func (p *Pool) Depeg() (depeg.State, bool) {
	state := p.depeg.Load()
	if state == nil {
		return depeg.State{}, false
	}
	return *state, true
}

// Update refreshes the depeg cache against the snapshot clock and returns a
// Quoter bound to the snapshot.
func (p *Pool) Update(snap Snapshot) (*Quoter, error) {
	if !snap.Address.IsZero() && !p.address.IsZero() && !snap.Address.Equals(p.address) {
		return nil, fmt.Errorf("snapshot pool %s does not match handle %s", snap.Address, p.address)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	var c curve.Curve
	switch snap.CurveKind {
	case curve.KindConstantProduct:
		c = curve.ConstantProduct{}
	case curve.KindStableSwap:
		state, err := p.refreshDepeg(snap)
		if err != nil {
			return nil, err
		}
		c = curve.StableSwap{
			Amp:        snap.Amp,
			Multiplier: snap.Multiplier,
			Depeg:      state,
			Now:        snap.Now,
		}
	default:
		return nil, fmt.Errorf("unsupported curve kind %s: %w", snap.CurveKind, curve.ErrUnsupportedOperation)
	}

	return newQuoter(snap, c)
}

func (p *Pool) refreshDepeg(snap Snapshot) (depeg.State, error) {
	current := snap.Depeg
	if cached := p.depeg.Load(); cached != nil && cached.Type == snap.Depeg.Type && cached.BaseCacheUpdatedAt > snap.Depeg.BaseCacheUpdatedAt {
		current = *cached
	}

	refreshed, err := current.Refresh(snap.Now, snap.DepegAccount)
	if err != nil {
		return depeg.State{}, fmt.Errorf("refresh depeg cache: %w", err)
	}
	if !refreshed.Equal(current) {
		p.logger.Debug("depeg cache refreshed",
			zap.String("pool", p.address.String()),
			zap.String("type", refreshed.Type.String()),
			zap.Stringer("old_price", current.BaseVirtualPrice),
			zap.Stringer("new_price", refreshed.BaseVirtualPrice),
			zap.Int64("updated_at", refreshed.BaseCacheUpdatedAt),
		)
	}
	p.depeg.Store(&refreshed)
	return refreshed, nil
}

// Quoter computes quotes against one snapshot. It is immutable and safe for
// concurrent use.
type Quoter struct {
	snap  Snapshot
	curve curve.Curve

	vaultAWithdrawable *big.Int
	vaultBWithdrawable *big.Int
	tokenAAmount       *big.Int
	tokenBAmount       *big.Int
}

func newQuoter(snap Snapshot, c curve.Curve) (*Quoter, error) {
	q := &Quoter{
		snap:               snap,
		curve:              c,
		vaultAWithdrawable: snap.VaultA.State.UnlockedAmount(snap.Now),
		vaultBWithdrawable: snap.VaultB.State.UnlockedAmount(snap.Now),
	}

	var err error
	q.tokenAAmount, err = poolTokenAmount(snap.PoolVaultALp, q.vaultAWithdrawable, snap.VaultA.LpSupply)
	if err != nil {
		return nil, fmt.Errorf("token a amount: %w", err)
	}
	q.tokenBAmount, err = poolTokenAmount(snap.PoolVaultBLp, q.vaultBWithdrawable, snap.VaultB.LpSupply)
	if err != nil {
		return nil, fmt.Errorf("token b amount: %w", err)
	}
	return q, nil
}

func poolTokenAmount(poolVaultLp, withdrawable, vaultLpSupply *big.Int) (*big.Int, error) {
	if vaultLpSupply.Sign() == 0 {
		return big.NewInt(0), nil
	}
	return vault.AmountByShare(poolVaultLp, withdrawable, vaultLpSupply, false)
}

// Curve returns the curve the quoter was built with.
func (q *Quoter) Curve() curve.Curve {
	return q.curve
}

// Snapshot returns the snapshot the quoter was built from.
func (q *Quoter) Snapshot() Snapshot {
	return q.snap
}

// PoolTokenAmounts returns the pool-owned amounts of token A and B.
func (q *Quoter) PoolTokenAmounts() (*big.Int, *big.Int) {
	return new(big.Int).Set(q.tokenAAmount), new(big.Int).Set(q.tokenBAmount)
}

type side struct {
	amount       *big.Int
	poolVaultLp  *big.Int
	vaultLp      *big.Int
	withdrawable *big.Int
	reserve      *big.Int
}

func (q *Quoter) sideA() side {
	return side{
		amount:       q.tokenAAmount,
		poolVaultLp:  q.snap.PoolVaultALp,
		vaultLp:      q.snap.VaultA.LpSupply,
		withdrawable: q.vaultAWithdrawable,
		reserve:      q.snap.VaultA.Reserve,
	}
}

func (q *Quoter) sideB() side {
	return side{
		amount:       q.tokenBAmount,
		poolVaultLp:  q.snap.PoolVaultBLp,
		vaultLp:      q.snap.VaultB.LpSupply,
		withdrawable: q.vaultBWithdrawable,
		reserve:      q.snap.VaultB.Reserve,
	}
}

// direction resolves the trade direction for a swap paying in inMint.
func (q *Quoter) direction(inMint solana.PublicKey) (curve.TradeDirection, error) {
	switch {
	case inMint.Equals(q.snap.TokenAMint):
		return curve.AToB, nil
	case inMint.Equals(q.snap.TokenBMint):
		return curve.BToA, nil
	default:
		return 0, fmt.Errorf("%s: %w", inMint, ErrInvalidMint)
	}
}

func (q *Quoter) sides(direction curve.TradeDirection) (source side, destination side) {
	if direction == curve.AToB {
		return q.sideA(), q.sideB()
	}
	return q.sideB(), q.sideA()
}

// MinAmountWithSlippage returns floor(amount * (10000 - slippageBps) / 10000).
func MinAmountWithSlippage(amount *big.Int, slippageBps uint16) (*big.Int, error) {
	if slippageBps > bpsDenominator {
		return nil, ErrInvalidSlippage
	}
	minAmount := new(big.Int).Mul(amount, big.NewInt(int64(bpsDenominator-slippageBps)))
	return minAmount.Div(minAmount, big.NewInt(bpsDenominator)), nil
}

const bpsDenominator = 10_000
