// Package vault converts between yield vault LP shares and underlying token
// amounts, including the linear unlock of freshly reported profit.
package vault

import (
	"errors"
	"fmt"
	"math/big"
)

// LockedProfitDegradationDenominator is the fixed point scale of LockedProfitDegradation.
const LockedProfitDegradationDenominator = 1_000_000_000_000

var ErrZeroSupply = errors.New("vault share supply or amount is zero")

var bigDegradationDenominator = big.NewInt(LockedProfitDegradationDenominator)

// LockedProfitTracker follows the unlock schedule of the last harvest.
type LockedProfitTracker struct {
	LastUpdatedLockedProfit uint64
	LastReport              int64
	LockedProfitDegradation uint64
}

// State is the part of a vault account needed for share conversion.
type State struct {
	TotalAmount         uint64
	LockedProfitTracker LockedProfitTracker
}

// LockedProfit returns the profit still locked at now. It decays linearly to
// zero and is clamped at zero once the decay term exceeds the denominator.
func (s State) LockedProfit(now int64) *big.Int {
	tracker := s.LockedProfitTracker
	duration := now - tracker.LastReport
	if duration < 0 {
		duration = 0
	}

	ratio := new(big.Int).SetInt64(duration)
	ratio.Mul(ratio, new(big.Int).SetUint64(tracker.LockedProfitDegradation))
	if ratio.Cmp(bigDegradationDenominator) > 0 {
		return big.NewInt(0)
	}

	remaining := new(big.Int).Sub(bigDegradationDenominator, ratio)
	locked := new(big.Int).SetUint64(tracker.LastUpdatedLockedProfit)
	locked.Mul(locked, remaining)
	return locked.Div(locked, bigDegradationDenominator)
}

// UnlockedAmount returns the withdrawable amount at now; it never exceeds TotalAmount.
func (s State) UnlockedAmount(now int64) *big.Int {
	unlocked := new(big.Int).SetUint64(s.TotalAmount)
	unlocked.Sub(unlocked, s.LockedProfit(now))
	if unlocked.Sign() < 0 {
		return big.NewInt(0)
	}
	return unlocked
}

// AmountByShare returns share*totalAmount/totalSupply, rounded up when roundUp is set.
func AmountByShare(share, totalAmount, totalSupply *big.Int, roundUp bool) (*big.Int, error) {
	if totalSupply.Sign() <= 0 {
		return nil, fmt.Errorf("amount by share: %w", ErrZeroSupply)
	}
	return mulDiv(share, totalAmount, totalSupply, roundUp), nil
}

// ShareByAmount returns amount*totalSupply/totalAmount, rounded up when roundUp is set.
func ShareByAmount(amount, totalAmount, totalSupply *big.Int, roundUp bool) (*big.Int, error) {
	if totalAmount.Sign() <= 0 {
		return nil, fmt.Errorf("share by amount: %w", ErrZeroSupply)
	}
	return mulDiv(amount, totalSupply, totalAmount, roundUp), nil
}

// ActualDepositAmount deposits amount into a vault and reads back how much the
// holder's share grew. beforeAmount is the holder's token amount prior to the deposit.
func ActualDepositAmount(amount, beforeAmount, holderLp, vaultLpSupply, vaultTotalAmount *big.Int) (*big.Int, error) {
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	minted, err := ShareByAmount(amount, vaultTotalAmount, vaultLpSupply, false)
	if err != nil {
		return nil, fmt.Errorf("vault deposit: %w", err)
	}

	newSupply := new(big.Int).Add(vaultLpSupply, minted)
	newTotal := new(big.Int).Add(vaultTotalAmount, amount)
	newHolderLp := new(big.Int).Add(holderLp, minted)

	after, err := AmountByShare(newHolderLp, newTotal, newSupply, false)
	if err != nil {
		return nil, fmt.Errorf("vault deposit: %w", err)
	}
	actual := after.Sub(after, beforeAmount)
	if actual.Sign() < 0 {
		return big.NewInt(0), nil
	}
	return actual, nil
}

// ActualWithdrawAmount burns the vault shares covering amount and reads back
// the tokens those shares redeem for.
func ActualWithdrawAmount(amount, vaultTotalAmount, vaultLpSupply *big.Int) (*big.Int, error) {
	burned, err := ShareByAmount(amount, vaultTotalAmount, vaultLpSupply, false)
	if err != nil {
		return nil, fmt.Errorf("vault withdraw: %w", err)
	}
	out, err := AmountByShare(burned, vaultTotalAmount, vaultLpSupply, false)
	if err != nil {
		return nil, fmt.Errorf("vault withdraw: %w", err)
	}
	return out, nil
}

func mulDiv(a, b, denominator *big.Int, roundUp bool) *big.Int {
	product := new(big.Int).Mul(a, b)
	quotient, remainder := new(big.Int).QuoRem(product, denominator, new(big.Int))
	if roundUp && remainder.Sign() > 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	return quotient
}
