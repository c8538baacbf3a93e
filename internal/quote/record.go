package quote

import (
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"ammQuote/internal/curve"
	"ammQuote/internal/model"
)

const priceImpactPlaces = 8

// SwapRecord renders a swap quote for the quote journal.
func (q *Quoter) SwapRecord(result SwapQuote, slippageBps uint16, quotedAt time.Time) model.QuoteRecord {
	inMint, outMint := q.snap.TokenAMint, q.snap.TokenBMint
	inDecimals, outDecimals := q.snap.TokenADecimals, q.snap.TokenBDecimals
	if result.Direction == curve.BToA {
		inMint, outMint = outMint, inMint
		inDecimals, outDecimals = outDecimals, inDecimals
	}

	record := q.baseRecord("swap", slippageBps, quotedAt)
	record.InMint = inMint.String()
	record.OutMint = outMint.String()
	record.InAmount = result.SwapInAmount.String()
	record.OutAmount = result.SwapOutAmount.String()
	record.MinOutAmount = result.MinSwapOutAmount.String()
	if result.Fee != nil {
		record.Fee = result.Fee.String()
	}
	if result.PriceImpact != nil {
		record.PriceImpact = result.PriceImpact.RatString()
		record.PriceImpactPct = PriceImpactPercent(result.PriceImpact).String()
	}
	record.InAmountUI = UIAmount(result.SwapInAmount, inDecimals).String()
	record.OutAmountUI = UIAmount(result.SwapOutAmount, outDecimals).String()
	return record
}

// DepositRecord renders a deposit quote for the quote journal.
func (q *Quoter) DepositRecord(result DepositQuote, slippageBps uint16, quotedAt time.Time) model.QuoteRecord {
	record := q.baseRecord("deposit", slippageBps, quotedAt)
	record.Path = result.Path.String()
	record.PoolTokenAmount = result.PoolTokenAmountOut.String()
	record.MinPoolToken = result.MinPoolTokenAmountOut.String()
	record.TokenAAmount = result.TokenAInAmount.String()
	record.TokenBAmount = result.TokenBInAmount.String()
	return record
}

// WithdrawRecord renders a withdraw quote for the quote journal. outMint is
// nil for a balanced withdrawal.
func (q *Quoter) WithdrawRecord(result WithdrawQuote, outMint *solana.PublicKey, slippageBps uint16, quotedAt time.Time) model.QuoteRecord {
	record := q.baseRecord("withdraw", slippageBps, quotedAt)
	record.Path = "balanced"
	if outMint != nil {
		record.Path = "single_side"
		record.OutMint = outMint.String()
	}
	record.PoolTokenAmount = result.PoolTokenAmountIn.String()
	record.TokenAAmount = result.TokenAOutAmount.String()
	record.TokenBAmount = result.TokenBOutAmount.String()
	record.MinTokenAAmount = result.MinTokenAOutAmount.String()
	record.MinTokenBAmount = result.MinTokenBOutAmount.String()
	return record
}

func (q *Quoter) baseRecord(kind string, slippageBps uint16, quotedAt time.Time) model.QuoteRecord {
	return model.QuoteRecord{
		Kind:         kind,
		PoolAddress:  q.snap.Address.String(),
		Curve:        q.curve.Kind().String(),
		SlippageBps:  slippageBps,
		SnapshotTime: q.snap.Now,
		QuotedAt:     quotedAt.UTC().Format(time.RFC3339),
	}
}

// UIAmount scales a base-unit amount by the token's decimals.
func UIAmount(amount *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// PriceImpactPercent renders an impact fraction as a percentage rounded to
// eight places.
func PriceImpactPercent(impact *big.Rat) decimal.Decimal {
	if impact == nil {
		return decimal.Zero
	}
	numerator := decimal.NewFromBigInt(impact.Num(), 0)
	denominator := decimal.NewFromBigInt(impact.Denom(), 0)
	return numerator.Mul(decimal.NewFromInt(100)).DivRound(denominator, priceImpactPlaces)
}
