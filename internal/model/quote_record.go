package model

import (
	"encoding/json"
)

// QuoteRecord is one journaled quote. Integer amounts are decimal strings in
// base units; the *UI fields are scaled by token decimals.
type QuoteRecord struct {
	Kind            string `json:"kind"`
	PoolAddress     string `json:"pool_address"`
	Curve           string `json:"curve"`
	Path            string `json:"path,omitempty"`
	InMint          string `json:"in_mint,omitempty"`
	OutMint         string `json:"out_mint,omitempty"`
	InAmount        string `json:"in_amount,omitempty"`
	OutAmount       string `json:"out_amount,omitempty"`
	MinOutAmount    string `json:"min_out_amount,omitempty"`
	Fee             string `json:"fee,omitempty"`
	PriceImpact     string `json:"price_impact,omitempty"`
	PriceImpactPct  string `json:"price_impact_pct,omitempty"`
	PoolTokenAmount string `json:"pool_token_amount,omitempty"`
	MinPoolToken    string `json:"min_pool_token_amount,omitempty"`
	TokenAAmount    string `json:"token_a_amount,omitempty"`
	TokenBAmount    string `json:"token_b_amount,omitempty"`
	MinTokenAAmount string `json:"min_token_a_amount,omitempty"`
	MinTokenBAmount string `json:"min_token_b_amount,omitempty"`
	InAmountUI      string `json:"in_amount_ui,omitempty"`
	OutAmountUI     string `json:"out_amount_ui,omitempty"`
	SlippageBps     uint16 `json:"slippage_bps"`
	SnapshotTime    int64  `json:"snapshot_time"`
	QuotedAt        string `json:"quoted_at"`
}

// MarshalJSON ensures QuoteRecord is encoded with stable field names.
func (r QuoteRecord) MarshalJSON() ([]byte, error) {
	type Alias QuoteRecord
	return json.Marshal(Alias(r))
}

// UnmarshalJSON decodes a QuoteRecord from JSON.
func (r *QuoteRecord) UnmarshalJSON(data []byte) error {
	type Alias QuoteRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = QuoteRecord(a)
	return nil
}
