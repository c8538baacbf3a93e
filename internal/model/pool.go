package model

// PoolSnapshot is the JSON form of a decoded pool, its two vaults and the
// on-chain clock. Integers that may exceed 2^53 are strings.
type PoolSnapshot struct {
	Address         string          `json:"address"`
	TokenA          TokenMeta       `json:"token_a"`
	TokenB          TokenMeta       `json:"token_b"`
	Curve           string          `json:"curve"`
	Amp             uint64          `json:"amp,omitempty"`
	TokenMultiplier TokenMultiplier `json:"token_multiplier"`
	Depeg           *DepegSnapshot  `json:"depeg,omitempty"`
	Fees            PoolFees        `json:"fees"`
	VaultA          VaultSnapshot   `json:"vault_a"`
	VaultB          VaultSnapshot   `json:"vault_b"`
	PoolVaultALp    string          `json:"pool_vault_a_lp"`
	PoolVaultBLp    string          `json:"pool_vault_b_lp"`
	PoolLpSupply    string          `json:"pool_lp_supply"`
	Timestamp       int64           `json:"timestamp"`
}

// TokenMultiplier normalizes token decimals for stable pools.
type TokenMultiplier struct {
	TokenAMultiplier uint64 `json:"token_a_multiplier"`
	TokenBMultiplier uint64 `json:"token_b_multiplier"`
	PrecisionFactor  uint8  `json:"precision_factor"`
}

// DepegSnapshot is the depeg cache stored in the pool plus the raw state
// account of the base staking protocol, hex encoded with a 0x prefix.
type DepegSnapshot struct {
	Type               string `json:"type"`
	BaseVirtualPrice   string `json:"base_virtual_price"`
	BaseCacheUpdatedAt int64  `json:"base_cache_updated_at"`
	Account            string `json:"account,omitempty"`
}

// PoolFees mirrors the pool fee record.
type PoolFees struct {
	TradeFeeNumerator        uint64 `json:"trade_fee_numerator"`
	TradeFeeDenominator      uint64 `json:"trade_fee_denominator"`
	OwnerTradeFeeNumerator   uint64 `json:"owner_trade_fee_numerator"`
	OwnerTradeFeeDenominator uint64 `json:"owner_trade_fee_denominator"`
}

// VaultSnapshot is a yield vault with its LP supply and token reserve.
type VaultSnapshot struct {
	TotalAmount             string `json:"total_amount"`
	LastUpdatedLockedProfit string `json:"last_updated_locked_profit"`
	LastReport              int64  `json:"last_report"`
	LockedProfitDegradation string `json:"locked_profit_degradation"`
	LpSupply                string `json:"lp_supply"`
	Reserve                 string `json:"reserve"`
}
