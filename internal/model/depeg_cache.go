package model

// DepegCacheRecord persists a pool's depeg cache between runs.
type DepegCacheRecord struct {
	PoolAddress        string `json:"pool_address"`
	Type               string `json:"type"`
	BaseVirtualPrice   string `json:"base_virtual_price"`
	BaseCacheUpdatedAt int64  `json:"base_cache_updated_at"`
	UpdatedAt          string `json:"updated_at"`
}
