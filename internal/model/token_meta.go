package model

// TokenMeta identifies an SPL token mint.
type TokenMeta struct {
	Mint     string `json:"mint"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
}
