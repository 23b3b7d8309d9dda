package model

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// Token is a pool token with its external USD price. PriceUSD is nil when no quote exists.
type Token struct {
	TokenMeta
	PriceUSD *float64 `json:"price_usd"`
}

// WithPrice attaches a USD price to the metadata.
func (m TokenMeta) WithPrice(price *float64) Token {
	return Token{TokenMeta: m, PriceUSD: price}
}
