// internal/domain/chain.go
package domain

// Chain is an independent balance namespace with its own cost
// characteristics. A user holds one balance per chain.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainArbitrum Chain = "arbitrum"
	ChainOptimism Chain = "optimism"
	ChainSolana   Chain = "solana"
)

// SupportedChains returns every chain the ledger tracks, in the stable
// order used for cost listings and deterministic iteration.
func SupportedChains() []Chain {
	return []Chain{ChainEthereum, ChainPolygon, ChainArbitrum, ChainOptimism, ChainSolana}
}

// Supported reports whether c is a chain the ledger tracks.
func (c Chain) Supported() bool {
	switch c {
	case ChainEthereum, ChainPolygon, ChainArbitrum, ChainOptimism, ChainSolana:
		return true
	}
	return false
}
