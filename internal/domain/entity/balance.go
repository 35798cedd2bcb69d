package entity

import "math/big"

// SignerBalance is the native balance of the wallet that pays for submissions.
type SignerBalance struct {
	Address          string   `json:"address"`
	NativeSymbol     string   `json:"nativeSymbol"`
	Amount           *big.Int `json:"-"`
	FormattedBalance string   `json:"formattedBalance"`
}
