package port

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Wallet holds the user's key and signs on their behalf.
type Wallet interface {
	// Accounts lists the accounts currently connected. Empty until RequestAccounts succeeds.
	Accounts() []common.Address

	// RequestAccounts asks the wallet for access to its accounts.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Signer returns transaction options bound to the connected account on chainID.
	Signer(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

// WalletProvider defines the interface for locating the wallet.
type WalletProvider interface {
	// GetWallet returns the wallet and true, or false when no wallet is installed.
	GetWallet() (Wallet, bool)
}
