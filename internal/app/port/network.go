package port

import (
	"context"
	"math/big"

	"name_wall/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient is the JSON-RPC surface the wall needs from a node.
type ChainClient interface {
	// ChainID returns the chain id the node is serving.
	ChainID(ctx context.Context) (*big.Int, error)

	// CodeAt returns the deployed bytecode at address on the latest block.
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)

	// BalanceAt returns the native balance of address on the latest block.
	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)

	// Wall binds the wall contract at address.
	Wall(address common.Address) WallContract

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// WallContract is the wall contract's ABI surface.
type WallContract interface {
	Count(ctx context.Context) (*big.Int, error)
	GetNames(ctx context.Context) ([]string, error)
	HasAdded(ctx context.Context, user common.Address) (bool, error)
	// AddName signs and broadcasts addName(name). It returns once the node accepted the transaction.
	AddName(ctx context.Context, opts *bind.TransactOpts, name string) (*types.Transaction, error)
	// WaitMined blocks until tx is included in a block.
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// ExpectedNetwork returns the network the wall contract is deployed on.
	ExpectedNetwork() entity.NetworkDefinition

	// ChainName returns the short name wallets use for chainID, or "unknown".
	ChainName(chainID uint64) string
}

// BlockchainClientProvider defines the interface for providing blockchain clients.
type BlockchainClientProvider interface {
	GetClient(ctx context.Context) (ChainClient, error)
}
