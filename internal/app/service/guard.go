package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"name_wall/internal/app/port"
	"name_wall/internal/app/state"
	"name_wall/internal/domain/entity"
	"name_wall/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
)

// GuardReason says why the guard stopped an operation.
type GuardReason string

const (
	GuardOK               GuardReason = "ok"
	GuardNoWallet         GuardReason = "no_wallet"
	GuardInvalidAddress   GuardReason = "invalid_contract_address"
	GuardAccountRejected  GuardReason = "account_rejected"
	GuardNetworkUnreached GuardReason = "network_unreachable"
	GuardWrongNetwork     GuardReason = "wrong_network"
)

const (
	msgNoWallet        = "Please install a wallet to interact with the blockchain."
	msgInvalidAddress  = "The contract address is not valid."
	msgAccountRejected = "The wallet did not grant access to an account."
	msgUnreachable     = "Could not reach the network."
)

// GuardResult is the verdict of a guard check.
type GuardResult struct {
	OK      bool
	Reason  GuardReason
	Message string
	// Network is set once the chain id has been observed, whether or not it matches.
	Network *entity.NetworkInfo
}

// GuardInput is everything the guard decides on.
type GuardInput struct {
	WalletPresent   bool
	ContractAddress string
	// ChainID is nil until the chain has been asked; the network check is skipped until then.
	ChainID   *big.Int
	ChainName string
	Expected  entity.NetworkDefinition
}

// ValidContractAddress reports whether addr is a 0x-prefixed 20-byte hex address.
func ValidContractAddress(addr string) bool {
	return strings.HasPrefix(addr, "0x") && len(addr) == 2+2*common.AddressLength && common.IsHexAddress(addr)
}

// CheckEnvironment verifies a wallet is present and the contract address is well formed.
func CheckEnvironment(walletPresent bool, contractAddress string) GuardResult {
	if !walletPresent {
		return GuardResult{Reason: GuardNoWallet, Message: msgNoWallet}
	}
	if !ValidContractAddress(contractAddress) {
		return GuardResult{Reason: GuardInvalidAddress, Message: msgInvalidAddress}
	}
	return GuardResult{OK: true, Reason: GuardOK}
}

// CheckNetwork compares the observed chain with the expected one.
func CheckNetwork(chainID *big.Int, chainName string, expected entity.NetworkDefinition) GuardResult {
	info := entity.NetworkInfo{ChainName: chainName}
	if chainID != nil {
		info.ChainID = chainID.String()
	}
	want := new(big.Int).SetUint64(expected.ChainID)
	info.Matches = chainID != nil && chainID.Cmp(want) == 0

	if !info.Matches {
		return GuardResult{
			Reason:  GuardWrongNetwork,
			Network: &info,
			Message: fmt.Sprintf(
				"This application is configured for %s (Chain ID: %d). You are currently on %s (Chain ID: %s). Please switch to %s.",
				expected.Identifier, expected.ChainID, chainName, info.ChainID, expected.Identifier,
			),
		}
	}
	return GuardResult{OK: true, Reason: GuardOK, Network: &info}
}

// Check runs the environment checks and then, once a chain id is known, the network check.
func Check(in GuardInput) GuardResult {
	if res := CheckEnvironment(in.WalletPresent, in.ContractAddress); !res.OK || in.ChainID == nil {
		return res
	}
	return CheckNetwork(in.ChainID, in.ChainName, in.Expected)
}

// GuardPass is what a passed guard hands to the read and write paths.
type GuardPass struct {
	Wallet   port.Wallet
	Client   port.ChainClient
	Contract common.Address
	ChainID  *big.Int
	Network  entity.NetworkInfo
}

// Guard runs the wallet/network checks shared by loads and submissions.
type Guard struct {
	wallets         port.WalletProvider
	clients         port.BlockchainClientProvider
	networks        port.NetworkDefinitionProvider
	store           *state.Store
	logger          port.Logger
	contractAddress string
}

// NewGuard creates a Guard for the contract at contractAddress.
func NewGuard(
	wallets port.WalletProvider,
	clients port.BlockchainClientProvider,
	networks port.NetworkDefinitionProvider,
	store *state.Store,
	logger port.Logger,
	contractAddress string,
) *Guard {
	return &Guard{
		wallets:         wallets,
		clients:         clients,
		networks:        networks,
		store:           store,
		logger:          logger,
		contractAddress: contractAddress,
	}
}

// Run checks the environment, connects an account and verifies the chain.
// The observed network is written to the store even when it does not match.
func (g *Guard) Run(ctx context.Context) (GuardPass, error) {
	wallet, present := g.wallets.GetWallet()
	in := GuardInput{WalletPresent: present, ContractAddress: g.contractAddress}
	if res := Check(in); !res.OK {
		return GuardPass{}, g.reject(res, nil)
	}

	if len(wallet.Accounts()) == 0 {
		g.logger.Info("No account connected, requesting access")
		if _, err := wallet.RequestAccounts(ctx); err != nil {
			g.logger.Error("Wallet rejected account request", "error", err)
			return GuardPass{}, g.reject(GuardResult{Reason: GuardAccountRejected, Message: msgAccountRejected}, errors.Join(entity.ErrAccountAccess, err))
		}
	}

	client, err := g.clients.GetClient(ctx)
	if err != nil {
		return GuardPass{}, g.reject(GuardResult{Reason: GuardNetworkUnreached, Message: msgUnreachable}, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return GuardPass{}, g.reject(GuardResult{Reason: GuardNetworkUnreached, Message: msgUnreachable}, err)
	}

	in.ChainID = chainID
	in.ChainName = g.networks.ChainName(chainID.Uint64())
	in.Expected = g.networks.ExpectedNetwork()
	res := Check(in)
	g.logger.Info("Current network", "name", res.Network.ChainName, "chain_id", res.Network.ChainID)
	if _, err := g.store.Update(ctx, state.SetNetwork(*res.Network)); err != nil {
		return GuardPass{}, err
	}
	if !res.OK {
		return GuardPass{}, g.reject(res, nil)
	}

	return GuardPass{
		Wallet:   wallet,
		Client:   client,
		Contract: common.HexToAddress(g.contractAddress),
		ChainID:  chainID,
		Network:  *res.Network,
	}, nil
}

func (g *Guard) reject(res GuardResult, cause error) error {
	metrics.GuardFailures.WithLabelValues(string(res.Reason)).Inc()
	g.logger.Warn("Guard rejected operation", "reason", res.Reason, "message", res.Message)

	switch res.Reason {
	case GuardNoWallet:
		return entity.NewWallError(entity.KindEnvironment, res.Message, entity.ErrNoWallet)
	case GuardInvalidAddress:
		return entity.NewWallError(entity.KindEnvironment, res.Message, fmt.Errorf("%w: %q", entity.ErrInvalidContractAddress, g.contractAddress))
	case GuardWrongNetwork:
		return entity.NewWallError(entity.KindNetworkMismatch, res.Message, entity.ErrWrongNetwork)
	default:
		return entity.NewWallError(entity.KindEnvironment, res.Message, cause)
	}
}
