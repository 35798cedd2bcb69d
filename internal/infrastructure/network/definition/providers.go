package networkdefinition

import (
	"sort"
	"strings"

	"name_wall/internal/app/port"
	"name_wall/internal/domain/entity"
	"name_wall/internal/infrastructure/configloader"
	"name_wall/internal/pkg/utils"
)

// unknownChainName is what wallets report for chain ids they have no name for.
const unknownChainName = "unknown"

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger    port.Logger
	byChainID map[uint64]entity.NetworkDefinition
	expected  entity.NetworkDefinition
}

// Predefined network definitions. Identifiers follow the short names wallets report.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "mainnet",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
	}
	Sepolia = entity.NetworkDefinition{
		ChainID:          11155111,
		Name:             "Sepolia Testnet",
		Identifier:       "sepolia",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.sepolia.org", "https://1rpc.io/sepolia"},
		BlockExplorerURL: "https://sepolia.etherscan.io",
		Testnet:          true,
	}
	Holesky = entity.NetworkDefinition{
		ChainID:          17000,
		Name:             "Holesky Testnet",
		Identifier:       "holesky",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-holesky-rpc.publicnode.com",
		BlockExplorerURL: "https://holesky.etherscan.io",
		Testnet:          true,
	}
	BSC = entity.NetworkDefinition{
		ChainID:          56,
		Name:             "BNB Smart Chain",
		Identifier:       "bnb",
		NativeSymbol:     "BNB",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/bnb",
		FallbackRPCURLs:  []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL: "https://bscscan.com",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon PoS",
		Identifier:       "matic",
		NativeSymbol:     "POL",
		Decimals:         18,
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.publicnode.com"},
		BlockExplorerURL: "https://arbiscan.io",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "OP Mainnet",
		Identifier:       "optimism",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://optimism.publicnode.com",
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Identifier:       "base",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/base",
		FallbackRPCURLs:  []string{"https://base.publicnode.com"},
		BlockExplorerURL: "https://basescan.org",
	}
	BaseSepolia = entity.NetworkDefinition{
		ChainID:          84532,
		Name:             "Base Sepolia",
		Identifier:       "base-sepolia",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://sepolia.base.org",
		BlockExplorerURL: "https://sepolia.basescan.org",
		Testnet:          true,
	}
	ArbitrumSepolia = entity.NetworkDefinition{
		ChainID:          421614,
		Name:             "Arbitrum Sepolia",
		Identifier:       "arbitrum-sepolia",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://sepolia-rollup.arbitrum.io/rpc",
		BlockExplorerURL: "https://sepolia.arbiscan.io",
		Testnet:          true,
	}
	Localhost = entity.NetworkDefinition{
		ChainID:       31337,
		Name:          "Local Development Chain",
		Identifier:    "localhost",
		NativeSymbol:  "ETH",
		Decimals:      18,
		PrimaryRPCURL: "http://127.0.0.1:8545",
		Testnet:       true,
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = []entity.NetworkDefinition{
	Ethereum, Sepolia, Holesky, BSC, Polygon, Arbitrum, Optimism, Base, BaseSepolia, ArbitrumSepolia, Localhost,
}

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider.
// The expected network is always Sepolia; cfg may only replace its RPC endpoints and block explorer.
func NewNetworkDefinitionProvider(log port.Logger, cfg configloader.NetworkConfig) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:    log,
		byChainID: make(map[uint64]entity.NetworkDefinition, len(allKnownDefinitions)),
	}
	for _, def := range allKnownDefinitions {
		p.byChainID[def.ChainID] = def
	}

	expected := Sepolia
	expected.FallbackRPCURLs = append([]string(nil), Sepolia.FallbackRPCURLs...)
	if rpcURL := strings.TrimSpace(cfg.RPCURL); rpcURL != "" {
		expected.PrimaryRPCURL = rpcURL
		expected.FallbackRPCURLs = nil
	}
	if fallbacks := utils.NonEmptyStrings(cfg.FallbackRPCURLs); len(fallbacks) > 0 {
		expected.FallbackRPCURLs = fallbacks
	}
	if cfg.BlockExplorerURL != "" {
		expected.BlockExplorerURL = strings.TrimRight(cfg.BlockExplorerURL, "/")
	}
	p.expected = expected
	p.byChainID[expected.ChainID] = expected

	p.logger.Info("Network definitions loaded",
		"expected_network", expected.Identifier,
		"chain_id", expected.ChainID,
		"rpc_primary", expected.PrimaryRPCURL,
		"rpc_fallbacks", len(expected.FallbackRPCURLs),
	)
	return p
}

// ExpectedNetwork returns the only network the wall accepts.
func (p *NetworkDefinitionProvider) ExpectedNetwork() entity.NetworkDefinition {
	return p.expected
}

// ChainName returns the short name for a chain id, or "unknown".
func (p *NetworkDefinitionProvider) ChainName(chainID uint64) string {
	if def, ok := p.byChainID[chainID]; ok && def.Identifier != "" {
		return def.Identifier
	}
	return unknownChainName
}

// GetAllNetworkDefinitions returns all available network definitions ordered by chain id.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	defs := make([]entity.NetworkDefinition, 0, len(p.byChainID))
	for _, def := range p.byChainID {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}
