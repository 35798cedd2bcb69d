package entity

import "strconv"

// NetworkDefinition holds the configuration for a specific blockchain network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"` // short chain name as reported by wallets, e.g. "sepolia"
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         uint8    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	Testnet          bool     `json:"testnet" yaml:"testnet"`
}

// ChainIDString returns the chain id in decimal form.
func (d NetworkDefinition) ChainIDString() string {
	return strconv.FormatUint(d.ChainID, 10)
}

// RPCURLs returns the primary RPC URL followed by the fallbacks.
func (d NetworkDefinition) RPCURLs() []string {
	urls := make([]string, 0, 1+len(d.FallbackRPCURLs))
	if d.PrimaryRPCURL != "" {
		urls = append(urls, d.PrimaryRPCURL)
	}
	return append(urls, d.FallbackRPCURLs...)
}

// TxURL builds a block explorer link for a transaction hash. Empty when no explorer is known.
func (d NetworkDefinition) TxURL(txHash string) string {
	if d.BlockExplorerURL == "" || txHash == "" {
		return ""
	}
	return d.BlockExplorerURL + "/tx/" + txHash
}

// Info describes the definition as the network a wallet would report.
func (d NetworkDefinition) Info() NetworkInfo {
	return NetworkInfo{ChainName: d.Identifier, ChainID: d.ChainIDString(), Matches: true}
}

// NetworkInfo is the network the wallet is currently connected to.
// It is recomputed on every guard run and shown in the header banner.
type NetworkInfo struct {
	ChainName string `json:"chainName"`
	ChainID   string `json:"chainId"`
	Matches   bool   `json:"matches"`
}
