package networkdefinition

import (
	"testing"

	"name_wall/internal/infrastructure/configloader"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func TestExpectedNetworkIsBuiltInSepolia(t *testing.T) {
	p := NewNetworkDefinitionProvider(nopLogger{}, configloader.NetworkConfig{})

	def := p.ExpectedNetwork()
	if def.Identifier != "sepolia" || def.ChainIDString() != "11155111" {
		t.Fatalf("unexpected expected network %+v", def)
	}
	if len(def.RPCURLs()) == 0 {
		t.Fatal("expected built-in RPC URLs")
	}
}

func TestConfiguredChainIDIsIgnored(t *testing.T) {
	cfg, err := configloader.Parse([]byte("network:\n  chainID: 1\n  rpcURL: \"http://mainnet-node:8545\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := NewNetworkDefinitionProvider(nopLogger{}, cfg.Network)

	def := p.ExpectedNetwork()
	if def.ChainID != 11155111 || def.Identifier != "sepolia" {
		t.Fatalf("expected network must stay Sepolia, got %+v", def)
	}
	if def.PrimaryRPCURL != "http://mainnet-node:8545" {
		t.Fatalf("rpc override not applied: %q", def.PrimaryRPCURL)
	}
	if got := p.ChainName(1); got != "mainnet" {
		t.Fatalf("chain 1 must still be named mainnet, got %q", got)
	}
}

func TestConfigOverridesRPC(t *testing.T) {
	p := NewNetworkDefinitionProvider(nopLogger{}, configloader.NetworkConfig{
		RPCURL:           "http://node:8545",
		FallbackRPCURLs:  []string{" http://backup:8545 ", "  "},
		BlockExplorerURL: "https://explorer.example/",
	})

	def := p.ExpectedNetwork()
	urls := def.RPCURLs()
	if len(urls) != 2 || urls[0] != "http://node:8545" || urls[1] != "http://backup:8545" {
		t.Fatalf("unexpected rpc urls %v", urls)
	}
	if got := def.TxURL("0x1"); got != "https://explorer.example/tx/0x1" {
		t.Fatalf("unexpected tx url %q", got)
	}
	if Sepolia.PrimaryRPCURL == "http://node:8545" {
		t.Fatal("built-in definition must not be mutated")
	}
}

func TestChainNameLookup(t *testing.T) {
	p := NewNetworkDefinitionProvider(nopLogger{}, configloader.NetworkConfig{})

	if got := p.ChainName(1); got != "mainnet" {
		t.Fatalf("expected mainnet, got %q", got)
	}
	if got := p.ChainName(11155111); got != "sepolia" {
		t.Fatalf("expected sepolia, got %q", got)
	}
	if got := p.ChainName(999999); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestAllDefinitionsSorted(t *testing.T) {
	defs := NewNetworkDefinitionProvider(nopLogger{}, configloader.NetworkConfig{}).GetAllNetworkDefinitions()
	if len(defs) != len(allKnownDefinitions) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(allKnownDefinitions))
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].ChainID > defs[i].ChainID {
			t.Fatal("definitions not sorted by chain id")
		}
	}
}
