package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"name_wall/internal/app/port"
	"name_wall/internal/infrastructure/configloader"
)

// dialFunc is swapped in tests.
type dialFunc func(ctx context.Context) (port.ChainClient, error)

// evmClientProvider implements port.BlockchainClientProvider for the expected network.
// The client is created on first use and reused afterwards; a failed dial is retried on the next call.
type evmClientProvider struct {
	mu          sync.Mutex
	client      port.ChainClient
	dial        dialFunc
	network     string
	loggerInfo  func(msg string, args ...any)
	loggerError func(msg string, args ...any)
}

// NewEVMClientProvider creates a provider that dials networks.ExpectedNetwork() with cfg's RPC and cache settings.
func NewEVMClientProvider(
	cfg *configloader.Config,
	networks port.NetworkDefinitionProvider,
	loggerInfo func(msg string, args ...any),
	loggerError func(msg string, args ...any),
) port.BlockchainClientProvider {
	netDef := networks.ExpectedNetwork()
	opts := Options{
		ConnectionTimeout: time.Duration(cfg.RPCClient.DialTimeoutSeconds) * time.Second,
		RPCCallTimeout:    time.Duration(cfg.RPCClient.CallTimeoutSeconds) * time.Second,
		RateLimit:         cfg.RPCClient.RateLimit,
		BurstLimit:        cfg.RPCClient.BurstLimit,
		CodeTTL:           time.Duration(cfg.Cache.CodeTTLMinutes) * time.Minute,
		CleanupInterval:   time.Duration(cfg.Cache.CleanupIntervalMinutes) * time.Minute,
	}
	return &evmClientProvider{
		network: netDef.Name,
		dial: func(context.Context) (port.ChainClient, error) {
			c, err := NewEVMClient(netDef, opts)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		loggerInfo:  loggerInfo,
		loggerError: loggerError,
	}
}

// GetClient returns the cached client, dialing it first if needed.
func (p *evmClientProvider) GetClient(ctx context.Context) (port.ChainClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	p.loggerInfo("Creating new EVM client", "network", p.network)
	newClient, err := p.dial(ctx)
	if err != nil {
		p.loggerError("Failed to create EVM client", "network", p.network, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", p.network, err)
	}

	p.client = newClient
	p.loggerInfo("Successfully created and cached new EVM client", "network", p.network)
	return newClient, nil
}

// Close closes the cached client, if any.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.client.(interface{ Close() }); ok {
		c.Close()
	}
	p.client = nil
}
