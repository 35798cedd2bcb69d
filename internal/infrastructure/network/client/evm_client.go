package client

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"math/big"
	"sync"
	"time"

	"name_wall/internal/app/port"
	"name_wall/internal/domain/entity"
	"name_wall/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

//go:embed abi/wall.json
var wallABIJSON []byte

var (
	parsedWallABI  abi.ABI
	parsedWallOnce sync.Once
)

func wallABI() abi.ABI {
	parsedWallOnce.Do(func() {
		var err error
		parsedWallABI, err = abi.JSON(bytes.NewReader(wallABIJSON))
		if err != nil {
			panic(fmt.Sprintf("failed to parse wall ABI: %v", err))
		}
		for _, m := range []string{"count", "getNames", "hasAdded", "addName"} {
			if _, ok := parsedWallABI.Methods[m]; !ok {
				panic(fmt.Sprintf("%s method not found in parsed wall ABI", m))
			}
		}
	})
	return parsedWallABI
}

// chainBackend is the subset of *ethclient.Client the wall uses.
type chainBackend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	Close()
}

// EVMClient implements port.ChainClient for an EVM network.
// Every RPC goes through the rate limiter and is observed in metrics.RPCDuration.
type EVMClient struct {
	backend        chainBackend
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
	codeCache      *gocache.Cache
}

// Options tunes an EVMClient.
type Options struct {
	ConnectionTimeout time.Duration
	RPCCallTimeout    time.Duration
	RateLimit         float64
	BurstLimit        int
	CodeTTL           time.Duration
	CleanupInterval   time.Duration
}

// NewEVMClient dials the network's RPC endpoints in order and returns a client for the first that answers.
func NewEVMClient(netDef entity.NetworkDefinition, opts Options) (*EVMClient, error) {
	wallABI()
	var lastErr error

	for _, rpcURL := range netDef.RPCURLs() {
		ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
		ec, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return newEVMClient(ec, netDef, opts), nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no RPC URL configured")
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

func newEVMClient(backend chainBackend, netDef entity.NetworkDefinition, opts Options) *EVMClient {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.BurstLimit
	if burst <= 0 {
		burst = 1
	}
	return &EVMClient{
		backend:        backend,
		netDef:         netDef,
		rpcCallTimeout: opts.RPCCallTimeout,
		limiter:        rate.NewLimiter(limit, burst),
		codeCache:      gocache.New(opts.CodeTTL, opts.CleanupInterval),
	}
}

// observe waits for a limiter token, bounds ctx by the call timeout and runs fn.
func observe[T any](ctx context.Context, c *EVMClient, method string, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := c.limiter.Wait(ctx); err != nil {
		return zero, fmt.Errorf("rate limiter: %w", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	v, err := fn(ctx)
	metrics.RPCDuration.WithLabelValues(method, metrics.RPCStatus(err)).Observe(time.Since(start).Seconds())
	return v, err
}

// ChainID returns the chain id reported by the node.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return observe(ctx, c, "eth_chainId", c.rpcCallTimeout, c.backend.ChainID)
}

// CodeAt returns the bytecode at address. Non-empty results are cached; empty ones are not,
// so a contract deployed later is picked up on the next load.
func (c *EVMClient) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	key := address.Hex()
	if cached, ok := c.codeCache.Get(key); ok {
		return cached.([]byte), nil
	}

	code, err := observe(ctx, c, "eth_getCode", c.rpcCallTimeout, func(ctx context.Context) ([]byte, error) {
		return c.backend.CodeAt(ctx, address, nil)
	})
	if err != nil {
		return nil, err
	}
	if len(code) > 0 {
		c.codeCache.SetDefault(key, code)
	}
	return code, nil
}

// BalanceAt returns the latest native balance of account.
func (c *EVMClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return observe(ctx, c, "eth_getBalance", c.rpcCallTimeout, func(ctx context.Context) (*big.Int, error) {
		return c.backend.BalanceAt(ctx, account, nil)
	})
}

// Wall binds the wall contract at address.
func (c *EVMClient) Wall(address common.Address) port.WallContract {
	parsed := wallABI()
	return &wallContract{
		client:   c,
		address:  address,
		contract: bind.NewBoundContract(address, parsed, c.backend, c.backend, c.backend),
	}
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.backend.Close()
}

type wallContract struct {
	client   *EVMClient
	address  common.Address
	contract *bind.BoundContract
}

func (w *wallContract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	return observe(ctx, w.client, "eth_call:"+method, w.client.rpcCallTimeout, func(ctx context.Context) ([]any, error) {
		var out []any
		if err := w.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%s returned no data", method)
		}
		return out, nil
	})
}

func (w *wallContract) Count(ctx context.Context) (*big.Int, error) {
	out, err := w.call(ctx, "count")
	if err != nil {
		return nil, err
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("count: unexpected result type %T", out[0])
	}
	return n, nil
}

func (w *wallContract) GetNames(ctx context.Context) ([]string, error) {
	out, err := w.call(ctx, "getNames")
	if err != nil {
		return nil, err
	}
	names, ok := out[0].([]string)
	if !ok {
		return nil, fmt.Errorf("getNames: unexpected result type %T", out[0])
	}
	return names, nil
}

func (w *wallContract) HasAdded(ctx context.Context, user common.Address) (bool, error) {
	out, err := w.call(ctx, "hasAdded", user)
	if err != nil {
		return false, err
	}
	added, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("hasAdded: unexpected result type %T", out[0])
	}
	return added, nil
}

// AddName sends addName(name). The call timeout does not apply here: signing and broadcast
// run under the caller's context only.
func (w *wallContract) AddName(ctx context.Context, opts *bind.TransactOpts, name string) (*types.Transaction, error) {
	if opts == nil {
		return nil, fmt.Errorf("addName: transactor is required")
	}
	return observe(ctx, w.client, "eth_sendRawTransaction", 0, func(ctx context.Context) (*types.Transaction, error) {
		txOpts := *opts
		txOpts.Context = ctx
		return w.contract.Transact(&txOpts, "addName", name)
	})
}

func (w *wallContract) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	start := time.Now()
	receipt, err := bind.WaitMined(ctx, w.client.backend, tx)
	metrics.RPCDuration.WithLabelValues("wait_mined", metrics.RPCStatus(err)).Observe(time.Since(start).Seconds())
	return receipt, err
}
