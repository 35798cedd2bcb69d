// Package client holds thin HTTP clients for services the wall depends on but does not bind to.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"name_wall/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	gocache "github.com/patrickmn/go-cache"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var chainIDRequest = []byte(`{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}`)

// RPCProbeClient checks that JSON-RPC endpoints answer eth_chainId with the expected chain.
type RPCProbeClient interface {
	Probe(ctx context.Context, urls []string) []entity.RPCProbeResult
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// rpcProbeClientImpl is the fasthttp implementation of RPCProbeClient.
type rpcProbeClientImpl struct {
	client          *fasthttp.Client
	expectedChainID uint64
	timeout         time.Duration
	cache           *gocache.Cache
	logger          *zap.Logger
}

// NewRPCProbeClient creates a probe client. Results are cached per URL for ttl.
func NewRPCProbeClient(expectedChainID uint64, timeout, ttl time.Duration, logger *zap.Logger) RPCProbeClient {
	return &rpcProbeClientImpl{
		client:          &fasthttp.Client{},
		expectedChainID: expectedChainID,
		timeout:         timeout,
		cache:           gocache.New(ttl, 2*ttl),
		logger:          logger.Named("RPCProbeClient"),
	}
}

// Probe queries every URL concurrently. Results keep the order of urls.
func (c *rpcProbeClientImpl) Probe(ctx context.Context, urls []string) []entity.RPCProbeResult {
	results := make([]entity.RPCProbeResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)

	for i, url := range urls {
		g.Go(func() error {
			if cached, ok := c.cache.Get(url); ok {
				results[i] = cached.(entity.RPCProbeResult)
				return nil
			}
			res := c.probeOne(gctx, url)
			if gctx.Err() == nil {
				c.cache.SetDefault(url, res)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *rpcProbeClientImpl) probeOne(ctx context.Context, url string) entity.RPCProbeResult {
	res := entity.RPCProbeResult{URL: url}
	start := time.Now()
	chainID, err := c.chainID(ctx, url)
	res.LatencyMs = time.Since(start).Milliseconds()

	switch {
	case err != nil:
		res.Error = err.Error()
	case chainID != c.expectedChainID:
		res.ChainID = chainID
		res.Error = fmt.Sprintf("unexpected chain id %d, want %d", chainID, c.expectedChainID)
	default:
		res.ChainID = chainID
		res.Healthy = true
	}

	if !res.Healthy {
		c.logger.Warn("RPC endpoint unhealthy", zap.String("url", url), zap.String("error", res.Error))
	} else {
		c.logger.Debug("RPC endpoint healthy", zap.String("url", url), zap.Int64("latencyMs", res.LatencyMs))
	}
	return res
}

func (c *rpcProbeClientImpl) chainID(ctx context.Context, url string) (uint64, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(chainIDRequest)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, fmt.Errorf("request to %s failed: %w", url, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, fmt.Errorf("request to %s failed with status %d: %s", url, resp.StatusCode(), strings.TrimSpace(string(rawBody)))
	}

	var decoded rpcResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response from %s: %w", url, err)
	}
	if decoded.Error != nil {
		return 0, fmt.Errorf("rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	id, err := hexutil.DecodeUint64(decoded.Result)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", decoded.Result, err)
	}
	return id, nil
}
