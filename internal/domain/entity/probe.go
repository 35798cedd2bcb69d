package entity

// RPCProbeResult is the outcome of probing one RPC endpoint with eth_chainId.
type RPCProbeResult struct {
	URL       string `json:"url"`
	ChainID   uint64 `json:"chainId,omitempty"`
	Healthy   bool   `json:"healthy"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}
