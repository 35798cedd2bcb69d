package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// ContractAddressEnv overrides contract.address.
	ContractAddressEnv = "WALL_CONTRACT_ADDRESS"
	// KeystorePassphraseEnv overrides wallet.keystorePassphrase.
	KeystorePassphraseEnv = "WALL_KEYSTORE_PASSPHRASE"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
	EnablePprof  bool   `yaml:"enablePprof"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// NetworkConfig points the client at Sepolia endpoints. The chain itself is fixed.
type NetworkConfig struct {
	RPCURL           string   `yaml:"rpcURL"`
	FallbackRPCURLs  []string `yaml:"fallbackRPCURLs"`
	BlockExplorerURL string   `yaml:"blockExplorerURL"`
}

// ContractConfig holds the deployed wall contract.
type ContractConfig struct {
	Address string `yaml:"address"`
}

// WalletConfig points at the key used to sign submissions.
// Either KeyFile (hex private key) or KeystoreFile (encrypted JSON) may be set; neither means no wallet.
type WalletConfig struct {
	KeyFile               string `yaml:"keyFile"`
	KeystoreFile          string `yaml:"keystoreFile"`
	KeystorePassphrase    string `yaml:"keystorePassphrase"`
	ConfirmTimeoutSeconds int    `yaml:"confirmTimeoutSeconds"`
}

// CacheConfig holds configuration for caching.
type CacheConfig struct {
	CodeTTLMinutes         int `yaml:"codeTTLMinutes"`
	ProbeTTLSeconds        int `yaml:"probeTTLSeconds"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// RPCClientConfig holds configuration for RPC clients.
type RPCClientConfig struct {
	DialTimeoutSeconds int     `yaml:"dialTimeoutSeconds"`
	CallTimeoutSeconds int     `yaml:"callTimeoutSeconds"`
	LoadTimeoutSeconds int     `yaml:"loadTimeoutSeconds"`
	RateLimit          float64 `yaml:"rateLimit"`
	BurstLimit         int     `yaml:"burstLimit"`
	ProbeTimeoutMillis int64   `yaml:"probeTimeoutMillis"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	SpecFile string `yaml:"specFile"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Network   NetworkConfig   `yaml:"network"`
	Contract  ContractConfig  `yaml:"contract"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Cache     CacheConfig     `yaml:"cache"`
	RPCClient RPCClientConfig `yaml:"rpcClient"`
	Swagger   SwaggerConfig   `yaml:"swagger"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// Environment overrides are applied after the file, then defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Parse decodes YAML config bytes, applies environment overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg, os.LookupEnv)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(ContractAddressEnv); ok {
		cfg.Contract.Address = strings.TrimSpace(v)
		logrus.Infof("Contract address taken from %s", ContractAddressEnv)
	}
	if v, ok := lookup(KeystorePassphraseEnv); ok {
		cfg.Wallet.KeystorePassphrase = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	// Submissions wait for a block, so the write timeout has to cover confirmation.
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 180
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Network.RPCURL == "" && len(cfg.Network.FallbackRPCURLs) == 0 {
		logrus.Warn("network.rpcURL not set, the built-in Sepolia endpoints will be used")
	}

	if cfg.Cache.CodeTTLMinutes <= 0 {
		cfg.Cache.CodeTTLMinutes = 10
	}
	if cfg.Cache.ProbeTTLSeconds <= 0 {
		cfg.Cache.ProbeTTLSeconds = 15
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 30
	}

	if cfg.RPCClient.DialTimeoutSeconds <= 0 {
		cfg.RPCClient.DialTimeoutSeconds = 10
	}
	if cfg.RPCClient.CallTimeoutSeconds <= 0 {
		cfg.RPCClient.CallTimeoutSeconds = 10
	}
	if cfg.RPCClient.LoadTimeoutSeconds <= 0 {
		cfg.RPCClient.LoadTimeoutSeconds = 30
	}
	if cfg.RPCClient.RateLimit <= 0 {
		cfg.RPCClient.RateLimit = 10
	}
	if cfg.RPCClient.BurstLimit <= 0 {
		cfg.RPCClient.BurstLimit = 5
	}
	if cfg.RPCClient.ProbeTimeoutMillis <= 0 {
		cfg.RPCClient.ProbeTimeoutMillis = 3000
	}

	if cfg.Swagger.Path == "" {
		cfg.Swagger.Path = "/swagger"
	}
	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
