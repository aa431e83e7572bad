package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultProbeInterval    = 60 * time.Second
	DefaultRequestDelay     = 200 * time.Millisecond
	DefaultRateLimitSamples = 10
	DefaultLatencySamples   = 5
	DefaultCadenceBlocks    = 3
	DefaultBufferSize       = 1000

	// DefaultExpectedBlockTime matches a 12-second chain.
	DefaultExpectedBlockTime = 12.0
)

// Config holds the agent-side configuration parsed from the `agent:` section
// of config.yaml. The `server:` key in the same file is ignored.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all agent-side settings.
type AgentConfig struct {
	// ServerEndpoint is the base URL of nodepulse-server's ingest API,
	// e.g. "http://localhost:8080".
	ServerEndpoint string `yaml:"server_endpoint"`

	// ProbeInterval controls how often each node runs a full probe cycle.
	ProbeInterval time.Duration `yaml:"probe_interval"`

	// RequestDelay is the deliberate pause between consecutive probe
	// requests, so the measurement itself does not trigger rate limiting.
	RequestDelay time.Duration `yaml:"request_delay"`

	// RateLimitSamples is the burst size used for rate-limit probing per
	// endpoint.
	RateLimitSamples int `yaml:"rate_limit_samples"`

	// LatencySamples is the number of requests averaged for latency
	// classification per endpoint.
	LatencySamples int `yaml:"latency_samples"`

	// CadenceBlocks is how many consecutive blocks are fetched to measure
	// the inter-block time. Minimum 2 for a measurable cadence.
	CadenceBlocks int `yaml:"cadence_blocks"`

	// BufferSize is the maximum number of snapshots held in memory when
	// the server is unreachable.
	BufferSize int `yaml:"buffer_size"`

	// Nodes is the list of blockchain nodes to monitor.
	Nodes []Node `yaml:"nodes"`

	// ServerAuth configures how the agent authenticates to nodepulse-server.
	ServerAuth AuthConfig `yaml:"server_auth"`

	// Report optionally appends a one-line flat verdict report per probe
	// cycle to a local file.
	Report ReportConfig `yaml:"report"`
}

// Node describes one monitored blockchain node: an execution-layer JSON-RPC
// endpoint plus its companion beacon REST API.
type Node struct {
	// ID is a unique, human-readable identifier for this node.
	ID string `yaml:"id"`

	// Network is an optional label, e.g. "mainnet" or "sepolia".
	Network string `yaml:"network"`

	// ExecutionEndpoint is the JSON-RPC URL of the execution client.
	ExecutionEndpoint string `yaml:"execution_endpoint"`

	// BeaconEndpoint is the base URL of the consensus client's REST API.
	BeaconEndpoint string `yaml:"beacon_endpoint"`

	// MetricsEndpoint optionally points at the node's Prometheus /metrics
	// exposition for supplementary diagnostics (peer count, sync state).
	MetricsEndpoint string `yaml:"metrics_endpoint"`

	// ExpectedBlockTime is the chain's target block cadence in seconds.
	// Defaults to 12.
	ExpectedBlockTime float64 `yaml:"expected_block_time"`

	// Auth configures how the agent authenticates to this node.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// AuthConfig specifies the authentication mode for a node or the server.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields — used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// API key fields — used when Mode == "apikey".
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// Bearer token fields — used when Mode == "bearer".
	// TokenEnv is the name of the environment variable that holds the token.
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields — used when Mode == "basic".
	// Username is the literal username (safe to store in config).
	Username string `yaml:"username"`
	// PasswordEnv is the name of the environment variable that holds the password.
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// EffectiveHeader returns the configured API key header, or "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// TLSConfig holds per-node TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ReportConfig controls the optional flat-file verdict report.
type ReportConfig struct {
	// Path is the file to append one report line per probe cycle to.
	// Empty disables the flat report.
	Path string `yaml:"path"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			ProbeInterval:    DefaultProbeInterval,
			RequestDelay:     DefaultRequestDelay,
			RateLimitSamples: DefaultRateLimitSamples,
			LatencySamples:   DefaultLatencySamples,
			CadenceBlocks:    DefaultCadenceBlocks,
			BufferSize:       DefaultBufferSize,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Agent.ServerEndpoint == "" {
		return fmt.Errorf("agent.server_endpoint is required")
	}
	if cfg.Agent.ProbeInterval <= 0 {
		return fmt.Errorf("agent.probe_interval must be positive")
	}
	if cfg.Agent.RequestDelay < 0 {
		return fmt.Errorf("agent.request_delay must not be negative")
	}
	if cfg.Agent.RateLimitSamples <= 0 {
		return fmt.Errorf("agent.rate_limit_samples must be positive")
	}
	if cfg.Agent.LatencySamples <= 0 {
		return fmt.Errorf("agent.latency_samples must be positive")
	}
	if cfg.Agent.CadenceBlocks < 2 {
		return fmt.Errorf("agent.cadence_blocks must be at least 2")
	}
	if cfg.Agent.BufferSize <= 0 {
		return fmt.Errorf("agent.buffer_size must be positive")
	}
	for i, n := range cfg.Agent.Nodes {
		if n.ID == "" {
			return fmt.Errorf("nodes[%d]: id is required", i)
		}
		if n.ExecutionEndpoint == "" {
			return fmt.Errorf("nodes[%d] %q: execution_endpoint is required", i, n.ID)
		}
		if n.BeaconEndpoint == "" {
			return fmt.Errorf("nodes[%d] %q: beacon_endpoint is required", i, n.ID)
		}
		if n.ExpectedBlockTime < 0 {
			return fmt.Errorf("nodes[%d] %q: expected_block_time must not be negative", i, n.ID)
		}
		switch n.Auth.Mode {
		case "mtls", "apikey", "bearer", "basic", "none", "":
		default:
			return fmt.Errorf("nodes[%d] %q: unknown auth mode %q", i, n.ID, n.Auth.Mode)
		}
	}
	return nil
}
