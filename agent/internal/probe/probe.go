package probe

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/config"
)

const defaultRequestTimeout = 10 * time.Second

// Options tunes a probe cycle. Zero sample counts fall back to the config
// package defaults.
type Options struct {
	// RequestDelay is the pause between consecutive requests within a burst.
	// Zero disables pacing.
	RequestDelay time.Duration

	// RateLimitSamples is the burst size for rate-limit probing per endpoint.
	RateLimitSamples int

	// LatencySamples is the number of requests averaged for latency per endpoint.
	LatencySamples int

	// CadenceBlocks is how many consecutive blocks to fetch for cadence.
	CadenceBlocks int
}

func (o Options) withDefaults() Options {
	if o.RateLimitSamples <= 0 {
		o.RateLimitSamples = config.DefaultRateLimitSamples
	}
	if o.LatencySamples <= 0 {
		o.LatencySamples = config.DefaultLatencySamples
	}
	if o.CadenceBlocks < 2 {
		o.CadenceBlocks = config.DefaultCadenceBlocks
	}
	return o
}

// Prober runs probe cycles against one configured node.
// It builds its HTTP client once and reuses it across cycles.
type Prober struct {
	node   config.Node
	opts   Options
	client *http.Client
}

// New returns a Prober for the given node.
func New(node config.Node, opts Options) (*Prober, error) {
	client, err := buildHTTPClient(node)
	if err != nil {
		return nil, fmt.Errorf("probe %q: build http client: %w", node.ID, err)
	}
	return &Prober{node: node, opts: opts.withDefaults(), client: client}, nil
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.EffectiveHeader(), t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.auth.Username, t.auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the node's auth and TLS settings.
func buildHTTPClient(node config.Node) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: node.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	if node.Auth.Mode == "mtls" {
		cert, err := tls.LoadX509KeyPair(node.Auth.CertFile, node.Auth.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}

		if node.Auth.CAFile != "" {
			caPEM, err := os.ReadFile(node.Auth.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caPEM) {
				return nil, fmt.Errorf("no valid certs found in ca file %q", node.Auth.CAFile)
			}
			tlsCfg.RootCAs = pool
		}
	}

	transport := &authRoundTripper{
		base: &http.Transport{TLSClientConfig: tlsCfg},
		auth: node.Auth,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultRequestTimeout,
	}, nil
}
