package security

import (
	"context"
	"crypto/tls"
	"math"
	"net"
	"net/url"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/config"
	"github.com/nodepulse/nodepulse/pkg/types"
)

const dialTimeout = 10 * time.Second

// CheckNode inspects the TLS certificates of all HTTPS endpoints configured
// for the node (execution, beacon, metrics). Plain-HTTP endpoints produce no
// entry.
func CheckNode(ctx context.Context, node config.Node) []types.CertStatus {
	var out []types.CertStatus
	for _, endpoint := range []string{node.ExecutionEndpoint, node.BeaconEndpoint, node.MetricsEndpoint} {
		if cs := Check(ctx, endpoint, node.TLS.InsecureSkipVerify); cs != nil {
			out = append(out, *cs)
		}
	}
	return out
}

// Check dials the TLS endpoint and returns a CertStatus describing the leaf
// certificate.
//
// Returns nil for non-HTTPS endpoints — there is no TLS certificate to
// inspect. Uses a 10-second dial timeout so a slow/unreachable host does not
// block the probe loop indefinitely.
func Check(ctx context.Context, endpoint string, insecureSkipVerify bool) *types.CertStatus {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme != "https" {
		return nil // nothing to inspect for plain-HTTP or unparseable endpoints
	}

	cs := &types.CertStatus{Endpoint: endpoint}

	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		// No explicit port in the URL — append the HTTPS default.
		host = net.JoinHostPort(host, "443")
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			InsecureSkipVerify: insecureSkipVerify, //nolint:gosec
		},
	}

	netConn, err := dialer.DialContext(dialCtx, "tcp", host)
	if err != nil {
		cs.Status = "unreachable"
		return cs
	}
	conn := netConn.(*tls.Conn)
	defer conn.Close()

	peerCerts := conn.ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		cs.Status = "unreachable"
		return cs
	}

	leaf := peerCerts[0]
	daysLeft := time.Until(leaf.NotAfter).Hours() / 24

	cs.NotAfter = leaf.NotAfter.UTC().Format(time.RFC3339)
	cs.Issuer = leaf.Issuer.CommonName
	cs.DaysLeft = int(math.Floor(daysLeft))

	switch {
	case daysLeft <= 0:
		cs.Status = "expired"
	case daysLeft <= 30:
		cs.Status = "expiring"
	default:
		cs.Status = "valid"
	}

	return cs
}
