// Package security inspects the TLS certificates of HTTPS node endpoints.
// Expiring node RPC certificates take a provider offline as surely as a
// crashed client, so the agent ships certificate status alongside the health
// verdict and the server can alert on cert_days_left.
package security
