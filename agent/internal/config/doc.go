// Package config loads and validates the agent's YAML configuration:
// the list of monitored nodes (execution JSON-RPC + beacon REST endpoints,
// per-chain expected block time, auth), probe cycle tuning, and the server
// shipping settings. Watch provides fsnotify-based hot reload.
//
// Secrets (API keys, tokens, passwords) are never stored in the file itself;
// the config names environment variables and accessors resolve them at use.
package config
