// Package store holds the latest health snapshot per monitored node. It is a
// thread-safe in-memory map with TTL eviction: a node that stops reporting
// disappears from the store once its TTL elapses.
package store
