// Package health is the node health scoring engine.
//
// The engine is pure and synchronous: it consumes pre-collected measurements
// (latency samples, block observations, beacon slot strings) and returns a
// scored verdict. It performs no I/O, holds no cross-run state in its
// classifier functions, and is total over its input domain — malformed or
// missing data degrades to Invalid / none / score 0 rather than an error.
//
// tier.go provides the pure latency and block-cadence classifiers.
// ratelimit.go detects server-side throttling from a set of probe samples.
// consensus.go validates that both beacon API surfaces returned usable data.
// verdict.go is the scoring decision tree: four hard-override branches that
// zero the score, then one weighted accumulation branch.
//
// engine.go provides the stateful Engine that turns one raw probe cycle into
// a Result ready for shipping, tracking per-node uptime across cycles.
// Engine.Process accepts an injectable time.Time so tests are deterministic.
package health
