// Package orchestrator drives the batch refresh cycle: it fetches every
// active cluster record, fans the per-cluster processor out under a bounded
// concurrency limit, and aggregates all failures into a single alert.
package orchestrator
