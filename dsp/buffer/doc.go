// Package buffer provides a reusable float64 sample buffer and pool for
// allocation-friendly block processing. Processors in this module accept
// raw []float64 slices; Buffer is an optional convenience that helps
// callers manage allocation and reuse around the per-block hot path.
package buffer
