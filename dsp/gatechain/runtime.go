package gatechain

// Runtime is the per-node processing and configuration contract.
type Runtime interface {
	Configure(ctx Context, params Params) error
	Process(block []float64)
}
