// Package lpg implements a low-pass gate: a triggered attack/decay
// envelope driving a VCA, a resonant low-pass filter, or both coupled
// together in the style of vactrol-based hardware gates.
//
// The operator processes audio in fixed-size blocks. Triggers are
// sample-accurate within a block: each attack edge splits the block
// into segments, the envelope advances once per segment, and downstream
// pulse outputs report the frame offsets of attack starts and envelope
// completions.
//
// In ModeBoth the envelope and the cutoff control couple: the block's
// gain is the envelope value scaled by the cutoff frequency normalized
// over [0, 20000] Hz, so closing the filter also closes the gate.
package lpg
