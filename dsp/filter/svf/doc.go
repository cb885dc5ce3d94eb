// Package svf provides a resonant state-variable low-pass filter with a
// band-stop blend control.
//
// The core is a topology-preserving-transform (TPT) state variable
// filter (Simper) producing simultaneous low-pass, band-pass, and
// high-pass taps from two integrator states. The filter output blends
// the low-pass tap toward the band-stop (notch) response under the
// band-stop control:
//
//	y = lowpass + bandStopControl*highpass
//
// with bandStopControl = 0 giving a pure resonant low-pass and 1 giving
// a notch. The filter is stateful, deterministic, and supports
// per-sample and block processing plus explicit state save/restore.
package svf
