package svf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-lpg/dsp/core"
)

const (
	defaultCutoffHz        = 1000.0
	defaultResonance       = 0.0
	defaultBandStopControl = 0.0

	minResonance       = 0.0
	maxResonance       = 10.0
	minBandStopControl = 0.0
	maxBandStopControl = 1.0

	// minQ keeps the damping finite when resonance is 0; it corresponds
	// to a critically damped, non-resonant response.
	minQ = 0.5

	// maxCutoffRatio keeps the pre-warped coefficient below the tan
	// singularity at Nyquist.
	maxCutoffRatio = 0.499
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	cutoffHz        float64
	resonance       float64
	bandStopControl float64
}

func defaultConfig() config {
	return config{
		cutoffHz:        defaultCutoffHz,
		resonance:       defaultResonance,
		bandStopControl: defaultBandStopControl,
	}
}

// WithCutoffHz sets the cutoff in Hz. Must be finite and in [0, Nyquist];
// the Nyquist bound is checked at construction against the sample rate.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if !isFinite(cutoffHz) || cutoffHz < 0 {
			return fmt.Errorf("svf: cutoff must be finite and >= 0: %f", cutoffHz)
		}

		cfg.cutoffHz = cutoffHz

		return nil
	}
}

// WithResonance sets the resonance (Q) in [0, 10].
func WithResonance(resonance float64) Option {
	return func(cfg *config) error {
		if !isFinite(resonance) || resonance < minResonance || resonance > maxResonance {
			return fmt.Errorf("svf: resonance must be in [%g, %g]: %f", minResonance, maxResonance, resonance)
		}

		cfg.resonance = resonance

		return nil
	}
}

// WithBandStopControl sets the low-pass to band-stop blend in [0, 1].
func WithBandStopControl(control float64) Option {
	return func(cfg *config) error {
		if !isFinite(control) || control < minBandStopControl || control > maxBandStopControl {
			return fmt.Errorf("svf: band-stop control must be in [%g, %g]: %f", minBandStopControl, maxBandStopControl, control)
		}

		cfg.bandStopControl = control

		return nil
	}
}

// State contains the two integrator states for save/restore workflows.
type State struct {
	IC1 float64
	IC2 float64
}

// Filter is a resonant TPT state-variable low-pass filter with band-stop
// blending. It is mono; run one Filter per channel for stereo use.
type Filter struct {
	sampleRate float64

	cutoffHz        float64
	resonance       float64
	bandStopControl float64

	// Cached TPT coefficients, consistent with the parameters above.
	g  float64
	k  float64
	a1 float64
	a2 float64
	a3 float64

	state State
}

// New constructs a state-variable filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !isFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("svf: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if nyquist := sampleRate * 0.5; cfg.cutoffHz > nyquist {
		return nil, fmt.Errorf("svf: cutoff must be <= Nyquist (%f Hz): %f", nyquist, cfg.cutoffHz)
	}

	f := &Filter{
		sampleRate:      sampleRate,
		cutoffHz:        cfg.cutoffHz,
		resonance:       cfg.resonance,
		bandStopControl: cfg.bandStopControl,
	}
	f.update()

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// CutoffHz returns the cutoff frequency in Hz.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the resonance (Q).
func (f *Filter) Resonance() float64 { return f.resonance }

// BandStopControl returns the low-pass to band-stop blend.
func (f *Filter) BandStopControl() float64 { return f.bandStopControl }

// SetCutoffHz updates the cutoff and recomputes coefficients. The value
// is clamped to [0, Nyquist]; non-finite values are ignored.
func (f *Filter) SetCutoffHz(cutoffHz float64) {
	if !isFinite(cutoffHz) {
		return
	}

	f.cutoffHz = core.Clamp(cutoffHz, 0, f.sampleRate*0.5)
	f.update()
}

// SetResonance updates the resonance and recomputes coefficients. The
// value is clamped to [0, 10]; non-finite values are ignored.
func (f *Filter) SetResonance(resonance float64) {
	if !isFinite(resonance) {
		return
	}

	f.resonance = core.Clamp(resonance, minResonance, maxResonance)
	f.update()
}

// SetBandStopControl updates the band-stop blend. The value is clamped
// to [0, 1]; non-finite values are ignored.
func (f *Filter) SetBandStopControl(control float64) {
	if !isFinite(control) {
		return
	}

	f.bandStopControl = core.Clamp(control, minBandStopControl, maxBandStopControl)
}

// Reset clears the integrator states.
func (f *Filter) Reset() {
	f.state = State{}
}

// State returns a copy of the current integrator states.
func (f *Filter) State() State {
	return f.state
}

// SetState restores an externally saved filter state.
func (f *Filter) SetState(state State) error {
	if !isFinite(state.IC1) || !isFinite(state.IC2) {
		return fmt.Errorf("svf: state contains NaN or Inf")
	}

	f.state = state

	return nil
}

// ProcessSample processes one sample.
func (f *Filter) ProcessSample(input float64) float64 {
	if !isFinite(input) {
		input = 0
	}

	v3 := input - f.state.IC2
	v1 := f.a1*f.state.IC1 + f.a2*v3
	v2 := f.state.IC2 + f.a2*f.state.IC1 + f.a3*v3

	f.state.IC1 = core.FlushDenormals(2*v1 - f.state.IC1)
	f.state.IC2 = core.FlushDenormals(2*v2 - f.state.IC2)

	low := v2
	high := input - f.k*v1 - v2

	return low + f.bandStopControl*high
}

// ProcessInPlace processes a mono buffer in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// ProcessTo processes src into dst. dst must be at least as long as src.
func (f *Filter) ProcessTo(dst, src []float64) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

func (f *Filter) update() {
	ratio := f.cutoffHz / f.sampleRate
	if ratio < 0 {
		ratio = 0
	}
	if ratio > maxCutoffRatio {
		ratio = maxCutoffRatio
	}

	q := f.resonance
	if q < minQ {
		q = minQ
	}

	f.g = math.Tan(math.Pi * ratio)
	f.k = 1 / q
	f.a1 = 1 / (1 + f.g*(f.g+f.k))
	f.a2 = f.g * f.a1
	f.a3 = f.g * f.a2
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
