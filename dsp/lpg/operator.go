package lpg

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-lpg/dsp/core"
	"github.com/cwbudde/algo-lpg/dsp/envelope"
	"github.com/cwbudde/algo-lpg/dsp/filter/svf"
	"github.com/cwbudde/algo-lpg/dsp/trigger"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultAttackSeconds = 0.01
	defaultDecaySeconds  = 1.0
	defaultCurveFactor   = 1.0
	defaultCutoffHz      = 1000.0

	minResonance       = 0.0
	maxResonance       = 10.0
	minBandStopControl = 0.0
	maxBandStopControl = 1.0

	// maxCutoffControlHz is the top of the cutoff range mapped onto the
	// normalized [0, 1] gate control in ModeBoth.
	maxCutoffControlHz = 20000.0

	// invalidParam is below any valid filter parameter, forcing the
	// first applyFilterParams call to push coefficients.
	invalidParam = -1.0

	// paramEpsilon is the float tolerance for filter parameter hysteresis.
	paramEpsilon = 1e-9

	defaultEaseFactor = 0.01
)

// Option mutates constructor configuration.
type Option func(*Operator) error

// WithResonance sets the filter resonance in [0, 10]. The observed
// hardware-style default keeps it at 0.
func WithResonance(resonance float64) Option {
	return func(o *Operator) error {
		if math.IsNaN(resonance) || resonance < minResonance || resonance > maxResonance {
			return fmt.Errorf("lpg: resonance must be in [%g, %g]: %f", minResonance, maxResonance, resonance)
		}

		o.resonance = resonance

		return nil
	}
}

// WithBandStopControl sets the filter's low-pass to band-stop blend in
// [0, 1]. Default 0 (pure low-pass).
func WithBandStopControl(control float64) Option {
	return func(o *Operator) error {
		if math.IsNaN(control) || control < minBandStopControl || control > maxBandStopControl {
			return fmt.Errorf("lpg: band-stop control must be in [%g, %g]: %f", minBandStopControl, maxBandStopControl, control)
		}

		o.bandStopControl = control

		return nil
	}
}

// WithHardReset makes every trigger restart the envelope from 0 instead
// of the current level.
func WithHardReset(enabled bool) Option {
	return func(o *Operator) error {
		o.env.HardReset = enabled
		return nil
	}
}

// WithLooping re-arms the envelope from 0 whenever a cycle completes.
func WithLooping(enabled bool) Option {
	return func(o *Operator) error {
		o.env.Looping = enabled
		return nil
	}
}

// WithGainEase enables one-pole easing of the per-block gain in the VCA
// and Both paths, smoothing the stepping that per-block scalar gain can
// produce at short block sizes. factor is the per-block smoothing
// coefficient in (0, 1]; 1 disables smoothing in all but name.
func WithGainEase(factor float64) Option {
	return func(o *Operator) error {
		if math.IsNaN(factor) || factor <= 0 || factor > 1 {
			return fmt.Errorf("lpg: gain ease factor must be in (0, 1]: %f", factor)
		}

		o.gainEase = true
		o.easeFactor = factor

		return nil
	}
}

// Inputs holds one block's worth of control and audio inputs.
//
// Trigger may fire any number of times per block; a nil Trigger is
// treated as a block with no edges. Audio must hold FramesPerBlock
// samples (shorter buffers truncate the processed range).
type Inputs struct {
	Trigger *trigger.Trigger
	Audio   []float64

	AttackTime  float64 // seconds
	DecayTime   float64 // seconds
	AttackCurve float64 // 1 = linear, <1 = logarithmic, >1 = exponential
	DecayCurve  float64
	CutoffHz    float64
	Mode        Mode
}

// Outputs holds one block's worth of outputs. OnTriggered fires at each
// attack edge's frame offset; OnDone fires when an envelope cycle
// completes. Envelope is the last envelope value computed this block.
type Outputs struct {
	OnTriggered *trigger.Trigger
	OnDone      *trigger.Trigger
	Envelope    float64
	Audio       []float64
}

// Operator is the low-pass gate: an attack/decay envelope driving a VCA,
// a resonant low-pass filter, or both coupled together.
//
// All state is owned exclusively by the operator and mutated only by
// Execute on a single audio thread. The steady-state block path performs
// no allocation; the ModeBoth scratch buffer is pre-allocated once at
// construction.
type Operator struct {
	sampleRate     float64
	framesPerBlock int

	env    envelope.State
	filter *svf.Filter

	// Last-applied filter parameters; invalidParam sentinels force the
	// first update. Filter coefficients stay consistent with this triple.
	lastFrequency float64
	lastResonance float64
	lastBandStop  float64
	coeffUpdates  int

	resonance       float64
	bandStopControl float64

	gainEase   bool
	easeFactor float64
	easedGain  float64

	scratch    []float64
	doneFrames []int
}

// New constructs a low-pass gate operator for a fixed sample rate and
// block size.
func New(sampleRate float64, framesPerBlock int, opts ...Option) (*Operator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("lpg: sample rate must be positive and finite: %f", sampleRate)
	}

	if framesPerBlock <= 0 {
		return nil, fmt.Errorf("lpg: frames per block must be > 0: %d", framesPerBlock)
	}

	o := &Operator{
		sampleRate:     sampleRate,
		framesPerBlock: framesPerBlock,
		env:            envelope.NewState(),
		lastFrequency:  invalidParam,
		lastResonance:  invalidParam,
		lastBandStop:   invalidParam,
		easeFactor:     defaultEaseFactor,
		scratch:        make([]float64, framesPerBlock),
		doneFrames:     make([]int, 0, framesPerBlock+1),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(o); err != nil {
			return nil, err
		}
	}

	filter, err := svf.New(sampleRate)
	if err != nil {
		return nil, err
	}
	o.filter = filter

	return o, nil
}

// SampleRate returns the sample rate in Hz.
func (o *Operator) SampleRate() float64 { return o.sampleRate }

// FramesPerBlock returns the fixed block size in frames.
func (o *Operator) FramesPerBlock() int { return o.framesPerBlock }

// EnvelopeValue returns the last computed envelope value.
func (o *Operator) EnvelopeValue() float64 { return o.env.CurrentValue }

// EnvelopeActive reports whether an envelope cycle is in progress.
func (o *Operator) EnvelopeActive() bool { return o.env.Active() }

// Resonance returns the configured filter resonance.
func (o *Operator) Resonance() float64 { return o.resonance }

// BandStopControl returns the configured band-stop blend.
func (o *Operator) BandStopControl() float64 { return o.bandStopControl }

// SetResonance updates the filter resonance, clamped to [0, 10].
// The new value takes effect on the next processed block.
func (o *Operator) SetResonance(resonance float64) {
	if math.IsNaN(resonance) {
		return
	}
	o.resonance = core.Clamp(resonance, minResonance, maxResonance)
}

// SetBandStopControl updates the band-stop blend, clamped to [0, 1].
func (o *Operator) SetBandStopControl(control float64) {
	if math.IsNaN(control) {
		return
	}
	o.bandStopControl = core.Clamp(control, minBandStopControl, maxBandStopControl)
}

// CoefficientUpdates returns how many times filter coefficients have
// been recomputed; parameter hysteresis keeps this from growing when
// inputs are unchanged.
func (o *Operator) CoefficientUpdates() int { return o.coeffUpdates }

// Reset returns the operator to its initial idle state, preserving
// configuration.
func (o *Operator) Reset() {
	looping, hardReset := o.env.Looping, o.env.HardReset
	o.env.Reset()
	o.env.Looping, o.env.HardReset = looping, hardReset

	o.filter.Reset()
	o.lastFrequency = invalidParam
	o.lastResonance = invalidParam
	o.lastBandStop = invalidParam
	o.easedGain = 0
}

// NewInputs allocates an input bundle sized for this operator, with the
// default parameter values.
func (o *Operator) NewInputs() *Inputs {
	// trigger.New cannot fail here: framesPerBlock was validated in New.
	tr, _ := trigger.New(o.framesPerBlock)

	return &Inputs{
		Trigger:     tr,
		Audio:       make([]float64, o.framesPerBlock),
		AttackTime:  defaultAttackSeconds,
		DecayTime:   defaultDecaySeconds,
		AttackCurve: defaultCurveFactor,
		DecayCurve:  defaultCurveFactor,
		CutoffHz:    defaultCutoffHz,
		Mode:        ModeLowPass,
	}
}

// NewOutputs allocates an output bundle sized for this operator.
func (o *Operator) NewOutputs() *Outputs {
	onTriggered, _ := trigger.New(o.framesPerBlock)
	onDone, _ := trigger.New(o.framesPerBlock)

	return &Outputs{
		OnTriggered: onTriggered,
		OnDone:      onDone,
		Audio:       make([]float64, o.framesPerBlock),
	}
}

// Execute processes one audio block. It is allocation-free, lock-free,
// and completes in time proportional to the block size.
func (o *Operator) Execute(in *Inputs, out *Outputs) {
	if in == nil || out == nil {
		return
	}

	n := o.framesPerBlock
	if len(in.Audio) < n {
		n = len(in.Audio)
	}
	if len(out.Audio) < n {
		n = len(out.Audio)
	}

	if out.OnTriggered != nil {
		out.OnTriggered.Advance()
	}
	if out.OnDone != nil {
		out.OnDone.Advance()
	}

	if n == 0 {
		return
	}

	mode := in.Mode
	if !validMode(mode) {
		mode = ModeLowPass
	}

	switch mode {
	case ModeLowPass:
		o.applyFilterParams(in.CutoffHz)
		o.filter.ProcessTo(out.Audio[:n], in.Audio[:n])

	case ModeVCA:
		o.calculateEnvelope(in, out)
		gain := o.blockGain(out.Envelope)
		vecmath.ScaleBlock(out.Audio[:n], in.Audio[:n], gain)

	case ModeBoth:
		normalizedCutoff := core.MapRangeClamped(in.CutoffHz, 0, maxCutoffControlHz, 0, 1)
		o.calculateEnvelope(in, out)
		gateLevel := o.blockGain(out.Envelope) * normalizedCutoff

		vecmath.ScaleBlock(o.scratch[:n], in.Audio[:n], gateLevel)
		o.applyFilterParams(in.CutoffHz)
		o.filter.ProcessTo(out.Audio[:n], o.scratch[:n])
	}
}

// calculateEnvelope runs the envelope state machine over the block's
// trigger-delimited segments, updating out.Envelope and firing the
// on-triggered and on-done pulses.
func (o *Operator) calculateEnvelope(in *Inputs, out *Outputs) {
	o.updateEnvelopeParams(in)

	if in.Trigger == nil {
		o.nextEnvelope(out, 0, o.framesPerBlock)
		return
	}

	in.Trigger.ExecuteBlock(
		func(start, end int) {
			o.nextEnvelope(out, start, end)
		},
		func(start, end int) {
			o.updateEnvelopeParams(in)
			o.env.Retrigger()
			o.easedGain = o.env.StartingValue

			o.nextEnvelope(out, start, end)

			if out.OnTriggered != nil {
				out.OnTriggered.TriggerFrame(start)
			}
		},
	)
}

func (o *Operator) nextEnvelope(out *Outputs, start, end int) {
	o.doneFrames = o.doneFrames[:0]
	out.Envelope = envelope.Next(&o.env, start, end, &o.doneFrames)

	if out.OnDone == nil {
		return
	}
	for _, frame := range o.doneFrames {
		out.OnDone.TriggerFrame(frame)
	}
}

func (o *Operator) updateEnvelopeParams(in *Inputs) {
	o.env.SetTimes(in.AttackTime, in.DecayTime, o.sampleRate)
	o.env.SetCurves(in.AttackCurve, in.DecayCurve)
}

// blockGain applies the optional one-pole easing to the per-block gain.
func (o *Operator) blockGain(target float64) float64 {
	if !o.gainEase {
		return target
	}

	o.easedGain += (target - o.easedGain) * o.easeFactor

	return o.easedGain
}

// applyFilterParams pushes cutoff, resonance, and band-stop control to
// the filter only when one of them moved past the hysteresis tolerance.
func (o *Operator) applyFilterParams(cutoffHz float64) {
	frequency := core.Clamp(cutoffHz, 0, 0.5*o.sampleRate)
	resonance := core.Clamp(o.resonance, minResonance, maxResonance)
	bandStop := core.Clamp(o.bandStopControl, minBandStopControl, maxBandStopControl)

	if core.NearlyEqual(o.lastFrequency, frequency, paramEpsilon) &&
		core.NearlyEqual(o.lastResonance, resonance, paramEpsilon) &&
		core.NearlyEqual(o.lastBandStop, bandStop, paramEpsilon) {
		return
	}

	o.filter.SetResonance(resonance)
	o.filter.SetCutoffHz(frequency)
	o.filter.SetBandStopControl(bandStop)

	o.lastFrequency = frequency
	o.lastResonance = resonance
	o.lastBandStop = bandStop
	o.coeffUpdates++
}
