package gatechain

import (
	"fmt"

	"github.com/cwbudde/algo-lpg/dsp/core"
	"github.com/cwbudde/algo-lpg/dsp/lpg"
	"github.com/cwbudde/algo-vecmath"
)

// lpgRuntime handles the "lowpassgate" node type. It hosts one low-pass
// gate operator and drives it from an internal periodic trigger clock,
// re-chunking arbitrary caller block sizes to the operator's fixed block
// length.
type lpgRuntime struct {
	ctx Context

	op  *lpg.Operator
	in  *lpg.Inputs
	out *lpg.Outputs

	hardReset bool
	looping   bool

	// periodSamples is the internal trigger period; 0 disables the clock.
	// countdown is the distance in samples to the next scheduled edge.
	periodSamples int
	countdown     int

	pendingTrigger bool
}

func newLPGRuntime(ctx Context) (*lpgRuntime, error) {
	r := &lpgRuntime{}

	err := r.rebuild(ctx, false, false)
	if err != nil {
		return nil, err
	}

	return r, nil
}

func (r *lpgRuntime) rebuild(ctx Context, hardReset, looping bool) error {
	op, err := lpg.New(ctx.SampleRate, ctx.FramesPerBlock,
		lpg.WithHardReset(hardReset),
		lpg.WithLooping(looping),
	)
	if err != nil {
		return fmt.Errorf("gatechain: create low-pass gate: %w", err)
	}

	r.ctx = ctx
	r.op = op
	r.in = op.NewInputs()
	r.out = op.NewOutputs()
	r.hardReset = hardReset
	r.looping = looping
	r.countdown = 0

	return nil
}

func (r *lpgRuntime) Configure(ctx Context, p Params) error {
	hardReset := p.GetBool("hardReset", false)
	looping := p.GetBool("looping", false)

	if r.op == nil || ctx != r.ctx || hardReset != r.hardReset || looping != r.looping {
		err := r.rebuild(ctx, hardReset, looping)
		if err != nil {
			return err
		}
	}

	mode, err := lpg.ParseMode(p.GetStr("mode", "both"))
	if err != nil {
		return fmt.Errorf("gatechain: configure low-pass gate: %w", err)
	}

	r.in.Mode = mode
	r.in.AttackTime = core.Clamp(p.GetNum("attackMs", 10), 0.01, 10000) * 0.001
	r.in.DecayTime = core.Clamp(p.GetNum("decayMs", 1000), 0.01, 60000) * 0.001
	r.in.AttackCurve = core.Clamp(p.GetNum("attackCurve", 1), 0.0001, 10)
	r.in.DecayCurve = core.Clamp(p.GetNum("decayCurve", 1), 0.0001, 10)
	r.in.CutoffHz = core.Clamp(p.GetNum("cutoffHz", 1000), 0, 0.5*ctx.SampleRate)

	r.op.SetResonance(p.GetNum("resonance", 0))
	r.op.SetBandStopControl(p.GetNum("bandStop", 0))

	rateHz := core.Clamp(p.GetNum("triggerRateHz", 0), 0, 100)
	if rateHz > 0 {
		r.periodSamples = int(ctx.SampleRate / rateHz)
		if r.periodSamples < 1 {
			r.periodSamples = 1
		}
	} else {
		r.periodSamples = 0
	}

	return nil
}

func (r *lpgRuntime) Process(block []float64) {
	audioIn := r.in.Audio
	audioOut := r.out.Audio

	for offset := 0; offset < len(block); {
		n := r.ctx.FramesPerBlock
		if rest := len(block) - offset; rest < n {
			n = rest
		}

		chunk := block[offset : offset+n]
		core.CopyInto(audioIn[:n], chunk)

		r.in.Audio = audioIn[:n]
		r.out.Audio = audioOut[:n]

		r.in.Trigger.Advance()
		if r.pendingTrigger {
			r.in.Trigger.TriggerFrame(0)
			r.pendingTrigger = false
		}
		if r.periodSamples > 0 {
			for r.countdown < n {
				r.in.Trigger.TriggerFrame(r.countdown)
				r.countdown += r.periodSamples
			}
			r.countdown -= n
		}

		r.op.Execute(r.in, r.out)
		core.CopyInto(chunk, audioOut[:n])

		offset += n
	}

	r.in.Audio = audioIn
	r.out.Audio = audioOut
}

// TriggerNow schedules a trigger at the start of the next processed
// block, independent of the internal clock.
func (r *lpgRuntime) TriggerNow() {
	r.pendingTrigger = true
}

// gainRuntime handles the "gain" node type, a plain scalar level stage.
type gainRuntime struct {
	gain float64
}

func (r *gainRuntime) Configure(_ Context, p Params) error {
	r.gain = core.DBToLinear(core.Clamp(p.GetNum("gainDB", 0), -96, 24))
	return nil
}

func (r *gainRuntime) Process(block []float64) {
	vecmath.ScaleBlock(block, block, r.gain)
}
