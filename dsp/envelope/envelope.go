// Package envelope implements the attack/decay envelope generator that
// drives the low-pass gate.
//
// The envelope is evaluated once per trigger-delimited block segment: each
// Next call produces the envelope value at the segment start and advances
// the state by one sample step. Attack rises from the cycle's starting
// value to 1, decay falls from 1 back to 0, and curve factors shape both
// ramps (1 = linear, <1 = logarithmic, >1 = exponential).
package envelope

import (
	"math"

	"github.com/cwbudde/algo-lpg/dsp/core"
)

// Idle is the sentinel sample index meaning no envelope cycle is active.
const Idle = -1

// minCurveFactor floors curve factors to keep Pow well defined.
const minCurveFactor = 1e-4

// State holds one envelope voice. It is owned exclusively by a single
// operator and mutated on the audio thread only; it never allocates.
type State struct {
	// CurrentSampleIndex walks [0, AttackSampleCount+DecaySampleCount],
	// or holds Idle between cycles.
	CurrentSampleIndex int
	AttackSampleCount  int
	DecaySampleCount   int
	AttackCurveFactor  float64
	DecayCurveFactor   float64

	// StartingValue is the level the current cycle began from. Soft
	// retriggers start from the previous CurrentValue so a re-attack
	// mid-decay produces no discontinuity.
	StartingValue float64
	// CurrentValue is the last value computed by Next.
	CurrentValue float64

	Looping   bool
	HardReset bool
}

// NewState returns a State reset to idle.
func NewState() State {
	var s State
	s.Reset()
	return s
}

// Reset returns the state to idle with neutral (linear) curve shaping.
func (s *State) Reset() {
	s.CurrentSampleIndex = Idle
	s.AttackSampleCount = 1
	s.DecaySampleCount = 1
	s.AttackCurveFactor = 1
	s.DecayCurveFactor = 1
	s.StartingValue = 0
	s.CurrentValue = 0
	s.Looping = false
	s.HardReset = false
}

// Active reports whether an envelope cycle is in progress.
func (s *State) Active() bool {
	return s.CurrentSampleIndex != Idle
}

// SetTimes derives attack and decay sample counts from times in seconds.
// Counts are floored at 1 so a zero-length phase degenerates to a single
// instantaneous step instead of a division by zero.
func (s *State) SetTimes(attackSeconds, decaySeconds, sampleRate float64) {
	s.AttackSampleCount = sampleCount(attackSeconds, sampleRate)
	s.DecaySampleCount = sampleCount(decaySeconds, sampleRate)
}

// SetCurves updates the attack and decay curve factors, floored to a
// small positive epsilon.
func (s *State) SetCurves(attackCurve, decayCurve float64) {
	s.AttackCurveFactor = math.Max(minCurveFactor, attackCurve)
	s.DecayCurveFactor = math.Max(minCurveFactor, decayCurve)
}

// Retrigger arms a new envelope cycle. With HardReset the cycle restarts
// from 0; otherwise it starts from the current level so a retrigger
// mid-decay stays click-free.
func (s *State) Retrigger() {
	s.CurrentSampleIndex = 0
	if s.HardReset {
		s.StartingValue = 0
	} else {
		s.StartingValue = core.Clamp(s.CurrentValue, 0, 1)
	}
}

// Next computes the envelope value for the segment [startFrame, endFrame)
// and advances the state by one sample step.
//
// A non-zero startFrame (an edge that fired mid-block) or an idle state
// yields 0 without advancing. When the cycle completes, the state returns
// to idle (or re-arms when Looping) and a block-relative frame offset 0
// is appended to *doneFrames; the caller owns and reuses that slice, so
// Next never allocates in steady state.
func Next(s *State, startFrame, endFrame int, doneFrames *[]int) float64 {
	if startFrame > 0 || s.CurrentSampleIndex == Idle {
		return 0
	}

	var value float64

	switch {
	case s.CurrentSampleIndex < s.AttackSampleCount:
		if s.AttackSampleCount > 1 {
			fraction := float64(s.CurrentSampleIndex) / float64(s.AttackSampleCount)
			value = s.StartingValue + (1-s.StartingValue)*math.Pow(fraction, s.AttackCurveFactor)
		} else {
			value = 1
		}
		s.CurrentSampleIndex++

	case s.CurrentSampleIndex < s.AttackSampleCount+s.DecaySampleCount:
		decayOffset := s.CurrentSampleIndex - s.AttackSampleCount
		fraction := float64(decayOffset) / float64(s.DecaySampleCount)
		value = 1 - math.Pow(fraction, s.DecayCurveFactor)
		s.CurrentSampleIndex++

	default:
		if s.Looping {
			s.CurrentSampleIndex = 0
			s.StartingValue = 0
		} else {
			s.CurrentSampleIndex = Idle
		}
		value = 0
		if doneFrames != nil {
			*doneFrames = append(*doneFrames, 0)
		}
	}

	s.CurrentValue = value

	return value
}

func sampleCount(seconds, sampleRate float64) int {
	count := int(sampleRate * seconds)
	if count < 1 {
		count = 1
	}
	return count
}
