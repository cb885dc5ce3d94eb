// Package response measures the magnitude frequency response of block
// processors from their impulse response.
//
// It exists so filter behavior can be asserted in tests and inspected
// from tooling without coupling processors to any analysis code: feed a
// unit impulse through the processor, transform the response, and read
// single-sided magnitudes per frequency bin.
package response

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lpg/dsp/buffer"
)

// scratch pools the per-measurement work buffers so repeated sweeps
// (response tests, tooling loops) do not churn the GC.
var scratch = buffer.NewPool()

// Processor is the block-processing contract measured by MeasureImpulse.
type Processor interface {
	ProcessTo(dst, src []float64)
}

// Result holds a single-sided magnitude response with bins from DC up to
// and including Nyquist.
type Result struct {
	SampleRate float64
	FFTSize    int
	Magnitudes []float64
}

// NumBins returns the number of frequency bins.
func (r Result) NumBins() int { return len(r.Magnitudes) }

// BinFrequency returns the center frequency of bin i in Hz.
func (r Result) BinFrequency(i int) float64 {
	if r.FFTSize == 0 {
		return 0
	}

	return float64(i) * r.SampleRate / float64(r.FFTSize)
}

// MagnitudeAt returns the magnitude at freqHz, linearly interpolated
// between neighboring bins. Frequencies outside [0, Nyquist] clamp to
// the edge bins.
func (r Result) MagnitudeAt(freqHz float64) float64 {
	if len(r.Magnitudes) == 0 {
		return 0
	}

	if r.SampleRate <= 0 || r.FFTSize == 0 {
		return r.Magnitudes[0]
	}

	position := freqHz * float64(r.FFTSize) / r.SampleRate
	if position <= 0 {
		return r.Magnitudes[0]
	}

	last := len(r.Magnitudes) - 1
	if position >= float64(last) {
		return r.Magnitudes[last]
	}

	lower := int(position)
	fraction := position - float64(lower)

	return r.Magnitudes[lower] + fraction*(r.Magnitudes[lower+1]-r.Magnitudes[lower])
}

// MeasureImpulse measures the magnitude response of p at the given
// sample rate. fftSize is rounded up to the next power of two; values
// below 16 are rejected. The processor should be freshly reset so the
// impulse response is not colored by residual state.
func MeasureImpulse(p Processor, sampleRate float64, fftSize int) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("response: processor must not be nil")
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Result{}, fmt.Errorf("response: sample rate must be positive and finite: %f", sampleRate)
	}

	if fftSize < 16 {
		return Result{}, fmt.Errorf("response: fft size must be >= 16: %d", fftSize)
	}

	fftSize = nextPowerOf2(fftSize)

	impulseBuf := scratch.Get(fftSize)
	defer scratch.Put(impulseBuf)

	irBuf := scratch.Get(fftSize)
	defer scratch.Put(irBuf)

	impulse := impulseBuf.Samples()
	impulse[0] = 1

	ir := irBuf.Samples()
	p.ProcessTo(ir, impulse)

	inData := make([]complex128, fftSize)
	for i, v := range ir {
		inData[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, err
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, inData); err != nil {
		return Result{}, err
	}

	numBins := fftSize/2 + 1

	reBuf := scratch.Get(numBins)
	defer scratch.Put(reBuf)

	imBuf := scratch.Get(numBins)
	defer scratch.Put(imBuf)

	re := reBuf.Samples()
	im := imBuf.Samples()
	for i := 0; i < numBins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mags := make([]float64, numBins)
	vecmath.Magnitude(mags, re, im)

	return Result{
		SampleRate: sampleRate,
		FFTSize:    fftSize,
		Magnitudes: mags,
	}, nil
}

func nextPowerOf2(n int) int {
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
