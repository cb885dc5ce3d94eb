package svf_test

import (
	"testing"

	"github.com/cwbudde/algo-lpg/dsp/filter/svf"
	"github.com/cwbudde/algo-lpg/measure/response"
)

func measure(t *testing.T, opts ...svf.Option) response.Result {
	t.Helper()

	f, err := svf.New(48000, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := response.MeasureImpulse(f, 48000, 4096)
	if err != nil {
		t.Fatalf("MeasureImpulse() error = %v", err)
	}

	return res
}

func TestLowPassResponseShape(t *testing.T) {
	res := measure(t, svf.WithCutoffHz(1000))

	passband := res.MagnitudeAt(100)
	if passband < 0.9 {
		t.Fatalf("passband magnitude at 100 Hz = %v, want > 0.9", passband)
	}

	mid := res.MagnitudeAt(1000)
	stop := res.MagnitudeAt(10000)
	if !(stop < mid && mid < passband) {
		t.Fatalf("magnitudes not decreasing: 100 Hz=%v 1 kHz=%v 10 kHz=%v", passband, mid, stop)
	}

	// Second-order roll-off: a decade above cutoff should be well under -26 dB.
	if stop > 0.05 {
		t.Fatalf("stopband magnitude at 10 kHz = %v, want < 0.05", stop)
	}
}

func TestResonancePeaksAtCutoff(t *testing.T) {
	flat := measure(t, svf.WithCutoffHz(1000), svf.WithResonance(0))
	peaked := measure(t, svf.WithCutoffHz(1000), svf.WithResonance(5))

	peakFlat := maxMagnitudeNear(flat, 1000)
	peakHigh := maxMagnitudeNear(peaked, 1000)

	if peakHigh < 2*peakFlat {
		t.Fatalf("resonant peak = %v, non-resonant = %v, want clear emphasis", peakHigh, peakFlat)
	}
}

func TestBandStopNotchesAtCutoff(t *testing.T) {
	res := measure(t, svf.WithCutoffHz(1000), svf.WithBandStopControl(1))

	notch := res.MagnitudeAt(1000)
	if notch > 0.5 {
		t.Fatalf("notch magnitude at cutoff = %v, want < 0.5", notch)
	}

	high := res.MagnitudeAt(12000)
	if high < 0.8 {
		t.Fatalf("band-stop high-frequency magnitude = %v, want > 0.8", high)
	}

	low := res.MagnitudeAt(50)
	if low < 0.8 {
		t.Fatalf("band-stop low-frequency magnitude = %v, want > 0.8", low)
	}
}

func maxMagnitudeNear(res response.Result, freqHz float64) float64 {
	peak := 0.0
	for _, f := range []float64{0.8, 0.9, 1.0, 1.1, 1.2} {
		if m := res.MagnitudeAt(freqHz * f); m > peak {
			peak = m
		}
	}
	return peak
}
