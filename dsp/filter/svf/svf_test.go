package svf

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for invalid sample rate")
	}

	if _, err := New(48000, WithCutoffHz(-1)); err == nil {
		t.Fatal("expected error for negative cutoff")
	}

	if _, err := New(48000, WithCutoffHz(30000)); err == nil {
		t.Fatal("expected error for cutoff above Nyquist")
	}

	if _, err := New(48000, WithResonance(11)); err == nil {
		t.Fatal("expected error for resonance out of range")
	}

	if _, err := New(48000, WithBandStopControl(1.5)); err == nil {
		t.Fatal("expected error for band-stop control out of range")
	}
}

func TestDefaults(t *testing.T) {
	f, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if f.CutoffHz() != 1000 {
		t.Fatalf("CutoffHz() = %v, want 1000", f.CutoffHz())
	}
	if f.Resonance() != 0 {
		t.Fatalf("Resonance() = %v, want 0", f.Resonance())
	}
	if f.BandStopControl() != 0 {
		t.Fatalf("BandStopControl() = %v, want 0", f.BandStopControl())
	}
}

func TestDCGainIsUnity(t *testing.T) {
	f, err := New(48000, WithCutoffHz(1000))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var out float64
	for i := 0; i < 48000; i++ {
		out = f.ProcessSample(1)
	}

	if math.Abs(out-1) > 1e-6 {
		t.Fatalf("steady-state DC output = %v, want 1", out)
	}
}

func TestProcessToMatchesSample(t *testing.T) {
	f1, _ := New(48000, WithCutoffHz(2400), WithResonance(1.5))
	f2, _ := New(48000, WithCutoffHz(2400), WithResonance(1.5))

	in := make([]float64, 256)
	for i := range in {
		in[i] = 0.6*math.Sin(2*math.Pi*float64(i)/37) + 0.2*math.Sin(2*math.Pi*float64(i)/7)
	}

	want := make([]float64, len(in))
	for i, x := range in {
		want[i] = f1.ProcessSample(x)
	}

	got := make([]float64, len(in))
	f2.ProcessTo(got, in)

	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > 1e-12 {
			t.Fatalf("sample %d mismatch: got=%g want=%g", i, got[i], want[i])
		}
	}
}

func TestProcessInPlaceMatchesTo(t *testing.T) {
	f1, _ := New(48000, WithCutoffHz(500))
	f2, _ := New(48000, WithCutoffHz(500))

	in := make([]float64, 128)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * float64(i) / 13)
	}

	want := make([]float64, len(in))
	f1.ProcessTo(want, in)

	got := append([]float64(nil), in...)
	f2.ProcessInPlace(got)

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("sample %d mismatch: got=%g want=%g", i, got[i], want[i])
		}
	}
}

func TestSettersClamp(t *testing.T) {
	f, _ := New(48000)

	f.SetCutoffHz(1e9)
	if f.CutoffHz() != 24000 {
		t.Fatalf("CutoffHz() = %v after huge set, want 24000", f.CutoffHz())
	}

	f.SetCutoffHz(-100)
	if f.CutoffHz() != 0 {
		t.Fatalf("CutoffHz() = %v after negative set, want 0", f.CutoffHz())
	}

	f.SetResonance(-5)
	if f.Resonance() != 0 {
		t.Fatalf("Resonance() = %v after negative set, want 0", f.Resonance())
	}

	f.SetBandStopControl(7)
	if f.BandStopControl() != 1 {
		t.Fatalf("BandStopControl() = %v after huge set, want 1", f.BandStopControl())
	}

	before := f.CutoffHz()
	f.SetCutoffHz(math.NaN())
	if f.CutoffHz() != before {
		t.Fatal("NaN cutoff should be ignored")
	}
}

func TestResetClearsState(t *testing.T) {
	f, _ := New(48000, WithCutoffHz(200))

	f.ProcessSample(1)
	f.ProcessSample(-1)
	if (f.State() == State{}) {
		t.Fatal("expected non-zero state after processing")
	}

	f.Reset()
	if (f.State() != State{}) {
		t.Fatalf("State() = %+v after Reset, want zero", f.State())
	}

	if out := f.ProcessSample(0); out != 0 {
		t.Fatalf("output = %v for silence after Reset, want 0", out)
	}
}

func TestStateRoundTrip(t *testing.T) {
	f, _ := New(48000, WithCutoffHz(800), WithResonance(2))

	for i := 0; i < 64; i++ {
		f.ProcessSample(math.Sin(2 * math.Pi * float64(i) / 17))
	}
	saved := f.State()
	next := f.ProcessSample(0.5)

	if err := f.SetState(saved); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	if replay := f.ProcessSample(0.5); replay != next {
		t.Fatalf("replayed sample = %g, want %g", replay, next)
	}

	if err := f.SetState(State{IC1: math.NaN()}); err == nil {
		t.Fatal("expected error for NaN state")
	}
}

func TestNonFiniteInputSanitized(t *testing.T) {
	f, _ := New(48000)
	if out := f.ProcessSample(math.NaN()); math.IsNaN(out) {
		t.Fatal("NaN input must not propagate")
	}
	if out := f.ProcessSample(math.Inf(1)); math.IsInf(out, 0) || math.IsNaN(out) {
		t.Fatal("Inf input must not propagate")
	}
}
