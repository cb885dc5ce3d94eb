// Command lpgrender renders a triggered low-pass gate to a WAV file.
//
// A built-in source (sine or white noise) is chopped by the gate's
// internal trigger clock and written as 16-bit mono PCM.
//
// Examples:
//
//	lpgrender -out pluck.wav
//	lpgrender -out perc.wav -source noise -mode both -cutoff 800 -trigger-rate 4
//	lpgrender -out tone.wav -mode vca -freq 110 -attack 2 -decay 400
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	wav "github.com/youpy/go-wav"

	"github.com/cwbudde/algo-lpg/dsp/core"
	"github.com/cwbudde/algo-lpg/dsp/gatechain"
	"github.com/cwbudde/algo-lpg/dsp/lpg"
	"github.com/cwbudde/algo-lpg/dsp/signal"
)

func main() {
	out := flag.String("out", "", "output WAV file (required)")
	duration := flag.Float64("duration", 2.0, "render length in seconds")
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 512, "processing block size in frames")
	mode := flag.String("mode", "both", "gate mode: lowpass, vca, or both")
	source := flag.String("source", "sine", "source signal: sine or noise")
	freq := flag.Float64("freq", 220, "sine source frequency in Hz")
	seed := flag.Int64("seed", 1, "noise source seed")
	attack := flag.Float64("attack", 5, "envelope attack in ms")
	decay := flag.Float64("decay", 250, "envelope decay in ms")
	attackCurve := flag.Float64("attack-curve", 1, "attack curve factor (1 = linear)")
	decayCurve := flag.Float64("decay-curve", 1, "decay curve factor (1 = linear)")
	cutoff := flag.Float64("cutoff", 1200, "filter cutoff in Hz")
	resonance := flag.Float64("resonance", 0, "filter resonance (0..10)")
	bandStop := flag.Float64("bandstop", 0, "band-stop blend (0..1)")
	triggerRate := flag.Float64("trigger-rate", 2, "internal trigger clock in Hz")
	gainDB := flag.Float64("gain", 0, "output gain in dB")
	flag.Parse()

	if *out == "" {
		fmt.Fprintf(os.Stderr, "error: -out is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if _, err := lpg.ParseMode(*mode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	input, err := renderSource(*source, *rate, *block, *duration, *freq, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	chain := gatechain.New(
		gatechain.Context{SampleRate: *rate, FramesPerBlock: *block},
		gatechain.DefaultRegistry(),
	)

	err = chain.Load(chainConfig(*mode))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	err = chain.Configure("lpg", gatechain.Params{
		Str: map[string]string{"mode": *mode},
		Num: map[string]float64{
			"attackMs":      *attack,
			"decayMs":       *decay,
			"attackCurve":   *attackCurve,
			"decayCurve":    *decayCurve,
			"cutoffHz":      *cutoff,
			"resonance":     *resonance,
			"bandStop":      *bandStop,
			"triggerRateHz": *triggerRate,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	err = chain.Configure("level", gatechain.Params{
		Num: map[string]float64{"gainDB": *gainDB},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for offset := 0; offset < len(input); offset += *block {
		end := offset + *block
		if end > len(input) {
			end = len(input)
		}

		chain.Process(input[offset:end])
	}

	err = writeWAV(*out, input, uint32(*rate))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s: %d samples at %.0f Hz\n", *out, len(input), *rate)
}

func chainConfig(mode string) string {
	return fmt.Sprintf(`[
		{"id":"lpg","type":"lowpassgate","str":{"mode":%q}},
		{"id":"level","type":"gain"}
	]`, mode)
}

func renderSource(source string, rate float64, block int, duration, freq float64, seed int64) ([]float64, error) {
	samples := int(rate * duration)
	if samples <= 0 {
		return nil, fmt.Errorf("duration yields no samples: %f s", duration)
	}

	gen := signal.NewGenerator(
		[]core.ProcessorOption{
			core.WithSampleRate(rate),
			core.WithFramesPerBlock(block),
		},
		signal.WithSeed(seed),
	)

	switch strings.ToLower(source) {
	case "sine":
		return gen.Sine(freq, 0.8, samples)
	case "noise":
		return gen.WhiteNoise(0.8, samples)
	default:
		return nil, fmt.Errorf("unknown source: %s", source)
	}
}

func writeWAV(path string, samples []float64, sampleRate uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := wav.NewWriter(f, uint32(len(samples)), 1, sampleRate, 16)

	frames := make([]wav.Sample, len(samples))
	for i, sample := range samples {
		frames[i].Values[0] = int(core.Clamp(sample, -1, 1) * 32767)
	}

	err = w.WriteSamples(frames)
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
