// Command lpgplay plays a triggered low-pass gate through the default
// audio output.
//
// Examples:
//
//	lpgplay
//	lpgplay -source noise -mode both -cutoff 600 -trigger-rate 4
//	lpgplay -duration 10 -mode vca -freq 110
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-lpg/dsp/core"
	"github.com/cwbudde/algo-lpg/dsp/gatechain"
	"github.com/cwbudde/algo-lpg/dsp/lpg"
	"github.com/cwbudde/algo-lpg/dsp/signal"
)

func main() {
	duration := flag.Float64("duration", 5.0, "play length in seconds")
	rate := flag.Int("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 512, "processing block size in frames")
	mode := flag.String("mode", "both", "gate mode: lowpass, vca, or both")
	source := flag.String("source", "sine", "source signal: sine or noise")
	freq := flag.Float64("freq", 220, "sine source frequency in Hz")
	seed := flag.Int64("seed", 1, "noise source seed")
	attack := flag.Float64("attack", 5, "envelope attack in ms")
	decay := flag.Float64("decay", 250, "envelope decay in ms")
	cutoff := flag.Float64("cutoff", 1200, "filter cutoff in Hz")
	resonance := flag.Float64("resonance", 0, "filter resonance (0..10)")
	bandStop := flag.Float64("bandstop", 0, "band-stop blend (0..1)")
	triggerRate := flag.Float64("trigger-rate", 2, "internal trigger clock in Hz")
	flag.Parse()

	if _, err := lpg.ParseMode(*mode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	samples, err := render(renderConfig{
		duration:    *duration,
		rate:        float64(*rate),
		block:       *block,
		mode:        *mode,
		source:      *source,
		freq:        *freq,
		seed:        *seed,
		attackMs:    *attack,
		decayMs:     *decay,
		cutoffHz:    *cutoff,
		resonance:   *resonance,
		bandStop:    *bandStop,
		triggerRate: *triggerRate,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	err = play(samples, *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type renderConfig struct {
	duration    float64
	rate        float64
	block       int
	mode        string
	source      string
	freq        float64
	seed        int64
	attackMs    float64
	decayMs     float64
	cutoffHz    float64
	resonance   float64
	bandStop    float64
	triggerRate float64
}

func render(cfg renderConfig) ([]float64, error) {
	samples := int(cfg.rate * cfg.duration)
	if samples <= 0 {
		return nil, fmt.Errorf("duration yields no samples: %f s", cfg.duration)
	}

	gen := signal.NewGenerator(
		[]core.ProcessorOption{
			core.WithSampleRate(cfg.rate),
			core.WithFramesPerBlock(cfg.block),
		},
		signal.WithSeed(cfg.seed),
	)

	var (
		input []float64
		err   error
	)

	switch strings.ToLower(cfg.source) {
	case "sine":
		input, err = gen.Sine(cfg.freq, 0.8, samples)
	case "noise":
		input, err = gen.WhiteNoise(0.8, samples)
	default:
		return nil, fmt.Errorf("unknown source: %s", cfg.source)
	}

	if err != nil {
		return nil, err
	}

	chain := gatechain.New(
		gatechain.Context{SampleRate: cfg.rate, FramesPerBlock: cfg.block},
		gatechain.DefaultRegistry(),
	)

	err = chain.Load(fmt.Sprintf(`[{"id":"lpg","type":"lowpassgate","str":{"mode":%q}}]`, cfg.mode))
	if err != nil {
		return nil, err
	}

	err = chain.Configure("lpg", gatechain.Params{
		Str: map[string]string{"mode": cfg.mode},
		Num: map[string]float64{
			"attackMs":      cfg.attackMs,
			"decayMs":       cfg.decayMs,
			"cutoffHz":      cfg.cutoffHz,
			"resonance":     cfg.resonance,
			"bandStop":      cfg.bandStop,
			"triggerRateHz": cfg.triggerRate,
		},
	})
	if err != nil {
		return nil, err
	}

	for offset := 0; offset < len(input); offset += cfg.block {
		end := offset + cfg.block
		if end > len(input) {
			end = len(input)
		}

		chain.Process(input[offset:end])
	}

	return input, nil
}

func play(samples []float64, sampleRate int) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return err
	}
	<-ready

	player := ctx.NewPlayer(&float32Stream{samples: samples})
	player.Play()

	for player.IsPlaying() {
		time.Sleep(20 * time.Millisecond)
	}

	return player.Close()
}

// float32Stream serves float64 samples as little-endian float32 PCM.
type float32Stream struct {
	samples []float64
	pos     int
}

func (s *float32Stream) Read(p []byte) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}

	n := 0
	for n+4 <= len(p) && s.pos < len(s.samples) {
		bits := math.Float32bits(float32(s.samples[s.pos]))
		binary.LittleEndian.PutUint32(p[n:], bits)

		n += 4
		s.pos++
	}

	return n, nil
}
