// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command klattdemo synthesizes a single steady vowel with the klatt
// package and writes it to a WAV file. It exists to exercise the pure
// klatt.Generator surface end to end; file encoding is deliberately kept
// out of the klatt package itself (spec.md §1 scope).
package main

import (
	"math"
	"math/rand"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/emer/klattsyn/klatt"
)

// CLI defines klattdemo's command-line interface.
type CLI struct {
	Out      string  `arg:"" name:"out" help:"Output WAV file path" default:"klattdemo.wav"`
	Rate     int     `help:"Sample rate in Hz" default:"44100"`
	F0       float64 `help:"Fundamental frequency in Hz (0 = unvoiced)" default:"120"`
	Duration float64 `help:"Duration in seconds" default:"1.0"`
	GainDb   float64 `help:"Overall gain in dB" default:"0"`
	Source   string  `help:"Glottal source: impulsive, natural, or noise" default:"impulsive" enum:"impulsive,natural,noise"`
	Seed     int64   `help:"PRNG seed for reproducible output" default:"1"`
}

func glottalKind(name string) klatt.GlottalSourceKind {
	switch name {
	case "natural":
		return klatt.GlottalNatural
	case "noise":
		return klatt.GlottalNoise
	default:
		return klatt.GlottalImpulsive
	}
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("klattdemo"),
		kong.Description("Synthesizes a steady vowel with the klatt cascade/parallel formant synthesizer"),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	mp := klatt.MainParams{SampleRate: cli.Rate, GlottalKind: glottalKind(cli.Source)}

	fp := klatt.DefaultFrameParams()
	fp.Duration = cli.Duration
	fp.F0 = cli.F0
	fp.FlutterLevel = 0.25
	fp.OpenPhaseRatio = 0.7
	fp.BreathinessDb = -25
	fp.TiltDb = 0
	fp.GainDb = cli.GainDb
	fp.Cascade.Enabled = true
	fp.Cascade.VoicingDb = 0
	fp.Cascade.AspirationDb = -25
	fp.Cascade.AspirationMod = 0.5
	fp.OralFormantFreq = [klatt.MaxOralFormants]float64{520, 1006, 2831, 3168, 4135, 5020}
	fp.OralFormantBw = [klatt.MaxOralFormants]float64{76, 102, 72, 102, 816, 596}

	logger.Info("synthesizing", "rate", cli.Rate, "f0", cli.F0, "duration", cli.Duration, "source", cli.Source)

	samples, err := klatt.GenerateSound(mp, []*klatt.FrameParams{&fp}, rand.New(rand.NewSource(cli.Seed)))
	if err != nil {
		logger.Fatal("synthesis failed", "err", err)
	}

	if err := writeWav(cli.Out, cli.Rate, samples); err != nil {
		logger.Fatal("write wav failed", "err", err)
	}
	logger.Info("wrote wav", "path", cli.Out, "samples", len(samples))
}

// writeWav encodes samples (nominally in [-1, 1], unclamped per
// spec.md §6) as 16-bit mono PCM.
func writeWav(path string, sampleRate int, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	defer enc.Close()

	ints := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		ints[i] = int(math.Round(s * 32767))
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}
