// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package klatt implements a cascade/parallel formant speech synthesizer
// in the tradition of Klatt (1980, 1990). Given a sequence of
// time-indexed acoustic parameter frames, it produces a monophonic
// floating-point audio signal. It is a pure per-sample signal
// generator: no file I/O, no audio device, no UI.
package klatt

import (
	"math"
	"math/rand"
)

// Generator is the per-sample synthesis engine. It persists across
// frames, carrying filter and glottal-source state so successive frames
// do not click at their boundaries (spec.md §3 Lifecycle).
//
// A Generator is not safe for concurrent use: at most one goroutine may
// call into a given Generator at a time (spec.md §5).
type Generator struct {
	mp MainParams
	fs float64

	glottal *glottalSource

	tilt LpFilter1

	breathinessNoise        *LpNoiseSource
	cascadeAspirationNoise  *LpNoiseSource
	parallelAspirationNoise *LpNoiseSource
	fricationNoise          *LpNoiseSource

	cascade  cascadeBranch
	parallel parallelBranch

	outputLp Resonator

	period       PeriodState
	flutterOffset float64
	absPosition  int

	state FrameState

	// pending parameter double-buffer (spec.md §9 design note)
	current      *FrameParams
	pending      *FrameParams
	havePending  bool
}

// New builds a Generator from mp. It constructs all filters and noise
// sources, selects the glottal source variant, draws the generator's
// fixed flutter time offset, and zeroes all state (spec.md §4.8).
//
// rng, if non-nil, seeds every internal noise source so the generator's
// output is reproducible (spec.md §9 design note on randomness). A nil
// rng falls back to process-global randomness.
func New(mp MainParams, rng *rand.Rand) (*Generator, error) {
	fs := float64(mp.SampleRate)
	g := &Generator{mp: mp, fs: fs}

	rngOrNew := func() *rand.Rand {
		if rng != nil {
			return rng
		}
		return rand.New(rand.NewSource(rand.Int63()))
	}

	glot, err := newGlottalSource(mp.GlottalKind, fs, NewNoiseSource(rngOrNew()))
	if err != nil {
		return nil, err
	}
	g.glottal = glot

	g.breathinessNoise = NewLpNoiseSource(fs, rngOrNew())
	g.cascadeAspirationNoise = NewLpNoiseSource(fs, rngOrNew())
	g.parallelAspirationNoise = NewLpNoiseSource(fs, rngOrNew())
	g.fricationNoise = NewLpNoiseSource(fs, rngOrNew())

	// Output low-pass: a resonator configured at (0, fs/2) per spec.md
	// §4.8 — degenerates to a wide one-pole smoothing filter.
	if err := g.outputLp.Configure(fs, 0, fs/2, 1); err != nil {
		return nil, err
	}

	source := rngOrNew()
	g.flutterOffset = source.Float64() * 1000

	return g, nil
}

// SampleRate returns the sample rate this Generator was constructed
// with.
func (g *Generator) SampleRate() int { return g.mp.SampleRate }

// MainParams returns the MainParams this Generator was constructed
// with.
func (g *Generator) MainParams() MainParams { return g.mp }

// GenerateFrame fills out in place, advancing the generator by
// len(out) samples under the given frame parameters. fp's Duration
// field is ignored; the work amount is driven entirely by len(out)
// (spec.md §4.8, §6).
//
// fp must not be the same FrameParams value (by address) as the one
// passed to the previous call; doing so returns
// *Error(KindReusedFrameParams) and writes nothing (spec.md §3, §7).
// The new parameters take effect at the next period boundary, never
// mid-period (spec.md §3 invariants, §4.4).
func (g *Generator) GenerateFrame(fp *FrameParams, out []float64) error {
	if g.pending == fp {
		return ErrReusedFrameParams
	}
	g.pending = fp
	g.havePending = true

	if g.current == nil {
		// First call: adopt immediately so the very first period has
		// real coefficients rather than zero-value passthroughs.
		if err := g.beginPeriod(); err != nil {
			return err
		}
	}

	for i := range out {
		out[i] = g.stepSample()
		g.period.Position++
		g.absPosition++
		if g.period.Position >= g.period.Length {
			if err := g.beginPeriod(); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateSound is a convenience that allocates one buffer of
// Σ round(duration_i * fs) samples and fills it frame by frame
// (spec.md §4.8, §6).
func GenerateSound(mp MainParams, frames []*FrameParams, rng *rand.Rand) ([]float64, error) {
	g, err := New(mp, rng)
	if err != nil {
		return nil, err
	}
	fs := float64(mp.SampleRate)

	total := 0
	counts := make([]int, len(frames))
	for i, fp := range frames {
		n := roundInt(fp.Duration * fs)
		counts[i] = n
		total += n
	}

	out := make([]float64, total)
	offset := 0
	for i, fp := range frames {
		n := counts[i]
		if err := g.GenerateFrame(fp, out[offset:offset+n]); err != nil {
			return nil, err
		}
		offset += n
	}
	return out, nil
}

// beginPeriod starts a new pitch period: it computes flutter-modulated
// F0, period length, and open-phase length; restarts the glottal
// source; and — if a new FrameParams is pending — adopts it and rebinds
// every filter coefficient and linear gain (spec.md §4.4).
func (g *Generator) beginPeriod() error {
	if g.havePending {
		g.current = g.pending
		g.havePending = false
		if err := g.bindFrame(g.current); err != nil {
			return err
		}
	}

	f0Mod, length, openLen := computePeriod(g.fs, g.current.F0, g.current.FlutterLevel,
		g.current.OpenPhaseRatio, g.absPosition, g.flutterOffset)
	g.period = PeriodState{F0Mod: f0Mod, Length: length, OpenLen: openLen, Position: 0}
	g.glottal.startPeriod(openLen)
	return nil
}

// bindFrame translates fp into filter coefficients and FrameState
// linear gains, the frame-parameter binder of spec.md §4.5.
func (g *Generator) bindFrame(fp *FrameParams) error {
	fs := g.fs

	g.state = FrameState{
		BreathinessLin:        dbToLin(fp.BreathinessDb),
		GainLin:               dbToLin(fp.GainDb),
		CascadeVoicingLin:     dbToLin(fp.Cascade.VoicingDb),
		CascadeAspirationLin:  dbToLin(fp.Cascade.AspirationDb),
		ParallelVoicingLin:    dbToLin(fp.Parallel.VoicingDb),
		ParallelAspirationLin: dbToLin(fp.Parallel.AspirationDb),
		FricationLin:          dbToLin(fp.Parallel.FricationDb),
		ParallelBypassLin:     dbToLin(fp.Parallel.BypassDb),
	}

	if fp.TiltDb == 0 || math.IsNaN(fp.TiltDb) {
		g.tilt.SetPassthrough()
	} else {
		if err := g.tilt.Configure(fs, 3000, dbToLin(-fp.TiltDb), 1); err != nil {
			return err
		}
	}

	if err := g.cascade.configureNasalAntiformant(fs, fp.Cascade.NasalAntiformant); err != nil {
		return err
	}
	if err := g.cascade.configureNasalFormant(fs, fp.NasalFormant); err != nil {
		return err
	}
	for i := 0; i < MaxOralFormants; i++ {
		if err := g.cascade.configureOralFormant(fs, i, fp.OralFormantFreq[i], fp.OralFormantBw[i]); err != nil {
			return err
		}
	}

	if err := g.parallel.configureNasalFormant(fs, fp.NasalFormant, fp.Parallel.NasalFormantDb); err != nil {
		return err
	}
	for i := 0; i < MaxOralFormants; i++ {
		if err := g.parallel.configureOralFormant(fs, i, fp.OralFormantFreq[i], fp.OralFormantBw[i], fp.Parallel.OralFormantDb[i]); err != nil {
			return err
		}
	}
	return nil
}

// stepSample produces one output sample and advances every per-sample
// filter and source by one step (spec.md §4.8 per-sample pipeline).
func (g *Generator) stepSample() float64 {
	v := g.glottal.next()
	v = g.tilt.Step(v)

	if g.period.Position < g.period.OpenLen {
		v += g.breathinessNoise.Next() * g.state.BreathinessLin
	}

	// Unrounded float comparison on purpose (spec.md §9 open question):
	// do not simplify to integer division of Length, which would shift
	// the modulation boundary for odd period lengths.
	halfPeriod := float64(g.period.Position) >= float64(g.period.Length)/2

	var sum float64
	if g.current.Cascade.Enabled {
		voice := v * g.state.CascadeVoicingLin
		mod := 0.0
		if halfPeriod {
			mod = g.current.Cascade.AspirationMod
		}
		asp := g.cascadeAspirationNoise.Next() * g.state.CascadeAspirationLin * (1 - mod)
		sum += g.cascade.step(voice + asp)
	}
	if g.current.Parallel.Enabled {
		parVoice := v * g.state.ParallelVoicingLin
		modAsp := 0.0
		if halfPeriod {
			modAsp = g.current.Parallel.AspirationMod
		}
		asp := g.parallelAspirationNoise.Next() * g.state.ParallelAspirationLin * (1 - modAsp)
		source := parVoice + asp

		modFric := 0.0
		if halfPeriod {
			modFric = g.current.Parallel.FricationMod
		}
		fricationSample := g.fricationNoise.Next() * g.state.FricationLin * (1 - modFric)

		sum += g.parallel.step(source, fricationSample, g.state.ParallelBypassLin)
	}

	sum = g.outputLp.Step(sum)
	return sum * g.state.GainLin
}

func roundInt(x float64) int {
	if x < 0 {
		return -roundInt(-x)
	}
	return int(x + 0.5)
}
