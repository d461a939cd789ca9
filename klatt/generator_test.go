// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func steadyVowelFrame() FrameParams {
	fp := DefaultFrameParams()
	fp.Duration = 1.0
	fp.F0 = 247
	fp.FlutterLevel = 0.25
	fp.OpenPhaseRatio = 0.7
	fp.BreathinessDb = -25
	fp.TiltDb = 0
	fp.GainDb = 0
	fp.Cascade.Enabled = true
	fp.Cascade.VoicingDb = 0
	fp.Cascade.AspirationDb = -25
	fp.Cascade.AspirationMod = 0.5
	fp.Parallel.Enabled = false
	freqs := [MaxOralFormants]float64{520, 1006, 2831, 3168, 4135, 5020}
	bws := [MaxOralFormants]float64{76, 102, 72, 102, 816, 596}
	fp.OralFormantFreq = freqs
	fp.OralFormantBw = bws
	return fp
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	mp := MainParams{SampleRate: 44100, GlottalKind: GlottalImpulsive}
	g, err := New(mp, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

// Testable Property 1: with gainDb <= -99, every output sample is 0.
func TestMutedSilence(t *testing.T) {
	g := newTestGenerator(t)
	fp := steadyVowelFrame()
	fp.GainDb = -99
	out := make([]float64, 4410)
	err := g.GenerateFrame(&fp, out)
	assert.NoError(t, err)
	for _, s := range out {
		assert.Zero(t, s)
	}
}

// Testable Property 2: generate_sound returns exactly
// sum(round(duration_i * fs)) samples.
func TestGenerateSoundOutputLength(t *testing.T) {
	mp := MainParams{SampleRate: 44100, GlottalKind: GlottalImpulsive}
	durations := []float64{0.3, 0.15, 0.55}
	frames := make([]*FrameParams, len(durations))
	expected := 0
	for i, d := range durations {
		fp := steadyVowelFrame()
		fp.Duration = d
		frames[i] = &fp
		expected += roundInt(d * 44100)
	}
	out, err := GenerateSound(mp, frames, rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
	assert.Len(t, out, expected)
}

// Testable Property 7: cascade-only and parallel-only outputs differ.
func TestCascadeVsParallelDiffer(t *testing.T) {
	base := steadyVowelFrame()

	cascadeOnly := base
	cascadeOnly.Cascade.Enabled = true
	cascadeOnly.Parallel.Enabled = false

	parallelOnly := base
	parallelOnly.Cascade.Enabled = false
	parallelOnly.Parallel.Enabled = true
	parallelOnly.Parallel.VoicingDb = 0
	parallelOnly.Parallel.AspirationDb = -25
	parallelOnly.Parallel.AspirationMod = 0.5
	parallelOnly.Parallel.FricationDb = -20
	parallelOnly.Parallel.BypassDb = -20
	for i := range parallelOnly.Parallel.OralFormantDb {
		parallelOnly.Parallel.OralFormantDb[i] = 0
	}
	parallelOnly.Parallel.NasalFormantDb = -99

	g1 := newTestGenerator(t)
	out1 := make([]float64, 4410)
	assert.NoError(t, g1.GenerateFrame(&cascadeOnly, out1))

	g2 := newTestGenerator(t)
	out2 := make([]float64, 4410)
	assert.NoError(t, g2.GenerateFrame(&parallelOnly, out2))

	var diff float64
	for i := range out1 {
		diff += math.Abs(out1[i] - out2[i])
	}
	assert.Greater(t, diff, 0.0)
}

// Scenario E: generate_frame called twice with the same FrameParams
// instance fails with ErrReusedFrameParams and writes nothing further.
func TestReusedFrameParamsError(t *testing.T) {
	g := newTestGenerator(t)
	fp := steadyVowelFrame()
	out := make([]float64, 100)
	assert.NoError(t, g.GenerateFrame(&fp, out))

	out2 := make([]float64, 100)
	for i := range out2 {
		out2[i] = -999
	}
	err := g.GenerateFrame(&fp, out2)
	assert.ErrorIs(t, err, ErrReusedFrameParams)
	for _, s := range out2 {
		assert.Equal(t, -999.0, s)
	}
}

// Scenario A: steady vowel. Checks sample count and that the RMS is
// non-zero and below a loose sanity bound of 2.
func TestScenarioASteadyVowel(t *testing.T) {
	mp := MainParams{SampleRate: 44100, GlottalKind: GlottalImpulsive}
	fp := steadyVowelFrame()
	out, err := GenerateSound(mp, []*FrameParams{&fp}, rand.New(rand.NewSource(9)))
	assert.NoError(t, err)
	assert.Len(t, out, 44100)

	sq := make([]float64, len(out))
	for i, s := range out {
		sq[i] = s * s
	}
	r := math.Sqrt(stat.Mean(sq, nil))
	assert.Greater(t, r, 0.0)
	assert.Less(t, r, 2.0) // sanity bound; gain_lin = 1 at 0 dB, unclamped
}

// Scenario B: unvoiced frication. Non-zero broadband output with no
// periodic glottal pulses (F0 = 0).
func TestScenarioBUnvoicedFrication(t *testing.T) {
	mp := MainParams{SampleRate: 44100, GlottalKind: GlottalImpulsive}
	fp := DefaultFrameParams()
	fp.Duration = 0.2
	fp.F0 = 0
	fp.GainDb = 0
	fp.Parallel.Enabled = true
	fp.Parallel.FricationDb = -10
	fp.Parallel.BypassDb = -20
	fp.Parallel.VoicingDb = -99
	fp.Parallel.AspirationDb = -99
	fp.Cascade.VoicingDb = -99
	fp.Cascade.AspirationDb = -99
	freqs := [MaxOralFormants]float64{520, 1006, 2831, 3168, 4135, 5020}
	bws := [MaxOralFormants]float64{76, 102, 72, 102, 816, 596}
	fp.OralFormantFreq = freqs
	fp.OralFormantBw = bws
	for i := range fp.Parallel.OralFormantDb {
		fp.Parallel.OralFormantDb[i] = 0
	}

	out, err := GenerateSound(mp, []*FrameParams{&fp}, rand.New(rand.NewSource(3)))
	assert.NoError(t, err)

	var energy float64
	for _, s := range out {
		energy += s * s
	}
	assert.Greater(t, energy, 0.0)
}

// Scenario C: natural source yields the same number of samples as the
// impulsive source but differs sample-by-sample.
func TestScenarioCNaturalDiffersFromImpulsive(t *testing.T) {
	fpImpulsive := steadyVowelFrame()
	fpImpulsive.Duration = 0.1
	fpNatural := fpImpulsive

	mpImpulsive := MainParams{SampleRate: 44100, GlottalKind: GlottalImpulsive}
	mpNatural := MainParams{SampleRate: 44100, GlottalKind: GlottalNatural}

	outImpulsive, err := GenerateSound(mpImpulsive, []*FrameParams{&fpImpulsive}, rand.New(rand.NewSource(5)))
	assert.NoError(t, err)
	outNatural, err := GenerateSound(mpNatural, []*FrameParams{&fpNatural}, rand.New(rand.NewSource(5)))
	assert.NoError(t, err)

	assert.Equal(t, len(outImpulsive), len(outNatural))

	differs := false
	for i := range outImpulsive {
		if outImpulsive[i] != outNatural[i] {
			differs = true
			break
		}
	}
	assert.True(t, differs)
}

// Testable Property 4: a parameter change submitted mid-period has no
// audible effect until the next period boundary. Two generators seeded
// identically and fed identical FrameParams values draw noise in lock
// step regardless of formant frequency, so the run that receives a
// formant shift partway through a period must stay sample-for-sample
// identical to the unchanged run until that period ends, then diverge.
func TestParameterChangeTakesEffectAtPeriodBoundary(t *testing.T) {
	const fsInt = 44100
	const fs = float64(fsInt)
	const f0 = 200.0
	period := roundInt(fs / f0)

	frameA := steadyVowelFrame()
	frameA.F0 = f0
	frameA.FlutterLevel = 0 // deterministic period length
	frameB := frameA
	frameB.OralFormantFreq[0] += 200

	total := period * 5
	switchAt := period*2 + period/3 // strictly inside the third period
	nextBoundary := ((switchAt / period) + 1) * period

	mp := MainParams{SampleRate: fsInt, GlottalKind: GlottalImpulsive}

	control, err := New(mp, rand.New(rand.NewSource(23)))
	assert.NoError(t, err)
	outControl := make([]float64, total)
	assert.NoError(t, control.GenerateFrame(&frameA, outControl))

	switched, err := New(mp, rand.New(rand.NewSource(23)))
	assert.NoError(t, err)
	out := make([]float64, total)
	assert.NoError(t, switched.GenerateFrame(&frameA, out[:switchAt]))
	assert.NoError(t, switched.GenerateFrame(&frameB, out[switchAt:]))

	preDist := floats.Distance(outControl[:nextBoundary], out[:nextBoundary], 2)
	assert.Zero(t, preDist, "output before the next period boundary must be unaffected by the pending change")

	postDist := floats.Distance(outControl[nextBoundary:], out[nextBoundary:], 2)
	assert.Greater(t, postDist, 0.0, "output after the boundary must reflect the new formant frequency")
}

// Scenario D: muting the parallel nasal formant zeroes its contribution,
// matching an otherwise-identical config with the nasal formant disabled
// entirely.
func TestScenarioDMutedNasal(t *testing.T) {
	base := DefaultFrameParams()
	base.Duration = 0.1
	base.F0 = 150
	base.GainDb = 0
	base.Parallel.Enabled = true
	base.Parallel.VoicingDb = 0
	base.NasalFormant = FormantParam{Freq: 400, Bw: 80}
	freqs := [MaxOralFormants]float64{520, 1006, 2831, 3168, 4135, 5020}
	bws := [MaxOralFormants]float64{76, 102, 72, 102, 816, 596}
	base.OralFormantFreq = freqs
	base.OralFormantBw = bws
	for i := range base.Parallel.OralFormantDb {
		base.Parallel.OralFormantDb[i] = 0
	}

	muted := base
	muted.Parallel.NasalFormantDb = -99

	disabled := base
	disabled.NasalFormant = FormantParam{Freq: math.NaN(), Bw: math.NaN()}
	disabled.Parallel.NasalFormantDb = 0

	mp := MainParams{SampleRate: 44100, GlottalKind: GlottalImpulsive}
	outMuted, err := GenerateSound(mp, []*FrameParams{&muted}, rand.New(rand.NewSource(11)))
	assert.NoError(t, err)
	outDisabled, err := GenerateSound(mp, []*FrameParams{&disabled}, rand.New(rand.NewSource(11)))
	assert.NoError(t, err)

	assert.Equal(t, outMuted, outDisabled)
}
