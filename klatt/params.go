// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

import "math"

// MaxOralFormants is the fixed size of the oral formant arrays carried by
// a FrameParams (spec.md §6).
const MaxOralFormants = 6

// MainParams configures a Generator for its whole lifetime.
type MainParams struct {
	SampleRate  int               // Hz, e.g. 8000-48000
	GlottalKind GlottalSourceKind // impulsive, natural, or noise
}

// DefaultMainParams returns a generic 44.1kHz, impulsive-source
// configuration for a caller to mutate, mirroring the teacher's
// ubiquitous Defaults() convention (spec.md §11).
func DefaultMainParams() MainParams {
	return MainParams{SampleRate: 44100, GlottalKind: GlottalImpulsive}
}

// FormantParam is a (frequency, bandwidth) pair. NaN in either field is
// the sentinel for "this formant is disabled" (spec.md §3, §6).
type FormantParam struct {
	Freq float64
	Bw   float64
}

// valid reports whether both Freq and Bw are finite, non-NaN, and
// non-zero ("truthy finite" in spec.md §4.5).
func (f FormantParam) valid() bool {
	return isFiniteNum(f.Freq) && f.Freq != 0 && isFiniteNum(f.Bw) && f.Bw != 0
}

// CascadeParams is the per-frame cascade-branch configuration
// (spec.md §3, §4.6).
type CascadeParams struct {
	Enabled          bool
	VoicingDb        float64
	AspirationDb     float64
	AspirationMod    float64 // in [0,1]
	NasalAntiformant FormantParam
}

// ParallelParams is the per-frame parallel-branch configuration
// (spec.md §3, §4.7).
type ParallelParams struct {
	Enabled       bool
	VoicingDb     float64
	AspirationDb  float64
	AspirationMod float64 // in [0,1]
	FricationDb   float64
	FricationMod  float64 // in [0,1]
	BypassDb      float64
	NasalFormantDb float64
	OralFormantDb  [MaxOralFormants]float64
}

// FrameParams is one immutable frame of input. A given FrameParams value
// must not be passed to (*Generator).GenerateFrame twice in a row
// (spec.md §3, §7 KindReusedFrameParams).
type FrameParams struct {
	Duration      float64 // seconds; ignored by GenerateFrame, used by GenerateSound
	F0            float64 // Hz; 0 means unvoiced
	FlutterLevel  float64 // [0,1]
	OpenPhaseRatio float64 // (0,1)
	BreathinessDb float64
	TiltDb        float64
	GainDb        float64 // NaN means "unset"; see DefaultFrameParams

	NasalFormant     FormantParam
	OralFormantFreq  [MaxOralFormants]float64
	OralFormantBw    [MaxOralFormants]float64

	Cascade  CascadeParams
	Parallel ParallelParams
}

// DefaultFrameParams returns a silent, unvoiced frame: F0 = 0,
// both branches disabled, every formant a NaN sentinel. Callers fill in
// the fields their scenario needs, mirroring the teacher's Defaults()
// convention (spec.md §11).
func DefaultFrameParams() FrameParams {
	fp := FrameParams{
		Duration:       0,
		F0:             0,
		FlutterLevel:   0,
		OpenPhaseRatio: 0.7,
		BreathinessDb:  math.NaN(),
		TiltDb:         math.NaN(),
		GainDb:         math.NaN(),
		NasalFormant:   FormantParam{math.NaN(), math.NaN()},
	}
	for i := range fp.OralFormantFreq {
		fp.OralFormantFreq[i] = math.NaN()
		fp.OralFormantBw[i] = math.NaN()
		fp.Parallel.OralFormantDb[i] = math.NaN()
	}
	fp.Cascade.NasalAntiformant = FormantParam{math.NaN(), math.NaN()}
	fp.Cascade.AspirationDb = math.NaN()
	fp.Cascade.VoicingDb = math.NaN()
	fp.Parallel.AspirationDb = math.NaN()
	fp.Parallel.VoicingDb = math.NaN()
	fp.Parallel.FricationDb = math.NaN()
	fp.Parallel.BypassDb = math.NaN()
	fp.Parallel.NasalFormantDb = math.NaN()
	return fp
}

// dbToLin converts a decibel value to a linear gain. d <= -99 or NaN
// maps to 0 (spec.md §4.5, Testable Property 8).
func dbToLin(d float64) float64 {
	if math.IsNaN(d) || d <= -99 {
		return 0
	}
	return math.Pow(10, d/20)
}

// FrameState is the derived, period-synchronous state a Generator
// refreshes from FrameParams at every period boundary (spec.md §3).
type FrameState struct {
	BreathinessLin       float64
	GainLin              float64
	CascadeVoicingLin    float64
	CascadeAspirationLin float64
	ParallelVoicingLin   float64
	ParallelAspirationLin float64
	FricationLin         float64
	ParallelBypassLin    float64
}
