// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

import (
	"math"
	"math/rand"
)

// NoiseSource is a uniform white noise generator, sample in [-1, 1). The
// asymmetry of a half-open interval is the reference behavior and is
// tolerated rather than corrected (spec.md §4.2).
type NoiseSource struct {
	rng *rand.Rand
}

// NewNoiseSource builds a noise source driven by rng. A nil rng falls
// back to a process-global source, matching the ambient PRNG the
// original design used; callers that want determinism should always
// pass a seeded *rand.Rand (spec.md §9, design note on randomness).
func NewNoiseSource(rng *rand.Rand) *NoiseSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &NoiseSource{rng: rng}
}

// Next returns one uniform sample in [-1, 1).
func (n *NoiseSource) Next() float64 {
	return n.rng.Float64()*2 - 1
}

// LpNoiseSource pipes white noise through an LpFilter1 plus an empirical
// amplitude compensation so its output RMS stays comparable across
// sample rates (spec.md §4.2, Testable Property F). The filter's pole is
// retargeted per sample rate (see targetPoleForFs) rather than held at a
// single fixed value, since the compensation term alone does not cancel
// the pole's own sample-rate dependence (see targetPoleForFs).
type LpNoiseSource struct {
	noise   *NoiseSource
	filter  LpFilter1
	ampComp float64
}

// NewLpNoiseSource builds a low-pass-filtered noise source for the given
// sample rate, driven by rng (see NewNoiseSource for the nil-rng rule).
func NewLpNoiseSource(fs float64, rng *rand.Rand) *LpNoiseSource {
	s := &LpNoiseSource{noise: NewNoiseSource(rng)}
	const refFreq = 1000.0
	b := targetPoleForFs(fs)
	g := lpGainFromB(b, refFreq, fs)
	if err := s.filter.Configure(fs, refFreq, g, 1); err != nil {
		// refFreq/b are constructed to keep g in (0,1) for any fs; this
		// fails only when fs <= 2*refFreq. New does not reject such
		// sample rates, so the noise is then passed through unfiltered.
		s.filter.SetPassthrough()
	}
	s.ampComp = 2.5 * math.Pow(fs/10000.0, 1.0/3.0)
	return s
}

// targetPoleForFs returns the LpFilter1 pole b that, combined with
// ampComp = 2.5*(fs/10000)^(1/3), keeps this source's steady-state output
// RMS approximately constant across sample rates.
//
// For white input of variance σ², an AR(1) y[n] = a*x[n] + b*y[n-1] with
// a = 1-b has steady-state Var(y) = σ²(1-b)/(1+b) (independent of fs).
// The reference design (b = 0.75 at fs = 10000 Hz, 1 kHz corner) fixes
// the target RMS; since holding b constant would leave ampComp's own
// fs-dependent growth uncompensated, b must grow toward 1 as fs grows
// to cancel it:
//
//	ampComp(fs) * sqrt((1-b)/(1+b)) == ampComp(refFs) * sqrt((1-refB)/(1+refB))
//
// Solving for b given ampComp's definition yields the closed form below.
func targetPoleForFs(fs float64) float64 {
	const refFs = 10000.0
	const refB = 0.75
	k := math.Pow(refFs/fs, 2.0/3.0) * (1 - refB) / (1 + refB)
	return (1 - k) / (1 + k)
}

// Next returns one low-pass-filtered noise sample.
func (s *LpNoiseSource) Next() float64 {
	return s.filter.Step(s.noise.Next()) * s.ampComp
}

// lpGainFromB inverts LpFilter1's b = q - sqrt(q^2-1) solve to recover
// the g parameter that reproduces a known b at a known (freq, fs).
func lpGainFromB(b, freq, fs float64) float64 {
	omega := 2 * math.Pi * freq / fs
	// b = q - sqrt(q^2-1)  =>  q = (b^2+1)/(2b)
	q := (b*b + 1) / (2 * b)
	// q = (1 - g^2*cos(omega)) / (1 - g^2)  =>  solve for g^2:
	//   q*(1-g^2) = 1 - g^2*cos(omega)
	//   g^2*(cos(omega) - q) = 1 - q
	cosw := math.Cos(omega)
	g2 := (1 - q) / (cosw - q)
	return math.Sqrt(g2)
}
