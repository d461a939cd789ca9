// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

import "math"

// FilterMode is the run mode of a primitive filter. LpFilter1, Resonator
// and AntiResonator can be switched between active filtering, passthrough
// (output = input), and muted (output = 0) without reallocating state.
// FirstDiffFilter has no mode and is always active.
type FilterMode int32

const (
	// FilterActive runs the filter's difference equation normally.
	FilterActive FilterMode = iota
	// FilterPassthrough copies input to output unfiltered.
	FilterPassthrough
	// FilterMuted always outputs 0.
	FilterMuted
)

// LpFilter1 is a first-order IIR low/high-pass: y[n] = a*x[n] + b*y[n-1].
type LpFilter1 struct {
	mode FilterMode
	a, b float64
	y1   float64
}

// SetPassthrough switches the filter to passthrough mode and zeroes its
// delay line so re-entering active mode later does not click.
func (f *LpFilter1) SetPassthrough() {
	f.mode = FilterPassthrough
	f.y1 = 0
}

// SetMuted switches the filter to muted mode and zeroes its delay line.
func (f *LpFilter1) SetMuted() {
	f.mode = FilterMuted
	f.y1 = 0
}

// Configure solves the first-order coefficients so that the filter's gain
// at frequency freq (Hz) is g, with g in (0,1), then scales the output by
// an additional linear gain extraGain. It returns an *Error of KindInvalidFilterParameter if f, g,
// or extraGain is out of range or non-finite.
func (f *LpFilter1) Configure(fs, freq, g, extraGain float64) error {
	if !isFiniteNum(freq) || freq <= 0 || freq >= fs/2 {
		return newErr(KindInvalidFilterParameter, "frequency %v out of range (0, %v)", freq, fs/2)
	}
	if !isFiniteNum(g) || g <= 0 || g >= 1 {
		return newErr(KindInvalidFilterParameter, "gain %v out of range (0, 1)", g)
	}
	if !isFiniteNum(extraGain) {
		return newErr(KindInvalidFilterParameter, "extra gain %v is not finite", extraGain)
	}
	omega := 2 * math.Pi * freq / fs
	gg := g * g
	q := (1 - gg*math.Cos(omega)) / (1 - gg)
	b := q - math.Sqrt(q*q-1)
	a := (1 - b) * extraGain
	f.a, f.b = a, b
	f.mode = FilterActive
	f.y1 = 0
	return nil
}

// Step advances the filter by one sample.
func (f *LpFilter1) Step(x float64) float64 {
	switch f.mode {
	case FilterPassthrough:
		return x
	case FilterMuted:
		return 0
	default:
		y := f.a*x + f.b*f.y1
		f.y1 = y
		return y
	}
}

// Resonator is the Klatt two-pole IIR resonator:
// y[n] = a*x[n] + b*y[n-1] + c*y[n-2].
type Resonator struct {
	mode   FilterMode
	a, b, c float64
	y1, y2 float64
}

// SetPassthrough switches the resonator to passthrough mode and zeroes
// its delay line.
func (r *Resonator) SetPassthrough() {
	r.mode = FilterPassthrough
	r.y1, r.y2 = 0, 0
}

// SetMuted switches the resonator to muted mode and zeroes its delay line.
func (r *Resonator) SetMuted() {
	r.mode = FilterMuted
	r.y1, r.y2 = 0, 0
}

// Configure sets the resonator for center frequency freq (Hz, may be 0 to
// degenerate into a one-pole low-pass), bandwidth bw (Hz, > 0), and DC
// gain dcGain. Returns *Error(KindInvalidFilterParameter) on bad input.
func (r *Resonator) Configure(fs, freq, bw, dcGain float64) error {
	if !isFiniteNum(freq) || freq < 0 || freq >= fs/2 {
		return newErr(KindInvalidFilterParameter, "frequency %v out of range [0, %v)", freq, fs/2)
	}
	if !isFiniteNum(bw) || bw <= 0 {
		return newErr(KindInvalidFilterParameter, "bandwidth %v must be positive", bw)
	}
	if !isFiniteNum(dcGain) || dcGain <= 0 {
		return newErr(KindInvalidFilterParameter, "dc gain %v must be positive", dcGain)
	}
	rr := math.Exp(-math.Pi * bw / fs)
	omega := 2 * math.Pi * freq / fs
	b := 2 * rr * math.Cos(omega)
	c := -rr * rr
	a := (1 - b - c) * dcGain
	r.a, r.b, r.c = a, b, c
	r.mode = FilterActive
	r.y1, r.y2 = 0, 0
	return nil
}

// AdjustImpulseGain overrides the feed-forward coefficient directly,
// leaving b and c untouched. Used to drive the resonator as an
// impulse-response glottal source.
func (r *Resonator) AdjustImpulseGain(newA float64) {
	r.a = newA
}

// AdjustPeakGain sets the feed-forward coefficient so that the
// resonator's peak gain (at its center frequency) equals p. Returns
// *Error(KindInvalidPeakGain) if p is non-positive or non-finite.
func (r *Resonator) AdjustPeakGain(p float64) error {
	if !isFiniteNum(p) || p <= 0 {
		return newErr(KindInvalidPeakGain, "peak gain %v must be positive", p)
	}
	rr := math.Sqrt(-r.c)
	r.a = p * (1 - rr)
	return nil
}

// Step advances the resonator by one sample.
func (r *Resonator) Step(x float64) float64 {
	switch r.mode {
	case FilterPassthrough:
		return x
	case FilterMuted:
		return 0
	default:
		y := r.a*x + r.b*r.y1 + r.c*r.y2
		r.y2 = r.y1
		r.y1 = y
		return y
	}
}

// AntiResonator is the Klatt two-zero FIR anti-resonator:
// y[n] = a*x[n] + b*x[n-1] + c*x[n-2].
type AntiResonator struct {
	mode   FilterMode
	a, b, c float64
	x1, x2 float64
}

// SetPassthrough switches the anti-resonator to passthrough mode and
// zeroes its delay line.
func (r *AntiResonator) SetPassthrough() {
	r.mode = FilterPassthrough
	r.x1, r.x2 = 0, 0
}

// SetMuted switches the anti-resonator to muted mode and zeroes its
// delay line.
func (r *AntiResonator) SetMuted() {
	r.mode = FilterMuted
	r.x1, r.x2 = 0, 0
}

// Configure sets the anti-resonator to place a zero pair at (freq, bw),
// the same way a Resonator places a pole pair, then inverts the
// resulting FIR so that it cancels a Resonator configured identically.
// If the inversion is degenerate (a0 == 0) the filter emits zero for
// every input while still reporting success, matching the original
// reference's degenerate-filter behavior.
func (r *AntiResonator) Configure(fs, freq, bw float64) error {
	if !isFiniteNum(freq) || freq < 0 || freq >= fs/2 {
		return newErr(KindInvalidFilterParameter, "frequency %v out of range [0, %v)", freq, fs/2)
	}
	if !isFiniteNum(bw) || bw <= 0 {
		return newErr(KindInvalidFilterParameter, "bandwidth %v must be positive", bw)
	}
	rr := math.Exp(-math.Pi * bw / fs)
	omega := 2 * math.Pi * freq / fs
	b0 := 2 * rr * math.Cos(omega)
	c0 := -rr * rr
	a0 := 1 - b0 - c0
	r.mode = FilterActive
	r.x1, r.x2 = 0, 0
	if a0 == 0 {
		r.a, r.b, r.c = 0, 0, 0
		return nil
	}
	r.a = 1 / a0
	r.b = -b0 / a0
	r.c = -c0 / a0
	return nil
}

// Step advances the anti-resonator by one sample.
func (r *AntiResonator) Step(x float64) float64 {
	switch r.mode {
	case FilterPassthrough:
		return x
	case FilterMuted:
		return 0
	default:
		y := r.a*x + r.b*r.x1 + r.c*r.x2
		r.x2 = r.x1
		r.x1 = x
		return y
	}
}

// FirstDiffFilter is a first-difference high-pass: y[n] = x[n] - x[n-1].
// It carries no passthrough/muted mode of its own in the reference
// design — it is always active, with a single sample of delay state.
type FirstDiffFilter struct {
	x1 float64
}

// Reset zeroes the delay line.
func (f *FirstDiffFilter) Reset() {
	f.x1 = 0
}

// Step advances the filter by one sample.
func (f *FirstDiffFilter) Step(x float64) float64 {
	y := x - f.x1
	f.x1 = x
	return y
}

func isFiniteNum(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
