// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

import "math"

// PeriodState is the per-pitch-period derived state a Generator carries
// between period boundaries (spec.md §3).
type PeriodState struct {
	F0Mod     float64 // modulated F0, Hz
	Length    int     // period length, samples; >= 1
	OpenLen   int     // open-phase length, samples; 0 <= OpenLen <= Length
	Position  int     // 0-based sample index within the current period
}

// flutter computes the flutter-modulated F0 for a given flutter "time"
// (elapsed seconds since generator construction, including the
// generator's fixed random offset) and flutter level (spec.md §4.4).
func flutter(f0, flutterLevel, t float64) float64 {
	if flutterLevel <= 0 {
		return f0
	}
	delta := flutterLevel / 50 * (math.Sin(2*math.Pi*12.7*t) +
		math.Sin(2*math.Pi*7.1*t) +
		math.Sin(2*math.Pi*4.7*t))
	return f0 * (1 + delta)
}

// computePeriod derives the modulated F0, period length, and open-phase
// length for the start of a new period, given the absolute sample
// position at which the period begins (spec.md §4.4, §3 invariants).
func computePeriod(fs float64, f0, flutterLevel, openPhaseRatio float64, absPosition int, flutterOffset float64) (f0Mod float64, length, openLen int) {
	t := float64(absPosition)/fs + flutterOffset
	f0Mod = flutter(f0, flutterLevel, t)
	if f0Mod > 0 {
		length = int(math.Round(fs / f0Mod))
	} else {
		length = 1
	}
	if length < 1 {
		length = 1
	}
	if length > 1 {
		openLen = int(math.Round(float64(length) * openPhaseRatio))
	} else {
		openLen = 0
	}
	if openLen < 0 {
		openLen = 0
	}
	if openLen > length {
		openLen = length
	}
	return f0Mod, length, openLen
}
