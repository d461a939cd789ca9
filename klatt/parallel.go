// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

import "math"

// parallelBranch is the first-difference-plus-frication-fed bank of six
// oral resonators, a nasal resonator, and a bypass path (spec.md §4.7).
type parallelBranch struct {
	diff  FirstDiffFilter
	nasal Resonator
	oral  [MaxOralFormants]Resonator
}

// configureNasalFormant sets the parallel nasal resonator's peak gain
// from (freq, bw, db); mutes it if any of the three yields zero
// (spec.md §4.5).
func (p *parallelBranch) configureNasalFormant(fs float64, fp FormantParam, db float64) error {
	gain := dbToLin(db)
	if !fp.valid() || gain == 0 {
		p.nasal.SetMuted()
		return nil
	}
	if err := p.nasal.Configure(fs, fp.Freq, fp.Bw, 1); err != nil {
		return err
	}
	return p.nasal.AdjustPeakGain(gain)
}

// configureOralFormant sets parallel oral resonator i (0-based, F1..F6)
// from (freq, bw, db). F1 (i==0) gets peak gain db_to_lin(db) directly;
// F2..F6 are compensated for the preceding differencing filter by
// dividing by diff_gain = sqrt(2 - 2*cos(omega)) (spec.md §4.5).
func (p *parallelBranch) configureOralFormant(fs float64, i int, freq, bw, db float64) error {
	gain := dbToLin(db)
	fp := FormantParam{freq, bw}
	if !fp.valid() || gain == 0 {
		p.oral[i].SetMuted()
		return nil
	}
	if err := p.oral[i].Configure(fs, freq, bw, 1); err != nil {
		return err
	}
	if i == 0 {
		return p.oral[i].AdjustPeakGain(gain)
	}
	omega := 2 * math.Pi * freq / fs
	diffGain := math.Sqrt(2 - 2*math.Cos(omega))
	return p.oral[i].AdjustPeakGain(gain / diffGain)
}

// step runs one sample through the parallel branch. source is the
// unfiltered par-voice+aspiration sum (fed to the nasal resonator and
// F1 directly); frication is the already-gain-and-modulation-scaled
// frication noise sample; bypassLin is the linear bypass gain. Returns
// the branch's summed output (spec.md §4.7).
func (p *parallelBranch) step(source, frication, bypassLin float64) float64 {
	diffOut := p.diff.Step(source)
	source2 := diffOut + frication

	// nasal and F1 see the unfiltered source (spec.md §4.7 rationale:
	// preserves low-frequency energy); F2..F6 and bypass see the
	// differenced-plus-fricated source2.
	out := p.nasal.Step(source) + p.oral[0].Step(source)
	for i := 1; i < MaxOralFormants; i++ {
		sign := 1.0
		if i%2 == 0 {
			sign = -1.0
		}
		out += sign * p.oral[i].Step(source2)
	}
	out += bypassLin * source2
	return out
}
