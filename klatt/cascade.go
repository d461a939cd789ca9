// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

// cascadeBranch is the series chain nasal anti-resonator -> nasal
// resonator -> up to six oral resonators (spec.md §4.6).
type cascadeBranch struct {
	nasalAnti AntiResonator
	nasal     Resonator
	oral      [MaxOralFormants]Resonator
}

// configureNasalAntiformant sets the nasal anti-resonator from a
// FormantParam, passing through when the formant is disabled
// (spec.md §4.5).
func (c *cascadeBranch) configureNasalAntiformant(fs float64, fp FormantParam) error {
	if !fp.valid() {
		c.nasalAnti.SetPassthrough()
		return nil
	}
	return c.nasalAnti.Configure(fs, fp.Freq, fp.Bw)
}

// configureNasalFormant sets the nasal resonator from a FormantParam,
// passing through when disabled (spec.md §4.5).
func (c *cascadeBranch) configureNasalFormant(fs float64, fp FormantParam) error {
	if !fp.valid() {
		c.nasal.SetPassthrough()
		return nil
	}
	return c.nasal.Configure(fs, fp.Freq, fp.Bw, 1)
}

// configureOralFormant sets oral resonator i (0-based, F1..F6) from the
// frame's formant-frequency and bandwidth arrays, passing through when
// either entry is NaN (spec.md §4.5).
func (c *cascadeBranch) configureOralFormant(fs float64, i int, freq, bw float64) error {
	fp := FormantParam{freq, bw}
	if !fp.valid() {
		c.oral[i].SetPassthrough()
		return nil
	}
	return c.oral[i].Configure(fs, freq, bw, 1)
}

// step runs one sample through the cascade chain, where in is the
// already-mixed voicing+aspiration source for this sample
// (spec.md §4.6).
func (c *cascadeBranch) step(in float64) float64 {
	out := c.nasalAnti.Step(in)
	out = c.nasal.Step(out)
	for i := range c.oral {
		out = c.oral[i].Step(out)
	}
	return out
}
