// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// Testable Property 8: dB conversion.
func TestDbToLin(t *testing.T) {
	assert.Equal(t, 1.0, dbToLin(0))
	assert.InDelta(t, 0.1, dbToLin(-20), 1e-12)
	assert.Equal(t, 0.0, dbToLin(-99))
	assert.Equal(t, 0.0, dbToLin(math.NaN()))
}

func TestDbToLinThreshold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := rapid.Float64Range(-98.999, 40).Draw(t, "d")
		assert.Greater(t, dbToLin(d), 0.0)
	})
	rapid.Check(t, func(t *rapid.T) {
		d := rapid.Float64Range(-1e6, -99).Draw(t, "d")
		assert.Zero(t, dbToLin(d))
	})
}

func TestDefaultFrameParamsIsSilent(t *testing.T) {
	fp := DefaultFrameParams()
	assert.Zero(t, dbToLin(fp.GainDb))
	assert.False(t, fp.Cascade.Enabled)
	assert.False(t, fp.Parallel.Enabled)
	assert.Zero(t, fp.F0)
	for i := 0; i < MaxOralFormants; i++ {
		assert.True(t, math.IsNaN(fp.OralFormantFreq[i]))
		assert.True(t, math.IsNaN(fp.OralFormantBw[i]))
	}
}

func TestFormantParamValid(t *testing.T) {
	assert.True(t, FormantParam{500, 60}.valid())
	assert.False(t, FormantParam{math.NaN(), 60}.valid())
	assert.False(t, FormantParam{500, math.NaN()}.valid())
	assert.False(t, FormantParam{0, 60}.valid())
	assert.False(t, FormantParam{500, 0}.valid())
}
