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

// Testable Property 3: for constant FrameParams with flutterLevel = 0,
// the first period boundary occurs at sample index round(fs/f0); the
// second at 2*round(fs/f0); etc.
func TestPeriodSchedulingNoFlutter(t *testing.T) {
	const fs = 44100.0
	const f0 = 220.0
	expectedLen := int(math.Round(fs / f0))

	abs := 0
	for i := 0; i < 10; i++ {
		_, length, _ := computePeriod(fs, f0, 0, 0.7, abs, 0.5)
		assert.Equal(t, expectedLen, length)
		abs += length
	}
}

func TestPeriodLengthAlwaysPositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fs := rapid.Float64Range(8000, 48000).Draw(t, "fs")
		f0 := rapid.Float64Range(0, 600).Draw(t, "f0")
		flutter := rapid.Float64Range(0, 1).Draw(t, "flutter")
		ratio := rapid.Float64Range(0.01, 0.99).Draw(t, "ratio")
		abs := rapid.IntRange(0, 1000000).Draw(t, "abs")
		offset := rapid.Float64Range(0, 1000).Draw(t, "offset")

		f0Mod, length, openLen := computePeriod(fs, f0, flutter, ratio, abs, offset)
		assert.GreaterOrEqual(t, length, 1)
		assert.GreaterOrEqual(t, openLen, 0)
		assert.LessOrEqual(t, openLen, length)
		if f0 == 0 {
			assert.Equal(t, 1, length)
			assert.Equal(t, 0, openLen)
		}
		_ = f0Mod
	})
}

func TestUnvoicedForcesUnitPeriod(t *testing.T) {
	_, length, openLen := computePeriod(44100, 0, 0, 0.7, 0, 0)
	assert.Equal(t, 1, length)
	assert.Equal(t, 0, openLen)
}
