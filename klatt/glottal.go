// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klatt

// GlottalSourceKind selects which glottal flow model a Generator uses.
type GlottalSourceKind int32

const (
	// GlottalImpulsive drives a resonator-as-low-pass with a band-limited
	// doublet each period (spec.md §4.3).
	GlottalImpulsive GlottalSourceKind = iota
	// GlottalNatural uses the KLGLOTT88 polynomial glottal flow model.
	GlottalNatural
	// GlottalNoise emits raw white noise as the "glottal" source.
	GlottalNoise
)

func (k GlottalSourceKind) String() string {
	switch k {
	case GlottalImpulsive:
		return "impulsive"
	case GlottalNatural:
		return "natural"
	case GlottalNoise:
		return "noise"
	default:
		return "unknown"
	}
}

// glottalSource is the tagged-union glottal waveform generator. Exactly
// one concrete variant is selected at Generator construction time and
// reused for the generator's whole lifetime (spec.md §9, design note on
// glottal source dispatch).
type glottalSource struct {
	kind GlottalSourceKind
	fs   float64
	rng  *NoiseSource

	// impulsive
	impulse Resonator

	// natural (KLGLOTT88)
	amplification float64
	b2, a1, x      float64
	openLen        int

	// shared
	pos int
}

func newGlottalSource(kind GlottalSourceKind, fs float64, rng *NoiseSource) (*glottalSource, error) {
	switch kind {
	case GlottalImpulsive, GlottalNatural, GlottalNoise:
	default:
		return nil, newErr(KindUnknownGlottalSource, "kind %v", kind)
	}
	return &glottalSource{kind: kind, fs: fs, rng: rng, amplification: 5}, nil
}

// startPeriod re-initializes the glottal source for a new pitch period of
// the given open-phase length, in samples.
func (g *glottalSource) startPeriod(openPhaseLength int) {
	g.pos = 0
	g.openLen = openPhaseLength
	switch g.kind {
	case GlottalImpulsive:
		if openPhaseLength <= 0 {
			g.impulse.SetMuted()
			return
		}
		bw := g.fs / float64(openPhaseLength)
		_ = g.impulse.Configure(g.fs, 0, bw, 1)
		g.impulse.AdjustImpulseGain(1)
	case GlottalNatural:
		t := float64(openPhaseLength)
		if t <= 0 {
			g.b2, g.a1, g.x = 0, 0, 0
			return
		}
		g.b2 = -g.amplification / (t * t)
		g.a1 = -g.b2 * t / 3
		g.x = 0
	case GlottalNoise:
		// stateless between periods
	}
}

// next advances the glottal source by one sample.
func (g *glottalSource) next() float64 {
	switch g.kind {
	case GlottalImpulsive:
		if g.openLen <= 0 {
			g.pos++
			return 0
		}
		var in float64
		switch g.pos {
		case 0:
			in = 0
		case 1:
			in = 1
		case 2:
			in = -1
		default:
			in = 0
		}
		g.pos++
		return g.impulse.Step(in)
	case GlottalNatural:
		var out float64
		if g.pos < g.openLen {
			g.a1 += g.b2
			g.x += g.a1
			out = g.x
		} else {
			out = 0
		}
		g.pos++
		return out
	case GlottalNoise:
		g.pos++
		return g.rng.Next()
	default:
		return 0
	}
}
