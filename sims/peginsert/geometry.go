// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"fmt"

	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/batchrand"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Clearance is added to the peg radius to size the hole
const Clearance = 0.003

// Geometry has the randomized shape parameters of every instance
type Geometry struct {
	HalfLengths []float32    `desc:"peg half length, also the box half size and depth"`
	Radii       []float32    `desc:"peg radius (half width)"`
	Centers     []mat32.Vec2 `desc:"offset of the hole center from the box center, in the box y-z plane"`
}

// SampleGeometry draws the shape parameters of each instance from that
// instance's own generator: half length, radius, then the two center
// components, each scaled by half the wall span so the hole stays inside
// the box.
func SampleGeometry(rng *batchrand.Batch, cf *Config) Geometry {
	n := rng.Len()
	g := Geometry{
		HalfLengths: rng.Uniform(cf.HalfLength.Min, cf.HalfLength.Max),
		Radii:       rng.Uniform(cf.Radius.Min, cf.Radius.Max),
		Centers:     make([]mat32.Vec2, n),
	}
	cs := rng.UniformN(-1, 1, 2)
	for i := 0; i < n; i++ {
		l, r := g.HalfLengths[i], g.Radii[i]
		if l <= r {
			panic(fmt.Sprintf("peginsert: half length %g not greater than radius %g", l, r))
		}
		s := 0.5 * (l - r)
		g.Centers[i] = mat32.Vec2{X: s * cs[i][0], Y: s * cs[i][1]}
	}
	return g
}

// Len is the number of instances
func (g *Geometry) Len() int { return len(g.HalfLengths) }

// HoleRadii is radius plus Clearance for each instance
func (g *Geometry) HoleRadii() []float32 {
	hr := make([]float32, len(g.Radii))
	for i, r := range g.Radii {
		hr[i] = r + Clearance
	}
	return hr
}

// PegHalfSizes is (half length, radius, radius) for each instance
func (g *Geometry) PegHalfSizes() []mat32.Vec3 {
	hs := make([]mat32.Vec3, len(g.Radii))
	for i, r := range g.Radii {
		hs[i] = mat32.Vec3{X: g.HalfLengths[i], Y: r, Z: r}
	}
	return hs
}

// PegHeadOffsets translate from the peg origin to its head, along peg x
func (g *Geometry) PegHeadOffsets() pose.Poses {
	ps := make(pose.Poses, len(g.HalfLengths))
	for i, l := range g.HalfLengths {
		ps[i] = pose.FromPos(l, 0, 0)
	}
	return ps
}

// BoxHoleOffsets translate from the box origin to the hole center
func (g *Geometry) BoxHoleOffsets() pose.Poses {
	ps := make(pose.Poses, len(g.Centers))
	for i, c := range g.Centers {
		ps[i] = pose.FromPos(0, c.X, c.Y)
	}
	return ps
}
