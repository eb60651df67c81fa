// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package batchrand provides batched random sampling with one independent,
// explicitly seeded generator per environment instance.  Draws for instance i
// only ever consume instance i's generator, so an episode is reproducible from
// its seeds regardless of batch composition or call order elsewhere.
package batchrand

import (
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Batch is a set of per-instance random generators.
type Batch struct {
	Seeds []uint64 `desc:"seed of each instance's generator"`

	rngs []*rand.Rand
}

// New returns a batch with one generator per seed.
func New(seeds []uint64) *Batch {
	b := &Batch{Seeds: append([]uint64(nil), seeds...)}
	b.rngs = make([]*rand.Rand, len(seeds))
	for i, s := range seeds {
		b.rngs[i] = rand.New(rand.NewSource(s))
	}
	return b
}

// Len is the number of instances.
func (b *Batch) Len() int { return len(b.rngs) }

// Rand returns instance i's generator.
func (b *Batch) Rand(i int) *rand.Rand { return b.rngs[i] }

// Uniform draws one value per instance from [lo, hi).
func (b *Batch) Uniform(lo, hi float32) []float32 {
	res := make([]float32, len(b.rngs))
	for i, r := range b.rngs {
		d := distuv.Uniform{Min: float64(lo), Max: float64(hi), Src: r}
		res[i] = float32(d.Rand())
	}
	return res
}

// UniformN draws n values per instance from [lo, hi).
func (b *Batch) UniformN(lo, hi float32, n int) [][]float32 {
	res := make([][]float32, len(b.rngs))
	for i, r := range b.rngs {
		d := distuv.Uniform{Min: float64(lo), Max: float64(hi), Src: r}
		res[i] = make([]float32, n)
		for j := range res[i] {
			res[i][j] = float32(d.Rand())
		}
	}
	return res
}

// Normal draws n values per instance from N(mu, sigma^2).
func (b *Batch) Normal(mu, sigma float32, n int) [][]float32 {
	res := make([][]float32, len(b.rngs))
	for i, r := range b.rngs {
		d := distuv.Normal{Mu: float64(mu), Sigma: float64(sigma), Src: r}
		res[i] = make([]float32, n)
		for j := range res[i] {
			res[i][j] = float32(d.Rand())
		}
	}
	return res
}

// UniformBox draws one point per instance uniformly inside the axis-aligned box.
func (b *Batch) UniformBox(bounds []r1.Interval) [][]float32 {
	res := make([][]float32, len(b.rngs))
	for i, r := range b.rngs {
		d := distmv.NewUniform(bounds, r)
		x := d.Rand(nil)
		res[i] = make([]float32, len(x))
		for j, v := range x {
			res[i][j] = float32(v)
		}
	}
	return res
}

// UniformXY draws one point per instance inside the rectangle x by y.
func (b *Batch) UniformXY(x, y r1.Interval) []mat32.Vec2 {
	pts := b.UniformBox([]r1.Interval{x, y})
	res := make([]mat32.Vec2, len(pts))
	for i, p := range pts {
		res[i] = mat32.Vec2{p[0], p[1]}
	}
	return res
}

// Yaw draws one rotation per instance about the z axis, with angle uniform
// in [lo, hi) radians.  Roll and pitch are locked to zero.
func (b *Batch) Yaw(lo, hi float32) []mat32.Quat {
	angs := b.Uniform(lo, hi)
	res := make([]mat32.Quat, len(angs))
	for i, a := range angs {
		res[i] = mat32.NewQuatAxisAngle(mat32.Vec3{0, 0, 1}, a)
	}
	return res
}

// Subset returns a batch over the generators of the given instances.
// The generators are shared, not copied, so draws advance the parent's state.
func (b *Batch) Subset(idx []int) *Batch {
	sb := &Batch{Seeds: make([]uint64, len(idx)), rngs: make([]*rand.Rand, len(idx))}
	for i, ix := range idx {
		sb.Seeds[i] = b.Seeds[ix]
		sb.rngs[i] = b.rngs[ix]
	}
	return sb
}
