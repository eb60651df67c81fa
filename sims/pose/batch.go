// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pose

import (
	"fmt"

	"github.com/goki/mat32"
)

// Poses is a batch of transforms, one per environment instance.
// Batched operations act elementwise; a batch of length 1 broadcasts
// against any other length.
type Poses []Pose

// Repeat returns n copies of p.
func Repeat(p Pose, n int) Poses {
	ps := make(Poses, n)
	for i := range ps {
		ps[i] = p
	}
	return ps
}

// FromPositions returns pure translations.
func FromPositions(pos []mat32.Vec3) Poses {
	ps := make(Poses, len(pos))
	for i, p := range pos {
		ps[i] = Pose{Pos: p, Quat: IdentityQuat()}
	}
	return ps
}

// batchLen returns the broadcast length of a and b, panicking on mismatch.
func batchLen(a, b int) int {
	switch {
	case a == b:
		return a
	case a == 1:
		return b
	case b == 1:
		return a
	}
	panic(fmt.Sprintf("pose: batch size mismatch: %d vs %d", a, b))
}

func at(ps Poses, i int) Pose {
	if len(ps) == 1 {
		return ps[0]
	}
	return ps[i]
}

// Mul composes ps with os elementwise.
func (ps Poses) Mul(os Poses) Poses {
	n := batchLen(len(ps), len(os))
	res := make(Poses, n)
	for i := range res {
		res[i] = at(ps, i).Mul(at(os, i))
	}
	return res
}

// Inv inverts each transform.
func (ps Poses) Inv() Poses {
	res := make(Poses, len(ps))
	for i, p := range ps {
		res[i] = p.Inv()
	}
	return res
}

// Positions returns the translation of each transform.
func (ps Poses) Positions() []mat32.Vec3 {
	res := make([]mat32.Vec3, len(ps))
	for i, p := range ps {
		res[i] = p.Pos
	}
	return res
}

// Gather returns the transforms at the given indexes.
func (ps Poses) Gather(idx []int) Poses {
	res := make(Poses, len(idx))
	for i, ix := range idx {
		res[i] = ps[ix]
	}
	return res
}

// Raw flattens the batch into len(ps) * RawLen values, row-major.
func (ps Poses) Raw() []float32 {
	res := make([]float32, 0, len(ps)*RawLen)
	for _, p := range ps {
		r := p.Raw()
		res = append(res, r[:]...)
	}
	return res
}
