// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

// MouthTol is how far short of the hole center, along the hole axis, the
// head may stop and still count as inserted
const MouthTol = 0.015

// Info is the per-instance evaluation
type Info struct {
	Success          []bool       `desc:"peg head is inside the hole"`
	PegHeadPosAtHole []mat32.Vec3 `desc:"peg head position in the hole frame: x along the hole axis, y and z lateral"`
}

// NumSuccess counts successful instances
func (in *Info) NumSuccess() int {
	n := 0
	for _, s := range in.Success {
		if s {
			n++
		}
	}
	return n
}

// HasPegInserted expresses each head in its hole frame and tests it
// against the hole: x >= -MouthTol and |y|, |z| <= hole radius.
func HasPegInserted(hole, head pose.Poses, holeRadii []float32) ([]bool, []mat32.Vec3) {
	loc := hole.Inv().Mul(head).Positions()
	ok := make([]bool, len(loc))
	for i, p := range loc {
		r := holeRadii[i]
		ok[i] = p.X >= -MouthTol &&
			p.Y >= -r && p.Y <= r &&
			p.Z >= -r && p.Z <= r
	}
	return ok, loc
}

// Evaluate tests every instance against the live poses.  Success is not
// latched: it is recomputed on each call.
func (ev *Env) Evaluate() Info {
	ok, loc := HasPegInserted(ev.BoxHolePoses(), ev.PegHeadPoses(), ev.HoleRadii)
	return Info{Success: ok, PegHeadPosAtHole: loc}
}
