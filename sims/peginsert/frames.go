// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

// HeadPoses composes peg poses with the head offsets
func HeadPoses(peg, headOff pose.Poses) pose.Poses {
	return peg.Mul(headOff)
}

// HolePoses composes box poses with the hole offsets
func HolePoses(box, holeOff pose.Poses) pose.Poses {
	return box.Mul(holeOff)
}

// GoalPoses is where the peg origin must be for its head to sit at the
// hole center, aligned with the hole axis.  It depends only on the box.
func GoalPoses(box, holeOff, headOff pose.Poses) pose.Poses {
	return box.Mul(holeOff).Mul(headOff.Inv())
}

// PegHeadPoses is the live pose of each peg head.
func (ev *Env) PegHeadPoses() pose.Poses {
	return HeadPoses(ev.Peg.Poses(), ev.PegHeadOffsets)
}

// BoxHolePoses is the live pose of each hole center.
func (ev *Env) BoxHolePoses() pose.Poses {
	return HolePoses(ev.Box.Poses(), ev.BoxHoleOffsets)
}

// GoalPoses is recomputed from the live box pose on every call.
func (ev *Env) GoalPoses() pose.Poses {
	return GoalPoses(ev.Box.Poses(), ev.BoxHoleOffsets, ev.PegHeadOffsets)
}

// PegHeadPositions adds the head offset translation to the peg position
// without rotating it.
func (ev *Env) PegHeadPositions() []mat32.Vec3 {
	ps := ev.Peg.Poses()
	hp := make([]mat32.Vec3, len(ps))
	for i, p := range ps {
		hp[i] = p.Pos.Add(ev.PegHeadOffsets[i].Pos)
	}
	return hp
}
