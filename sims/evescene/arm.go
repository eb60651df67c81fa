// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evescene

import (
	"github.com/emer/eve/eve"
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

// MakeArm constructs the visual arm: a base at the root and a hand with
// two fingers that tracks the tool-center-point
func MakeArm(par *eve.Group, name string) *eve.Group {
	arm := eve.AddNewGroup(par, name)
	base := eve.AddNewBox(arm, "base", mat32.Vec3{0, 0, 0.05}, mat32.Vec3{0.2, 0.2, 0.1})
	base.Color = "#F2F2F2"
	hand := eve.AddNewGroup(arm, "hand")
	palm := eve.AddNewBox(hand, "palm", mat32.Vec3{0, 0, -0.07}, mat32.Vec3{0.04, 0.2, 0.04})
	palm.Color = "#F2F2F2"
	fl := eve.AddNewBox(hand, "finger-l", mat32.Vec3{0, 0.04, -0.025}, mat32.Vec3{0.02, 0.01, 0.05})
	fl.Color = "#2F2F2F"
	fr := eve.AddNewBox(hand, "finger-r", mat32.Vec3{0, -0.04, -0.025}, mat32.Vec3{0.02, 0.01, 0.05})
	fr.Color = "#2F2F2F"
	return arm
}

// syncArms moves the arm visuals to the root, tool-center-point and
// finger joint values.  The gripper frame z points down, so the palm
// sits at negative z.
func (rb *Robot) syncArms() {
	for i, arm := range rb.Arms {
		base := arm.ChildByName("base", 0).(*eve.Box)
		placeBox(base, rb.root[i].Mul(pose.FromPos(0, 0, 0.05)))
		hand := arm.ChildByName("hand", 1).(*eve.Group)
		placeGroup(hand, rb.tcp[i])
		q := rb.qpos[i]
		fl := hand.ChildByName("finger-l", 1).(*eve.Box)
		fl.Rel.Pos = mat32.Vec3{X: 0, Y: q[7] + 0.005, Z: -0.025}
		fr := hand.ChildByName("finger-r", 2).(*eve.Box)
		fr.Rel.Pos = mat32.Vec3{X: 0, Y: -q[8] - 0.005, Z: -0.025}
	}
}
