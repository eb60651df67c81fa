// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert_test

import (
	"testing"

	"github.com/goki/mat32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnlab/peg-insertion/sims/peginsert"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

func TestGoalIgnoresPeg(t *testing.T) {
	box := pose.Poses{pose.FromYaw(mat32.Vec3{X: 0.02, Y: 0.3, Z: 0.1}, mat32.Pi/2)}
	hole := pose.Poses{pose.FromPos(0, 0.01, -0.02)}
	head := pose.Poses{pose.FromPos(0.1, 0, 0)}
	goal := peginsert.GoalPoses(box, hole, head)
	assert.Equal(t, box.Mul(hole).Mul(head.Inv()), goal)

	// the head of a peg at the goal sits at the hole center
	atHole := peginsert.HeadPoses(goal, head)
	want := peginsert.HolePoses(box, hole)
	assert.InDelta(t, want[0].Pos.X, atHole[0].Pos.X, 1e-6)
	assert.InDelta(t, want[0].Pos.Y, atHole[0].Pos.Y, 1e-6)
	assert.InDelta(t, want[0].Pos.Z, atHole[0].Pos.Z, 1e-6)
}

func TestHasPegInserted(t *testing.T) {
	hole := pose.Poses{pose.Identity()}
	radii := []float32{0.018}
	cases := []struct {
		name string
		head mat32.Vec3
		want bool
	}{
		{"inside", mat32.Vec3{X: 0, Y: 0.01, Z: -0.01}, true},
		{"short of mouth", mat32.Vec3{X: -0.02, Y: 0, Z: 0}, false},
		{"at mouth tolerance", mat32.Vec3{X: -0.015, Y: 0, Z: 0}, true},
		{"y outside", mat32.Vec3{X: 0, Y: 0.02, Z: 0}, false},
		{"z outside", mat32.Vec3{X: 0.05, Y: 0, Z: -0.019}, false},
		{"through", mat32.Vec3{X: 0.2, Y: 0, Z: 0}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ok, loc := peginsert.HasPegInserted(hole, pose.Poses{pose.New(c.head, pose.IdentityQuat())}, radii)
			assert.Equal(t, c.want, ok[0])
			assert.Equal(t, c.head, loc[0])
		})
	}
}

func TestHasPegInsertedRotatedHole(t *testing.T) {
	// hole axis along world +y
	hole := pose.Poses{pose.FromYaw(mat32.Vec3{X: 1, Y: 2, Z: 0.1}, mat32.Pi/2)}
	head := pose.Poses{pose.FromPos(1, 2.01, 0.1)}
	ok, loc := peginsert.HasPegInserted(hole, head, []float32{0.02})
	assert.True(t, ok[0])
	assert.InDelta(t, 0.01, loc[0].X, 1e-5)
	assert.InDelta(t, 0, loc[0].Y, 1e-5)
}

// alignedInputs puts a grasped peg on the goal axis with its head at
// local x offset dx in the hole frame
func alignedInputs(dx float32) *peginsert.RewardInputs {
	box := pose.Poses{pose.FromPos(0, 0.3, 0.1)}
	hole := pose.Poses{pose.Identity()}
	headOff := pose.Poses{pose.FromPos(0.1, 0, 0)}
	goal := peginsert.GoalPoses(box, hole, headOff)
	peg := pose.Poses{goal[0].Mul(pose.FromPos(dx, 0, 0))}
	heads := peginsert.HeadPoses(peg, headOff)
	_, loc := peginsert.HasPegInserted(peginsert.HolePoses(box, hole), heads, []float32{0.02})
	return &peginsert.RewardInputs{
		TCPPos:      []mat32.Vec3{peg[0].Transform(mat32.Vec3{X: -0.06})},
		PegPoses:    peg,
		HeadPoses:   heads,
		GoalPoses:   goal,
		HeadAtHole:  loc,
		Grasped:     []bool{true},
		Success:     []bool{false},
		GraspOffset: mat32.Vec3{X: -0.06},
	}
}

func TestInsertionMonotonic(t *testing.T) {
	prev := float32(-1)
	for _, dx := range []float32{-0.2, -0.15, -0.1, -0.06, -0.03} {
		rt := peginsert.ComputeReward(alignedInputs(dx))[0]
		require.Equal(t, peginsert.PreInserted, rt.Stage, "dx %v", dx)
		assert.Greater(t, rt.Insert, prev, "dx %v", dx)
		prev = rt.Insert
	}
}

func TestStageTerms(t *testing.T) {
	in := alignedInputs(-0.1)
	rt := peginsert.ComputeReward(in)[0]
	assert.InDelta(t, 1, rt.Reach, 1e-5)
	assert.Equal(t, float32(1), rt.Grasp)
	assert.InDelta(t, 3, rt.PreInsert, 1e-4)
	assert.InDelta(t, rt.Reach+rt.Grasp+rt.PreInsert+rt.Insert, rt.Total, 1e-5)

	in.Grasped[0] = false
	rt = peginsert.ComputeReward(in)[0]
	assert.Equal(t, peginsert.Reaching, rt.Stage)
	assert.Zero(t, rt.Grasp)
	assert.Zero(t, rt.PreInsert)
	assert.Zero(t, rt.Insert)
	assert.Equal(t, rt.Reach, rt.Total)

	// lifted off the goal axis: grasped but not lined up
	in = alignedInputs(-0.1)
	in.PegPoses[0].Pos.Z += 0.05
	in.HeadPoses = peginsert.HeadPoses(in.PegPoses, pose.Poses{pose.FromPos(0.1, 0, 0)})
	rt = peginsert.ComputeReward(in)[0]
	assert.Equal(t, peginsert.Grasped, rt.Stage)
	assert.Zero(t, rt.Insert)
	assert.InDelta(t, 0.05, rt.HeadYZ, 1e-5)
	assert.Less(t, rt.PreInsert, float32(3))
}

// lateralInputs puts a grasped peg short of the hole with its origin at
// lateral offset body and its head at lateral offset head from the goal axis
func lateralInputs(body, head float32) *peginsert.RewardInputs {
	box := pose.Poses{pose.Identity()}
	hole := pose.Poses{pose.Identity()}
	headOff := pose.Poses{pose.FromPos(0.1, 0, 0)}
	goal := peginsert.GoalPoses(box, hole, headOff)
	yaw := mat32.Asin((head - body) / 0.1)
	peg := pose.Poses{goal[0].Mul(pose.FromYaw(mat32.Vec3{X: -0.05, Y: body}, yaw))}
	heads := peginsert.HeadPoses(peg, headOff)
	_, loc := peginsert.HasPegInserted(hole, heads, []float32{0.02})
	return &peginsert.RewardInputs{
		TCPPos:      []mat32.Vec3{peg[0].Transform(mat32.Vec3{X: -0.06})},
		PegPoses:    peg,
		HeadPoses:   heads,
		GoalPoses:   goal,
		HeadAtHole:  loc,
		Grasped:     []bool{true},
		Success:     []bool{false},
		GraspOffset: mat32.Vec3{X: -0.06},
	}
}

func TestPreInsertGate(t *testing.T) {
	cases := []struct {
		name       string
		body, head float32
		want       peginsert.Stage
	}{
		{"both lined up", 0.005, -0.004, peginsert.PreInserted},
		{"just inside", 0.0099, 0.0099, peginsert.PreInserted},
		{"just outside", 0.0101, 0.0101, peginsert.Grasped},
		{"head lined up body off", 0.012, 0.002, peginsert.Grasped},
		{"body lined up head off", -0.002, -0.011, peginsert.Grasped},
		{"opposite sides", -0.011, 0.011, peginsert.Grasped},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rt := peginsert.ComputeReward(lateralInputs(c.body, c.head))[0]
			assert.InDelta(t, mat32.Abs(c.body), rt.BodyYZ, 1e-6)
			assert.InDelta(t, mat32.Abs(c.head), rt.HeadYZ, 1e-6)
			assert.Equal(t, c.want, rt.Stage)
			assert.Greater(t, rt.PreInsert, float32(0))
			if c.want == peginsert.PreInserted {
				assert.Greater(t, rt.Insert, float32(0))
			} else {
				assert.Zero(t, rt.Insert)
			}
		})
	}
}

func TestSuccessOverride(t *testing.T) {
	in := alignedInputs(0)
	in.Success[0] = true
	rt := peginsert.ComputeReward(in)[0]
	assert.Equal(t, float32(peginsert.SuccessReward), rt.Total)
	assert.Equal(t, peginsert.Inserted, rt.Stage)

	in.Grasped[0] = false
	in.TCPPos[0] = mat32.Vec3{X: 5}
	assert.Equal(t, []float32{10}, peginsert.Totals(peginsert.ComputeReward(in)))
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "PreInserted", peginsert.PreInserted.String())
	assert.Equal(t, "Stage(9)", peginsert.Stage(9).String())
}
