// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evescene_test

import (
	"testing"

	"github.com/goki/mat32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnlab/peg-insertion/sims/evescene"
	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

func newScene(n int) *evescene.Scene {
	var pr evescene.Params
	pr.Defaults()
	pr.NumEnvs = n
	return evescene.NewScene(pr)
}

func nominal() []float32 {
	return []float32{0, mat32.Pi / 8, 0, -5 * mat32.Pi / 8, 0, 3 * mat32.Pi / 4, -mat32.Pi / 4, 0.04, 0.04}
}

func buildPeg(t *testing.T, sc *evescene.Scene, i int, name string) physics.Body {
	bl := sc.CreateActorBuilder()
	bl.AddBoxCollision(pose.Identity(), mat32.Vec3{X: 0.1, Y: 0.02, Z: 0.02})
	bl.AddBoxVisual(pose.FromPos(0.05, 0, 0), mat32.Vec3{X: 0.05, Y: 0.02, Z: 0.02}, physics.Material{Color: "#EC7357"})
	bl.SetInitialPose(pose.FromPos(0, 0, 0.02))
	bl.SetSceneIdxs([]int{i})
	b, err := bl.Build(name)
	require.NoError(t, err)
	return b
}

func TestBuildErrors(t *testing.T) {
	sc := newScene(2)
	bl := sc.CreateActorBuilder()
	bl.AddBoxCollision(pose.Identity(), mat32.Vec3{X: 0.1, Y: 0.1, Z: 0.1})
	_, err := bl.Build("all")
	assert.ErrorIs(t, err, evescene.ErrSceneIdxs)

	bl.SetSceneIdxs([]int{5})
	_, err = bl.Build("far")
	assert.ErrorIs(t, err, evescene.ErrSceneIdxs)

	empty := sc.CreateActorBuilder()
	empty.SetSceneIdxs([]int{1})
	_, err = empty.BuildKinematic("none")
	assert.ErrorIs(t, err, evescene.ErrNoShapes)
	assert.Empty(t, sc.Bodies())
}

func TestBuildRegistersAndClears(t *testing.T) {
	sc := newScene(2)
	b0 := buildPeg(t, sc, 0, "peg_0")
	b1 := buildPeg(t, sc, 1, "peg_1")
	assert.Equal(t, 1, b1.SceneIdx())
	assert.False(t, b0.Kinematic())
	assert.Equal(t, []string{"peg_0", "peg_1"}, sc.Registry().Names())
	assert.Len(t, sc.EnvBodies(1), 1)

	eb := sc.EnvBodies(0)[0]
	lo, hi := eb.Bounds()
	assert.InDelta(t, -0.1, lo.X, 1e-6)
	assert.InDelta(t, 0.02, hi.Z, 1e-6)
	assert.InDelta(t, 0.02, eb.RestHeight(), 1e-6)

	assert.InDelta(t, 4, sc.WorldPos(1, mat32.Vec3{}).X, 1e-6)

	sc.Clear()
	assert.Empty(t, sc.Bodies())
	assert.Empty(t, sc.Registry().Names())
}

func TestRobotRestPose(t *testing.T) {
	sc := newScene(1)
	rb := sc.Robot
	rb.SetRootPose([]int{0}, pose.FromPos(-0.615, 0, 0))
	require.NoError(t, rb.SetQpos([]int{0}, [][]float32{nominal()}))
	tcp := rb.TCPPoses()[0]
	assert.InDelta(t, 0, tcp.Pos.X, 1e-5)
	assert.InDelta(t, 0.25, tcp.Pos.Z, 1e-5)

	q := nominal()
	q[0] = mat32.Pi / 2
	require.NoError(t, rb.SetQpos([]int{0}, [][]float32{q}))
	tcp = rb.TCPPoses()[0]
	assert.InDelta(t, -0.615, tcp.Pos.X, 1e-5)
	assert.InDelta(t, 0.615, tcp.Pos.Y, 1e-5)

	err := rb.SetQpos([]int{0}, [][]float32{{0, 0}})
	assert.ErrorIs(t, err, physics.ErrJointCount)
	err = rb.SetQpos([]int{0}, nil)
	assert.ErrorIs(t, err, physics.ErrBatchSize)
	assert.Equal(t, evescene.NJoints, rb.NumJoints())
}

func TestActionClipping(t *testing.T) {
	sc := newScene(1)
	rb := sc.Robot
	start := rb.TCPPoses()[0]
	require.NoError(t, rb.ApplyActions([]physics.Action{{DPos: mat32.Vec3{X: 1}, DYaw: 3, Gripper: 1}}))
	end := rb.TCPPoses()[0]
	assert.InDelta(t, sc.Arm.MaxStep, end.Pos.X-start.Pos.X, 1e-5)
	assert.InDelta(t, start.Yaw()+sc.Arm.MaxYawStep, end.Yaw(), 1e-4)

	assert.ErrorIs(t, rb.ApplyActions(nil), physics.ErrBatchSize)
}

func TestYawStepsAccumulate(t *testing.T) {
	sc := newScene(1)
	rb := sc.Robot
	start := rb.TCPPoses()[0]
	for i := 0; i < 3; i++ {
		require.NoError(t, rb.ApplyActions([]physics.Action{{DYaw: 0.1, Gripper: 1}}))
	}
	end := rb.TCPPoses()[0]
	assert.InDelta(t, start.Yaw()+0.3, end.Yaw(), 1e-4)
	down := end.Rotate(mat32.Vec3{Z: 1})
	assert.InDelta(t, -1, down.Z, 1e-5)
	assert.Equal(t, start.Pos, end.Pos)
}

func TestGraspLiftRelease(t *testing.T) {
	sc := newScene(1)
	rb := sc.Robot
	rb.SetRootPose([]int{0}, pose.FromPos(-0.615, 0, 0))
	require.NoError(t, rb.SetQpos([]int{0}, [][]float32{nominal()}))
	b := buildPeg(t, sc, 0, "peg_0")
	peg, err := physics.Merge([]physics.Body{b}, "peg")
	require.NoError(t, err)

	down := []physics.Action{{DPos: mat32.Vec3{Z: -0.03}, Gripper: 1}}
	for rb.TCPPoses()[0].Pos.Z > 0.02 {
		require.NoError(t, rb.ApplyActions(down))
		require.NoError(t, sc.Step())
	}
	assert.Equal(t, []bool{false}, rb.IsGrasping(peg, 20))

	require.NoError(t, rb.ApplyActions([]physics.Action{{Gripper: -1}}))
	assert.Equal(t, []bool{true}, rb.IsGrasping(peg, 20))
	assert.InDelta(t, 0.02, rb.Qpos()[0][7], 1e-6)

	require.NoError(t, rb.ApplyActions([]physics.Action{{DPos: mat32.Vec3{Z: 0.03}, Gripper: -1}}))
	require.NoError(t, sc.Step())
	assert.InDelta(t, 0.05, b.Pose().Pos.Z, 1e-5)

	require.NoError(t, rb.ApplyActions([]physics.Action{{Gripper: 1}}))
	assert.Equal(t, []bool{false}, rb.IsGrasping(peg, 20))
	require.NoError(t, sc.Step())
	assert.InDelta(t, 0.03, b.Pose().Pos.Z, 1e-5)
	require.NoError(t, sc.Step())
	assert.InDelta(t, 0.02, b.Pose().Pos.Z, 1e-5)
}

func TestGraspAngle(t *testing.T) {
	sc := newScene(1)
	rb := sc.Robot
	b := buildPeg(t, sc, 0, "peg_0")
	peg, err := physics.Merge([]physics.Body{b}, "peg")
	require.NoError(t, err)
	tcp := rb.TCPPoses()[0]
	b.SetPose(pose.New(tcp.Pos, pose.IdentityQuat()))
	require.NoError(t, rb.ApplyActions([]physics.Action{{Gripper: -1}}))
	assert.Equal(t, []bool{true}, rb.IsGrasping(peg, 20))

	// rotating the held peg 45 degrees about its axis tilts the side normals
	// away from the closing direction
	b.SetPose(pose.New(b.Pose().Pos, mat32.NewQuatAxisAngle(mat32.Vec3{X: 1}, mat32.Pi/4)))
	assert.Equal(t, []bool{false}, rb.IsGrasping(peg, 20))
	assert.Equal(t, []bool{true}, rb.IsGrasping(peg, 50))
}
