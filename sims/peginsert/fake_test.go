// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert_test

import (
	"errors"

	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

var errBuild = errors.New("fake: build failed")

// fakeScene records built actors without simulating anything
type fakeScene struct {
	n      int
	reg    physics.Registry
	bodies []*fakeBody
	failOn string
	steps  int
	clears int
}

type fakeBody struct {
	nm     string
	si     int
	kin    bool
	cur    pose.Pose
	shapes []physics.Box
}

func (b *fakeBody) Name() string        { return b.nm }
func (b *fakeBody) SceneIdx() int       { return b.si }
func (b *fakeBody) Kinematic() bool     { return b.kin }
func (b *fakeBody) Pose() pose.Pose     { return b.cur }
func (b *fakeBody) SetPose(p pose.Pose) { b.cur = p }

type fakeBuilder struct {
	sc     *fakeScene
	shapes []physics.Box
	init   pose.Pose
	idxs   []int
}

func (bl *fakeBuilder) AddBoxCollision(p pose.Pose, hs mat32.Vec3) {
	bl.shapes = append(bl.shapes, physics.Box{Kind: physics.Collision, Pose: p, HalfSize: hs})
}

func (bl *fakeBuilder) AddBoxVisual(p pose.Pose, hs mat32.Vec3, mat physics.Material) {
	bl.shapes = append(bl.shapes, physics.Box{Kind: physics.Visual, Pose: p, HalfSize: hs, Mat: mat})
}

func (bl *fakeBuilder) SetInitialPose(p pose.Pose) { bl.init = p }
func (bl *fakeBuilder) SetSceneIdxs(idxs []int)    { bl.idxs = idxs }

func (bl *fakeBuilder) Build(name string) (physics.Body, error) { return bl.build(name, false) }

func (bl *fakeBuilder) BuildKinematic(name string) (physics.Body, error) {
	return bl.build(name, true)
}

func (bl *fakeBuilder) build(name string, kin bool) (physics.Body, error) {
	if name == bl.sc.failOn {
		return nil, errBuild
	}
	b := &fakeBody{nm: name, si: bl.idxs[0], kin: kin, cur: bl.init, shapes: bl.shapes}
	bl.sc.bodies = append(bl.sc.bodies, b)
	bl.sc.reg.Add(physics.Single{Body: b})
	return b, nil
}

func (sc *fakeScene) NumEnvs() int                { return sc.n }
func (sc *fakeScene) Registry() *physics.Registry { return &sc.reg }
func (sc *fakeScene) CreateActorBuilder() physics.ActorBuilder {
	return &fakeBuilder{sc: sc, init: pose.Identity()}
}

func (sc *fakeScene) Clear() {
	sc.bodies = nil
	sc.reg.Reset()
	sc.clears++
}

func (sc *fakeScene) Step() error {
	sc.steps++
	return nil
}

// fakeRobot has directly settable tool-center-points and grasp flags
type fakeRobot struct {
	tcp   pose.Poses
	qpos  [][]float32
	root  pose.Poses
	grasp []bool
	acts  [][]physics.Action
}

func newFakeRobot(n int) *fakeRobot {
	return &fakeRobot{
		tcp:   pose.Repeat(pose.FromPos(0, 0, 0.25), n),
		qpos:  make([][]float32, n),
		root:  pose.Repeat(pose.Identity(), n),
		grasp: make([]bool, n),
	}
}

func (rb *fakeRobot) NumJoints() int       { return 9 }
func (rb *fakeRobot) TCPPoses() pose.Poses { return append(pose.Poses(nil), rb.tcp...) }
func (rb *fakeRobot) Qpos() [][]float32    { return rb.qpos }

func (rb *fakeRobot) SetQpos(envIdx []int, qpos [][]float32) error {
	for k, i := range envIdx {
		rb.qpos[i] = qpos[k]
	}
	return nil
}

func (rb *fakeRobot) SetRootPose(envIdx []int, p pose.Pose) {
	for _, i := range envIdx {
		rb.root[i] = p
	}
}

func (rb *fakeRobot) IsGrasping(obj *physics.Merged, maxAngle float32) []bool {
	return append([]bool(nil), rb.grasp...)
}

func (rb *fakeRobot) ApplyActions(acts []physics.Action) error {
	if len(acts) != len(rb.tcp) {
		return physics.ErrBatchSize
	}
	rb.acts = append(rb.acts, acts)
	return nil
}
