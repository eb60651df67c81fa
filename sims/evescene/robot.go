// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evescene

import (
	"fmt"

	"github.com/emer/eve/eve"
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

// NJoints is the joint count of the arm: seven arm joints plus two fingers
const NJoints = 9

// RobotParams are the kinematic arm parameters
type RobotParams struct {
	RestTCP    mat32.Vec3 `yaml:"rest_tcp" desc:"tool-center-point position in the root frame at the rest configuration"`
	WristRest  float32    `yaml:"wrist_rest" desc:"value of the last arm joint at which the gripper is unrotated"`
	MaxStep    float32    `yaml:"max_step" desc:"max tool-center-point translation per action"`
	MaxYawStep float32    `yaml:"max_yaw_step" desc:"max rotation about z per action, radians"`
	MinZ       float32    `yaml:"min_z" desc:"lowest allowed tool-center-point height"`
	FingerOpen float32    `yaml:"finger_open" desc:"finger joint value when open"`
	GraspTol   mat32.Vec3 `yaml:"grasp_tol" desc:"tolerance added to an object's bounds when closing on it"`
}

func (rp *RobotParams) Defaults() {
	rp.RestTCP = mat32.Vec3{X: 0.615, Y: 0, Z: 0.25}
	rp.WristRest = -mat32.Pi / 4
	rp.MaxStep = 0.03
	rp.MaxYawStep = 0.15
	rp.MinZ = 0.005
	rp.FingerOpen = 0.04
	rp.GraspTol = mat32.Vec3{X: 0, Y: 0.01, Z: 0.02}
}

// downQuat points the gripper at the table: a half turn about x
var downQuat = mat32.NewQuat(1, 0, 0, 0)

// Robot is a kinematic arm that moves its tool-center-point directly and
// holds a body by attaching it when the gripper closes around it.
// Implements physics.Robot.
type Robot struct {
	sc   *Scene
	Arms []*eve.Group `view:"-" desc:"arm visuals, one per instance"`
	root pose.Poses
	tcp  pose.Poses
	qpos [][]float32
	held []*Body
	rel  pose.Poses
}

func newRobot(sc *Scene) *Robot {
	n := sc.NumEnvs()
	rb := &Robot{sc: sc}
	rb.Arms = make([]*eve.Group, n)
	rb.root = pose.Repeat(pose.Identity(), n)
	rb.tcp = make(pose.Poses, n)
	rb.qpos = make([][]float32, n)
	rb.held = make([]*Body, n)
	rb.rel = pose.Repeat(pose.Identity(), n)
	for i := 0; i < n; i++ {
		rb.Arms[i] = MakeArm(sc.Envs[i], "arm")
		rb.qpos[i] = make([]float32, NJoints)
		rb.qpos[i][6] = rb.params().WristRest
		rb.qpos[i][7] = rb.params().FingerOpen
		rb.qpos[i][8] = rb.params().FingerOpen
		rb.tcp[i] = rb.restTCP(i)
	}
	rb.syncArms()
	return rb
}

func (rb *Robot) params() *RobotParams { return &rb.sc.Arm }

func (rb *Robot) NumJoints() int { return NJoints }

func (rb *Robot) TCPPoses() pose.Poses {
	return append(pose.Poses(nil), rb.tcp...)
}

func (rb *Robot) Qpos() [][]float32 {
	qs := make([][]float32, len(rb.qpos))
	for i, q := range rb.qpos {
		qs[i] = append([]float32(nil), q...)
	}
	return qs
}

// restTCP is the tool-center-point for the current root and joints: the
// base joint swings the rest point about the root and, with the wrist,
// sets the gripper yaw.
func (rb *Robot) restTCP(i int) pose.Pose {
	q := rb.qpos[i]
	base := pose.FromYaw(mat32.Vec3{}, q[0])
	yaw := pose.FromYaw(mat32.Vec3{}, q[0]+q[6]-rb.params().WristRest)
	loc := pose.New(base.Rotate(rb.params().RestTCP), yaw.Quat.Mul(downQuat))
	return rb.root[i].Mul(loc)
}

// SetQpos sets the joints and moves the tool-center-point to match,
// releasing anything held.
func (rb *Robot) SetQpos(envIdx []int, qpos [][]float32) error {
	if len(qpos) != len(envIdx) {
		return fmt.Errorf("%w: %d configurations for %d instances", physics.ErrBatchSize, len(qpos), len(envIdx))
	}
	for k, i := range envIdx {
		if len(qpos[k]) != NJoints {
			return fmt.Errorf("%w: %d, want %d", physics.ErrJointCount, len(qpos[k]), NJoints)
		}
		copy(rb.qpos[i], qpos[k])
		rb.held[i] = nil
		rb.tcp[i] = rb.restTCP(i)
	}
	return nil
}

func (rb *Robot) SetRootPose(envIdx []int, p pose.Pose) {
	for _, i := range envIdx {
		rb.root[i] = p
		rb.tcp[i] = rb.restTCP(i)
	}
}

// RootPoses returns the base pose of each instance
func (rb *Robot) RootPoses() pose.Poses {
	return append(pose.Poses(nil), rb.root...)
}

// ApplyActions moves each tool-center-point by its clipped command, then
// closes on or releases bodies per the gripper command.
func (rb *Robot) ApplyActions(acts []physics.Action) error {
	if len(acts) != len(rb.tcp) {
		return fmt.Errorf("%w: %d actions for %d instances", physics.ErrBatchSize, len(acts), len(rb.tcp))
	}
	pr := rb.params()
	for i, a := range acts {
		dp := a.DPos
		if l := dp.Length(); l > pr.MaxStep {
			dp = dp.MulScalar(pr.MaxStep / l)
		}
		dyaw := mat32.Max(-pr.MaxYawStep, mat32.Min(a.DYaw, pr.MaxYawStep))
		t := rb.tcp[i]
		t.Pos = t.Pos.Add(dp)
		t.Pos.Z = mat32.Max(t.Pos.Z, pr.MinZ)
		yq := pose.FromYaw(mat32.Vec3{}, dyaw).Quat
		t.Quat = yq.Mul(t.Quat)
		rb.tcp[i] = t
		if a.Gripper < 0 {
			rb.close(i)
		} else {
			rb.open(i)
		}
	}
	rb.follow()
	return nil
}

func (rb *Robot) close(i int) {
	if rb.held[i] != nil {
		return
	}
	pr := rb.params()
	t := rb.tcp[i]
	for _, b := range rb.sc.EnvBodies(i) {
		if b.kinematic || !b.Contains(t.Pos, pr.GraspTol) {
			continue
		}
		rb.held[i] = b
		rb.rel[i] = t.Inv().Mul(b.Pose())
		_, hi := b.Bounds()
		w := mat32.Min(pr.FingerOpen, hi.Y)
		rb.qpos[i][7], rb.qpos[i][8] = w, w
		return
	}
	rb.qpos[i][7], rb.qpos[i][8] = 0, 0
}

func (rb *Robot) open(i int) {
	rb.held[i] = nil
	rb.qpos[i][7] = rb.params().FingerOpen
	rb.qpos[i][8] = rb.params().FingerOpen
}

func (rb *Robot) releaseAll() {
	for i := range rb.held {
		rb.held[i] = nil
	}
}

func (rb *Robot) holds(b *Body) bool {
	return rb.held[b.sceneIdx] == b
}

// follow moves held bodies with the gripper
func (rb *Robot) follow() {
	for i, b := range rb.held {
		if b != nil {
			b.SetPose(rb.tcp[i].Mul(rb.rel[i]))
		}
	}
}

// IsGrasping reports whether obj is held in each instance with the
// gripper closing axis within maxAngle degrees of one of obj's side
// normals.
func (rb *Robot) IsGrasping(obj *physics.Merged, maxAngle float32) []bool {
	gs := make([]bool, obj.Len())
	for i := range gs {
		b := obj.Body(i)
		if rb.held[i] == nil || physics.Body(rb.held[i]) != b {
			continue
		}
		closing := rb.tcp[i].Rotate(mat32.Vec3{X: 0, Y: 1, Z: 0})
		loc := pose.New(mat32.Vec3{}, b.Pose().Quat).Inv().Rotate(closing)
		c := mat32.Min(1, mat32.Max(mat32.Abs(loc.Y), mat32.Abs(loc.Z)))
		gs[i] = mat32.RadToDeg(mat32.Acos(c)) <= maxAngle
	}
	return gs
}
