// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package policy is a scripted reflex policy for the peg insertion task:
// reach above the peg, descend, close, carry the peg in front of the hole
// and push it in.  Each instance runs its own action state.
package policy

import (
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/peginsert"
	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

// View is what the policy sees of each instance
type View struct {
	TCP         pose.Poses `desc:"tool-center-point poses"`
	Peg         pose.Poses `desc:"peg origin poses"`
	Goal        pose.Poses `desc:"goal poses of the peg origin"`
	HalfLengths []float32  `desc:"peg half lengths"`
	Grasped     []bool     `desc:"peg is held"`
	GraspOffset mat32.Vec3 `desc:"grasp point in the peg frame"`
}

// NewView reads the live state of ev
func NewView(ev *peginsert.Env) *View {
	return &View{
		TCP:         ev.Robot.TCPPoses(),
		Peg:         ev.Peg.Poses(),
		Goal:        ev.GoalPoses(),
		HalfLengths: ev.Geom.HalfLengths,
		Grasped:     ev.Robot.IsGrasping(ev.Peg, ev.Cfg.GraspMaxAngle),
		GraspOffset: ev.Cfg.GraspOffset,
	}
}

// Policy provides a parameterized staged insertion policy
type Policy struct {
	HoverZ       float32    `yaml:"hover_z" desc:"height above the grasp point to approach from"`
	PosTol       float32    `yaml:"pos_tol" desc:"distance at which a target counts as reached"`
	YawTol       float32    `yaml:"yaw_tol" desc:"yaw error in radians at which a target counts as reached"`
	PreInsertGap float32    `yaml:"pre_insert_gap" desc:"gap between the peg head and the box face before pushing in"`
	CurState     []ActState `yaml:"-" inactive:"+" desc:"current action state of each instance"`
	PrvState     []ActState `yaml:"-" inactive:"+" desc:"prev action state of each instance"`
}

func (pl *Policy) Defaults() {
	pl.HoverZ = 0.08
	pl.PosTol = 0.002
	pl.YawTol = 0.01
	pl.PreInsertGap = 0.02
}

// Init sizes the state for n instances and resets all of them
func (pl *Policy) Init(n int) {
	pl.CurState = make([]ActState, n)
	pl.PrvState = make([]ActState, n)
}

// Reset starts the given instances over, all of them if envIdx is nil
func (pl *Policy) Reset(envIdx []int) {
	if envIdx == nil {
		envIdx = physics.AllIdxs(len(pl.CurState))
	}
	for _, i := range envIdx {
		pl.CurState[i] = NoActState
		pl.PrvState[i] = NoActState
	}
}

// Act is main interface call that updates states and selects one action
// per instance
func (pl *Policy) Act(vw *View) []physics.Action {
	acts := make([]physics.Action, len(pl.CurState))
	for i := range acts {
		pl.update(i, vw)
		acts[i] = pl.command(i, vw)
	}
	return acts
}

// NewState moves instance i to st
func (pl *Policy) NewState(i int, st ActState) {
	pl.PrvState[i] = pl.CurState[i]
	pl.CurState[i] = st
}

// update makes the state transitions for instance i
func (pl *Policy) update(i int, vw *View) {
	held := vw.Grasped[i]
	switch pl.CurState[i] {
	case NoActState:
		pl.NewState(i, Approach)
	case Approach:
		if pl.reached(vw.TCP[i], pl.hover(i, vw)) {
			pl.NewState(i, Descend)
		}
	case Descend:
		if pl.reached(vw.TCP[i], pl.grasp(i, vw)) {
			pl.NewState(i, Close)
		}
	case Close:
		if held {
			pl.NewState(i, Carry)
		} else {
			pl.NewState(i, Approach)
		}
	case Carry:
		switch {
		case !held:
			pl.NewState(i, Approach)
		case pl.reached(vw.Peg[i], pl.preInsert(i, vw)):
			pl.NewState(i, Insert)
		}
	case Insert:
		switch {
		case !held:
			pl.NewState(i, Approach)
		case pl.reached(vw.Peg[i], vw.Goal[i]):
			pl.NewState(i, Hold)
		}
	case Hold:
		if !held {
			pl.NewState(i, Approach)
		}
	}
}

// command is the action for the current state of instance i
func (pl *Policy) command(i int, vw *View) physics.Action {
	switch pl.CurState[i] {
	case Approach:
		return toward(vw.TCP[i], pl.hover(i, vw), 1)
	case Descend:
		return toward(vw.TCP[i], pl.grasp(i, vw), 1)
	case Carry:
		return carry(vw.TCP[i], vw.Peg[i], pl.preInsert(i, vw))
	case Insert:
		return carry(vw.TCP[i], vw.Peg[i], vw.Goal[i])
	}
	return physics.Action{Gripper: -1}
}

func (pl *Policy) reached(cur, target pose.Pose) bool {
	return cur.Pos.Sub(target.Pos).Length() <= pl.PosTol &&
		mat32.Abs(wrap(target.Yaw()-cur.Yaw())) <= pl.YawTol
}

// grasp is the tool-center-point pose that closes across the peg at the
// grasp point, turned by the half turn nearest the current gripper yaw
func (pl *Policy) grasp(i int, vw *View) pose.Pose {
	peg := vw.Peg[i]
	yaw := vw.TCP[i].Yaw()
	yaw += wrapHalf(peg.Yaw() - yaw)
	return pose.FromYaw(peg.Transform(vw.GraspOffset), yaw)
}

func (pl *Policy) hover(i int, vw *View) pose.Pose {
	g := pl.grasp(i, vw)
	g.Pos.Z += pl.HoverZ
	return g
}

// preInsert is the peg pose on the hole axis with the head just short of
// the box face
func (pl *Policy) preInsert(i int, vw *View) pose.Pose {
	return vw.Goal[i].Mul(pose.FromPos(-(vw.HalfLengths[i] + pl.PreInsertGap), 0, 0))
}

// toward moves the tool-center-point straight at target
func toward(tcp, target pose.Pose, grip float32) physics.Action {
	return physics.Action{
		DPos:    target.Pos.Sub(tcp.Pos),
		DYaw:    wrap(target.Yaw() - tcp.Yaw()),
		Gripper: grip,
	}
}

// carry moves a held peg toward target: the tool-center-point goes where
// it would be with the peg at target.
func carry(tcp, peg, target pose.Pose) physics.Action {
	dst := target.Mul(peg.Inv()).Mul(tcp)
	return physics.Action{
		DPos:    dst.Pos.Sub(tcp.Pos),
		DYaw:    wrap(target.Yaw() - peg.Yaw()),
		Gripper: -1,
	}
}

// wrap maps an angle into [-pi, pi)
func wrap(a float32) float32 {
	return a - 2*mat32.Pi*mat32.Floor((a+mat32.Pi)/(2*mat32.Pi))
}

// wrapHalf maps an angle into [-pi/2, pi/2)
func wrapHalf(a float32) float32 {
	return a - mat32.Pi*mat32.Floor((a+mat32.Pi/2)/mat32.Pi)
}

// ActState is action state
type ActState int

//go:generate stringer -type=ActState

var KiT_ActState = kit.Enums.AddEnum(ActStateN, false, nil)

// The action states
const (
	NoActState ActState = iota

	// Approach moves above the grasp point with the gripper open
	Approach

	// Descend lowers onto the grasp point
	Descend

	// Close closes the gripper in place
	Close

	// Carry brings the held peg in front of the hole, lined up with it
	Carry

	// Insert pushes the peg along the hole axis to the goal
	Insert

	// Hold keeps the peg at the goal
	Hold

	ActStateN
)
