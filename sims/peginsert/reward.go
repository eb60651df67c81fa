// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Reward constants
const (
	// SuccessReward replaces the staged sum on success
	SuccessReward = 10

	// PreInsertTol is the lateral distance in the goal frame below which
	// both the head and the body count as lined up
	PreInsertTol = 0.01
)

// Stage is the task phase an instance is in, classified from the current
// geometry on every reward call.  It is not stored between calls.
type Stage int32

//go:generate stringer -type=Stage

var KiT_Stage = kit.Enums.AddEnum(StageN, false, nil)

// The stages
const (
	// Reaching: the peg is not grasped
	Reaching Stage = iota

	// Grasped: the peg is held within the contact angle
	Grasped

	// PreInserted: grasped, and head and body are lined up with the goal
	PreInserted

	// Inserted: the head is in the hole
	Inserted

	StageN
)

// RewardInputs are the live quantities the reward depends on
type RewardInputs struct {
	TCPPos      []mat32.Vec3 `desc:"tool-center-point positions"`
	PegPoses    pose.Poses   `desc:"peg origin poses"`
	HeadPoses   pose.Poses   `desc:"peg head poses"`
	GoalPoses   pose.Poses   `desc:"goal poses of the peg origin"`
	HeadAtHole  []mat32.Vec3 `desc:"peg head positions in the hole frame"`
	Grasped     []bool       `desc:"peg grasped within the contact angle"`
	Success     []bool       `desc:"peg inserted"`
	GraspOffset mat32.Vec3   `desc:"reach target in the peg frame"`
}

// RewardTerms are the gated contributions to one instance's reward
type RewardTerms struct {
	Reach     float32 `desc:"1 - tanh(4 * distance from tool-center-point to reach target)"`
	Grasp     float32 `desc:"1 when grasped"`
	PreInsert float32 `desc:"lateral alignment with the goal, only when grasped"`
	Insert    float32 `desc:"closeness of the head to the hole center, only when grasped and lined up"`
	HeadYZ    float32 `desc:"lateral distance of the head from the goal frame x axis"`
	BodyYZ    float32 `desc:"lateral distance of the peg origin from the goal frame x axis"`
	Stage     Stage   `desc:"phase classification"`
	Total     float32 `desc:"sum of the terms, or SuccessReward on success"`
}

// yzNorm is the length of v projected onto the y-z plane
func yzNorm(v mat32.Vec3) float32 {
	return mat32.Sqrt(v.Y*v.Y + v.Z*v.Z)
}

// ComputeReward evaluates the four gated terms for each instance.  Later
// terms only count once earlier stages are reached, and success overrides
// the sum with exactly SuccessReward.
func ComputeReward(in *RewardInputs) []RewardTerms {
	n := len(in.TCPPos)
	reach := in.PegPoses.Mul(pose.Poses{pose.New(in.GraspOffset, pose.IdentityQuat())}).Positions()
	goalInv := in.GoalPoses.Inv()
	headInGoal := goalInv.Mul(in.HeadPoses).Positions()
	pegInGoal := goalInv.Mul(in.PegPoses).Positions()
	rts := make([]RewardTerms, n)
	for i := range rts {
		rt := &rts[i]
		rt.Reach = 1 - mat32.Tanh(4*in.TCPPos[i].Sub(reach[i]).Length())
		grasped := in.Grasped[i]
		if grasped {
			rt.Grasp = 1
		}
		rt.HeadYZ = yzNorm(headInGoal[i])
		rt.BodyYZ = yzNorm(pegInGoal[i])
		pre := rt.HeadYZ < PreInsertTol && rt.BodyYZ < PreInsertTol
		if grasped {
			rt.PreInsert = 3 * (1 - mat32.Tanh(0.5*(rt.HeadYZ+rt.BodyYZ)+4.5*mat32.Max(rt.HeadYZ, rt.BodyYZ)))
			rt.Stage = Grasped
		}
		if grasped && pre {
			rt.Insert = 5 * (1 - mat32.Tanh(5*in.HeadAtHole[i].Length()))
			rt.Stage = PreInserted
		}
		rt.Total = rt.Reach + rt.Grasp + rt.PreInsert + rt.Insert
		if in.Success[i] {
			rt.Total = SuccessReward
			rt.Stage = Inserted
		}
	}
	return rts
}

// Totals extracts the total reward of each instance
func Totals(rts []RewardTerms) []float32 {
	rs := make([]float32, len(rts))
	for i := range rts {
		rs[i] = rts[i].Total
	}
	return rs
}

// RewardInputs gathers the live reward inputs for the given evaluation
func (ev *Env) RewardInputs(info *Info) *RewardInputs {
	tcp := ev.Robot.TCPPoses()
	return &RewardInputs{
		TCPPos:      tcp.Positions(),
		PegPoses:    ev.Peg.Poses(),
		HeadPoses:   ev.PegHeadPoses(),
		GoalPoses:   ev.GoalPoses(),
		HeadAtHole:  info.PegHeadPosAtHole,
		Grasped:     ev.Robot.IsGrasping(ev.Peg, ev.Cfg.GraspMaxAngle),
		Success:     info.Success,
		GraspOffset: ev.Cfg.GraspOffset,
	}
}

// RewardTerms returns the per-term breakdown for each instance
func (ev *Env) RewardTerms(info *Info) []RewardTerms {
	return ComputeReward(ev.RewardInputs(info))
}

// DenseReward is the staged reward of each instance
func (ev *Env) DenseReward(info *Info) []float32 {
	return Totals(ev.RewardTerms(info))
}

// NormalizedDenseReward is DenseReward divided by SuccessReward
func (ev *Env) NormalizedDenseReward(info *Info) []float32 {
	rs := ev.DenseReward(info)
	for i := range rs {
		rs[i] /= SuccessReward
	}
	return rs
}
