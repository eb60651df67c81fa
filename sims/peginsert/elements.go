// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"fmt"

	"github.com/emer/etable/etensor"

	"github.com/ccnlab/peg-insertion/sims/physics"
)

// Element names of the tensor interface, in addition to the observation keys
const (
	// ActionElement is Env x ActionDims: dx, dy, dz, dyaw, gripper
	ActionElement = "Action"

	// RewardElement is the reward of each instance from the last step
	RewardElement = "Reward"
)

// ActionDims is the number of values in one encoded action
const ActionDims = 5

// Counter names
const (
	EpisodeCtr  = "Episode"
	TickCtr     = "Tick"
	ReconfigCtr = "Reconfig"
)

// ActionTensor encodes actions as Env x ActionDims
func ActionTensor(acts []physics.Action) *etensor.Float32 {
	tsr := etensor.NewFloat32([]int{len(acts), ActionDims}, nil, []string{"Env", "Act"})
	EncodeActions(tsr.Values, acts)
	return tsr
}

// EncodeActions writes acts into vals, ActionDims values per instance
func EncodeActions(vals []float32, acts []physics.Action) {
	for i, a := range acts {
		v := vals[i*ActionDims : (i+1)*ActionDims]
		v[0], v[1], v[2] = a.DPos.X, a.DPos.Y, a.DPos.Z
		v[3] = a.DYaw
		v[4] = a.Gripper
	}
}

// DecodeActions reads one action per instance from an Env x ActionDims
// tensor of any numeric type
func DecodeActions(tsr etensor.Tensor, n int) ([]physics.Action, error) {
	if tsr.Len() != n*ActionDims {
		return nil, fmt.Errorf("%w: action tensor has %d values, want %d x %d", physics.ErrBatchSize, tsr.Len(), n, ActionDims)
	}
	acts := make([]physics.Action, n)
	f := func(i, j int) float32 { return float32(tsr.FloatVal1D(i*ActionDims + j)) }
	for i := range acts {
		a := &acts[i]
		a.DPos.X, a.DPos.Y, a.DPos.Z = f(i, 0), f(i, 1), f(i, 2)
		a.DYaw = f(i, 3)
		a.Gripper = f(i, 4)
	}
	return acts, nil
}

// States lists the element names State returns
func (ev *Env) States() []string {
	return append(ev.CurObs.Keys(), ActionElement, RewardElement)
}

// State returns the named element as of the last reset or step, or nil
// if there is no such element
func (ev *Env) State(element string) etensor.Tensor {
	switch element {
	case ActionElement:
		return &ev.CurAct
	case RewardElement:
		return &ev.CurReward
	}
	if tsr, ok := ev.CurObs[element]; ok {
		return tsr
	}
	return nil
}

// Action sets the pending action from an Env x ActionDims tensor
func (ev *Env) Action(element string, input etensor.Tensor) error {
	if element != ActionElement {
		return fmt.Errorf("%w: %q", ErrElement, element)
	}
	acts, err := DecodeActions(input, ev.NumEnvs())
	if err != nil {
		return err
	}
	EncodeActions(ev.CurAct.Values, acts)
	return nil
}

// StepPending steps with the pending action, which stays set until the
// next Action call
func (ev *Env) StepPending() (*StepResult, error) {
	acts, err := DecodeActions(&ev.CurAct, ev.NumEnvs())
	if err != nil {
		return nil, err
	}
	return ev.Step(acts)
}

// Counter returns the current and previous value of the named counter and
// whether it changed
func (ev *Env) Counter(name string) (cur, prv int, chg bool) {
	switch name {
	case EpisodeCtr:
		return ev.Episode.Query()
	case TickCtr:
		return ev.Tick.Query()
	case ReconfigCtr:
		return ev.Reconfig.Query()
	}
	return -1, -1, false
}
