// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"fmt"
	"sort"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Stateful is anything whose poses are part of the saved simulation state.
type Stateful interface {
	Name() string
	Poses() pose.Poses
	SetPoses(envIdx []int, ps pose.Poses)
}

// Single adapts a lone Body to Stateful.
type Single struct {
	Body
}

func (s Single) Poses() pose.Poses { return pose.Poses{s.Pose()} }

func (s Single) SetPoses(envIdx []int, ps pose.Poses) { s.SetPose(ps[0]) }

// State is a snapshot of registered poses, keyed by actor name.
type State map[string]pose.Poses

// Registry tracks which actors are included in State snapshots.
type Registry struct {
	items map[string]Stateful
}

// Add registers s, replacing any actor with the same name.
func (rg *Registry) Add(s Stateful) {
	if rg.items == nil {
		rg.items = make(map[string]Stateful)
	}
	rg.items[s.Name()] = s
}

// Remove unregisters the named actor.
func (rg *Registry) Remove(name string) {
	delete(rg.items, name)
}

// Reset unregisters everything.
func (rg *Registry) Reset() {
	rg.items = nil
}

// Has reports whether name is registered.
func (rg *Registry) Has(name string) bool {
	_, ok := rg.items[name]
	return ok
}

// Names returns the registered names in sorted order.
func (rg *Registry) Names() []string {
	nms := make([]string, 0, len(rg.items))
	for nm := range rg.items {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// State returns a snapshot of all registered poses.
func (rg *Registry) State() State {
	st := make(State, len(rg.items))
	for nm, s := range rg.items {
		st[nm] = s.Poses()
	}
	return st
}

// SetState restores a snapshot.  Every registered actor must be present
// with one pose per instance; nothing is restored otherwise.
func (rg *Registry) SetState(st State) error {
	for nm, s := range rg.items {
		ps, ok := st[nm]
		if !ok {
			return fmt.Errorf("%w: %s", ErrStateMissing, nm)
		}
		if n := len(s.Poses()); len(ps) != n {
			return fmt.Errorf("%w: %s: %d poses for %d instances", ErrBatchSize, nm, len(ps), n)
		}
	}
	for nm, s := range rg.items {
		ps := st[nm]
		s.SetPoses(AllIdxs(len(ps)), ps)
	}
	return nil
}
