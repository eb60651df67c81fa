// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"fmt"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Merged is one logical actor backed by a distinct body in each instance,
// e.g. "the peg" across a batch of differently sized pegs.  It stores the
// per-instance bodies in instance order and scatters / gathers pose access
// over them.
type Merged struct {
	Nm     string `desc:"name of the merged actor"`
	bodies []Body
}

// Merge combines per-instance bodies into one batched handle.  Exactly one
// body must be given for each instance 0..len(bodies)-1.
func Merge(bodies []Body, name string) (*Merged, error) {
	m := &Merged{Nm: name, bodies: make([]Body, len(bodies))}
	for _, b := range bodies {
		si := b.SceneIdx()
		if si < 0 || si >= len(bodies) {
			return nil, fmt.Errorf("%w: %s has scene index %d, batch of %d", ErrMergeIndex, b.Name(), si, len(bodies))
		}
		if m.bodies[si] != nil {
			return nil, fmt.Errorf("%w: %s and %s both in instance %d", ErrMergeIndex, m.bodies[si].Name(), b.Name(), si)
		}
		m.bodies[si] = b
	}
	return m, nil
}

func (m *Merged) Name() string { return m.Nm }

// Len is the number of instances.
func (m *Merged) Len() int { return len(m.bodies) }

// Body returns the body of instance i.
func (m *Merged) Body(i int) Body { return m.bodies[i] }

// Poses gathers the pose of every instance.
func (m *Merged) Poses() pose.Poses {
	ps := make(pose.Poses, len(m.bodies))
	for i, b := range m.bodies {
		ps[i] = b.Pose()
	}
	return ps
}

// SetPoses scatters ps[k] to instance envIdx[k].  A single pose broadcasts.
func (m *Merged) SetPoses(envIdx []int, ps pose.Poses) {
	if len(ps) != 1 && len(ps) != len(envIdx) {
		panic(fmt.Sprintf("physics: %s: %d poses for %d instances", m.Nm, len(ps), len(envIdx)))
	}
	for k, ei := range envIdx {
		p := ps[0]
		if len(ps) > 1 {
			p = ps[k]
		}
		m.bodies[ei].SetPose(p)
	}
}

// AllIdxs returns 0..n-1.
func AllIdxs(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
