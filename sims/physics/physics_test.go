// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

type stubBody struct {
	nm  string
	si  int
	cur pose.Pose
}

func (b *stubBody) Name() string        { return b.nm }
func (b *stubBody) SceneIdx() int       { return b.si }
func (b *stubBody) Kinematic() bool     { return false }
func (b *stubBody) Pose() pose.Pose     { return b.cur }
func (b *stubBody) SetPose(p pose.Pose) { b.cur = p }

func stubs(n int, order ...int) []Body {
	bs := make([]Body, n)
	for k, si := range order {
		bs[k] = &stubBody{nm: fmt.Sprintf("peg_%d", si), si: si, cur: pose.FromPos(float32(si), 0, 0)}
	}
	return bs
}

func TestMergeOrdersByInstance(t *testing.T) {
	m, err := Merge(stubs(3, 2, 0, 1), "peg")
	require.NoError(t, err)
	assert.Equal(t, "peg", m.Name())
	assert.Equal(t, 3, m.Len())
	ps := m.Poses()
	for i := 0; i < 3; i++ {
		assert.Equal(t, float32(i), ps[i].Pos.X)
		assert.Equal(t, i, m.Body(i).SceneIdx())
	}
}

func TestMergeRejectsDuplicates(t *testing.T) {
	_, err := Merge(stubs(3, 0, 1, 1), "peg")
	assert.ErrorIs(t, err, ErrMergeIndex)
	_, err = Merge(stubs(2, 0, 5), "peg")
	assert.ErrorIs(t, err, ErrMergeIndex)
}

func TestMergedSetPosesScatter(t *testing.T) {
	m, err := Merge(stubs(3, 0, 1, 2), "peg")
	require.NoError(t, err)
	m.SetPoses([]int{2}, pose.Poses{pose.FromPos(9, 9, 9)})
	ps := m.Poses()
	assert.Equal(t, float32(9), ps[2].Pos.Z)
	assert.Equal(t, float32(1), ps[1].Pos.X)

	m.SetPoses([]int{0, 1}, pose.Poses{pose.FromPos(0, 0, 4)})
	assert.Equal(t, float32(4), m.Body(0).Pose().Pos.Z)
	assert.Equal(t, float32(4), m.Body(1).Pose().Pos.Z)

	assert.Panics(t, func() {
		m.SetPoses([]int{0, 1, 2}, make(pose.Poses, 2))
	})
}

func TestRegistryStateRoundTrip(t *testing.T) {
	rg := &Registry{}
	bs := stubs(2, 0, 1)
	for _, b := range bs {
		rg.Add(Single{b})
	}
	assert.Equal(t, []string{"peg_0", "peg_1"}, rg.Names())

	m, err := Merge(bs, "peg")
	require.NoError(t, err)
	for _, b := range bs {
		rg.Remove(b.Name())
	}
	rg.Add(m)
	assert.Equal(t, []string{"peg"}, rg.Names())
	assert.True(t, rg.Has("peg"))

	st := rg.State()
	m.SetPoses(AllIdxs(2), pose.Poses{pose.FromPos(5, 5, 5)})
	require.NoError(t, rg.SetState(st))
	assert.Equal(t, float32(1), m.Body(1).Pose().Pos.X)

	assert.ErrorIs(t, rg.SetState(State{}), ErrStateMissing)
	rg.Reset()
	assert.Empty(t, rg.Names())
}

func TestRegistrySetStateAllOrNothing(t *testing.T) {
	rg := &Registry{}
	m, err := Merge(stubs(2, 0, 1), "peg")
	require.NoError(t, err)
	rg.Add(m)
	box := &stubBody{nm: "box", cur: pose.FromPos(0, 3, 0)}
	rg.Add(Single{box})
	st := rg.State()
	moved := pose.Poses{pose.FromPos(7, 7, 7), pose.FromPos(8, 8, 8)}

	// any missing actor leaves every pose untouched, whatever the map order
	for trial := 0; trial < 50; trial++ {
		bad := State{"peg": moved}
		assert.ErrorIs(t, rg.SetState(bad), ErrStateMissing)
		assert.Equal(t, st["peg"], m.Poses())
	}

	short := State{"peg": moved[:1], "box": pose.Poses{pose.FromPos(0, 0, 1)}}
	assert.ErrorIs(t, rg.SetState(short), ErrBatchSize)
	assert.Equal(t, st["peg"], m.Poses())
	assert.Equal(t, st["box"], Single{box}.Poses())

	require.NoError(t, rg.SetState(State{"peg": moved, "box": pose.Poses{pose.FromPos(0, 0, 1)}}))
	assert.Equal(t, moved, m.Poses())
	assert.Equal(t, float32(1), box.cur.Pos.Z)
}
