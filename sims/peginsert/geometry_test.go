// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert_test

import (
	"testing"

	"github.com/goki/mat32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnlab/peg-insertion/sims/batchrand"
	"github.com/ccnlab/peg-insertion/sims/peginsert"
	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

func defaultConfig(n int) peginsert.Config {
	var cf peginsert.Config
	cf.Defaults()
	cf.NumEnvs = n
	return cf
}

func sampleGeometry(n int, seed uint64) peginsert.Geometry {
	cf := defaultConfig(n)
	return peginsert.SampleGeometry(batchrand.New(batchrand.EpisodeSeeds(seed, 0, n)), &cf)
}

func TestGeometryRanges(t *testing.T) {
	g := sampleGeometry(64, 3)
	require.Equal(t, 64, g.Len())
	hr := g.HoleRadii()
	for i := 0; i < g.Len(); i++ {
		l, r := g.HalfLengths[i], g.Radii[i]
		assert.True(t, l >= 0.085 && l <= 0.125, "half length %v", l)
		assert.True(t, r >= 0.015 && r <= 0.025, "radius %v", r)
		assert.Equal(t, r+peginsert.Clearance, hr[i])
		lim := 0.5 * (l - r)
		assert.LessOrEqual(t, mat32.Abs(g.Centers[i].X), lim)
		assert.LessOrEqual(t, mat32.Abs(g.Centers[i].Y), lim)
	}
}

func TestGeometryReproducible(t *testing.T) {
	assert.Equal(t, sampleGeometry(4, 9), sampleGeometry(4, 9))
	assert.NotEqual(t, sampleGeometry(4, 9).HalfLengths, sampleGeometry(4, 10).HalfLengths)
}

func TestOffsets(t *testing.T) {
	g := sampleGeometry(8, 1)
	heads := g.PegHeadOffsets()
	holes := g.BoxHoleOffsets()
	hs := g.PegHalfSizes()
	for i := range heads {
		assert.Equal(t, g.HalfLengths[i], heads[i].Pos.X)
		assert.Zero(t, heads[i].Pos.Y)
		assert.Zero(t, heads[i].Pos.Z)
		assert.Equal(t, pose.IdentityQuat(), heads[i].Quat)
		assert.Zero(t, holes[i].Pos.X)
		assert.Equal(t, g.Centers[i].X, holes[i].Pos.Y)
		assert.Equal(t, g.Centers[i].Y, holes[i].Pos.Z)
		assert.Equal(t, mat32.Vec3{X: g.HalfLengths[i], Y: g.Radii[i], Z: g.Radii[i]}, hs[i])
	}
}

func TestBoxWithHoleWalls(t *testing.T) {
	inner, outer := float32(0.023), float32(0.1)
	c := mat32.Vec2{X: 0.02, Y: -0.01}
	ws := peginsert.BoxWithHoleWalls(inner, outer, outer, c)
	for _, w := range ws {
		assert.Greater(t, w.HalfSize.Y, float32(0))
		assert.Greater(t, w.HalfSize.Z, float32(0))
		assert.Equal(t, outer, w.HalfSize.X)
	}
	// +y and -y walls bound the hole in y, and reach the outer edge
	assert.InDelta(t, c.X+inner, ws[0].Pose.Pos.Y-ws[0].HalfSize.Y, 1e-6)
	assert.InDelta(t, outer, ws[0].Pose.Pos.Y+ws[0].HalfSize.Y, 1e-6)
	assert.InDelta(t, c.X-inner, ws[1].Pose.Pos.Y+ws[1].HalfSize.Y, 1e-6)
	assert.InDelta(t, -outer, ws[1].Pose.Pos.Y-ws[1].HalfSize.Y, 1e-6)
	// +z and -z walls in z
	assert.InDelta(t, c.Y+inner, ws[2].Pose.Pos.Z-ws[2].HalfSize.Z, 1e-6)
	assert.InDelta(t, c.Y-inner, ws[3].Pose.Pos.Z+ws[3].HalfSize.Z, 1e-6)
	assert.InDelta(t, -outer, ws[3].Pose.Pos.Z-ws[3].HalfSize.Z, 1e-6)
}

func TestBuildAssets(t *testing.T) {
	g := sampleGeometry(3, 5)
	sc := &fakeScene{n: 3}
	peg, box, err := peginsert.BuildAssets(sc, &g)
	require.NoError(t, err)
	assert.Equal(t, []string{peginsert.BoxName, peginsert.PegName}, sc.Registry().Names())
	require.Len(t, sc.bodies, 6)
	for i := 0; i < 3; i++ {
		pb := peg.Body(i).(*fakeBody)
		assert.Equal(t, i, pb.SceneIdx())
		assert.False(t, pb.Kinematic())
		require.Len(t, pb.shapes, 3)
		assert.Equal(t, physics.Collision, pb.shapes[0].Kind)
		assert.Equal(t, mat32.Vec3{X: g.HalfLengths[i], Y: g.Radii[i], Z: g.Radii[i]}, pb.shapes[0].HalfSize)
		assert.Equal(t, peginsert.PegHeadMat, pb.shapes[1].Mat)
		assert.Greater(t, pb.shapes[1].Pose.Pos.X, float32(0))
		assert.Equal(t, peginsert.PegTailMat, pb.shapes[2].Mat)
		assert.InDelta(t, 0.1, pb.Pose().Pos.Z, 1e-6)

		bb := box.Body(i).(*fakeBody)
		assert.True(t, bb.Kinematic())
		assert.Len(t, bb.shapes, 8)
		assert.InDelta(t, 1, bb.Pose().Pos.Y, 1e-6)
	}
}

func TestBuildAssetsPropagatesErrors(t *testing.T) {
	g := sampleGeometry(2, 5)
	sc := &fakeScene{n: 2, failOn: "box_with_hole_1"}
	_, _, err := peginsert.BuildAssets(sc, &g)
	assert.ErrorIs(t, err, errBuild)
}
