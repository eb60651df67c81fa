// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"fmt"

	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Names of the merged actors, and prefixes of the per-instance ones
const (
	PegName = "peg"
	BoxName = "box_with_hole"
)

var (
	PegHeadMat = physics.Material{Color: "#EC7357", Roughness: 0.5, Specular: 0.5}
	PegTailMat = physics.Material{Color: "#EDF6F9", Roughness: 0.5, Specular: 0.5}
	BoxMat     = physics.Material{Color: "#FFD289", Roughness: 0.5, Specular: 0.5}

	pegBuildPose = pose.FromPos(0, 0, 0.1)
	boxBuildPose = pose.FromPos(0, 1, 0.1)
)

// HoleWall is one of the four boxes of a box with a hole
type HoleWall struct {
	Pose     pose.Pose
	HalfSize mat32.Vec3
}

// BoxWithHoleWalls returns the four walls whose union is a square frame of
// half size outer and half depth depth along x, around a square hole of
// half width inner whose center is offset by center in the y-z plane.
func BoxWithHoleWalls(inner, outer, depth float32, center mat32.Vec2) [4]HoleWall {
	t := (outer - inner) * 0.5
	hc := mat32.Vec2{X: center.X * 0.5, Y: center.Y * 0.5}
	o := t + inner
	return [4]HoleWall{
		{pose.FromPos(0, o+hc.X, 0), mat32.Vec3{X: depth, Y: t - hc.X, Z: outer}},
		{pose.FromPos(0, -o+hc.X, 0), mat32.Vec3{X: depth, Y: t + hc.X, Z: outer}},
		{pose.FromPos(0, 0, o+hc.Y), mat32.Vec3{X: depth, Y: outer, Z: t - hc.Y}},
		{pose.FromPos(0, 0, -o+hc.Y), mat32.Vec3{X: depth, Y: outer, Z: t + hc.Y}},
	}
}

// buildPeg builds the peg of instance i: one collision box and a two-tone
// visual split at the origin, head on +x.
func buildPeg(sc physics.Scene, i int, l, r float32) (physics.Body, error) {
	bl := sc.CreateActorBuilder()
	bl.AddBoxCollision(pose.Identity(), mat32.Vec3{X: l, Y: r, Z: r})
	half := mat32.Vec3{X: l / 2, Y: r, Z: r}
	bl.AddBoxVisual(pose.FromPos(l/2, 0, 0), half, PegHeadMat)
	bl.AddBoxVisual(pose.FromPos(-l/2, 0, 0), half, PegTailMat)
	bl.SetInitialPose(pegBuildPose)
	bl.SetSceneIdxs([]int{i})
	return bl.Build(fmt.Sprintf("%s_%d", PegName, i))
}

// buildBox builds the kinematic box with a hole of instance i
func buildBox(sc physics.Scene, i int, inner, outer, depth float32, center mat32.Vec2) (physics.Body, error) {
	bl := sc.CreateActorBuilder()
	for _, w := range BoxWithHoleWalls(inner, outer, depth, center) {
		bl.AddBoxCollision(w.Pose, w.HalfSize)
		bl.AddBoxVisual(w.Pose, w.HalfSize, BoxMat)
	}
	bl.SetInitialPose(boxBuildPose)
	bl.SetSceneIdxs([]int{i})
	return bl.BuildKinematic(fmt.Sprintf("%s_%d", BoxName, i))
}

// BuildAssets builds a peg and a box with a hole in each instance for the
// given geometry, then replaces the per-instance actors in the state
// registry with the merged peg and box.  Builder errors are returned as is.
func BuildAssets(sc physics.Scene, g *Geometry) (peg, box *physics.Merged, err error) {
	n := g.Len()
	pegs := make([]physics.Body, n)
	boxes := make([]physics.Body, n)
	reg := sc.Registry()
	for i := 0; i < n; i++ {
		l, r := g.HalfLengths[i], g.Radii[i]
		pegs[i], err = buildPeg(sc, i, l, r)
		if err != nil {
			return nil, nil, err
		}
		reg.Remove(pegs[i].Name())

		boxes[i], err = buildBox(sc, i, r+Clearance, l, l, g.Centers[i])
		if err != nil {
			return nil, nil, err
		}
		reg.Remove(boxes[i].Name())
	}
	if peg, err = physics.Merge(pegs, PegName); err != nil {
		return nil, nil, err
	}
	if box, err = physics.Merge(boxes, BoxName); err != nil {
		return nil, nil, err
	}
	reg.Add(peg)
	reg.Add(box)
	return peg, box, nil
}
