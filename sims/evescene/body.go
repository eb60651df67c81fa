// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evescene

import (
	"github.com/emer/eve/eve"
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Body is an eve group of boxes living in one instance.  Its pose is the
// group's pose relative to the instance group.
type Body struct {
	Grp       *eve.Group    `view:"-" desc:"group holding the primitives"`
	Shapes    []physics.Box `desc:"primitives in the body frame"`
	nm        string
	sceneIdx  int
	kinematic bool
}

func (b *Body) Name() string    { return b.nm }
func (b *Body) SceneIdx() int   { return b.sceneIdx }
func (b *Body) Kinematic() bool { return b.kinematic }

func (b *Body) Pose() pose.Pose {
	return pose.New(b.Grp.Rel.Pos, b.Grp.Rel.Quat)
}

func (b *Body) SetPose(p pose.Pose) {
	b.Grp.Rel.Pos = p.Pos
	b.Grp.Rel.Quat = p.Quat
}

// Bounds returns the axis-aligned bounds of the collision primitives in
// the body frame.  Primitive rotations are ignored.
func (b *Body) Bounds() (lo, hi mat32.Vec3) {
	first := true
	for _, s := range b.Shapes {
		if s.Kind != physics.Collision {
			continue
		}
		slo := s.Pose.Pos.Sub(s.HalfSize)
		shi := s.Pose.Pos.Add(s.HalfSize)
		if first {
			lo, hi = slo, shi
			first = false
			continue
		}
		lo = mat32.Vec3{X: mat32.Min(lo.X, slo.X), Y: mat32.Min(lo.Y, slo.Y), Z: mat32.Min(lo.Z, slo.Z)}
		hi = mat32.Vec3{X: mat32.Max(hi.X, shi.X), Y: mat32.Max(hi.Y, shi.Y), Z: mat32.Max(hi.Z, shi.Z)}
	}
	return
}

// RestHeight is the origin height at which the body, lying flat, touches
// the table.
func (b *Body) RestHeight() float32 {
	lo, _ := b.Bounds()
	return -lo.Z
}

// Contains reports whether the instance-local point p lies within the
// collision bounds grown by tol.
func (b *Body) Contains(p mat32.Vec3, tol mat32.Vec3) bool {
	loc := b.Pose().Inv().Transform(p)
	lo, hi := b.Bounds()
	return loc.X >= lo.X-tol.X && loc.X <= hi.X+tol.X &&
		loc.Y >= lo.Y-tol.Y && loc.Y <= hi.Y+tol.Y &&
		loc.Z >= lo.Z-tol.Z && loc.Z <= hi.Z+tol.Z
}
