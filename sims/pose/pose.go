// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pose provides rigid-body transforms (rotation + translation) and
// their batched form, one transform per environment instance.
//
// A Pose maps points from its local frame into its parent frame:
// world = Quat * local + Pos.  Composition a.Mul(b) yields the pose of frame b
// (expressed relative to a) in a's parent frame, so chains read left to right
// exactly like the frame chain they describe:
//
//	goal := box.Mul(holeOffset).Mul(headOffset.Inv())
package pose

import (
	"fmt"

	"github.com/goki/mat32"
)

// RawLen is the number of values in the raw pose layout: x, y, z, qw, qx, qy, qz.
const RawLen = 7

// Pose is a rigid transform.
type Pose struct {
	Pos  mat32.Vec3 `desc:"translation, applied after rotation"`
	Quat mat32.Quat `desc:"rotation, unit quaternion"`
}

// IdentityQuat returns the identity rotation.
func IdentityQuat() mat32.Quat {
	return mat32.NewQuat(0, 0, 0, 1)
}

// Identity returns the identity transform.
func Identity() Pose {
	return Pose{Quat: IdentityQuat()}
}

// New returns a pose with given translation and rotation.
func New(pos mat32.Vec3, q mat32.Quat) Pose {
	return Pose{Pos: pos, Quat: q}
}

// FromPos returns a pure translation.
func FromPos(x, y, z float32) Pose {
	return Pose{Pos: mat32.Vec3{x, y, z}, Quat: IdentityQuat()}
}

// FromYaw returns a pose at pos rotated by yaw radians about the z axis.
func FromYaw(pos mat32.Vec3, yaw float32) Pose {
	return Pose{Pos: pos, Quat: mat32.NewQuatAxisAngle(mat32.Vec3{0, 0, 1}, yaw)}
}

// conj is the conjugate, which is the inverse for unit quaternions.
func conj(q mat32.Quat) mat32.Quat {
	return mat32.Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Mul composes p with o: the result maps o's local frame into p's parent frame.
func (p Pose) Mul(o Pose) Pose {
	return Pose{
		Pos:  p.Pos.Add(o.Pos.MulQuat(p.Quat)),
		Quat: p.Quat.Mul(o.Quat),
	}
}

// Inv returns the inverse transform, so that p.Mul(p.Inv()) is the identity.
func (p Pose) Inv() Pose {
	qi := conj(p.Quat)
	return Pose{
		Pos:  p.Pos.MulQuat(qi).MulScalar(-1),
		Quat: qi,
	}
}

// Transform maps a point in p's local frame into its parent frame.
func (p Pose) Transform(v mat32.Vec3) mat32.Vec3 {
	return v.MulQuat(p.Quat).Add(p.Pos)
}

// Rotate applies only the rotation of p to direction v.
func (p Pose) Rotate(v mat32.Vec3) mat32.Vec3 {
	return v.MulQuat(p.Quat)
}

// Yaw returns the rotation about the z axis encoded in the quaternion,
// in radians within [-pi, pi].
func (p Pose) Yaw() float32 {
	q := p.Quat
	return mat32.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
}

// Raw returns the pose as x, y, z, qw, qx, qy, qz.
func (p Pose) Raw() [RawLen]float32 {
	return [RawLen]float32{p.Pos.X, p.Pos.Y, p.Pos.Z, p.Quat.W, p.Quat.X, p.Quat.Y, p.Quat.Z}
}

// FromRaw is the inverse of Raw.
func FromRaw(r [RawLen]float32) Pose {
	return Pose{
		Pos:  mat32.Vec3{r[0], r[1], r[2]},
		Quat: mat32.Quat{X: r[4], Y: r[5], Z: r[6], W: r[3]},
	}
}

func (p Pose) String() string {
	return fmt.Sprintf("Pose(p=[%g %g %g], q=[%g %g %g %g])",
		p.Pos.X, p.Pos.Y, p.Pos.Z, p.Quat.W, p.Quat.X, p.Quat.Y, p.Quat.Z)
}
