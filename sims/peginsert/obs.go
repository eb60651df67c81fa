// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"sort"

	"github.com/emer/etable/etensor"
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Observation keys
const (
	KeyTCPPose       = "tcp_pose"
	KeyPegPose       = "peg_pose"
	KeyPegHalfSize   = "peg_half_size"
	KeyBoxHolePose   = "box_hole_pose"
	KeyBoxHoleRadius = "box_hole_radius"
)

// Obs maps observation keys to tensors whose outer dimension is the instance
type Obs map[string]*etensor.Float32

// Keys returns the keys in sorted order
func (ob Obs) Keys() []string {
	ks := make([]string, 0, len(ob))
	for k := range ob {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// PoseTensor lays out poses as Env x 7 raw values: x, y, z, qw, qx, qy, qz
func PoseTensor(ps pose.Poses) *etensor.Float32 {
	tsr := etensor.NewFloat32([]int{len(ps), pose.RawLen}, nil, []string{"Env", "Pose"})
	copy(tsr.Values, ps.Raw())
	return tsr
}

// Vec3Tensor lays out vectors as Env x 3
func Vec3Tensor(vs []mat32.Vec3) *etensor.Float32 {
	tsr := etensor.NewFloat32([]int{len(vs), 3}, nil, []string{"Env", "XYZ"})
	for i, v := range vs {
		tsr.Values[i*3] = v.X
		tsr.Values[i*3+1] = v.Y
		tsr.Values[i*3+2] = v.Z
	}
	return tsr
}

// ScalarTensor lays out one value per instance
func ScalarTensor(vs []float32) *etensor.Float32 {
	tsr := etensor.NewFloat32([]int{len(vs)}, nil, []string{"Env"})
	copy(tsr.Values, vs)
	return tsr
}

// Obs builds the observation mapping from the live state
func (ev *Env) Obs() Obs {
	ob := Obs{KeyTCPPose: PoseTensor(ev.Robot.TCPPoses())}
	if ev.Cfg.ObsMode == ObsState {
		ob[KeyPegPose] = PoseTensor(ev.Peg.Poses())
		ob[KeyPegHalfSize] = Vec3Tensor(ev.Geom.PegHalfSizes())
		ob[KeyBoxHolePose] = PoseTensor(ev.BoxHolePoses())
		ob[KeyBoxHoleRadius] = ScalarTensor(ev.HoleRadii)
	}
	return ob
}
