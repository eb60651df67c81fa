// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"fmt"

	"github.com/emer/etable/minmax"
	"github.com/goki/mat32"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/ccnlab/peg-insertion/sims/batchrand"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

func interval(mm minmax.F32) r1.Interval {
	return r1.Interval{Min: float64(mm.Min), Max: float64(mm.Max)}
}

// Placement is a sampled initial state for a subset of instances
type Placement struct {
	Peg  pose.Poses  `desc:"peg poses, lying flat on the table"`
	Box  pose.Poses  `desc:"box poses, resting on the table"`
	Qpos [][]float32 `desc:"robot joint configurations"`
}

// SamplePlacement draws initial poses and joints for the instances envIdx,
// with rng holding one generator per entry of envIdx.  Pegs rest on their
// side at z = radius and boxes at z = half length.
func SamplePlacement(cf *Config, g *Geometry, envIdx []int, rng *batchrand.Batch) Placement {
	if rng.Len() != len(envIdx) {
		panic(fmt.Sprintf("peginsert: %d generators for %d instances", rng.Len(), len(envIdx)))
	}
	pxy := rng.UniformXY(interval(cf.PegX), interval(cf.PegY))
	pq := rng.Yaw(cf.PegYaw.Min, cf.PegYaw.Max)
	bxy := rng.UniformXY(interval(cf.BoxX), interval(cf.BoxY))
	bq := rng.Yaw(cf.BoxYaw.Min, cf.BoxYaw.Max)
	nj := len(cf.Qpos)
	noise := rng.Normal(0, cf.QposNoise, nj)

	pl := Placement{
		Peg:  make(pose.Poses, len(envIdx)),
		Box:  make(pose.Poses, len(envIdx)),
		Qpos: make([][]float32, len(envIdx)),
	}
	for k, i := range envIdx {
		pl.Peg[k] = pose.New(mat32.Vec3{X: pxy[k].X, Y: pxy[k].Y, Z: g.Radii[i]}, pq[k])
		pl.Box[k] = pose.New(mat32.Vec3{X: bxy[k].X, Y: bxy[k].Y, Z: g.HalfLengths[i]}, bq[k])
		q := make([]float32, nj)
		for j := range q {
			q[j] = cf.Qpos[j] + noise[k][j]
		}
		q[nj-2], q[nj-1] = cf.FingerOpen, cf.FingerOpen
		pl.Qpos[k] = q
	}
	return pl
}

// InitializeEpisode places the pegs, boxes and robot of the instances
// envIdx.  Robot errors are returned as is.
func (ev *Env) InitializeEpisode(envIdx []int, rng *batchrand.Batch) error {
	pl := SamplePlacement(&ev.Cfg, &ev.Geom, envIdx, rng)
	ev.Peg.SetPoses(envIdx, pl.Peg)
	ev.Box.SetPoses(envIdx, pl.Box)
	if err := ev.Robot.SetQpos(envIdx, pl.Qpos); err != nil {
		return err
	}
	ev.Robot.SetRootPose(envIdx, pose.New(ev.Cfg.RobotRoot, pose.IdentityQuat()))
	return nil
}
