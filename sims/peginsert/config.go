// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import (
	"fmt"

	"github.com/emer/etable/minmax"
	"github.com/goki/mat32"
)

// ObsModes selects which keys the observation mapping carries
type ObsModes string

const (
	// ObsState adds the peg and hole state to the tool-center-point pose
	ObsState ObsModes = "state"

	// ObsNone returns only the tool-center-point pose
	ObsNone ObsModes = "none"
)

// Config has the task parameters
type Config struct {
	NumEnvs      int      `yaml:"num_envs" desc:"number of parallel instances"`
	Seed         uint64   `yaml:"seed" desc:"main seed from which episode seeds are drawn when not given"`
	ReconfigFreq int      `yaml:"reconfig_freq" desc:"rebuild geometry every this many resets; 0 = only on the first reset; negative = 1 for a single instance, else 0"`
	MaxSteps     int      `yaml:"max_steps" desc:"episode length after which instances are truncated"`
	ObsMode      ObsModes `yaml:"obs_mode" desc:"state adds peg and hole keys to observations, none returns only the tool-center-point pose"`

	HalfLength minmax.F32 `yaml:"half_length" desc:"range of peg half length, which is also the box half size"`
	Radius     minmax.F32 `yaml:"radius" desc:"range of peg radius (half width)"`

	PegX   minmax.F32 `yaml:"peg_x" desc:"range of initial peg x"`
	PegY   minmax.F32 `yaml:"peg_y" desc:"range of initial peg y"`
	PegYaw minmax.F32 `yaml:"peg_yaw" desc:"range of initial peg rotation about z, radians"`
	BoxX   minmax.F32 `yaml:"box_x" desc:"range of initial box x"`
	BoxY   minmax.F32 `yaml:"box_y" desc:"range of initial box y"`
	BoxYaw minmax.F32 `yaml:"box_yaw" desc:"range of initial box rotation about z, radians"`

	Qpos       []float32  `yaml:"qpos" desc:"nominal robot joint configuration, fingers last"`
	QposNoise  float32    `yaml:"qpos_noise" desc:"std dev of gaussian noise added to every arm joint at reset"`
	FingerOpen float32    `yaml:"finger_open" desc:"value the two finger joints are forced to at reset"`
	RobotRoot  mat32.Vec3 `yaml:"robot_root" desc:"position of the robot base"`

	GraspOffset   mat32.Vec3 `yaml:"grasp_offset" desc:"reach target in the peg frame, backed off for the gripper width"`
	GraspMaxAngle float32    `yaml:"grasp_max_angle" desc:"max contact angle in degrees for the peg to count as grasped"`
}

func (cf *Config) Defaults() {
	cf.NumEnvs = 1
	cf.Seed = 0
	cf.ReconfigFreq = -1
	cf.MaxSteps = 100
	cf.ObsMode = ObsState

	cf.HalfLength = minmax.F32{Min: 0.085, Max: 0.125}
	cf.Radius = minmax.F32{Min: 0.015, Max: 0.025}

	cf.PegX = minmax.F32{Min: -0.1, Max: 0.1}
	cf.PegY = minmax.F32{Min: -0.3, Max: 0}
	cf.PegYaw = minmax.F32{Min: mat32.Pi/2 - mat32.Pi/3, Max: mat32.Pi/2 + mat32.Pi/3}
	cf.BoxX = minmax.F32{Min: -0.05, Max: 0.05}
	cf.BoxY = minmax.F32{Min: 0.2, Max: 0.4}
	cf.BoxYaw = minmax.F32{Min: mat32.Pi/2 - mat32.Pi/8, Max: mat32.Pi/2 + mat32.Pi/8}

	cf.Qpos = []float32{0, mat32.Pi / 8, 0, -mat32.Pi * 5 / 8, 0, mat32.Pi * 3 / 4, -mat32.Pi / 4, 0.04, 0.04}
	cf.QposNoise = 0.02
	cf.FingerOpen = 0.04
	cf.RobotRoot = mat32.Vec3{X: -0.615, Y: 0, Z: 0}

	cf.GraspOffset = mat32.Vec3{X: -0.06, Y: 0, Z: 0}
	cf.GraspMaxAngle = 20
}

// ReconfigEvery resolves ReconfigFreq for the configured number of instances
func (cf *Config) ReconfigEvery() int {
	if cf.ReconfigFreq >= 0 {
		return cf.ReconfigFreq
	}
	if cf.NumEnvs == 1 {
		return 1
	}
	return 0
}

// Validate checks the parameters for consistency
func (cf *Config) Validate() error {
	if cf.NumEnvs < 1 {
		return fmt.Errorf("%w: num_envs %d", ErrConfig, cf.NumEnvs)
	}
	if cf.MaxSteps < 1 {
		return fmt.Errorf("%w: max_steps %d", ErrConfig, cf.MaxSteps)
	}
	switch cf.ObsMode {
	case ObsState, ObsNone:
	default:
		return fmt.Errorf("%w: obs_mode %q", ErrConfig, cf.ObsMode)
	}
	for _, r := range []struct {
		nm string
		mm minmax.F32
	}{
		{"half_length", cf.HalfLength}, {"radius", cf.Radius},
		{"peg_x", cf.PegX}, {"peg_y", cf.PegY}, {"peg_yaw", cf.PegYaw},
		{"box_x", cf.BoxX}, {"box_y", cf.BoxY}, {"box_yaw", cf.BoxYaw},
	} {
		if r.mm.Min > r.mm.Max {
			return fmt.Errorf("%w: %s min %g > max %g", ErrConfig, r.nm, r.mm.Min, r.mm.Max)
		}
	}
	if cf.Radius.Min <= 0 || cf.HalfLength.Min <= cf.Radius.Max {
		return fmt.Errorf("%w: half_length %v must exceed radius %v", ErrConfig, cf.HalfLength, cf.Radius)
	}
	if len(cf.Qpos) < 2 {
		return fmt.Errorf("%w: qpos needs two finger joints, has %d values", ErrConfig, len(cf.Qpos))
	}
	if overlaps(cf.PegX, cf.BoxX) && overlaps(cf.PegY, cf.BoxY) {
		return fmt.Errorf("%w: peg and box spawn rectangles overlap", ErrConfig)
	}
	return nil
}

// overlaps reports whether two closed ranges share any point
func overlaps(a, b minmax.F32) bool {
	return a.Min <= b.Max && b.Min <= a.Max
}
