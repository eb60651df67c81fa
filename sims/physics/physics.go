// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package physics defines the contract between the task logic and the
// simulator that owns bodies, contacts and the robot.  Task code only ever
// talks to these interfaces, which are injected at construction, so it can be
// exercised against any backend (see evescene for an eve-based one).
package physics

import (
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Material is the visual appearance of a primitive.
type Material struct {
	Color     string  `desc:"base color as hex string, e.g. #EC7357"`
	Roughness float32 `desc:"surface roughness"`
	Specular  float32 `desc:"specular intensity"`
}

// ShapeKinds distinguishes collision from visual-only primitives.
type ShapeKinds int32

const (
	// Collision primitives take part in contacts
	Collision ShapeKinds = iota

	// Visual primitives are only rendered
	Visual

	ShapeKindsN
)

// Box is a box primitive attached to a body, expressed in the body frame.
type Box struct {
	Kind     ShapeKinds `desc:"collision or visual"`
	Pose     pose.Pose  `desc:"pose in the body frame"`
	HalfSize mat32.Vec3 `desc:"half extents along each local axis"`
	Mat      Material   `desc:"appearance, visual only"`
}

// ActorBuilder accumulates primitives for one actor and then builds it.
type ActorBuilder interface {
	AddBoxCollision(p pose.Pose, halfSize mat32.Vec3)
	AddBoxVisual(p pose.Pose, halfSize mat32.Vec3, mat Material)

	// SetInitialPose sets the pose the body is created at.
	SetInitialPose(p pose.Pose)

	// SetSceneIdxs restricts the actor to the given instances.
	SetSceneIdxs(idxs []int)

	// Build creates a dynamic body.
	Build(name string) (Body, error)

	// BuildKinematic creates a body that is not moved by the solver.
	BuildKinematic(name string) (Body, error)
}

// Body is one rigid body living in a single instance.
type Body interface {
	Name() string
	SceneIdx() int
	Kinematic() bool
	Pose() pose.Pose
	SetPose(p pose.Pose)
}

// Scene is the simulation context that all actors live in.
type Scene interface {
	// NumEnvs is the number of parallel instances.
	NumEnvs() int

	// CreateActorBuilder returns a fresh builder.
	CreateActorBuilder() ActorBuilder

	// Clear removes all actors created since the last Clear, before a rebuild.
	Clear()

	// Registry is the set of actors included in saved / restored state.
	Registry() *Registry

	// Step advances the simulation one tick.
	Step() error
}

// Action is one control command for one robot instance.
type Action struct {
	DPos    mat32.Vec3 `desc:"requested tool-center-point translation, world frame"`
	DYaw    float32    `desc:"requested rotation about world z, radians"`
	Gripper float32    `desc:"gripper command: >= 0 opens, < 0 closes"`
}

// Robot is the arm collaborator.
type Robot interface {
	// NumJoints is the length of a joint configuration, fingers included.
	NumJoints() int

	// TCPPoses is the tool-center-point pose of each instance.
	TCPPoses() pose.Poses

	// Qpos returns the joint configuration of each instance.
	Qpos() [][]float32

	// SetQpos sets the joint configuration of the given instances.
	SetQpos(envIdx []int, qpos [][]float32) error

	// SetRootPose places the robot base of the given instances.
	SetRootPose(envIdx []int, p pose.Pose)

	// IsGrasping reports, per instance, whether obj is held with contact
	// directions within maxAngle degrees of the gripper closing axis.
	IsGrasping(obj *Merged, maxAngle float32) []bool

	// ApplyActions executes one command per instance.
	ApplyActions(acts []Action) error
}
