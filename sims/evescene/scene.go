// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package evescene is a kinematic stand-in for the physics collaborator,
// built on eve groups and boxes.  Each instance lives in its own group,
// spaced apart along the world x axis, with a table and a robot arm.
// Bodies do not collide: held bodies follow the gripper and released
// dynamic bodies settle back onto the table.  Poses are stored z-up.
package evescene

import (
	"fmt"
	"log/slog"

	"github.com/emer/eve/eve"
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Params are the world construction parameters
type Params struct {
	NumEnvs  int         `yaml:"-" desc:"number of parallel instances"`
	Spacing  float32     `yaml:"spacing" desc:"distance between instance origins along world x"`
	Table    TableParams `yaml:"table" view:"inline" desc:"table under each instance"`
	FallStep float32     `yaml:"fall_step" desc:"max distance a released body drops per step"`
	Arm      RobotParams `yaml:"arm" view:"inline" desc:"kinematic arm"`
}

func (pr *Params) Defaults() {
	pr.NumEnvs = 1
	pr.Spacing = 4
	pr.Table.Defaults()
	pr.FallStep = 0.02
	pr.Arm.Defaults()
}

// Scene owns the eve world and implements physics.Scene
type Scene struct {
	Params
	World  *eve.Group   `view:"-" desc:"world"`
	Envs   []*eve.Group `view:"-" desc:"one group per instance"`
	Robot  *Robot       `view:"-" desc:"the arm, all instances"`
	Logger *slog.Logger `view:"-" desc:"logger"`
	Steps  int          `desc:"number of steps since the world was made"`

	reg    physics.Registry
	bodies []*Body
}

// NewScene makes the world for the given params
func NewScene(pr Params) *Scene {
	sc := &Scene{Params: pr, Logger: slog.Default()}
	sc.MakeWorld()
	return sc
}

// MakeWorld constructs the per-instance groups, tables and arms
func (sc *Scene) MakeWorld() {
	if sc.Params.NumEnvs < 1 {
		sc.Params.NumEnvs = 1
	}
	sc.World = &eve.Group{}
	sc.World.InitName(sc.World, "PegWorld")
	sc.Envs = make([]*eve.Group, sc.Params.NumEnvs)
	for i := range sc.Envs {
		eg := eve.AddNewGroup(sc.World, fmt.Sprintf("env_%d", i))
		placeGroup(eg, pose.FromPos(float32(i)*sc.Spacing, 0, 0))
		sc.Table.MakeTable(eg, "table")
		sc.Envs[i] = eg
	}
	sc.Robot = newRobot(sc)
	sc.bodies = nil
	sc.reg.Reset()
	sc.Steps = 0
	sc.World.WorldInit()
}

func (sc *Scene) NumEnvs() int { return sc.Params.NumEnvs }

func (sc *Scene) Registry() *physics.Registry { return &sc.reg }

func (sc *Scene) CreateActorBuilder() physics.ActorBuilder {
	return &Builder{sc: sc, init: pose.Identity()}
}

// Bodies returns the bodies created since the last Clear
func (sc *Scene) Bodies() []*Body { return sc.bodies }

// EnvBodies returns the bodies living in instance i
func (sc *Scene) EnvBodies(i int) []*Body {
	var bs []*Body
	for _, b := range sc.bodies {
		if b.sceneIdx == i {
			bs = append(bs, b)
		}
	}
	return bs
}

// Clear removes all built bodies, keeping tables and arms
func (sc *Scene) Clear() {
	sc.Robot.releaseAll()
	for _, b := range sc.bodies {
		b.Grp.Delete(true)
	}
	sc.Logger.Debug("cleared scene", "bodies", len(sc.bodies))
	sc.bodies = nil
	sc.reg.Reset()
}

// Step advances one tick: held bodies follow the gripper, released
// dynamic bodies drop toward their rest height, and absolute poses are
// recomputed.
func (sc *Scene) Step() error {
	sc.Robot.follow()
	for _, b := range sc.bodies {
		if b.kinematic || sc.Robot.holds(b) {
			continue
		}
		p := b.Pose()
		rest := b.RestHeight()
		if p.Pos.Z > rest {
			p.Pos.Z = mat32.Max(rest, p.Pos.Z-sc.FallStep)
			b.SetPose(p)
		}
	}
	sc.Robot.syncArms()
	sc.World.WorldRelToAbs()
	sc.Steps++
	return nil
}

// WorldPos returns the absolute position of an instance-local point
func (sc *Scene) WorldPos(envIdx int, p mat32.Vec3) mat32.Vec3 {
	return p.Add(sc.Envs[envIdx].Rel.Pos)
}

func placeGroup(g *eve.Group, p pose.Pose) {
	g.Initial.Pos = p.Pos
	g.Initial.Quat = p.Quat
	g.Rel.Pos = p.Pos
	g.Rel.Quat = p.Quat
}

func placeBox(bx *eve.Box, p pose.Pose) {
	bx.Initial.Pos = p.Pos
	bx.Initial.Quat = p.Quat
	bx.Rel.Pos = p.Pos
	bx.Rel.Quat = p.Quat
}
