// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evescene

import (
	"fmt"

	"github.com/emer/eve/eve"
	"github.com/goki/mat32"

	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Builder accumulates primitives for one actor; implements physics.ActorBuilder
type Builder struct {
	sc     *Scene
	shapes []physics.Box
	init   pose.Pose
	idxs   []int
}

func (bl *Builder) AddBoxCollision(p pose.Pose, halfSize mat32.Vec3) {
	bl.shapes = append(bl.shapes, physics.Box{Kind: physics.Collision, Pose: p, HalfSize: halfSize})
}

func (bl *Builder) AddBoxVisual(p pose.Pose, halfSize mat32.Vec3, mat physics.Material) {
	bl.shapes = append(bl.shapes, physics.Box{Kind: physics.Visual, Pose: p, HalfSize: halfSize, Mat: mat})
}

func (bl *Builder) SetInitialPose(p pose.Pose) { bl.init = p }

func (bl *Builder) SetSceneIdxs(idxs []int) { bl.idxs = append([]int(nil), idxs...) }

func (bl *Builder) Build(name string) (physics.Body, error) {
	return bl.build(name, false)
}

func (bl *Builder) BuildKinematic(name string) (physics.Body, error) {
	return bl.build(name, true)
}

// build adds the body to exactly one instance and registers it
func (bl *Builder) build(name string, kinematic bool) (*Body, error) {
	sc := bl.sc
	idxs := bl.idxs
	if len(idxs) == 0 && sc.NumEnvs() == 1 {
		idxs = []int{0}
	}
	if len(idxs) != 1 {
		return nil, fmt.Errorf("%w: %s in %d instances", ErrSceneIdxs, name, len(idxs))
	}
	si := idxs[0]
	if si < 0 || si >= sc.NumEnvs() {
		return nil, fmt.Errorf("%w: %s in instance %d of %d", ErrSceneIdxs, name, si, sc.NumEnvs())
	}
	if len(bl.shapes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoShapes, name)
	}
	grp := eve.AddNewGroup(sc.Envs[si], name)
	placeGroup(grp, bl.init)
	for k, s := range bl.shapes {
		nm := fmt.Sprintf("col-%d", k)
		if s.Kind == physics.Visual {
			nm = fmt.Sprintf("vis-%d", k)
		}
		bx := eve.AddNewBox(grp, nm, s.Pose.Pos, s.HalfSize.MulScalar(2))
		placeBox(bx, s.Pose)
		if s.Kind == physics.Visual {
			bx.Color = s.Mat.Color
		}
	}
	b := &Body{Grp: grp, Shapes: bl.shapes, nm: name, sceneIdx: si, kinematic: kinematic}
	sc.bodies = append(sc.bodies, b)
	sc.reg.Add(physics.Single{Body: b})
	sc.Logger.Debug("built body", "name", name, "instance", si, "kinematic", kinematic, "shapes", len(bl.shapes))
	return b, nil
}
