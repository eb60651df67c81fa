// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package peginsert is the side peg insertion task over a batch of
// independently randomized instances: each instance gets its own peg and
// box with a hole, and the task derives the head, hole and goal frames
// from the live poses to evaluate success and a staged dense reward.
// The simulator and robot are injected as physics collaborators.
package peginsert

import (
	"fmt"
	"log/slog"

	"github.com/emer/emergent/env"
	"github.com/emer/etable/etensor"

	"github.com/ccnlab/peg-insertion/sims/batchrand"
	"github.com/ccnlab/peg-insertion/sims/physics"
	"github.com/ccnlab/peg-insertion/sims/pose"
)

// Env manages the batched peg insertion task
type Env struct {
	Nm             string     `desc:"name of this environment"`
	Dsc            string     `desc:"description of this environment"`
	Cfg            Config     `view:"inline" desc:"task parameters"`
	Episode        env.Ctr    `view:"inline" desc:"number of resets, full or partial"`
	Tick           env.Ctr    `view:"inline" desc:"steps since the last full reset"`
	Reconfig       env.Ctr    `view:"inline" desc:"number of geometry rebuilds"`
	Geom           Geometry   `desc:"randomized shapes of the current configuration"`
	PegHeadOffsets pose.Poses `desc:"peg origin to head, fixed until the next rebuild"`
	BoxHoleOffsets pose.Poses `desc:"box origin to hole center, fixed until the next rebuild"`
	HoleRadii      []float32  `desc:"hole half width of each instance"`
	Elapsed        []int      `desc:"steps since each instance was last reset"`
	Seeds          []uint64   `desc:"episode seed each instance was last reset with"`

	CurObs    Obs             `desc:"observation from the last reset or step"`
	CurReward etensor.Float32 `desc:"reward of each instance from the last step, as Env"`
	CurAct    etensor.Float32 `desc:"pending action as Env x ActionDims, applied by StepPending"`

	Peg    *physics.Merged `view:"-" desc:"the pegs of all instances"`
	Box    *physics.Merged `view:"-" desc:"the boxes of all instances"`
	Scene  physics.Scene   `view:"-" desc:"simulation context"`
	Robot  physics.Robot   `view:"-" desc:"the arm"`
	Logger *slog.Logger    `view:"-" desc:"logger"`

	seeder        *batchrand.Seeder
	sinceReconfig int
}

// StepResult is what one step returns for every instance
type StepResult struct {
	Obs        Obs
	Reward     []float32
	Terms      []RewardTerms
	Terminated []bool
	Truncated  []bool
	Info       Info
}

// NewEnv validates the config and binds the collaborators.  Nothing is
// built until the first Reset.
func NewEnv(cf Config, sc physics.Scene, rb physics.Robot) (*Env, error) {
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	if sc.NumEnvs() != cf.NumEnvs {
		return nil, fmt.Errorf("%w: scene has %d instances, config %d", ErrConfig, sc.NumEnvs(), cf.NumEnvs)
	}
	if rb.NumJoints() != len(cf.Qpos) {
		return nil, fmt.Errorf("%w: robot has %d joints, qpos %d", ErrConfig, rb.NumJoints(), len(cf.Qpos))
	}
	ev := &Env{
		Nm:      "PegInsertionSide",
		Dsc:     "insert a randomized peg into a matching hole from the side",
		Cfg:     cf,
		Scene:   sc,
		Robot:   rb,
		Logger:  slog.Default(),
		Elapsed: make([]int, cf.NumEnvs),
		Seeds:   make([]uint64, cf.NumEnvs),
		seeder:  batchrand.NewSeeder(cf.Seed),
	}
	ev.Episode.Init()
	ev.Tick.Init()
	ev.Reconfig.Init()
	ev.CurReward.SetShape([]int{cf.NumEnvs}, nil, []string{"Env"})
	ev.CurAct.SetShape([]int{cf.NumEnvs, ActionDims}, nil, []string{"Env", "Act"})
	return ev, nil
}

func (ev *Env) Name() string { return ev.Nm }
func (ev *Env) Desc() string { return ev.Dsc }

func (ev *Env) Validate() error {
	return ev.Cfg.Validate()
}

// NumEnvs is the number of instances
func (ev *Env) NumEnvs() int { return ev.Cfg.NumEnvs }

// Built reports whether the geometry has been built
func (ev *Env) Built() bool { return ev.Peg != nil }

// Reconfigure samples new geometry from rng, which must hold one generator
// per instance, and rebuilds every peg and box.
func (ev *Env) Reconfigure(rng *batchrand.Batch) error {
	if rng.Len() != ev.NumEnvs() {
		return fmt.Errorf("%w: %d seeds for %d instances", ErrSeedCount, rng.Len(), ev.NumEnvs())
	}
	ev.Scene.Clear()
	ev.Peg, ev.Box = nil, nil
	g := SampleGeometry(rng, &ev.Cfg)
	peg, box, err := BuildAssets(ev.Scene, &g)
	if err != nil {
		return err
	}
	ev.Geom = g
	ev.Peg, ev.Box = peg, box
	ev.PegHeadOffsets = g.PegHeadOffsets()
	ev.BoxHoleOffsets = g.BoxHoleOffsets()
	ev.HoleRadii = g.HoleRadii()
	ev.Reconfig.Incr()
	ev.sinceReconfig = 0
	ev.Logger.Debug("reconfigured", "envs", g.Len(), "count", ev.Reconfig.Cur)
	return nil
}

func (ev *Env) needReconfig() bool {
	if !ev.Built() {
		return true
	}
	every := ev.Cfg.ReconfigEvery()
	return every > 0 && ev.sinceReconfig >= every
}

// checkIdxs rejects out of range or repeated instance indices
func checkIdxs(envIdx []int, n int) error {
	seen := make([]bool, n)
	for _, i := range envIdx {
		if i < 0 || i >= n || seen[i] {
			return fmt.Errorf("%w: instance index %d of %d in %v", physics.ErrBatchSize, i, n, envIdx)
		}
		seen[i] = true
	}
	return nil
}

// Reset starts new episodes.  A nil envIdx resets all instances, and may
// rebuild the geometry per the reconfiguration frequency; a subset only
// re-places its instances.  A nil seeds draws fresh seeds from the main
// seed, otherwise one seed per reset instance is required.
func (ev *Env) Reset(envIdx []int, seeds []uint64) (Obs, Info, error) {
	full := envIdx == nil
	if full {
		envIdx = physics.AllIdxs(ev.NumEnvs())
	} else if !ev.Built() {
		return nil, Info{}, ErrNotReset
	} else if err := checkIdxs(envIdx, ev.NumEnvs()); err != nil {
		return nil, Info{}, err
	}
	if seeds == nil {
		seeds = ev.seeder.Next(len(envIdx))
	} else if len(seeds) != len(envIdx) {
		return nil, Info{}, fmt.Errorf("%w: %d seeds for %d instances", ErrSeedCount, len(seeds), len(envIdx))
	}
	rng := batchrand.New(seeds)
	if full && ev.needReconfig() {
		if err := ev.Reconfigure(rng); err != nil {
			return nil, Info{}, err
		}
	}
	if err := ev.InitializeEpisode(envIdx, rng); err != nil {
		return nil, Info{}, err
	}
	for k, i := range envIdx {
		ev.Elapsed[i] = 0
		ev.Seeds[i] = seeds[k]
	}
	if full {
		ev.sinceReconfig++
		ev.Tick.Init()
	}
	ev.Episode.Incr()
	ev.Logger.Debug("reset", "envs", len(envIdx), "full", full, "episode", ev.Episode.Cur)
	ev.CurObs = ev.Obs()
	return ev.CurObs, ev.Evaluate(), nil
}

// Step applies one action per instance, advances the simulation, and
// evaluates the result.  Collaborator errors are returned as is.
func (ev *Env) Step(acts []physics.Action) (*StepResult, error) {
	if !ev.Built() {
		return nil, ErrNotReset
	}
	if err := ev.Robot.ApplyActions(acts); err != nil {
		return nil, err
	}
	if err := ev.Scene.Step(); err != nil {
		return nil, err
	}
	ev.Tick.Incr()
	info := ev.Evaluate()
	terms := ev.RewardTerms(&info)
	res := &StepResult{
		Obs:        ev.Obs(),
		Reward:     Totals(terms),
		Terms:      terms,
		Terminated: append([]bool(nil), info.Success...),
		Truncated:  make([]bool, ev.NumEnvs()),
		Info:       info,
	}
	for i := range ev.Elapsed {
		ev.Elapsed[i]++
		res.Truncated[i] = ev.Elapsed[i] >= ev.Cfg.MaxSteps
	}
	ev.CurObs = res.Obs
	copy(ev.CurReward.Values, res.Reward)
	return res, nil
}

// GetState snapshots the poses of the merged peg and box
func (ev *Env) GetState() physics.State {
	return ev.Scene.Registry().State()
}

// SetState restores a snapshot taken with GetState
func (ev *Env) SetState(st physics.State) error {
	if !ev.Built() {
		return ErrNotReset
	}
	return ev.Scene.Registry().SetState(st)
}
