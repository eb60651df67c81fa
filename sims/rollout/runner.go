// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rollout drives the scripted policy through the peg insertion
// task on the kinematic eve scene, over several independent runs in
// parallel, recording etable logs and prometheus metrics.
package rollout

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/emer/emergent/env"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/ccnlab/peg-insertion/sims/evescene"
	"github.com/ccnlab/peg-insertion/sims/peginsert"
	"github.com/ccnlab/peg-insertion/sims/policy"
)

// Runner runs rollouts and owns their logs and metrics
type Runner struct {
	RunID   string       `desc:"unique id of this rollout, used in log file names"`
	Cfg     Config       `desc:"rollout parameters"`
	Logs    *Logs        `view:"-" desc:"episode and step logs"`
	Metrics *Metrics     `view:"-" desc:"prometheus metrics"`
	Logger  *slog.Logger `view:"-" desc:"logger"`
}

// Summary aggregates the episode log
type Summary struct {
	RunID       string  `json:"run_id" yaml:"run_id"`
	Episodes    int     `json:"episodes" yaml:"episodes"`
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`
	MeanReturn  float64 `json:"mean_return" yaml:"mean_return"`
	StdReturn   float64 `json:"std_return" yaml:"std_return"`
	MeanSteps   float64 `json:"mean_steps" yaml:"mean_steps"`
}

// NewRunner validates cf, registers metrics on reg and opens the logs
func NewRunner(cf Config, reg prometheus.Registerer, logger *slog.Logger) (*Runner, error) {
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	rn := &Runner{
		RunID:   uuid.NewString(),
		Cfg:     cf,
		Metrics: NewMetrics(reg),
		Logger:  logger,
	}
	lg, err := NewLogs(cf.LogDir, cf.LogName, rn.RunID, cf.StepLog)
	if err != nil {
		return nil, err
	}
	rn.Logs = lg
	return rn, nil
}

// Close closes the log files
func (rn *Runner) Close() error {
	return rn.Logs.Close()
}

// Run executes all runs, at most Workers at once, and stops at the first
// error or when ctx is done
func (rn *Runner) Run(ctx context.Context) (*Summary, error) {
	rn.Logger.Info("rollout start", "run_id", rn.RunID, "runs", rn.Cfg.Runs,
		"episodes", rn.Cfg.Episodes, "envs", rn.Cfg.Task.NumEnvs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rn.Cfg.Workers)
	for r := 0; r < rn.Cfg.Runs; r++ {
		r := r
		g.Go(func() error {
			return rn.RunOne(gctx, r)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sm := rn.Summary()
	rn.Logger.Info("rollout done", "run_id", rn.RunID, "episodes", sm.Episodes,
		"success_rate", sm.SuccessRate, "mean_return", sm.MeanReturn)
	return sm, nil
}

// RunOne builds a scene, env and policy for run r and plays its episodes
func (rn *Runner) RunOne(ctx context.Context, r int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rn.Metrics.ActiveRuns.Inc()
	defer rn.Metrics.ActiveRuns.Dec()

	cf := rn.Cfg.Task
	cf.Seed += uint64(r)
	scp := rn.Cfg.Scene
	scp.NumEnvs = cf.NumEnvs
	sc := evescene.NewScene(scp)
	sc.Logger = rn.Logger
	ev, err := peginsert.NewEnv(cf, sc, sc.Robot)
	if err != nil {
		return fmt.Errorf("rollout: run %d: %w", r, err)
	}
	ev.Logger = rn.Logger
	pl := rn.Cfg.Policy
	pl.Init(cf.NumEnvs)

	var epc env.Ctr
	epc.Init()
	epc.Max = rn.Cfg.Episodes
	for {
		if err := rn.Episode(ctx, r, epc.Cur, ev, &pl); err != nil {
			return fmt.Errorf("rollout: run %d episode %d: %w", r, epc.Cur, err)
		}
		if epc.Incr() {
			break
		}
	}
	return nil
}

// Episode fully resets ev and steps it with pl until every instance has
// terminated or been truncated.  An instance's episode ends at its first
// terminal step; it keeps stepping, unlogged, while the others finish.
func (rn *Runner) Episode(ctx context.Context, run, epi int, ev *peginsert.Env, pl *policy.Policy) error {
	_, info, err := ev.Reset(nil, nil)
	if err != nil {
		return err
	}
	pl.Reset(nil)
	n := ev.NumEnvs()
	eps := make([]EpisodeRow, n)
	for i := range eps {
		eps[i] = EpisodeRow{Run: run, Episode: epi, Env: i, Seed: ev.Seeds[i]}
	}
	done := make([]bool, n)
	ndone := 0
	rew := make(Traces, n)
	rew.Set(ev.DenseReward(&info))
	var steps []StepRow

	for step := 0; ndone < n; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		acts := pl.Act(policy.NewView(ev))
		res, err := ev.Step(acts)
		if err != nil {
			return err
		}
		rn.Metrics.Steps.Inc()
		rew.Update(res.Reward)
		for i := 0; i < n; i++ {
			if done[i] {
				continue
			}
			er := &eps[i]
			rt := &res.Terms[i]
			er.Steps++
			er.Return += res.Reward[i]
			if rt.Stage > er.MaxStage {
				er.MaxStage = rt.Stage
			}
			if rn.Cfg.StepLog {
				steps = append(steps, StepRow{
					Run: run, Episode: epi, Step: step, Env: i,
					Reward: res.Reward[i], DReward: rew[i].Vel, HeadYZ: rt.HeadYZ,
					Stage: rt.Stage, Act: pl.CurState[i], Success: res.Info.Success[i],
				})
			}
			if res.Terminated[i] || res.Truncated[i] {
				er.Success = res.Terminated[i]
				done[i] = true
				ndone++
				rn.Metrics.ObserveEpisode(er)
			}
		}
	}
	rn.Logs.LogEpisode(eps, steps)
	rn.Metrics.SuccessRate.Set(rn.Logs.SuccessRate())

	nsucc := 0
	for i := range eps {
		if eps[i].Success {
			nsucc++
		}
	}
	rn.Logger.Info("episode", "run_id", rn.RunID, "run", run, "episode", epi,
		"success", nsucc, "envs", n)
	return nil
}

// Summary aggregates everything logged so far
func (rn *Runner) Summary() *Summary {
	sm := &Summary{RunID: rn.RunID, SuccessRate: rn.Logs.SuccessRate()}
	rets := rn.Logs.Column("Return")
	sm.Episodes = len(rets)
	if sm.Episodes == 0 {
		return sm
	}
	sm.MeanReturn, sm.StdReturn = stat.MeanStdDev(rets, nil)
	if math.IsNaN(sm.StdReturn) {
		sm.StdReturn = 0
	}
	sm.MeanSteps = stat.Mean(rn.Logs.Column("Steps"), nil)
	return sm
}
