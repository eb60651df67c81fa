// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pegsim rolls out the scripted policy on the peg insertion task, and
// samples task configurations for inspection.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/emer/empi/mpi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccnlab/peg-insertion/sims/evescene"
	"github.com/ccnlab/peg-insertion/sims/peginsert"
	"github.com/ccnlab/peg-insertion/sims/pose"
	"github.com/ccnlab/peg-insertion/sims/rollout"
)

// options are the flags shared by all commands
type options struct {
	config   string
	logLevel string
	logJSON  bool
	useMPI   bool
	logger   *slog.Logger
}

func main() {
	loadEnvFiles(".env", "../../.env")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "pegsim",
		Short:        "pegsim runs the batched side peg insertion task",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lg, err := newLogger(opts.logLevel, opts.logJSON)
			if err != nil {
				return err
			}
			opts.logger = lg
			slog.SetDefault(lg)
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.config, "config", "", "yaml config file, overlaid on the defaults")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.BoolVar(&opts.logJSON, "log-json", false, "log as json instead of text")
	pf.BoolVar(&opts.useMPI, "mpi", false, "run under mpi, offsetting seeds and log names by rank")

	root.AddCommand(newRolloutCmd(opts), newSampleCmd(opts), newConfigCmd(opts))
	return root
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective config as yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadConfig(opts.config)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), &cf)
		},
	}
}

func newRolloutCmd(opts *options) *cobra.Command {
	var (
		runs, episodes, workers, envs int
		seed                          uint64
		logDir                        string
		stepLog                       bool
		metricsAddr                   string
	)
	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Roll out the scripted policy and log every episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadConfig(opts.config)
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			if fs.Changed("runs") {
				cf.Runs = runs
			}
			if fs.Changed("episodes") {
				cf.Episodes = episodes
			}
			if fs.Changed("workers") {
				cf.Workers = workers
			}
			if fs.Changed("envs") {
				cf.Task.NumEnvs = envs
			}
			if fs.Changed("seed") {
				cf.Task.Seed = seed
			}
			if fs.Changed("log-dir") {
				cf.LogDir = logDir
			}
			if fs.Changed("step-log") {
				cf.StepLog = stepLog
			}
			if opts.useMPI {
				fin, err := initMPI(opts.logger)
				if err != nil {
					return err
				}
				defer fin()
				rank := mpi.WorldRank()
				cf.Task.Seed += uint64(rank) * uint64(cf.Runs)
				cf.LogName = fmt.Sprintf("%s_rank%d", cf.LogName, rank)
			}
			return runRollout(cmd.Context(), cmd.OutOrStdout(), &cf, metricsAddr, opts.logger)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&runs, "runs", 1, "number of independent runs")
	fs.IntVar(&episodes, "episodes", 4, "episodes per run")
	fs.IntVar(&workers, "workers", 4, "max runs in flight")
	fs.IntVar(&envs, "envs", 1, "parallel instances per run")
	fs.Uint64Var(&seed, "seed", 0, "main seed; run r uses seed + r")
	fs.StringVar(&logDir, "log-dir", "", "directory for tab-separated logs")
	fs.BoolVar(&stepLog, "step-log", false, "also log every step")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running, e.g. :9090")
	return cmd
}

// initMPI starts mpi and returns the matching finalizer
func initMPI(logger *slog.Logger) (func(), error) {
	mpi.Init()
	if _, err := mpi.NewComm(nil); err != nil {
		mpi.Finalize()
		return nil, fmt.Errorf("mpi: %w", err)
	}
	logger.Info("mpi", "procs", mpi.WorldSize(), "rank", mpi.WorldRank())
	return mpi.Finalize, nil
}

func runRollout(ctx context.Context, out io.Writer, cf *rollout.Config, metricsAddr string, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	rn, err := rollout.NewRunner(*cf, reg, logger)
	if err != nil {
		return err
	}
	defer rn.Close()

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "addr", metricsAddr, "err", err)
			}
		}()
		defer srv.Close()
	}

	sm, err := rn.Run(ctx)
	if err != nil {
		return err
	}
	return writeYAML(out, sm)
}

func newSampleCmd(opts *options) *cobra.Command {
	var (
		envs    int
		seed    uint64
		episode int
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the geometry and initial placement drawn for an episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadConfig(opts.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("envs") {
				cf.Task.NumEnvs = envs
			}
			if cmd.Flags().Changed("seed") {
				cf.Task.Seed = seed
			}
			if err := cf.Validate(); err != nil {
				return err
			}
			return writeSample(cmd.OutOrStdout(), &cf, episode)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&envs, "envs", 4, "number of instances")
	fs.Uint64Var(&seed, "seed", 0, "main seed")
	fs.IntVar(&episode, "episode", 0, "episode of run 0 to show")
	return cmd
}

// sampleEnv builds the scene and env of run 0 and plays the full resets up
// to and including the given episode, so its geometry and placements are
// those the rollout of that episode starts from
func sampleEnv(cf *rollout.Config, episode int) (*peginsert.Env, error) {
	scp := cf.Scene
	scp.NumEnvs = cf.Task.NumEnvs
	sc := evescene.NewScene(scp)
	ev, err := peginsert.NewEnv(cf.Task, sc, sc.Robot)
	if err != nil {
		return nil, err
	}
	for e := 0; e <= episode; e++ {
		if _, _, err := ev.Reset(nil, nil); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

// writeSample prints one row per instance of the geometry and placement
// the given episode of a rollout starts from
func writeSample(out io.Writer, cf *rollout.Config, episode int) error {
	ev, err := sampleEnv(cf, episode)
	if err != nil {
		return err
	}
	g := &ev.Geom
	pegs, boxes := ev.Peg.Poses(), ev.Box.Poses()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "env\tseed\thalf_len\tradius\thole_y\thole_z\tpeg_xy\tpeg_yaw\tbox_xy\tbox_yaw")
	for i := 0; i < ev.NumEnvs(); i++ {
		fmt.Fprintln(tw, sampleRow(i, ev.Seeds[i], g, pegs[i], boxes[i]))
	}
	return tw.Flush()
}

func sampleRow(i int, seed uint64, g *peginsert.Geometry, pp, bp pose.Pose) string {
	return fmt.Sprintf("%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t(%.3f, %.3f)\t%.3f\t(%.3f, %.3f)\t%.3f",
		i, seed, g.HalfLengths[i], g.Radii[i], g.Centers[i].X, g.Centers[i].Y,
		pp.Pos.X, pp.Pos.Y, pp.Yaw(), bp.Pos.X, bp.Pos.Y, bp.Yaw())
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
