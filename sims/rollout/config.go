// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rollout

import (
	"fmt"

	"github.com/ccnlab/peg-insertion/sims/evescene"
	"github.com/ccnlab/peg-insertion/sims/peginsert"
	"github.com/ccnlab/peg-insertion/sims/policy"
)

// Config has the rollout parameters along with the task, scene and
// policy parameters every run starts from
type Config struct {
	Runs     int    `yaml:"runs" desc:"number of independent runs, each with its own environment and seed"`
	Episodes int    `yaml:"episodes" desc:"full-reset episodes per run"`
	Workers  int    `yaml:"workers" desc:"max runs in flight at once"`
	StepLog  bool   `yaml:"step_log" desc:"record a row per instance per step, in addition to per-episode rows"`
	LogDir   string `yaml:"log_dir" desc:"directory for tab-separated log files; empty for none"`
	LogName  string `yaml:"log_name" desc:"prefix of the log file names"`

	Task   peginsert.Config `yaml:"task" desc:"task parameters; run r uses Task.Seed + r"`
	Scene  evescene.Params  `yaml:"scene" desc:"kinematic scene parameters"`
	Policy policy.Policy    `yaml:"policy" desc:"scripted policy parameters"`
}

func (cf *Config) Defaults() {
	cf.Runs = 1
	cf.Episodes = 4
	cf.Workers = 4
	cf.StepLog = false
	cf.LogDir = ""
	cf.LogName = "pegsim"
	cf.Task.Defaults()
	cf.Scene.Defaults()
	cf.Policy.Defaults()
}

// Validate checks the rollout parameters and the task config
func (cf *Config) Validate() error {
	if cf.Runs < 1 || cf.Episodes < 1 || cf.Workers < 1 {
		return fmt.Errorf("%w: runs %d, episodes %d, workers %d", peginsert.ErrConfig, cf.Runs, cf.Episodes, cf.Workers)
	}
	return cf.Task.Validate()
}
