// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ccnlab/peg-insertion/sims/rollout"
)

// Environment variables that override the config file
const (
	EnvSeed    = "PEGSIM_SEED"
	EnvNumEnvs = "PEGSIM_NUM_ENVS"
	EnvLogDir  = "PEGSIM_LOG_DIR"
)

// loadEnvFiles loads the first .env file found, leaving variables that are
// already set alone
func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
}

// loadConfig starts from the defaults and overlays the yaml file at path,
// if any, and then the PEGSIM_* environment variables
func loadConfig(path string) (rollout.Config, error) {
	var cf rollout.Config
	cf.Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cf, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return cf, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cf); err != nil {
		return cf, err
	}
	return cf, nil
}

func applyEnv(cf *rollout.Config) error {
	if v, ok := os.LookupEnv(EnvSeed); ok {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cf.Task.Seed = s
	}
	if v, ok := os.LookupEnv(EnvNumEnvs); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNumEnvs, err)
		}
		cf.Task.NumEnvs = n
	}
	if v, ok := os.LookupEnv(EnvLogDir); ok {
		cf.LogDir = v
	}
	return nil
}

// newLogger builds the process logger from the level name and format
func newLogger(level string, json bool) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lv}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}
