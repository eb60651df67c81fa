// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rollout

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/emer/etable/agg"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"

	"github.com/ccnlab/peg-insertion/sims/peginsert"
	"github.com/ccnlab/peg-insertion/sims/policy"
)

// LogPrec is precision for saving float values in logs
const LogPrec = 4

// EpisodeRow is the record of one instance episode
type EpisodeRow struct {
	Run      int
	Episode  int
	Env      int
	Seed     uint64
	Steps    int
	Success  bool
	Return   float32
	MaxStage peginsert.Stage
}

// StepRow is the record of one instance step
type StepRow struct {
	Run     int
	Episode int
	Step    int
	Env     int
	Reward  float32
	DReward float32
	HeadYZ  float32
	Stage   peginsert.Stage
	Act     policy.ActState
	Success bool
}

// Logs holds the episode and step tables, shared by all runs
type Logs struct {
	EpcLog   *etable.Table `desc:"instance episode log"`
	StepLog  *etable.Table `desc:"instance step log, only filled when enabled"`
	EpcFile  *os.File      `view:"-" desc:"episode log file"`
	StepFile *os.File      `view:"-" desc:"step log file"`
	mu       sync.Mutex
}

// NewLogs configures the tables and, if dir is not empty, creates the log
// files named from name and runID and writes their headers
func NewLogs(dir, name, runID string, steps bool) (*Logs, error) {
	lg := &Logs{EpcLog: &etable.Table{}, StepLog: &etable.Table{}}
	ConfigEpcLog(lg.EpcLog)
	ConfigStepLog(lg.StepLog)
	if dir == "" {
		return lg, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("rollout: log dir: %w", err)
	}
	var err error
	lg.EpcFile, err = os.Create(filepath.Join(dir, name+"_"+runID+"_epc.tsv"))
	if err != nil {
		return nil, fmt.Errorf("rollout: episode log: %w", err)
	}
	lg.EpcLog.WriteCSVHeaders(lg.EpcFile, etable.Tab)
	if steps {
		lg.StepFile, err = os.Create(filepath.Join(dir, name+"_"+runID+"_step.tsv"))
		if err != nil {
			lg.EpcFile.Close()
			return nil, fmt.Errorf("rollout: step log: %w", err)
		}
		lg.StepLog.WriteCSVHeaders(lg.StepFile, etable.Tab)
	}
	return lg, nil
}

// Close closes any open log files
func (lg *Logs) Close() error {
	var err error
	for _, f := range []*os.File{lg.EpcFile, lg.StepFile} {
		if f == nil {
			continue
		}
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func ConfigEpcLog(dt *etable.Table) {
	dt.SetMetaData("name", "EpcLog")
	dt.SetMetaData("desc", "Record of each instance episode")
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(LogPrec))

	sch := etable.Schema{
		{"Run", etensor.INT64, nil, nil},
		{"Episode", etensor.INT64, nil, nil},
		{"Env", etensor.INT64, nil, nil},
		{"Seed", etensor.STRING, nil, nil},
		{"Steps", etensor.INT64, nil, nil},
		{"Success", etensor.FLOAT64, nil, nil},
		{"Return", etensor.FLOAT64, nil, nil},
		{"MaxStage", etensor.STRING, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
}

func ConfigStepLog(dt *etable.Table) {
	dt.SetMetaData("name", "StepLog")
	dt.SetMetaData("desc", "Record of each instance step")
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(LogPrec))

	sch := etable.Schema{
		{"Run", etensor.INT64, nil, nil},
		{"Episode", etensor.INT64, nil, nil},
		{"Step", etensor.INT64, nil, nil},
		{"Env", etensor.INT64, nil, nil},
		{"Reward", etensor.FLOAT64, nil, nil},
		{"dReward", etensor.FLOAT64, nil, nil},
		{"HeadYZ", etensor.FLOAT64, nil, nil},
		{"Stage", etensor.STRING, nil, nil},
		{"Act", etensor.STRING, nil, nil},
		{"Success", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// LogEpisode appends the episode rows and, if enabled, the step rows of
// one full episode, writing them through to the files
func (lg *Logs) LogEpisode(eps []EpisodeRow, steps []StepRow) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	dt := lg.EpcLog
	for i := range eps {
		er := &eps[i]
		row := dt.Rows
		dt.SetNumRows(row + 1)
		dt.SetCellFloat("Run", row, float64(er.Run))
		dt.SetCellFloat("Episode", row, float64(er.Episode))
		dt.SetCellFloat("Env", row, float64(er.Env))
		dt.SetCellString("Seed", row, strconv.FormatUint(er.Seed, 10))
		dt.SetCellFloat("Steps", row, float64(er.Steps))
		dt.SetCellFloat("Success", row, boolFloat(er.Success))
		dt.SetCellFloat("Return", row, float64(er.Return))
		dt.SetCellString("MaxStage", row, er.MaxStage.String())
		if lg.EpcFile != nil {
			dt.WriteCSVRow(lg.EpcFile, row, etable.Tab)
		}
	}

	dt = lg.StepLog
	for i := range steps {
		sr := &steps[i]
		row := dt.Rows
		dt.SetNumRows(row + 1)
		dt.SetCellFloat("Run", row, float64(sr.Run))
		dt.SetCellFloat("Episode", row, float64(sr.Episode))
		dt.SetCellFloat("Step", row, float64(sr.Step))
		dt.SetCellFloat("Env", row, float64(sr.Env))
		dt.SetCellFloat("Reward", row, float64(sr.Reward))
		dt.SetCellFloat("dReward", row, float64(sr.DReward))
		dt.SetCellFloat("HeadYZ", row, float64(sr.HeadYZ))
		dt.SetCellString("Stage", row, sr.Stage.String())
		dt.SetCellString("Act", row, sr.Act.String())
		dt.SetCellFloat("Success", row, boolFloat(sr.Success))
		if lg.StepFile != nil {
			dt.WriteCSVRow(lg.StepFile, row, etable.Tab)
		}
	}
}

// SuccessRate is the mean success over all logged instance episodes
func (lg *Logs) SuccessRate() float64 {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.EpcLog.Rows == 0 {
		return 0
	}
	return agg.Agg(etable.NewIdxView(lg.EpcLog), "Success", agg.AggMean)[0]
}

// Column returns a copy of the float values of an episode log column
func (lg *Logs) Column(col string) []float64 {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	dt := lg.EpcLog
	vs := make([]float64, dt.Rows)
	for row := range vs {
		vs[row] = dt.CellFloat(col, row)
	}
	return vs
}
