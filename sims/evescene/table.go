// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evescene

import (
	"github.com/emer/eve/eve"
	"github.com/goki/mat32"
)

// TableParams are the table dimensions; the top surface is at z = 0
type TableParams struct {
	Width  float32 `yaml:"width" desc:"extent along x"`
	Depth  float32 `yaml:"depth" desc:"extent along y"`
	Thick  float32 `yaml:"thick" desc:"thickness of the top"`
	Height float32 `yaml:"height" desc:"leg length below the top"`
	LegW   float32 `yaml:"leg_w" desc:"leg width"`
	Color  string  `yaml:"color" desc:"color of the top"`
}

func (tp *TableParams) Defaults() {
	tp.Width = 1.8
	tp.Depth = 1.6
	tp.Thick = 0.04
	tp.Height = 0.9
	tp.LegW = 0.05
	tp.Color = "#BF9B7A"
}

// MakeTable constructs a new table in given parent group
func (tp *TableParams) MakeTable(par *eve.Group, name string) *eve.Group {
	tb := eve.AddNewGroup(par, name)
	top := eve.AddNewBox(tb, "top", mat32.Vec3{0, 0, -tp.Thick / 2}, mat32.Vec3{tp.Width, tp.Depth, tp.Thick})
	top.Color = tp.Color
	hw := tp.Width/2 - tp.LegW
	hd := tp.Depth/2 - tp.LegW
	lz := -tp.Thick - tp.Height/2
	legsz := mat32.Vec3{tp.LegW, tp.LegW, tp.Height}
	for _, nm := range []string{"leg-fl", "leg-fr", "leg-bl", "leg-br"} {
		x, y := hw, hd
		if nm[4] == 'b' {
			x = -hw
		}
		if nm[5] == 'r' {
			y = -hd
		}
		leg := eve.AddNewBox(tb, nm, mat32.Vec3{x, y, lz}, legsz)
		leg.Color = "#8C6D52"
	}
	return tb
}
