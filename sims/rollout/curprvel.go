// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rollout

// CurPrvVel is basic state management for current, previous and velocity (diff)
type CurPrvVel struct {
	Cur float32 `desc:"current value"`
	Prv float32 `desc:"previous value"`
	Vel float32 `desc:"velocity as difference: Cur - Prv"`
}

// Update updates the new current value, copying Cur to Prv and computing Vel
func (cv *CurPrvVel) Update(cur float32) {
	cv.Prv = cv.Cur
	cv.Cur = cur
	cv.Vel = cv.Cur - cv.Prv
}

// Set starts over at cur with zero velocity
func (cv *CurPrvVel) Set(cur float32) {
	cv.Cur = cur
	cv.Prv = cur
	cv.Vel = 0
}

// Traces tracks one value per instance, here the dense reward
type Traces []CurPrvVel

// Set starts every trace over at the given values
func (tr Traces) Set(vs []float32) {
	for i, v := range vs {
		tr[i].Set(v)
	}
}

// Update feeds the new value of every instance
func (tr Traces) Update(vs []float32) {
	for i, v := range vs {
		tr[i].Update(v)
	}
}
