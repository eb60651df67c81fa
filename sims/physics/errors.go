// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import "errors"

var (
	// ErrMergeIndex indicates bodies that do not cover each instance exactly once.
	ErrMergeIndex = errors.New("physics: bodies must cover each instance exactly once")
	// ErrStateMissing indicates a state snapshot lacking a registered actor.
	ErrStateMissing = errors.New("physics: state has no entry for registered actor")
	// ErrJointCount indicates a joint configuration of the wrong length.
	ErrJointCount = errors.New("physics: wrong number of joint values")
	// ErrBatchSize indicates per-instance inputs of the wrong length.
	ErrBatchSize = errors.New("physics: wrong batch size")
)
