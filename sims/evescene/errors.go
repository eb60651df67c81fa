// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evescene

import "errors"

var (
	// ErrSceneIdxs indicates an actor not restricted to exactly one valid instance.
	ErrSceneIdxs = errors.New("evescene: actor must live in exactly one valid instance")
	// ErrNoShapes indicates a build with no primitives.
	ErrNoShapes = errors.New("evescene: actor has no shapes")
)
