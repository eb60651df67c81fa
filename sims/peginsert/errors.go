// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package peginsert

import "errors"

var (
	// ErrConfig indicates inconsistent task parameters.
	ErrConfig = errors.New("peginsert: invalid config")
	// ErrNotReset indicates a step or query before the first reset.
	ErrNotReset = errors.New("peginsert: environment has not been reset")
	// ErrSeedCount indicates episode seeds that do not match the reset subset.
	ErrSeedCount = errors.New("peginsert: one seed per reset instance required")
	// ErrElement indicates an unknown state or action element name.
	ErrElement = errors.New("peginsert: unknown element")
)
