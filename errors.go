// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import (
	"errors"
	"fmt"
)

// ErrBadInput is returned when the Problem or Settings passed to Solve are
// malformed in a way that is a property of the call (not a programmer bug
// caught earlier by a panic): too few work blocks, or a linmin call whose
// entry derivative is inconsistent with its bracket direction.
var ErrBadInput = errors.New("pcgeig: bad input")

// ErrNonConvergence is returned when Solve exhausts MaxIterations without
// satisfying the convergence test.
var ErrNonConvergence = errors.New("pcgeig: maximum iterations reached without convergence")

// DivergenceError is returned when a computed trace is not finite.
type DivergenceError struct {
	Iteration int
	Value     float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("pcgeig: divergence at iteration %d: trace = %v", e.Iteration, e.Value)
}

// BracketFailureError is returned by the exact line search when linmin
// cannot bracket a root of f′ within tolerance.
type BracketFailureError struct {
	Xmin, Xmax, X0 float64
	Tolerance      float64
}

func (e *BracketFailureError) Error() string {
	return fmt.Sprintf("pcgeig: linmin failed to bracket a root: xmin=%v xmax=%v x0=%v tol=%v",
		e.Xmin, e.Xmax, e.X0, e.Tolerance)
}
