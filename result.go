// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

// Result holds the outcome of a Solve call.
type Result struct {
	// Eigenvalues are the p resolved eigenvalues, ascending, aligned
	// with Y's columns on return.
	Eigenvalues []float64

	// Energy is the final Rayleigh trace E = ℜ tr(U·YᴴAY).
	Energy float64

	// NumIterations is the number of outer iterations performed.
	NumIterations int

	Stats Stats
}

// Stats records how much work a Solve call performed, the domain analogue
// of linsolve.Stats.
type Stats struct {
	Iterations       int
	ApplyCount       int
	PreconCount      int
	ConstraintCount  int
	StrategySwitches int
}
