// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pcgeig implements a block preconditioned conjugate-gradient
// eigensolver for the lowest eigenvalues and invariant subspace of a large
// Hermitian operator. It minimizes the trace of the Rayleigh quotient
//
//	tr(U⁻¹ Yᴴ A Y), U = Yᴴ Y,
//
// over n×p matrices Y using a block generalization of nonlinear CG
// (Fletcher-Reeves/Polak-Ribière) with either an exact one-dimensional line
// search along the unit-circle curve Y(θ) = cosθ·Y + (sinθ/‖D‖)·D, or a
// cheaper Newton-approximate step, the choice between the two adapted at
// run time from measured kernel timings.
//
// The dense n×p block storage, the p×p small-matrix algebra, the operator
// A, the preconditioner K, the constraint projection C, and the final
// resolution of eigenvalues from the converged subspace are all external
// collaborators expressed as interfaces (see types.go); Solve never
// allocates an n×p matrix itself. A reference implementation of the block
// and small-matrix kernels, built on gonum.org/v1/gonum/mat and
// gonum.org/v1/gonum/blas/cblas128, lives in the kernel subpackage.
package pcgeig
