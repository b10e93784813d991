// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import "time"

// BlockMatrix represents an n×p dense block, logically distributed across
// workers along n, the way gonum/mat.CMatrix represents a dense complex
// matrix. Implementations are expected to apply their own row distribution
// and collective reductions internally; Solve treats every method as a
// single atomic, globally-consistent operation (see the concurrency model
// in SPEC_FULL.md §7).
//
// Solve never constructs a BlockMatrix; every instance it touches is either
// the caller-owned Y or one of the caller-provided Work blocks.
type BlockMatrix interface {
	// Dims returns the number of rows (n) and columns (p).
	Dims() (n, p int)

	// At returns the element at row i, column j.
	At(i, j int) complex128

	// Set assigns the element at row i, column j.
	Set(i, j int, v complex128)

	// CopyFrom replaces the receiver's contents with src's. The receiver
	// and src must have equal dimensions.
	CopyFrom(src BlockMatrix)

	// GramInto computes dst ← Xᴴ·X, where X is the receiver.
	GramInto(dst SmallMatrix)

	// InnerInto computes dst ← Xᴴ·Y, where X is the receiver.
	InnerInto(dst SmallMatrix, y BlockMatrix)

	// SetMulSmall computes X ← Y·S, where X is the receiver. isHermitian
	// is a hint that S is Hermitian, allowed to be ignored by the
	// implementation but it must not change the result.
	SetMulSmall(y BlockMatrix, s SmallMatrix, isHermitian bool)

	// AddMulSmall computes X ← X + a·Y·S, where X is the receiver.
	AddMulSmall(a complex128, y BlockMatrix, s SmallMatrix)

	// ScaleAdd computes X ← a·X + b·Y, where X is the receiver.
	ScaleAdd(a, b complex128, y BlockMatrix)

	// TraceInner returns tr(Xᴴ·Y), where X is the receiver.
	TraceInner(y BlockMatrix) complex128

	// DiffSwap computes, in a single fused elementwise traversal,
	//
	//	X ← X − prev
	//	prev ← (the X that existed on entry)
	//
	// where X is the receiver. This is the one operation the direction
	// builder needs that cannot be expressed as a composition of the
	// other block operations without an extra n×p scratch buffer (see
	// SPEC_FULL.md §6.4 / spec.md §9's fused-update design note); it
	// backs the Polak-Ribière gradient-difference update.
	DiffSwap(prev BlockMatrix)
}

// SmallMatrix represents a p×p dense matrix used for the Gram and Rayleigh
// blocks that live in solver state, the way gonum/mat.CDense represents a
// small dense complex matrix. Solve constructs these through
// Problem.NewSmall and never via a concrete type, keeping the dense kernel
// library genuinely swappable.
type SmallMatrix interface {
	// Dims returns p.
	Dims() int

	At(i, j int) complex128
	Set(i, j int, v complex128)

	// CopyFrom replaces the receiver's contents with src's.
	CopyFrom(src SmallMatrix)

	// ScaleAdd computes A ← a·A + b·B, where A is the receiver.
	ScaleAdd(a, b complex128, b2 SmallMatrix)

	// AddScaled computes A ← A + a·B, where A is the receiver.
	AddScaled(a complex128, b SmallMatrix)

	// AddProd computes A ← A + a·B·C, where A is the receiver, with B or C
	// optionally replaced by their conjugate transpose.
	AddProd(a complex128, b SmallMatrix, adjB bool, c SmallMatrix, adjC bool)

	// SetProd computes A ← a·B·C, where A is the receiver, with B or C
	// optionally replaced by their conjugate transpose.
	SetProd(a complex128, b SmallMatrix, adjB bool, c SmallMatrix, adjC bool)

	// Symmetrize computes A ← (A + Aᴴ)/2.
	Symmetrize()

	// Trace returns tr(A).
	Trace() complex128

	// TraceProd returns tr(Aᴴ·B), where A is the receiver.
	TraceProd(b SmallMatrix) complex128

	// Invert replaces A with A⁻¹ in place. Implementations need only
	// support the Hermitian positive-definite path.
	Invert() error
}

// ApplyFunc applies the Hermitian operator A: dst ← A·y. scratch is an
// additional n×p block the implementation may use as working storage;
// Solve passes a distinct block on every call and never relies on dst, y,
// and scratch aliasing. isFirstCall is set on the very first application
// within a Solve call, letting an implementation amortize setup across the
// run.
type ApplyFunc func(dst, y, scratch BlockMatrix, isFirstCall bool) error

// PreconFunc applies the preconditioner K: dst ← K·g. y is the current
// iterate (for context-dependent preconditioners), eigenvals the most
// recently resolved eigenvalue estimates (nil until the first successful
// Resolve, since none are available mid-iteration), and ytY the current
// Yᴴ·Y Gram block. A nil PreconFunc means K is the identity.
type PreconFunc func(dst, g, y BlockMatrix, eigenvals []float64, ytY SmallMatrix) error

// ConstraintFunc applies the idempotent projection C in place to y. A nil
// ConstraintFunc means no constraint.
type ConstraintFunc func(y BlockMatrix) error

// Resolver diagonalizes the reduced Rayleigh problem once Solve has
// converged, turning the invariant subspace Y and U = (YᴴY)⁻¹ into sorted
// eigenvalues aligned with Y's columns.
type Resolver interface {
	Resolve(y BlockMatrix, u SmallMatrix) (eigenvals []float64, err error)
}

// Clock abstracts wall-clock measurement, the way a caller might swap in a
// fake clock for deterministic tests of the adaptive line-search scheduler
// (§4.5) and the progress-feedback cadence (§4.1 step 8).
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Problem bundles the external collaborators for one Solve call, mirroring
// spec.md §6's solver entry point.
type Problem struct {
	// Y is the n×p initial guess on entry and the converged invariant
	// subspace on exit. Solve mutates it in place; ownership remains with
	// the caller.
	Y BlockMatrix

	// Apply computes A·y. Required.
	Apply ApplyFunc

	// Precon computes K·g. Optional; nil means K = I.
	Precon PreconFunc

	// Constraint projects Y in place after every update. Optional.
	Constraint ConstraintFunc

	// Resolve diagonalizes the converged reduced problem. Required.
	Resolve Resolver

	// NewSmall constructs a zeroed p×p SmallMatrix. Required; Solve
	// allocates only through this factory, never a concrete type.
	NewSmall func(p int) SmallMatrix

	// Work holds nWork preallocated n×p blocks, borrowed for the
	// duration of the call:
	//
	//	Work[0] = G     (gradient)
	//	Work[1] = X     (preconditioned gradient / scratch)
	//	Work[2] = D     (search direction; required)
	//	Work[3] = prevG (previous gradient; enables Polak-Ribière)
	//
	// len(Work) must be at least 3: the exact line search applies the
	// operator along D (computing A·D to evaluate the trace functional
	// off-axis, see trace.go), which needs a block distinct from both
	// the direction and the scratch Apply borrows internally, so D can
	// never simply alias X the way a 2-buffer scheme might suggest. A
	// length of 4 also enables Polak-Ribière. D and prevG must be
	// zero-initialized by the caller; Settings.DisableCG forces the
	// method to preconditioned steepest descent with a line search
	// regardless of how many blocks are supplied (§8's
	// no-CG-degeneration property).
	Work []BlockMatrix
}
