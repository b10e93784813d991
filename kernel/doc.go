// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernel is a dense, single-process reference implementation of
// the pcgeig.BlockMatrix, pcgeig.SmallMatrix, and pcgeig.Resolver
// collaborators, built on gonum.org/v1/gonum/mat's complex dense type and
// the complex BLAS bindings in gonum.org/v1/gonum/blas/cblas128 that back
// it. Solve never imports this package; it is wired in by a caller the
// way a program wires a concrete lapack64-backed kernel behind one of the
// teacher's solver interfaces.
package kernel
