// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/blockeigen/pcgeig"
)

// errNotPositiveDefinite is returned by Small.Invert and Resolver.Resolve
// when the Cholesky factorization fails, meaning the matrix presented
// (YᴴY or U) is not Hermitian positive-definite.
var errNotPositiveDefinite = errors.New("kernel: matrix is not Hermitian positive-definite")

// Small is a dense p×p pcgeig.SmallMatrix backed by mat.CDense.
type Small struct {
	mat *mat.CDense
}

// NewSmall allocates a zeroed p×p matrix, suitable as Problem.NewSmall.
func NewSmall(p int) *Small {
	return &Small{mat: mat.NewCDense(p, p, nil)}
}

func (s *Small) Dims() int {
	r, _ := s.mat.Dims()
	return r
}

func (s *Small) At(i, j int) complex128 { return s.mat.At(i, j) }

func (s *Small) Set(i, j int, v complex128) { s.mat.Set(i, j, v) }

func (s *Small) CopyFrom(src pcgeig.SmallMatrix) {
	o := smallOf(src)
	p := s.Dims()
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			s.mat.Set(i, j, o.mat.At(i, j))
		}
	}
}

// ScaleAdd computes A ← a·A + b·B.
func (s *Small) ScaleAdd(a, b complex128, b2 pcgeig.SmallMatrix) {
	o := smallOf(b2)
	p := s.Dims()
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			s.mat.Set(i, j, a*s.mat.At(i, j)+b*o.mat.At(i, j))
		}
	}
}

// AddScaled computes A ← A + a·B.
func (s *Small) AddScaled(a complex128, b pcgeig.SmallMatrix) {
	o := smallOf(b)
	p := s.Dims()
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			s.mat.Set(i, j, s.mat.At(i, j)+a*o.mat.At(i, j))
		}
	}
}

// SetProd computes A ← a·B·C, with B or C optionally conjugate-transposed.
func (s *Small) SetProd(a complex128, b pcgeig.SmallMatrix, adjB bool, c pcgeig.SmallMatrix, adjC bool) {
	bm, cm := operand(smallOf(b), adjB), operand(smallOf(c), adjC)
	s.mat.Mul(bm, cm)
	if a != 1 {
		s.mat.Scale(a, s.mat)
	}
}

// AddProd computes A ← A + a·B·C, with B or C optionally
// conjugate-transposed.
func (s *Small) AddProd(a complex128, b pcgeig.SmallMatrix, adjB bool, c pcgeig.SmallMatrix, adjC bool) {
	bm, cm := operand(smallOf(b), adjB), operand(smallOf(c), adjC)
	p := s.Dims()
	tmp := mat.NewCDense(p, p, nil)
	tmp.Mul(bm, cm)
	if a != 1 {
		tmp.Scale(a, tmp)
	}
	s.mat.Add(s.mat, tmp)
}

func operand(s *Small, adj bool) mat.CMatrix {
	if adj {
		return s.mat.H()
	}
	return s.mat
}

// Symmetrize computes A ← (A + Aᴴ)/2. The sum is built in a scratch
// matrix first, so no entry of the receiver is overwritten before its
// mirrored entry has been read.
func (s *Small) Symmetrize() {
	p := s.Dims()
	tmp := mat.NewCDense(p, p, nil)
	tmp.Add(s.mat, s.mat.H())
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			s.mat.Set(i, j, tmp.At(i, j)*0.5)
		}
	}
}

func (s *Small) Trace() complex128 {
	p := s.Dims()
	var t complex128
	for i := 0; i < p; i++ {
		t += s.mat.At(i, i)
	}
	return t
}

// TraceProd returns tr(Aᴴ·B), the Frobenius inner product of A and B:
// Σ_ij conj(A_ij)·B_ij, not just the diagonal of the product matrix.
func (s *Small) TraceProd(b pcgeig.SmallMatrix) complex128 {
	o := smallOf(b)
	p := s.Dims()
	var t complex128
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			t += cmplx.Conj(s.mat.At(i, j)) * o.mat.At(i, j)
		}
	}
	return t
}

// Invert replaces A with A⁻¹ via a Cholesky factorization A = L·Lᴴ
// followed by triangular inversion of L, supporting the Hermitian
// positive-definite case only, as the interface requires.
func (s *Small) Invert() error {
	p := s.Dims()
	l, ok := cholesky(s.mat, p)
	if !ok {
		return errNotPositiveDefinite
	}
	linv := invertLowerTriangular(l, p)
	s.mat.Mul(linv.H(), linv)
	return nil
}

func smallOf(m pcgeig.SmallMatrix) *Small {
	s, ok := m.(*Small)
	if !ok {
		panic("kernel: SmallMatrix was not created by kernel.NewSmall")
	}
	return s
}
