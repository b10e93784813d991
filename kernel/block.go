// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/blockeigen/pcgeig"
)

// Block is a dense n×p pcgeig.BlockMatrix backed by mat.CDense. Products
// against other blocks and against Small go through CDense.Mul, which
// dispatches to cblas128.Gemm; the fused elementwise ops the interface
// needs beyond that (ScaleAdd, TraceInner, DiffSwap) have no CDense
// equivalent and are plain traversals.
type Block struct {
	mat *mat.CDense
}

// NewBlock allocates a zeroed n×p block.
func NewBlock(n, p int) *Block {
	return &Block{mat: mat.NewCDense(n, p, nil)}
}

func (b *Block) Dims() (n, p int) { return b.mat.Dims() }

func (b *Block) At(i, j int) complex128 { return b.mat.At(i, j) }

func (b *Block) Set(i, j int, v complex128) { b.mat.Set(i, j, v) }

func (b *Block) CopyFrom(src pcgeig.BlockMatrix) {
	s := blockOf(src)
	n, p := b.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			b.mat.Set(i, j, s.mat.At(i, j))
		}
	}
}

// GramInto computes dst ← Xᴴ·X.
func (b *Block) GramInto(dst pcgeig.SmallMatrix) {
	smallOf(dst).mat.Mul(b.mat.H(), b.mat)
}

// InnerInto computes dst ← Xᴴ·Y.
func (b *Block) InnerInto(dst pcgeig.SmallMatrix, y pcgeig.BlockMatrix) {
	smallOf(dst).mat.Mul(b.mat.H(), blockOf(y).mat)
}

// SetMulSmall computes X ← Y·S. The Hermitian hint is safe to ignore:
// Mul gives the same result whether or not S happens to be Hermitian.
func (b *Block) SetMulSmall(y pcgeig.BlockMatrix, s pcgeig.SmallMatrix, isHermitian bool) {
	b.mat.Mul(blockOf(y).mat, smallOf(s).mat)
}

// AddMulSmall computes X ← X + a·Y·S.
func (b *Block) AddMulSmall(a complex128, y pcgeig.BlockMatrix, s pcgeig.SmallMatrix) {
	n, p := b.Dims()
	tmp := mat.NewCDense(n, p, nil)
	tmp.Mul(blockOf(y).mat, smallOf(s).mat)
	if a != 1 {
		tmp.Scale(a, tmp)
	}
	b.mat.Add(b.mat, tmp)
}

// ScaleAdd computes X ← a·X + b·Y.
func (b *Block) ScaleAdd(a, bCoef complex128, y pcgeig.BlockMatrix) {
	yb := blockOf(y)
	n, p := b.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			b.mat.Set(i, j, a*b.mat.At(i, j)+bCoef*yb.mat.At(i, j))
		}
	}
}

// TraceInner returns tr(Xᴴ·Y).
func (b *Block) TraceInner(y pcgeig.BlockMatrix) complex128 {
	yb := blockOf(y)
	n, p := b.Dims()
	var sum complex128
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			sum += cmplx.Conj(b.mat.At(i, j)) * yb.mat.At(i, j)
		}
	}
	return sum
}

// DiffSwap computes X ← X − prev, prev ← (the X that existed on entry) in
// one traversal.
func (b *Block) DiffSwap(prev pcgeig.BlockMatrix) {
	pb := blockOf(prev)
	n, p := b.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			oldX := b.mat.At(i, j)
			oldPrev := pb.mat.At(i, j)
			b.mat.Set(i, j, oldX-oldPrev)
			pb.mat.Set(i, j, oldX)
		}
	}
}

func blockOf(m pcgeig.BlockMatrix) *Block {
	b, ok := m.(*Block)
	if !ok {
		panic("kernel: BlockMatrix was not created by kernel.NewBlock")
	}
	return b
}
