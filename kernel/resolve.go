// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/blockeigen/pcgeig"
)

// Resolver diagonalizes the converged reduced Rayleigh problem. Solve
// only ever hands it the converged Y and U = (YᴴY)⁻¹; applying A once
// more at Y, and the scratch that takes, are the Resolver's own
// business, not the solver's, so they are bound in at construction
// rather than threaded through pcgeig.Resolver's signature.
type Resolver struct {
	Apply    pcgeig.ApplyFunc
	NewSmall func(p int) pcgeig.SmallMatrix

	// AY and Scratch are n×p blocks matching Problem.Y's shape, owned by
	// the Resolver for the lifetime of whatever Solve calls it backs.
	AY, Scratch pcgeig.BlockMatrix
}

// Resolve computes W = YᴴAY, reduces the generalized Hermitian
// eigenproblem W·v = λ·(YᴴY)·v to standard form via a Cholesky
// congruence on U (the same reduction LAPACK's Zhegst family performs
// ahead of a standard Hermitian solve), and diagonalizes the result.
// The eigenvalues come back in ascending order; y is left unchanged, so
// its columns are not rotated onto the corresponding eigenvectors.
func (r *Resolver) Resolve(y pcgeig.BlockMatrix, u pcgeig.SmallMatrix) ([]float64, error) {
	if err := r.Apply(r.AY, y, r.Scratch, true); err != nil {
		return nil, err
	}

	p := u.Dims()
	w := r.NewSmall(p)
	y.InnerInto(w, r.AY)

	lu, ok := cholesky(smallOf(u).mat, p)
	if !ok {
		return nil, errNotPositiveDefinite
	}

	n := mat.NewCDense(p, p, nil)
	n.Mul(lu.H(), smallOf(w).mat)
	n.Mul(n, lu)

	return diagonalizeHermitian(n, p), nil
}

// diagonalizeHermitian returns the ascending eigenvalues of the Hermitian
// p×p matrix h. Writing h = X + iY with X symmetric and Y
// skew-symmetric, the real symmetric 2p×2p matrix [[X, -Y], [Y, X]] has
// exactly h's eigenvalues, each with doubled multiplicity; diagonalizing
// that embedding with mat.EigenSym.Factorize and averaging adjacent
// pairs recovers h's spectrum. This snapshot's vendored LAPACK surface
// doesn't carry a complex Heev, so the embedding stands in for one.
func diagonalizeHermitian(h *mat.CDense, p int) []float64 {
	embed := mat.NewSymDense(2*p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			x := real(h.At(i, j))
			embed.SetSym(i, j, x)
			embed.SetSym(p+i, p+j, x)
		}
	}
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			y := imag(h.At(i, j))
			embed.SetSym(i, p+j, -y)
		}
	}

	var eig mat.EigenSym
	eig.Factorize(embed, false)
	vals := eig.Values(nil)
	sort.Float64s(vals)

	out := make([]float64, p)
	for i := 0; i < p; i++ {
		out[i] = 0.5 * (vals[2*i] + vals[2*i+1])
	}
	return out
}
