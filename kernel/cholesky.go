// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// cholesky factors the Hermitian positive-definite p×p matrix a as L·Lᴴ
// with L lower triangular, processing one column at a time and computing
// each column's entries on and below the diagonal from the columns
// already finished to its left — the same unblocked,
// column-by-column shape gonum/lapack/gonum's Ztrti2 uses for the
// complex triangular inverse. This snapshot's vendored LAPACK surface
// doesn't carry Zpotrf, so the factorization itself is hand-written in
// that style rather than called.
func cholesky(a *mat.CDense, p int) (l *mat.CDense, ok bool) {
	l = mat.NewCDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j <= i; j++ {
			l.Set(i, j, a.At(i, j))
		}
	}

	for j := 0; j < p; j++ {
		diag := real(l.At(j, j))
		for k := 0; k < j; k++ {
			ljk := l.At(j, k)
			diag -= real(ljk * cmplx.Conj(ljk))
		}
		if diag <= 0 {
			return nil, false
		}
		ljj := math.Sqrt(diag)
		l.Set(j, j, complex(ljj, 0))

		for i := j + 1; i < p; i++ {
			s := l.At(i, j)
			for k := 0; k < j; k++ {
				s -= l.At(i, k) * cmplx.Conj(l.At(j, k))
			}
			l.Set(i, j, s/complex(ljj, 0))
		}
	}
	return l, true
}

// invertLowerTriangular inverts the lower triangular p×p matrix l by
// forward substitution, column by column.
func invertLowerTriangular(l *mat.CDense, p int) *mat.CDense {
	inv := mat.NewCDense(p, p, nil)
	for c := 0; c < p; c++ {
		inv.Set(c, c, 1/l.At(c, c))
		for r := c + 1; r < p; r++ {
			var sum complex128
			for k := c; k < r; k++ {
				sum += l.At(r, k) * inv.At(k, c)
			}
			inv.Set(r, c, -sum/l.At(r, r))
		}
	}
	return inv
}
