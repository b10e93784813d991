// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import "math/cmplx"

// testBlock and testSmall are minimal, allocation-naive BlockMatrix and
// SmallMatrix fixtures for white-box tests of unexported run methods
// (buildDirection, the trace functional, linmin). They exist only so
// those tests don't need to import pcgeig/kernel, which imports pcgeig
// and would make an internal (package pcgeig) test file an import cycle.

type testBlock struct {
	n, p int
	data [][]complex128
}

func newTestBlock(n, p int) *testBlock {
	data := make([][]complex128, n)
	for i := range data {
		data[i] = make([]complex128, p)
	}
	return &testBlock{n: n, p: p, data: data}
}

func (b *testBlock) Dims() (int, int) { return b.n, b.p }
func (b *testBlock) At(i, j int) complex128 { return b.data[i][j] }
func (b *testBlock) Set(i, j int, v complex128) { b.data[i][j] = v }

func (b *testBlock) CopyFrom(src BlockMatrix) {
	s := src.(*testBlock)
	for i := 0; i < b.n; i++ {
		copy(b.data[i], s.data[i])
	}
}

func (b *testBlock) GramInto(dst SmallMatrix) {
	d := dst.(*testSmall)
	for j1 := 0; j1 < b.p; j1++ {
		for j2 := 0; j2 < b.p; j2++ {
			var sum complex128
			for i := 0; i < b.n; i++ {
				sum += cmplx.Conj(b.data[i][j1]) * b.data[i][j2]
			}
			d.data[j1][j2] = sum
		}
	}
}

func (b *testBlock) InnerInto(dst SmallMatrix, y BlockMatrix) {
	yb := y.(*testBlock)
	d := dst.(*testSmall)
	for j1 := 0; j1 < b.p; j1++ {
		for j2 := 0; j2 < b.p; j2++ {
			var sum complex128
			for i := 0; i < b.n; i++ {
				sum += cmplx.Conj(b.data[i][j1]) * yb.data[i][j2]
			}
			d.data[j1][j2] = sum
		}
	}
}

func (b *testBlock) SetMulSmall(y BlockMatrix, s SmallMatrix, isHermitian bool) {
	yb := y.(*testBlock)
	sm := s.(*testSmall)
	out := make([][]complex128, b.n)
	for i := 0; i < b.n; i++ {
		out[i] = make([]complex128, b.p)
		for j := 0; j < b.p; j++ {
			var sum complex128
			for k := 0; k < b.p; k++ {
				sum += yb.data[i][k] * sm.data[k][j]
			}
			out[i][j] = sum
		}
	}
	b.data = out
}

func (b *testBlock) AddMulSmall(a complex128, y BlockMatrix, s SmallMatrix) {
	yb := y.(*testBlock)
	sm := s.(*testSmall)
	for i := 0; i < b.n; i++ {
		for j := 0; j < b.p; j++ {
			var sum complex128
			for k := 0; k < b.p; k++ {
				sum += yb.data[i][k] * sm.data[k][j]
			}
			b.data[i][j] += a * sum
		}
	}
}

func (b *testBlock) ScaleAdd(a, bCoef complex128, y BlockMatrix) {
	yb := y.(*testBlock)
	for i := 0; i < b.n; i++ {
		for j := 0; j < b.p; j++ {
			b.data[i][j] = a*b.data[i][j] + bCoef*yb.data[i][j]
		}
	}
}

func (b *testBlock) TraceInner(y BlockMatrix) complex128 {
	yb := y.(*testBlock)
	var sum complex128
	for i := 0; i < b.n; i++ {
		for j := 0; j < b.p; j++ {
			sum += cmplx.Conj(b.data[i][j]) * yb.data[i][j]
		}
	}
	return sum
}

func (b *testBlock) DiffSwap(prev BlockMatrix) {
	p := prev.(*testBlock)
	for i := 0; i < b.n; i++ {
		for j := 0; j < b.p; j++ {
			old := b.data[i][j]
			oldPrev := p.data[i][j]
			b.data[i][j] = old - oldPrev
			p.data[i][j] = old
		}
	}
}

type testSmall struct {
	p    int
	data [][]complex128
}

func newTestSmall(p int) SmallMatrix {
	data := make([][]complex128, p)
	for i := range data {
		data[i] = make([]complex128, p)
	}
	return &testSmall{p: p, data: data}
}

func (s *testSmall) Dims() int { return s.p }
func (s *testSmall) At(i, j int) complex128 { return s.data[i][j] }
func (s *testSmall) Set(i, j int, v complex128) { s.data[i][j] = v }

func (s *testSmall) CopyFrom(src SmallMatrix) {
	o := src.(*testSmall)
	for i := 0; i < s.p; i++ {
		copy(s.data[i], o.data[i])
	}
}

func (s *testSmall) ScaleAdd(a, b complex128, b2 SmallMatrix) {
	o := b2.(*testSmall)
	for i := 0; i < s.p; i++ {
		for j := 0; j < s.p; j++ {
			s.data[i][j] = a*s.data[i][j] + b*o.data[i][j]
		}
	}
}

func (s *testSmall) AddScaled(a complex128, b SmallMatrix) {
	o := b.(*testSmall)
	for i := 0; i < s.p; i++ {
		for j := 0; j < s.p; j++ {
			s.data[i][j] += a * o.data[i][j]
		}
	}
}

func (s *testSmall) AddProd(a complex128, b SmallMatrix, adjB bool, c SmallMatrix, adjC bool) {
	bm, cm := b.(*testSmall), c.(*testSmall)
	for i := 0; i < s.p; i++ {
		for j := 0; j < s.p; j++ {
			var sum complex128
			for k := 0; k < s.p; k++ {
				bv := bm.data[i][k]
				if adjB {
					bv = cmplx.Conj(bm.data[k][i])
				}
				cv := cm.data[k][j]
				if adjC {
					cv = cmplx.Conj(cm.data[j][k])
				}
				sum += bv * cv
			}
			s.data[i][j] += a * sum
		}
	}
}

func (s *testSmall) SetProd(a complex128, b SmallMatrix, adjB bool, c SmallMatrix, adjC bool) {
	for i := 0; i < s.p; i++ {
		for j := 0; j < s.p; j++ {
			s.data[i][j] = 0
		}
	}
	s.AddProd(a, b, adjB, c, adjC)
}

func (s *testSmall) Symmetrize() {
	for i := 0; i < s.p; i++ {
		for j := i; j < s.p; j++ {
			v := (s.data[i][j] + cmplx.Conj(s.data[j][i])) / 2
			s.data[i][j] = v
			s.data[j][i] = cmplx.Conj(v)
		}
	}
}

func (s *testSmall) Trace() complex128 {
	var t complex128
	for i := 0; i < s.p; i++ {
		t += s.data[i][i]
	}
	return t
}

func (s *testSmall) TraceProd(b SmallMatrix) complex128 {
	o := b.(*testSmall)
	var t complex128
	for i := 0; i < s.p; i++ {
		for j := 0; j < s.p; j++ {
			t += cmplx.Conj(s.data[i][j]) * o.data[i][j]
		}
	}
	return t
}

// Invert uses Gauss-Jordan elimination with partial pivoting; it is a
// general-purpose fallback used only by tests, not a model for
// kernel.Small.Invert (which documents its Hermitian-PD-only Cholesky
// approach separately).
func (s *testSmall) Invert() error {
	p := s.p
	aug := make([][]complex128, p)
	for i := 0; i < p; i++ {
		aug[i] = make([]complex128, 2*p)
		copy(aug[i], s.data[i])
		aug[i][p+i] = 1
	}
	for col := 0; col < p; col++ {
		piv := col
		for r := col + 1; r < p; r++ {
			if cmplx.Abs(aug[r][col]) > cmplx.Abs(aug[piv][col]) {
				piv = r
			}
		}
		aug[col], aug[piv] = aug[piv], aug[col]
		d := aug[col][col]
		if d == 0 {
			return errNotPositiveDefiniteTest
		}
		for j := 0; j < 2*p; j++ {
			aug[col][j] /= d
		}
		for r := 0; r < p; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			for j := 0; j < 2*p; j++ {
				aug[r][j] -= factor * aug[col][j]
			}
		}
	}
	for i := 0; i < p; i++ {
		copy(s.data[i], aug[i][p:])
	}
	return nil
}

var errNotPositiveDefiniteTest = errBadTestMatrix{}

type errBadTestMatrix struct{}

func (errBadTestMatrix) Error() string { return "pcgeig: singular test matrix" }
