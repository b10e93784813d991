// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import (
	"math"
	"math/cmplx"
	"testing"
)

// newNewtonTestRun wires a run for newtonLineSearch against A = diag(2, 5)
// on n=2, p=1, with Y = [1,0] and D = [0,1] (so dNorm = 1, keeping the
// arithmetic easy to hand-verify) and gradient G = [0, g1].
func newNewtonTestRun(g1 complex128, prevTheta, prevE float64) (*run, *testBlock) {
	r := &run{settings: Settings{Logger: nopLogger{}}, prevTheta: prevTheta, prevE: prevE, p: 1, useLinmin: false}
	r.problem.Apply = diagonalApplyTest([]float64{2, 5})

	y := newTestBlock(2, 1)
	y.Set(0, 0, 1)

	r.D = newTestBlock(2, 1)
	r.D.(*testBlock).Set(1, 0, 1)

	r.G = newTestBlock(2, 1)
	r.G.(*testBlock).Set(1, 0, g1)

	r.X = newTestBlock(2, 1)
	r.YtY = newTestSmall(1)
	r.U = newTestSmall(1)
	r.S1 = newTestSmall(1)
	r.S2 = newTestSmall(1)

	return r, y
}

func TestNewtonLineSearchAcceptsReliableProbe(t *testing.T) {
	// g1 = -1 gives dE = -2; prevTheta = 0.5 gives t = +0.5. The probe
	// Y = [1, 0.5] has U = 1/1.25 and YᴴAY = 3.25, so e2 = 2.6,
	// d2E = (2.6-2+1)/0.125 = 12.8 and theta = 2/12.8 = 0.15625. prevE = 1
	// keeps the unreliable-probe guard (0.15625 > 20·|2-1|) from firing.
	r, y := newNewtonTestRun(-1, 0.5, 1)

	theta, err := r.newtonLineSearch(y, 2)
	if err != nil {
		t.Fatalf("newtonLineSearch: %v", err)
	}
	const wantTheta = 0.15625
	if math.Abs(theta-wantTheta) > 1e-9 {
		t.Errorf("theta = %v, want %v", theta, wantTheta)
	}
	if r.useLinmin {
		t.Errorf("useLinmin = true, want false (a reliable probe shouldn't force the exact strategy)")
	}

	// dNorm = 1 here, so the net rotation collapses to y + theta*D exactly.
	if got := y.At(0, 0); got != 1 {
		t.Errorf("y[0] = %v, want 1 (unchanged along the non-rotated axis)", got)
	}
	if got := y.At(1, 0); cmplx.Abs(got-complex(wantTheta, 0)) > 1e-9 {
		t.Errorf("y[1] = %v, want ~%v", got, wantTheta)
	}
}

func TestNewtonLineSearchRevertsOnUnreliableProbe(t *testing.T) {
	// prevE == e0 makes -0.5*dE*theta > 20*|e0-prevE| = 0 hold whenever
	// d2E > 0 (the ordinary case here), forcing the unreliable-probe
	// revert regardless of the exact numbers involved.
	r, y := newNewtonTestRun(-1, 0.5, 2)

	theta, err := r.newtonLineSearch(y, 2)
	if err != nil {
		t.Fatalf("newtonLineSearch: %v", err)
	}
	if theta != r.prevTheta {
		t.Errorf("theta = %v, want prevTheta %v", theta, r.prevTheta)
	}
	if !r.useLinmin {
		t.Errorf("useLinmin = false, want true (unreliable probe must force the exact strategy)")
	}
	if got := y.At(0, 0); got != 1 {
		t.Errorf("y[0] = %v, want 1 (probe must be fully undone)", got)
	}
	if got := y.At(1, 0); got != 0 {
		t.Errorf("y[1] = %v, want 0 (probe must be fully undone)", got)
	}
}

