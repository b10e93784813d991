// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import "math"

// prepareLineSearch applies the operator along the search direction and
// assembles the p×p pencil the trace functional (§4.6) needs. It must run
// once per outer iteration, after buildDirection and before any call to
// (*run).f or (*run).fdf: every trial Y(θ) = cosθ·Y + (sinθ/‖D‖)·D lies in
// the fixed 2p-dimensional subspace spanned by Y and D, so its Gram and
// Rayleigh blocks are bilinear in cosθ and sinθ with coefficients fixed
// for the whole line search — evaluating f(θ) costs O(p³), not a fresh
// A·Y(θ) application.
func (r *run) prepareLineSearch(y BlockMatrix) error {
	// G ← AD, reusing the G slot (free after step 10); X is Apply's
	// scratch (free after buildDirection copied it into D).
	if err := r.problem.Apply(r.G, r.D, r.X, false); err != nil {
		return err
	}
	r.stats.ApplyCount++
	ad := r.G

	r.D.GramInto(r.DtD)
	y.InnerInto(r.S1, r.D)
	r.symYtD.CopyFrom(r.S1)
	r.symYtD.Symmetrize()

	r.D.InnerInto(r.DtAD, ad)
	y.InnerInto(r.S1, ad)
	r.symYtAD.CopyFrom(r.S1)
	r.symYtAD.Symmetrize()

	// YtAY ← YtAYU·YtY, recovering the plain Rayleigh block from the
	// product already computed in the outer loop's step 6.
	r.YtAY.SetProd(1, r.YtAYU, false, r.YtY, false)

	r.dNorm = math.Sqrt(real(r.DtD.Trace()) / float64(r.p))

	invSq := complex(0, 0)
	if r.dNorm != 0 {
		invSq = complex(1/(r.dNorm*r.dNorm), 0)
	}
	r.m3a.CopyFrom(r.YtAY)
	r.m3a.AddScaled(-invSq, r.DtAD)
	r.m4a.CopyFrom(r.YtY)
	r.m4a.AddScaled(-invSq, r.DtD)
	return nil
}

// buildPencil assembles M1(θ) = Y(θ)ᴴY(θ) into r.tM and M2(θ) =
// Y(θ)ᴴAY(θ) into r.tN, per §4.6, with c = cosθ and s = sinθ/‖D‖.
func (r *run) buildPencil(theta float64) (c, s float64) {
	c = math.Cos(theta)
	s = 0
	if r.dNorm != 0 {
		s = math.Sin(theta) / r.dNorm
	}
	cc, ss, sc2 := complex(c*c, 0), complex(s*s, 0), complex(2*s*c, 0)

	r.tM.CopyFrom(r.YtY)
	r.tM.ScaleAdd(cc, 0, r.tM)
	r.tM.AddScaled(ss, r.DtD)
	r.tM.AddScaled(sc2, r.symYtD)

	r.tN.CopyFrom(r.YtAY)
	r.tN.ScaleAdd(cc, 0, r.tN)
	r.tN.AddScaled(ss, r.DtAD)
	r.tN.AddScaled(sc2, r.symYtAD)
	return c, s
}

// f returns the Rayleigh trace energy at rotation angle theta along the
// prepared direction, f(θ) = ℜ tr(M2(θ)·M1(θ)⁻¹).
func (r *run) f(theta float64) (float64, error) {
	e, _, err := r.fdf(theta)
	return e, err
}

// fdf returns both f(θ) and f′(θ) from one pencil build, matching the
// line-search-functional contract used by linmin (§4.2: "function f(x)
// returning (value, optionally derivative)").
//
// f′ per §4.6: with c2 = cos 2θ, s2 = sin 2θ,
//
//	M3(θ) = -½·s2·m3a + (c2/‖D‖)·symYtAD
//	M4(θ) = -½·s2·m4a + (c2/‖D‖)·symYtD
//	f′(θ) = 2·[ ℜ tr(M1⁻¹·M3(θ)) − ℜ tr((M1⁻¹·M2·M1⁻¹)·M4(θ)) ]
func (r *run) fdf(theta float64) (f, df float64, err error) {
	r.buildPencil(theta)
	r.tMi.CopyFrom(r.tM)
	if err := r.tMi.Invert(); err != nil {
		return 0, 0, err
	}

	r.S1.SetProd(1, r.tN, false, r.tMi, false)
	f = real(r.S1.Trace())

	c2, s2 := math.Cos(2*theta), math.Sin(2*theta)
	halfS2 := complex(-0.5*s2, 0)
	invC2 := complex(0, 0)
	if r.dNorm != 0 {
		invC2 = complex(c2/r.dNorm, 0)
	}

	r.tM3.CopyFrom(r.m3a)
	r.tM3.ScaleAdd(halfS2, 0, r.tM3)
	r.tM3.AddScaled(invC2, r.symYtAD)

	r.tM4.CopyFrom(r.m4a)
	r.tM4.ScaleAdd(halfS2, 0, r.tM4)
	r.tM4.AddScaled(invC2, r.symYtD)

	r.S2.SetProd(1, r.tMi, false, r.tM3, false)
	term1 := real(r.S2.Trace())

	r.tUNU.SetProd(1, r.tMi, false, r.tN, false)
	r.S2.SetProd(1, r.tUNU, false, r.tMi, false)
	r.S1.SetProd(1, r.S2, false, r.tM4, false)
	term2 := real(r.S1.Trace())

	df = 2 * (term1 - term2)
	return f, df, nil
}

// quadraticModel estimates f′(0) and f″(0) along D, giving exactLineSearch
// its starting guess for θ before handing off to linmin (§4.2). dE is
// computed directly from the blocks prepareLineSearch already assembled
// (tM(0) = YtY is already inverted into U, so this is f′(0) without a
// redundant re-inversion) — it must equal what fdf(0) itself would return,
// since linmin's entry contract treats dfXmin as the genuine derivative at
// xmin = 0, not merely an estimate. d2E has no comparable closed form
// assembled elsewhere in this package, so it is estimated from a one-sided
// probe of the exact derivative a small step away, which keeps it
// provably consistent with fdf rather than risking a second, independently
// derived curvature formula drifting out of step with it.
func (r *run) quadraticModel() (dE, d2E float64, err error) {
	r.S1.SetProd(1, r.U, false, r.symYtAD, false)
	term1 := real(r.S1.Trace())

	r.tUNU.SetProd(1, r.U, false, r.YtAY, false)
	r.S2.SetProd(1, r.tUNU, false, r.U, false)
	r.S1.SetProd(1, r.S2, false, r.symYtD, false)
	term2 := real(r.S1.Trace())

	if r.dNorm != 0 {
		dE = 2 * (term1 - term2) / r.dNorm
	}

	const probe = 1e-3
	_, dfProbe, err := r.fdf(probe)
	if err != nil {
		return 0, 0, err
	}
	d2E = (dfProbe - dE) / probe
	return dE, d2E, nil
}

// rotate commits the line-search result: y ← cosθ·y + (sinθ/‖D‖)·D.
func (r *run) rotate(y BlockMatrix, theta float64) {
	dNorm := r.dNorm
	if dNorm == 0 {
		dNorm = 1
	}
	c, s := math.Cos(theta), math.Sin(theta)
	y.ScaleAdd(complex(c, 0), complex(s/dNorm, 0), r.D)
}
