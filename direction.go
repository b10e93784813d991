// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

// cgResetPeriod is the number of iterations between forced CG direction
// resets (gamma = 0, for Fletcher-Reeves and Polak-Ribière alike) when
// Settings.ResetCG is set (§4.4): periodic restarts bound the
// damage a stale conjugacy assumption can do on a long run.
const cgResetPeriod = 70

// buildDirection turns the preconditioned gradient r.X into the search
// direction r.D, per spec.md §4.4. r.D always names a block distinct from
// r.X, since the line search applies the operator along D; it is never
// aliased.
//
// D and prevG are caller-zero-initialized (spec.md §3's solver-state
// data model), so the first iteration needs no special case: gamma is 0
// whenever prevTraceGtX is 0, which holds on the first iteration by
// construction, collapsing D ← gamma·D + X to D ← X.
func (r *run) buildDirection() {
	r.curTraceGtX = real(r.G.TraceInner(r.X))

	if !r.hasCG {
		r.D.CopyFrom(r.X)
		return
	}

	gammaNum := r.curTraceGtX
	if r.hasPR {
		// G ← G − prevG, prevG ← (the G that existed on entry), in one
		// fused traversal (§4.4 / the invariant documented on
		// BlockMatrix.DiffSwap): a decomposition via an extra n×p
		// scratch buffer is deliberately not available.
		r.G.DiffSwap(r.prevG)
		gammaNum = real(r.G.TraceInner(r.X))
	}

	var gamma float64
	forceReset := r.settings.ResetCG && (r.iteration+1)%cgResetPeriod == 0
	if r.prevTraceGtX != 0 && !forceReset {
		gamma = gammaNum / r.prevTraceGtX
	}

	r.D.ScaleAdd(complex(gamma, 0), 1, r.X)
}
