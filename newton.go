// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import "math"

// newtonLineSearch approximates the line-search minimum with a two-point
// quadratic (Newton) fit along D, per spec.md §4.3: a single trial step is
// probed by actually applying the operator at the moved point, rather than
// the exact search's O(p³) trace-functional evaluation, trading search
// quality for one fewer class of matrix work.
func (r *run) newtonLineSearch(y BlockMatrix, e0 float64) (float64, error) {
	dNorm := math.Sqrt(real(r.D.TraceInner(r.D)) / float64(r.p))
	if dNorm == 0 {
		return r.prevTheta, nil
	}
	r.dNorm = dNorm

	// dE uses prev_G rather than the current gradient G, since
	// Polak-Ribière (when enabled) has already overwritten G with
	// G−prev_G by the time buildDirection runs; without Polak-Ribière
	// there is no prev_G, so the current gradient stands in for it.
	gradRef := r.prevG
	if !r.hasPR {
		gradRef = r.G
	}
	dE := 2 * real(gradRef.TraceInner(r.D)) / dNorm

	t := sign(-dE) * math.Abs(r.prevTheta)
	y.ScaleAdd(1, complex(t/dNorm, 0), r.D)

	y.GramInto(r.YtY)
	r.U.CopyFrom(r.YtY)
	if err := r.U.Invert(); err != nil {
		return 0, err
	}
	if err := r.problem.Apply(r.G, y, r.X, false); err != nil {
		return 0, err
	}
	r.stats.ApplyCount++
	y.InnerInto(r.S1, r.G)
	r.S2.SetProd(1, r.S1, false, r.U, false)
	e2 := real(r.S2.Trace())

	d2E := (e2 - e0 - dE*t) / (0.5 * t * t)
	theta := -dE / d2E

	if d2E < 0 || -0.5*dE*theta > 20*math.Abs(e0-r.prevE) {
		// The quadratic model is unreliable: undo the probe and defer to
		// the exact strategy starting next iteration, applying no net
		// rotation this iteration.
		y.ScaleAdd(1, complex(-t/dNorm, 0), r.D)
		r.useLinmin = true
		r.log(LogEntry{Message: "newton probe unreliable, reverting to exact strategy"})
		return r.prevTheta, nil
	}

	y.ScaleAdd(1, complex((theta-t)/dNorm, 0), r.D)
	return theta, nil
}
