// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import (
	"math"
	"time"
)

const linminMaxRidders = 60

// fdfunc evaluates both the trace energy and its derivative at an angle.
type fdfunc func(theta float64) (f, df float64, err error)

// linmin finds the angle minimizing f by bracketing and root-finding f′,
// per spec.md §4.2's contract.
//
// xmin must be a point with known value fXmin and derivative dfXmin, and
// xmax a point known to lie downhill from x0, which in turn must lie
// strictly between xmin and xmax with dfXmin·(x0−xmin) < 0 — violating
// this entry contract is a caller bug, reported as ErrBadInput rather
// than silently rebracketed. dfXmin == 0 is not a contract violation: per
// §4.2's "any df at an endpoint reaches zero, return that endpoint", xmin
// is already stationary and is returned immediately with no improvement.
//
// Phase 1 expands the bracket, doubling from xmin toward xmax in steps
// of 2·(x0−xmin), until fdf's sign changes (a root is bracketed) or the
// scan passes xmax, in which case x0 is halved toward xmin and the scan
// restarts at finer resolution. Phase 2 applies Ridders' method to f′
// within the bracket.
func (r *run) linmin(fdf fdfunc, xmin, fXmin, dfXmin, xmax, x0, tol float64) (theta, improvement float64, err error) {
	if dfXmin == 0 {
		return xmin, 0, nil
	}
	if dfXmin*(x0-xmin) >= 0 {
		return 0, 0, ErrBadInput
	}
	fStart, _, err := fdf(x0)
	if err != nil {
		return 0, 0, err
	}

	xLo, dfLo := xmin, dfXmin
	_, dfHi, err := fdf(xmax)
	if err != nil {
		return 0, 0, err
	}
	xHi := xmax

	bracketed := dfLo*dfHi <= 0
	x0cur := x0
	for !bracketed {
		if math.Abs(x0cur-xLo) <= tol*(math.Abs(x0cur)+tol) {
			return 0, 0, &BracketFailureError{Xmin: xLo, Xmax: xHi, X0: x0, Tolerance: tol}
		}
		step := 2 * (x0cur - xLo)
		x := xLo
		found := false
		for {
			x += step
			if (step > 0 && x > xmax) || (step < 0 && x < xmax) {
				break
			}
			_, dfx, err := fdf(x)
			if err != nil {
				return 0, 0, err
			}
			if dfLo*dfx <= 0 {
				xHi, dfHi = x, dfx
				found = true
				break
			}
			xLo, dfLo = x, dfx
		}
		if found {
			bracketed = true
			break
		}
		xLo, dfLo = xmin, dfXmin
		x0cur = 0.5 * (x0cur + xLo)
	}

	if xLo > xHi {
		xLo, xHi = xHi, xLo
		dfLo, dfHi = dfHi, dfLo
	}

	ans := x0cur
	dfAns := dfXmin
	if ans != xmin {
		_, dfAns, err = fdf(ans)
		if err != nil {
			return 0, 0, err
		}
	}
	if dfAns == 0 {
		fFinal, _, err := fdf(ans)
		if err != nil {
			return 0, 0, err
		}
		return ans, improvementOf(fStart, fFinal, tol), nil
	}

	x1, df1 := xLo, dfLo
	x2, df2 := xHi, dfHi
	prevX := ans

	for i := 0; i < linminMaxRidders; i++ {
		if df1 == 0 {
			fFinal, _, err := fdf(x1)
			if err != nil {
				return 0, 0, err
			}
			return x1, improvementOf(fStart, fFinal, tol), nil
		}
		if df2 == 0 {
			fFinal, _, err := fdf(x2)
			if err != nil {
				return 0, 0, err
			}
			return x2, improvementOf(fStart, fFinal, tol), nil
		}

		// xm is the midpoint of the current bracket, recomputed fresh every
		// iteration — carrying the previous xnew forward as xm instead (as a
		// literal reading of the update formula alone might suggest) makes
		// xm coincide with whichever of x1/x2 this same iteration just
		// replaced, degenerating the (xm-x1) term on the next pass.
		xm := 0.5 * (x1 + x2)
		_, dfm, err := fdf(xm)
		if err != nil {
			return 0, 0, err
		}

		s := math.Sqrt(dfm*dfm - df1*df2)
		if s == 0 {
			return 0, 0, &BracketFailureError{Xmin: x1, Xmax: x2, X0: x0, Tolerance: tol}
		}
		xnew := xm + (xm-x1)*sign(df1-df2)*dfm/s
		_, dfnew, err := fdf(xnew)
		if err != nil {
			return 0, 0, err
		}

		oldX1, oldX2 := x1, x2
		switch {
		case sign(dfm) != sign(dfnew):
			x1, df1 = xm, dfm
			x2, df2 = xnew, dfnew
		case sign(df1) != sign(dfnew):
			x2, df2 = xnew, dfnew
		case sign(df2) != sign(dfnew):
			x1, df1 = xnew, dfnew
		default:
			return 0, 0, &BracketFailureError{Xmin: x1, Xmax: x2, X0: x0, Tolerance: tol}
		}

		// nearEdge compares xnew against the bracket as it stood *before*
		// this iteration's narrowing, so it only fires when the new point
		// genuinely lands on (or past) a previous boundary, not trivially
		// every time because this iteration just reassigned that boundary.
		closeEnough := math.Abs(xnew-prevX) < tol*(math.Abs(xnew)+tol)
		nearEdge := math.Min(math.Abs(xnew-oldX1), math.Abs(xnew-oldX2)) < tol*(math.Abs(xnew)+tol)
		if dfnew == 0 || closeEnough || nearEdge {
			fFinal, _, err := fdf(xnew)
			if err != nil {
				return 0, 0, err
			}
			return xnew, improvementOf(fStart, fFinal, tol), nil
		}
		prevX = xnew
	}
	return 0, 0, &BracketFailureError{Xmin: x1, Xmax: x2, X0: x0, Tolerance: tol}
}

func improvementOf(fStart, fFinal, tol float64) float64 {
	return 2 * (fStart - fFinal) / (math.Abs(fStart) + math.Abs(fFinal) + tol)
}

// exactLineSearch minimizes the trace functional along D by bracketing
// and root-finding its derivative, per spec.md §4.2.
func (r *run) exactLineSearch(y BlockMatrix, e0 float64) (theta, improvement float64, dur time.Duration, err error) {
	start := r.settings.Clock.Now()

	if err := r.prepareLineSearch(y); err != nil {
		return 0, 0, r.settings.Clock.Now().Sub(start), err
	}

	dE, d2E, err := r.quadraticModel()
	if err != nil {
		return 0, 0, r.settings.Clock.Now().Sub(start), err
	}
	theta = -dE / d2E
	if d2E < 0 {
		theta = sign(-dE) * math.Abs(r.prevTheta)
	} else if -0.5*dE*theta > 2*math.Abs(e0-r.prevE) {
		r.log(LogEntry{Message: "predicted line-search step unusually large"})
	}
	if math.Abs(theta) >= math.Pi {
		theta = sign(-dE) * math.Abs(r.prevTheta)
	}

	xmax := math.Pi
	if dE >= 0 {
		xmax = -math.Pi
	}

	theta, improvement, err = r.linmin(r.fdf, 0, e0, dE, xmax, theta, r.settings.Tolerance)
	if err != nil {
		return 0, 0, r.settings.Clock.Now().Sub(start), err
	}
	r.rotate(y, theta)
	return theta, improvement, r.settings.Clock.Now().Sub(start), nil
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
