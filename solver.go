// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import (
	"math"
	"time"
)

// Solve finds the invariant subspace minimizing the Rayleigh trace, per
// spec.md §4.1. It mutates problem.Y in place and returns the resolved
// eigenvalues on success.
//
// Solve returns ErrBadInput if len(problem.Work) < 3, a *DivergenceError if
// a computed trace is non-finite, a *BracketFailureError if the exact line
// search cannot bracket a root, or ErrNonConvergence if MaxIterations is
// reached.
func Solve(problem Problem, settings Settings) (Result, error) {
	if len(problem.Work) < 3 {
		return Result{}, ErrBadInput
	}
	n, p := problem.Y.Dims()
	checkWorkDims(problem.Work, n, p)

	defaultSettings(&settings)

	r := newRun(problem, settings, n, p)
	return r.solve()
}

// checkWorkDims panics on dimension mismatches between Y and its
// workspaces: a programmer error, not a call-time ErrBadInput, mirroring
// linsolve.checkSettings's panic convention for malformed shapes.
func checkWorkDims(work []BlockMatrix, n, p int) {
	for i, w := range work {
		wn, wp := w.Dims()
		if wn != n || wp != p {
			panic("pcgeig: work block has mismatched dimensions")
		}
		_ = i
	}
}

// run holds all state for one Solve call; its lifetime is exactly one call
// (spec.md §3 "Solver state").
type run struct {
	problem  Problem
	settings Settings
	n, p     int

	G, X, D, prevG BlockMatrix
	hasCG, hasPR   bool

	YtAYU, DtAD, symYtAD, YtY, U, DtD, symYtD SmallMatrix
	YtAY                                      SmallMatrix
	// m3a, m4a are the fixed (theta-independent) combinations §4.6 folds
	// into the derivative at every evaluation.
	m3a, m4a   SmallMatrix
	S1, S2, S3 SmallMatrix

	// Scratch for the trace functional (trace.go), reused across every
	// f(θ)/f′(θ) evaluation within one outer iteration's line search so
	// linmin's many bracket/Ridders calls allocate nothing.
	tM, tN, tM3, tM4, tMi, tUNU SmallMatrix

	iteration    int
	dNorm        float64
	curTraceGtX  float64
	prevTraceGtX float64
	prevTheta    float64
	prevE        float64
	useLinmin    bool

	lastFeedback time.Time
	stats        Stats
}

func newRun(problem Problem, settings Settings, n, p int) *run {
	r := &run{
		problem:   problem,
		settings:  settings,
		n:         n,
		p:         p,
		prevTheta: 0.5,
		useLinmin: true,
	}

	r.G = problem.Work[0]
	r.X = problem.Work[1]
	r.D = problem.Work[2]
	r.hasCG = !settings.DisableCG
	if len(problem.Work) >= 4 {
		r.prevG = problem.Work[3]
		r.hasPR = true
	}

	r.YtAYU = problem.NewSmall(p)
	r.DtAD = problem.NewSmall(p)
	r.symYtAD = problem.NewSmall(p)
	r.YtY = problem.NewSmall(p)
	r.U = problem.NewSmall(p)
	r.DtD = problem.NewSmall(p)
	r.symYtD = problem.NewSmall(p)
	r.S1 = problem.NewSmall(p)
	r.S2 = problem.NewSmall(p)
	r.S3 = problem.NewSmall(p)

	r.YtAY = problem.NewSmall(p)
	r.m3a = problem.NewSmall(p)
	r.m4a = problem.NewSmall(p)

	r.tM = problem.NewSmall(p)
	r.tN = problem.NewSmall(p)
	r.tM3 = problem.NewSmall(p)
	r.tM4 = problem.NewSmall(p)
	r.tMi = problem.NewSmall(p)
	r.tUNU = problem.NewSmall(p)
	return r
}

func (r *run) log(e LogEntry) {
	e.Iteration = r.iteration
	r.settings.Logger.Log(e)
}

func (r *run) solve() (Result, error) {
	Y := r.problem.Y
	for r.iteration = 0; r.iteration < r.settings.MaxIterations; r.iteration++ {
		if r.settings.ForceApproxLinmin {
			r.useLinmin = false
		}
		if r.settings.ForceExactLinmin {
			r.useLinmin = true
		}

		// Step 1: YtY ← YᴴY.
		tZtZStart := r.settings.Clock.Now()
		Y.GramInto(r.YtY)

		// Step 2: rescale Y (and YtY) so ‖Y‖²_F/p = 1.
		trYtY := real(r.YtY.Trace())
		yNorm := math.Sqrt(trYtY / float64(r.p))
		Y.ScaleAdd(complex(1/yNorm, 0), 0, Y)
		r.YtY.ScaleAdd(complex(1/(yNorm*yNorm), 0), 0, r.YtY)
		tZtZ := r.settings.Clock.Now().Sub(tZtZStart)

		// Step 3: U ← (YᴴY)⁻¹.
		r.U.CopyFrom(r.YtY)
		if err := r.U.Invert(); err != nil {
			return r.fail(err)
		}

		// Step 4: X ← A·Y, with G as scratch.
		tAZStart := r.settings.Clock.Now()
		if err := r.problem.Apply(r.X, Y, r.G, r.iteration == 0); err != nil {
			return r.fail(err)
		}
		r.stats.ApplyCount++
		tAZ := r.settings.Clock.Now().Sub(tAZStart)

		// Step 5: G ← X·U.
		tZSStart := r.settings.Clock.Now()
		r.G.SetMulSmall(r.X, r.U, true)
		tZS := r.settings.Clock.Now().Sub(tZSStart)

		// Step 6: YtAYU ← Yᴴ·G = YᴴAY·U. E = ℜ tr(YtAYU).
		tZtWStart := r.settings.Clock.Now()
		Y.InnerInto(r.YtAYU, r.G)
		tZtW := r.settings.Clock.Now().Sub(tZtWStart)
		E := real(r.YtAYU.Trace())
		if isBadNum(E) {
			return r.fail(&DivergenceError{Iteration: r.iteration, Value: E})
		}

		// Step 7: convergence test.
		fracChange := 0.0
		if r.iteration > 0 {
			fracChange = math.Abs(E-r.prevE) / (0.5 * (math.Abs(E) + math.Abs(r.prevE) + energyEpsilon))
			if fracChange < r.settings.Tolerance {
				r.log(LogEntry{Energy: E, FractionalChange: fracChange, Message: "converged"})
				return r.succeed(Y, E)
			}
		}

		// Step 8: progress feedback.
		if r.settings.Verbose || r.settings.Clock.Now().Sub(r.lastFeedback) > r.settings.FeedbackInterval {
			r.log(LogEntry{Energy: E, FractionalChange: fracChange})
			r.lastFeedback = r.settings.Clock.Now()
		}

		// Step 9: Euclidean gradient G ← G − Y·(U·YtAYU).
		r.S1.SetProd(1, r.U, false, r.YtAYU, false)
		r.G.AddMulSmall(-1, Y, r.S1)

		// Step 10: preconditioning X ← K·G, or X ← G.
		var tKZ time.Duration
		if r.problem.Precon != nil {
			tKZStart := r.settings.Clock.Now()
			if err := r.problem.Precon(r.X, r.G, Y, nil, r.YtY); err != nil {
				return r.fail(err)
			}
			r.stats.PreconCount++
			tKZ = r.settings.Clock.Now().Sub(tKZStart)
		} else {
			r.X.CopyFrom(r.G)
		}

		// Step 11: optional projection X ← X − Y·(U·YᴴX).
		if r.settings.ProjectPreconditioning {
			Y.InnerInto(r.S2, r.X)
			r.S3.SetProd(1, r.U, false, r.S2, false)
			r.X.AddMulSmall(-1, Y, r.S3)
		}

		// Step 12: build the CG direction D.
		r.buildDirection()

		// Step 13: line search.
		var theta float64
		var linminT time.Duration
		var improvement float64
		var err error
		if r.useLinmin {
			theta, improvement, linminT, err = r.exactLineSearch(Y, E)
		} else {
			theta, err = r.newtonLineSearch(Y, E)
			improvement = 0 // §4.3 step 7 / spec.md §9 Open Question: recorded as zero, not estimated.
		}
		if err != nil {
			return r.fail(err)
		}

		// Step 14: apply the constraint, if any.
		if r.problem.Constraint != nil {
			if err := r.problem.Constraint(Y); err != nil {
				return r.fail(err)
			}
			r.stats.ConstraintCount++
		}

		// Step 15: persist state for the next iteration.
		r.prevTraceGtX = r.curTraceGtX
		r.prevTheta = theta
		r.prevE = E

		// Step 16: adaptive strategy selection.
		r.adapt(kernelTimings{AZ: tAZ, KZ: tKZ, ZtW: tZtW, ZS: tZS, ZtZ: tZtZ, Linmin: linminT}, improvement)

		r.stats.Iterations++
	}
	return r.fail(ErrNonConvergence)
}

func (r *run) fail(err error) (Result, error) {
	return Result{NumIterations: r.iteration, Stats: r.stats}, err
}

func (r *run) succeed(y BlockMatrix, e float64) (Result, error) {
	y.GramInto(r.YtY)
	r.U.CopyFrom(r.YtY)
	if err := r.U.Invert(); err != nil {
		return r.fail(err)
	}
	eigenvals, err := r.problem.Resolve(y, r.U)
	if err != nil {
		return r.fail(err)
	}
	return Result{
		Eigenvalues:   eigenvals,
		Energy:        e,
		NumIterations: r.iteration,
		Stats:         r.stats,
	}, nil
}

func isBadNum(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}
