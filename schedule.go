// Copyright ©2024 The Pcgeig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcgeig

import "time"

// kernelTimings holds one iteration's measured per-kernel durations, the
// inputs to the adaptive line-search cost model (§4.5).
type kernelTimings struct {
	AZ, KZ, ZtW, ZS, ZtZ, Linmin time.Duration
}

// adapt runs the adaptive line-search scheduler (§4.5): it models the cost
// of each strategy from this iteration's kernel timings and switches to
// the Newton-approximate strategy only when the exact strategy is both
// expensive and not paying off.
func (r *run) adapt(t kernelTimings, improvement float64) {
	tExact := 2*t.AZ + t.KZ + 4*t.ZtW + 2*t.ZS + 2*t.ZtZ + t.Linmin
	tApprox := 2*t.AZ + t.KZ + 2*t.ZtW + 2*t.ZS + 2*t.ZtZ
	if r.settings.ProjectPreconditioning {
		extra := t.ZtW + t.ZS
		tExact += extra
		tApprox += extra
	}

	switchToApprox := !r.settings.ForceExactLinmin &&
		improvement > 0 && improvement <= 0.05 &&
		tExact > 2*tApprox

	newUseLinmin := !switchToApprox
	if newUseLinmin != r.useLinmin {
		r.stats.StrategySwitches++
		strategy := Exact
		if !newUseLinmin {
			strategy = Approx
		}
		if r.settings.Verbose {
			r.log(LogEntry{StrategyChanged: true, Strategy: strategy})
		}
	}
	r.useLinmin = newUseLinmin
}
