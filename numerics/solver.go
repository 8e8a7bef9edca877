package numerics

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrConvergence is returned when a solver exhausts its iteration
	// budget or hits a numerically degenerate derivative.
	ErrConvergence = errors.New("solver failed to converge")

	// ErrBracket is returned when the bisection bracket does not
	// contain a sign change.
	ErrBracket = errors.New("bracket does not contain a sign change")
)

// SolverConfig holds the tolerances and bounds for the 1-D root finders.
// Values are passed explicitly; there is no mutable global configuration.
type SolverConfig struct {
	MaxIterations int
	ObjectiveTol  float64 // convergence on |f(x)|
	StepTol       float64 // convergence on |x_{n+1} - x_n|
	BracketLo     float64 // iterates are clamped into [BracketLo, BracketHi]
	BracketHi     float64
	MinDerivative float64 // Newton steps are rejected below this |f'(x)|
}

// DefaultSolverConfig is tuned for implied-volatility inversion: the
// bracket spans the admissible volatility range.
var DefaultSolverConfig = SolverConfig{
	MaxIterations: 100,
	ObjectiveTol:  1e-9,
	StepTol:       1e-12,
	BracketLo:     1e-6,
	BracketHi:     5.0,
	MinDerivative: 1e-10,
}

// SolveNewton runs Newton-Raphson from x0, clamping every iterate into
// the configured bracket. It fails with ErrConvergence when the
// derivative falls below MinDerivative or the iteration budget runs out.
func SolveNewton(f, fprime func(float64) float64, x0 float64, cfg SolverConfig) (float64, error) {
	x := clamp(x0, cfg.BracketLo, cfg.BracketHi)
	for i := 0; i < cfg.MaxIterations; i++ {
		fx := f(x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) {
			return 0, fmt.Errorf("objective non-finite at x=%g: %w", x, ErrConvergence)
		}
		if math.Abs(fx) < cfg.ObjectiveTol {
			return x, nil
		}
		d := fprime(x)
		if math.IsNaN(d) || math.Abs(d) < cfg.MinDerivative {
			return 0, fmt.Errorf("derivative %g below floor at x=%g: %w", d, x, ErrConvergence)
		}
		raw := x - fx/d
		next := clamp(raw, cfg.BracketLo, cfg.BracketHi)
		// Step convergence counts only for the unclamped step; a step
		// pinned at a bracket edge means the root lies outside.
		if math.Abs(raw-x) < cfg.StepTol {
			return next, nil
		}
		if next == x {
			return 0, fmt.Errorf("iterate stuck at bracket edge %g: %w", x, ErrConvergence)
		}
		x = next
	}
	return 0, fmt.Errorf("newton exhausted %d iterations: %w", cfg.MaxIterations, ErrConvergence)
}

// SolveBisection finds a root of f in [lo, hi] by interval halving.
// The bracket must contain a sign change.
func SolveBisection(f func(float64) float64, lo, hi float64, cfg SolverConfig) (float64, error) {
	flo := f(lo)
	if math.Abs(flo) < cfg.ObjectiveTol {
		return lo, nil
	}
	fhi := f(hi)
	if math.Abs(fhi) < cfg.ObjectiveTol {
		return hi, nil
	}
	if flo*fhi > 0 || math.IsNaN(flo) || math.IsNaN(fhi) {
		return 0, fmt.Errorf("f(%g)=%g, f(%g)=%g: %w", lo, flo, hi, fhi, ErrBracket)
	}
	// Bisection halves the bracket once per iteration, so give it more
	// headroom than Newton.
	for i := 0; i < 4*cfg.MaxIterations; i++ {
		mid := lo + (hi-lo)/2
		fmid := f(mid)
		if math.Abs(fmid) < cfg.ObjectiveTol || (hi-lo)/2 < cfg.StepTol {
			return mid, nil
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0, fmt.Errorf("bisection exhausted %d iterations: %w", 4*cfg.MaxIterations, ErrConvergence)
}

// Solve is the hybrid strategy: Newton first, bisection over the full
// bracket when Newton fails. A non-converged value is never returned.
func Solve(f, fprime func(float64) float64, x0 float64, cfg SolverConfig) (float64, error) {
	x, err := SolveNewton(f, fprime, x0, cfg)
	if err == nil {
		return x, nil
	}
	x, berr := SolveBisection(f, cfg.BracketLo, cfg.BracketHi, cfg)
	if berr != nil {
		// Report the Newton failure; the bracket failure usually just
		// restates that no admissible root exists.
		return 0, err
	}
	return x, nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
