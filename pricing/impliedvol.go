package pricing

import (
	"fmt"
	"math"

	"github.com/quantbatch/quantbatch/numerics"
)

// impliedVol is the shared European inversion: validate the price
// against the no-arbitrage bounds, seed with the Brenner-Subrahmanyam
// approximation, then run the hybrid Newton/bisection solver with vega
// as the analytic derivative.
func impliedVol(marketPrice float64, p Params, isCall bool, b float64) (float64, error) {
	p.Sigma = 0 // the unknown; Validate must not reject on leftover input
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !isFinite(marketPrice) {
		return 0, &DomainError{Param: "price", Value: marketPrice}
	}
	if p.Time == 0 {
		return 0, &DomainError{Param: "time", Value: p.Time}
	}

	lo, hi := priceBounds(p, isCall, b)
	if marketPrice <= lo || marketPrice >= hi {
		return 0, fmt.Errorf("price %g outside (%g, %g): %w", marketPrice, lo, hi, ErrArbitrageBound)
	}

	cfg := numerics.DefaultSolverConfig
	f := func(sigma float64) float64 {
		return gbsPrice(p.Spot, p.Strike, p.Time, p.Rate, b, sigma, isCall) - marketPrice
	}
	fprime := func(sigma float64) float64 {
		return gbsVega(p.Spot, p.Strike, p.Time, p.Rate, b, sigma)
	}
	return numerics.Solve(f, fprime, ivGuess(marketPrice, p, b, cfg), cfg)
}

// priceBounds returns the open no-arbitrage interval for the option
// price: (discounted intrinsic, discounted forward) for calls and
// (discounted intrinsic, discounted strike) for puts.
func priceBounds(p Params, isCall bool, b float64) (float64, float64) {
	carryS := p.Spot * math.Exp((b-p.Rate)*p.Time)
	discK := p.Strike * math.Exp(-p.Rate*p.Time)
	if isCall {
		return math.Max(carryS-discK, 0), carryS
	}
	return math.Max(discK-carryS, 0), discK
}

// ivGuess is the Brenner-Subrahmanyam at-the-money approximation
// sigma ~ price/S * sqrt(2*pi/T), clamped into the solver bracket.
func ivGuess(marketPrice float64, p Params, b float64, cfg numerics.SolverConfig) float64 {
	carryS := p.Spot * math.Exp((b-p.Rate)*p.Time)
	guess := marketPrice / carryS * math.Sqrt(2*math.Pi/p.Time)
	if math.IsNaN(guess) || guess < cfg.BracketLo {
		return cfg.BracketLo
	}
	if guess > cfg.BracketHi {
		return cfg.BracketHi
	}
	return guess
}
