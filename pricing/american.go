package pricing

import (
	"fmt"
	"math"

	"github.com/quantbatch/quantbatch/numerics"
)

// American pricing uses the Bjerksund-Stensland (1993) flat-boundary
// approximation. Puts are priced through the standard transformation
// P(S,K,T,r,b,sigma) = C(K,S,T,r-b,-b,sigma). The result is floored at
// the matching European price so the early-exercise premium is never
// negative.

// Relative bump sizes for the finite-difference Greeks. The American
// approximation is itself approximate, so bumped derivatives are an
// accepted trade-off here.
const (
	bumpSpot  = 1e-3 // of spot
	bumpVol   = 1e-3 // of sigma, floored at 1e-4 absolute
	bumpTime  = 1e-3 // of time
	bumpRate  = 1e-4 // absolute
	bumpYield = 1e-4 // absolute
)

// AmericanPrice returns the early-exercise approximation price.
func AmericanPrice(p Params, isCall bool) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return americanPrice(p, isCall), nil
}

func americanPrice(p Params, isCall bool) float64 {
	b := p.Rate - p.Dividend
	var approx float64
	if isCall {
		approx = bs1993Call(p.Spot, p.Strike, p.Time, p.Rate, b, p.Sigma)
	} else {
		approx = bs1993Call(p.Strike, p.Spot, p.Time, p.Rate-b, -b, p.Sigma)
	}
	// Floors: the holder can always wait (European value) or exercise
	// immediately (intrinsic value).
	european := gbsPrice(p.Spot, p.Strike, p.Time, p.Rate, b, p.Sigma, isCall)
	intrinsic := math.Max(p.Spot-p.Strike, 0)
	if !isCall {
		intrinsic = math.Max(p.Strike-p.Spot, 0)
	}
	return math.Max(approx, math.Max(european, intrinsic))
}

// bs1993Call prices an American call under cost of carry b.
func bs1993Call(s, k, t, r, b, sigma float64) float64 {
	if b >= r {
		// Early exercise is never optimal; the American call equals
		// the European one.
		return gbsPrice(s, k, t, r, b, sigma, true)
	}
	if t == 0 {
		return math.Max(s-k, 0)
	}
	if sigma == 0 {
		return math.Max(s-k, gbsPrice(s, k, t, r, b, 0, true))
	}

	sig2 := sigma * sigma
	beta := (0.5 - b/sig2) + math.Sqrt(math.Pow(b/sig2-0.5, 2)+2*r/sig2)
	bInf := beta / (beta - 1) * k
	b0 := k
	if r > 0 && r-b > 0 {
		b0 = math.Max(k, r/(r-b)*k)
	}
	h := -(b*t + 2*sigma*math.Sqrt(t)) * b0 / (bInf - b0)
	trigger := b0 + (bInf-b0)*(1-math.Exp(h))
	if s >= trigger {
		return s - k
	}

	alpha := (trigger - k) * math.Pow(trigger, -beta)
	return alpha*math.Pow(s, beta) -
		alpha*bsPhi(s, t, beta, trigger, trigger, r, b, sigma) +
		bsPhi(s, t, 1, trigger, trigger, r, b, sigma) -
		bsPhi(s, t, 1, k, trigger, r, b, sigma) -
		k*bsPhi(s, t, 0, trigger, trigger, r, b, sigma) +
		k*bsPhi(s, t, 0, k, trigger, r, b, sigma)
}

func bsPhi(s, t, gamma, h, trigger, r, b, sigma float64) float64 {
	volT := sigma * math.Sqrt(t)
	lambda := (-r + gamma*b + 0.5*gamma*(gamma-1)*sigma*sigma) * t
	d := -(math.Log(s/h) + (b+(gamma-0.5)*sigma*sigma)*t) / volT
	kappa := 2*b/(sigma*sigma) + 2*gamma - 1
	return math.Exp(lambda) * math.Pow(s, gamma) *
		(numerics.NormCDF(d) - math.Pow(trigger/s, kappa)*numerics.NormCDF(d-2*math.Log(trigger/s)/volT))
}

// AmericanGreeks computes the sensitivities by centered finite
// differences on the price approximation, with relative bump sizes.
func AmericanGreeks(p Params, isCall bool) (Greeks, error) {
	if err := p.Validate(); err != nil {
		return Greeks{}, err
	}
	if p.Time == 0 || p.Sigma == 0 {
		return gbsGreeks(p.Spot, p.Strike, p.Time, p.Rate, p.Rate-p.Dividend, p.Sigma, isCall, rhoCarry, true), nil
	}

	price := func(q Params) float64 { return americanPrice(q, isCall) }
	base := price(p)

	var g Greeks

	hs := p.Spot * bumpSpot
	up, down := bumped(p, func(q *Params) { q.Spot += hs }), bumped(p, func(q *Params) { q.Spot -= hs })
	g.Delta = (price(up) - price(down)) / (2 * hs)
	g.Gamma = (price(up) - 2*base + price(down)) / (hs * hs)

	hv := math.Max(p.Sigma*bumpVol, 1e-4)
	up, down = bumped(p, func(q *Params) { q.Sigma += hv }), bumped(p, func(q *Params) { q.Sigma -= hv })
	if down.Sigma < 0 {
		// One-sided when the bump would cross zero volatility.
		g.Vega = (price(up) - base) / hv
	} else {
		g.Vega = (price(up) - price(down)) / (2 * hv)
	}

	ht := p.Time * bumpTime
	up, down = bumped(p, func(q *Params) { q.Time += ht }), bumped(p, func(q *Params) { q.Time -= ht })
	g.Theta = -(price(up) - price(down)) / (2 * ht)

	up, down = bumped(p, func(q *Params) { q.Rate += bumpRate }), bumped(p, func(q *Params) { q.Rate -= bumpRate })
	g.Rho = (price(up) - price(down)) / (2 * bumpRate)

	up, down = bumped(p, func(q *Params) { q.Dividend += bumpYield }), bumped(p, func(q *Params) { q.Dividend -= bumpYield })
	g.DividendRho = (price(up) - price(down)) / (2 * bumpYield)

	for _, v := range []float64{g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho, g.DividendRho} {
		if !isFinite(v) {
			return Greeks{}, fmt.Errorf("finite-difference greek non-finite: %w", ErrNumericalInstability)
		}
	}
	return g, nil
}

func bumped(p Params, mutate func(*Params)) Params {
	mutate(&p)
	return p
}

// AmericanImpliedVol inverts the approximation price to volatility,
// using a finite-difference vega as the Newton derivative.
func AmericanImpliedVol(marketPrice float64, p Params, isCall bool) (float64, error) {
	p.Sigma = 0
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !isFinite(marketPrice) {
		return 0, &DomainError{Param: "price", Value: marketPrice}
	}
	if p.Time == 0 {
		return 0, &DomainError{Param: "time", Value: p.Time}
	}

	// American bounds are the undiscounted ones: the holder can always
	// exercise immediately.
	var lo, hi float64
	if isCall {
		lo, hi = math.Max(p.Spot-p.Strike, 0), p.Spot
	} else {
		lo, hi = math.Max(p.Strike-p.Spot, 0), p.Strike
	}
	if marketPrice <= lo || marketPrice >= hi {
		return 0, fmt.Errorf("price %g outside (%g, %g): %w", marketPrice, lo, hi, ErrArbitrageBound)
	}

	cfg := numerics.DefaultSolverConfig
	f := func(sigma float64) float64 {
		q := p
		q.Sigma = sigma
		return americanPrice(q, isCall) - marketPrice
	}
	fprime := func(sigma float64) float64 {
		h := math.Max(sigma*bumpVol, 1e-4)
		if sigma-h < 0 {
			return (f(sigma+h) - f(sigma)) / h
		}
		return (f(sigma+h) - f(sigma-h)) / (2 * h)
	}
	return numerics.Solve(f, fprime, ivGuess(marketPrice, p, p.Rate-p.Dividend, cfg), cfg)
}
