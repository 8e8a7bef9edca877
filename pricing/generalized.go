package pricing

import (
	"math"

	"github.com/quantbatch/quantbatch/numerics"
)

// The four families all reduce to the generalized Black-Scholes model
// with a cost-of-carry term b: b=r for Black-Scholes, b=r-q for Merton,
// b=0 for Black-76 (spot is the forward). American pricing layers the
// early-exercise approximation on top of the same core.

func d1d2(s, k, t, b, sigma float64) (float64, float64) {
	volT := sigma * math.Sqrt(t)
	d1 := (math.Log(s/k) + (b+0.5*sigma*sigma)*t) / volT
	return d1, d1 - volT
}

// gbsPrice assumes params already validated. Zero time collapses to the
// intrinsic value, zero volatility to the discounted deterministic
// payoff.
func gbsPrice(s, k, t, r, b, sigma float64, isCall bool) float64 {
	if t == 0 {
		if isCall {
			return math.Max(s-k, 0)
		}
		return math.Max(k-s, 0)
	}
	carry := math.Exp((b - r) * t)
	disc := math.Exp(-r * t)
	if sigma == 0 {
		if isCall {
			return math.Max(s*carry-k*disc, 0)
		}
		return math.Max(k*disc-s*carry, 0)
	}

	d1, d2 := d1d2(s, k, t, b, sigma)
	if isCall {
		return s*carry*numerics.NormCDF(d1) - k*disc*numerics.NormCDF(d2)
	}
	return k*disc*numerics.NormCDF(-d2) - s*carry*numerics.NormCDF(-d1)
}

func gbsVega(s, k, t, r, b, sigma float64) float64 {
	if t == 0 || sigma == 0 {
		return 0
	}
	d1, _ := d1d2(s, k, t, b, sigma)
	return s * math.Exp((b-r)*t) * numerics.NormPDF(d1) * math.Sqrt(t)
}

// rhoStyle selects the interest-rate sensitivity formula: families where
// the drift contains r (Black-Scholes, Merton) differ from the pure
// discounting case (Black-76).
type rhoStyle int

const (
	rhoCarry    rhoStyle = iota // b moves with r
	rhoDiscount                 // b fixed at zero, r only discounts
)

func gbsGreeks(s, k, t, r, b, sigma float64, isCall bool, style rhoStyle, withDividendRho bool) Greeks {
	carry := math.Exp((b - r) * t)
	disc := math.Exp(-r * t)

	if t == 0 || sigma == 0 {
		// Deterministic limit: delta is the discounted indicator of
		// the payoff region, everything else vanishes.
		var g Greeks
		if isCall && s*carry > k*disc {
			g.Delta = carry
		} else if !isCall && k*disc > s*carry {
			g.Delta = -carry
		}
		return g
	}

	d1, d2 := d1d2(s, k, t, b, sigma)
	sqT := math.Sqrt(t)
	pdf1 := numerics.NormPDF(d1)

	var g Greeks
	if isCall {
		g.Delta = carry * numerics.NormCDF(d1)
		g.Theta = -s*carry*pdf1*sigma/(2*sqT) -
			(b-r)*s*carry*numerics.NormCDF(d1) -
			r*k*disc*numerics.NormCDF(d2)
	} else {
		g.Delta = carry * (numerics.NormCDF(d1) - 1)
		g.Theta = -s*carry*pdf1*sigma/(2*sqT) +
			(b-r)*s*carry*numerics.NormCDF(-d1) +
			r*k*disc*numerics.NormCDF(-d2)
	}
	g.Gamma = carry * pdf1 / (s * sigma * sqT)
	g.Vega = s * carry * pdf1 * sqT

	switch style {
	case rhoCarry:
		if isCall {
			g.Rho = k * t * disc * numerics.NormCDF(d2)
		} else {
			g.Rho = -k * t * disc * numerics.NormCDF(-d2)
		}
	case rhoDiscount:
		g.Rho = -t * gbsPrice(s, k, t, r, b, sigma, isCall)
	}

	if withDividendRho {
		if isCall {
			g.DividendRho = -s * t * carry * numerics.NormCDF(d1)
		} else {
			g.DividendRho = s * t * carry * numerics.NormCDF(-d1)
		}
	}
	return g
}

func gbsSecondOrder(s, k, t, r, b, sigma float64) SecondOrder {
	if t == 0 || sigma == 0 {
		return SecondOrder{}
	}
	d1, d2 := d1d2(s, k, t, b, sigma)
	carry := math.Exp((b - r) * t)
	vega := s * carry * numerics.NormPDF(d1) * math.Sqrt(t)
	return SecondOrder{
		Vanna: -carry * numerics.NormPDF(d1) * d2 / sigma,
		Volga: vega * d1 * d2 / sigma,
	}
}
