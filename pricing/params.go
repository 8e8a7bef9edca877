package pricing

import "math"

// Params is the fixed tuple of market inputs shared by every formula
// family. Spot holds the forward price for Black-76; Dividend is the
// continuous yield and is ignored by Black-Scholes and Black-76.
// A Params value is never mutated by the library.
type Params struct {
	Spot     float64
	Strike   float64
	Time     float64 // years to expiry
	Rate     float64 // continuously compounded risk-free rate
	Dividend float64 // continuous dividend yield
	Sigma    float64 // annualized volatility
}

// Greeks is the record of first-order sensitivities. DividendRho is
// zero for families without a dividend input.
type Greeks struct {
	Delta       float64
	Gamma       float64
	Vega        float64
	Theta       float64
	Rho         float64
	DividendRho float64
}

// SecondOrder holds the cross sensitivities computed alongside the
// European Greeks.
type SecondOrder struct {
	Vanna float64 // d delta / d sigma
	Volga float64 // d vega / d sigma
}

// Validate checks the domain invariants: spot, strike strictly
// positive; time and volatility non-negative; everything finite.
// Rates and dividend yields may be negative.
func (p Params) Validate() error {
	switch {
	case !isFinite(p.Spot) || p.Spot <= 0:
		return &DomainError{Param: "spot", Value: p.Spot}
	case !isFinite(p.Strike) || p.Strike <= 0:
		return &DomainError{Param: "strike", Value: p.Strike}
	case !isFinite(p.Time) || p.Time < 0:
		return &DomainError{Param: "time", Value: p.Time}
	case !isFinite(p.Rate):
		return &DomainError{Param: "rate", Value: p.Rate}
	case !isFinite(p.Dividend):
		return &DomainError{Param: "dividend", Value: p.Dividend}
	case !isFinite(p.Sigma) || p.Sigma < 0:
		return &DomainError{Param: "sigma", Value: p.Sigma}
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
