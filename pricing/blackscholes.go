package pricing

// Black-Scholes: non-dividend-paying underlying, cost of carry equal to
// the risk-free rate.

// BlackScholesPrice returns the European option price.
func BlackScholesPrice(p Params, isCall bool) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return gbsPrice(p.Spot, p.Strike, p.Time, p.Rate, p.Rate, p.Sigma, isCall), nil
}

// BlackScholesGreeks returns the closed-form sensitivities.
func BlackScholesGreeks(p Params, isCall bool) (Greeks, error) {
	if err := p.Validate(); err != nil {
		return Greeks{}, err
	}
	return gbsGreeks(p.Spot, p.Strike, p.Time, p.Rate, p.Rate, p.Sigma, isCall, rhoCarry, false), nil
}

// BlackScholesSecondOrder returns vanna and volga.
func BlackScholesSecondOrder(p Params) (SecondOrder, error) {
	if err := p.Validate(); err != nil {
		return SecondOrder{}, err
	}
	return gbsSecondOrder(p.Spot, p.Strike, p.Time, p.Rate, p.Rate, p.Sigma), nil
}

// BlackScholesImpliedVol inverts the price to the volatility that
// reproduces it. p.Sigma is ignored.
func BlackScholesImpliedVol(marketPrice float64, p Params, isCall bool) (float64, error) {
	return impliedVol(marketPrice, p, isCall, p.Rate)
}
