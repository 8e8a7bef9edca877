package pricing

// Black-76: priced off the forward, zero cost of carry. Params.Spot
// holds the forward price and Params.Dividend is unused.

// Black76Price returns the European option price on a forward.
func Black76Price(p Params, isCall bool) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return gbsPrice(p.Spot, p.Strike, p.Time, p.Rate, 0, p.Sigma, isCall), nil
}

// Black76Greeks returns the closed-form sensitivities. Rho here is pure
// discounting: -T times the price.
func Black76Greeks(p Params, isCall bool) (Greeks, error) {
	if err := p.Validate(); err != nil {
		return Greeks{}, err
	}
	return gbsGreeks(p.Spot, p.Strike, p.Time, p.Rate, 0, p.Sigma, isCall, rhoDiscount, false), nil
}

// Black76SecondOrder returns vanna and volga.
func Black76SecondOrder(p Params) (SecondOrder, error) {
	if err := p.Validate(); err != nil {
		return SecondOrder{}, err
	}
	return gbsSecondOrder(p.Spot, p.Strike, p.Time, p.Rate, 0, p.Sigma), nil
}

// Black76ImpliedVol inverts the price to volatility. p.Sigma is ignored.
func Black76ImpliedVol(marketPrice float64, p Params, isCall bool) (float64, error) {
	return impliedVol(marketPrice, p, isCall, 0)
}
