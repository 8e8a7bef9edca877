package pricing

// Merton: continuous dividend yield q, cost of carry r-q.

// MertonPrice returns the European option price on a dividend-paying
// underlying.
func MertonPrice(p Params, isCall bool) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return gbsPrice(p.Spot, p.Strike, p.Time, p.Rate, p.Rate-p.Dividend, p.Sigma, isCall), nil
}

// MertonGreeks returns the closed-form sensitivities including the
// dividend rho.
func MertonGreeks(p Params, isCall bool) (Greeks, error) {
	if err := p.Validate(); err != nil {
		return Greeks{}, err
	}
	return gbsGreeks(p.Spot, p.Strike, p.Time, p.Rate, p.Rate-p.Dividend, p.Sigma, isCall, rhoCarry, true), nil
}

// MertonSecondOrder returns vanna and volga.
func MertonSecondOrder(p Params) (SecondOrder, error) {
	if err := p.Validate(); err != nil {
		return SecondOrder{}, err
	}
	return gbsSecondOrder(p.Spot, p.Strike, p.Time, p.Rate, p.Rate-p.Dividend, p.Sigma), nil
}

// MertonImpliedVol inverts the price to volatility. p.Sigma is ignored.
func MertonImpliedVol(marketPrice float64, p Params, isCall bool) (float64, error) {
	return impliedVol(marketPrice, p, isCall, p.Rate-p.Dividend)
}
