package pricing

import "fmt"

// Model selects a formula family. The batch engine dispatches through
// it so one evaluation loop serves all families.
type Model int

const (
	BlackScholes Model = iota
	Black76
	Merton
	American
)

func (m Model) String() string {
	switch m {
	case BlackScholes:
		return "black_scholes"
	case Black76:
		return "black76"
	case Merton:
		return "merton"
	case American:
		return "american"
	}
	return fmt.Sprintf("model(%d)", int(m))
}

// Valid reports whether m names a known family.
func (m Model) Valid() bool {
	return m >= BlackScholes && m <= American
}

// Price dispatches to the family's evaluator.
func (m Model) Price(p Params, isCall bool) (float64, error) {
	switch m {
	case BlackScholes:
		return BlackScholesPrice(p, isCall)
	case Black76:
		return Black76Price(p, isCall)
	case Merton:
		return MertonPrice(p, isCall)
	case American:
		return AmericanPrice(p, isCall)
	}
	return 0, fmt.Errorf("unknown model %d", int(m))
}

// Greeks dispatches to the family's sensitivity evaluator.
func (m Model) Greeks(p Params, isCall bool) (Greeks, error) {
	switch m {
	case BlackScholes:
		return BlackScholesGreeks(p, isCall)
	case Black76:
		return Black76Greeks(p, isCall)
	case Merton:
		return MertonGreeks(p, isCall)
	case American:
		return AmericanGreeks(p, isCall)
	}
	return Greeks{}, fmt.Errorf("unknown model %d", int(m))
}

// ImpliedVol dispatches to the family's inversion. p.Sigma is ignored.
func (m Model) ImpliedVol(marketPrice float64, p Params, isCall bool) (float64, error) {
	switch m {
	case BlackScholes:
		return BlackScholesImpliedVol(marketPrice, p, isCall)
	case Black76:
		return Black76ImpliedVol(marketPrice, p, isCall)
	case Merton:
		return MertonImpliedVol(marketPrice, p, isCall)
	case American:
		return AmericanImpliedVol(marketPrice, p, isCall)
	}
	return 0, fmt.Errorf("unknown model %d", int(m))
}
