package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestAmericanPrice_NeverBelowEuropean(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 1000; i++ {
		p := sampleParams(rng)
		for _, isCall := range []bool{true, false} {
			american, err := AmericanPrice(p, isCall)
			require.NoError(t, err)
			european, err := MertonPrice(p, isCall)
			require.NoError(t, err)
			require.GreaterOrEqual(t, american, european,
				"early-exercise premium must be non-negative (params %+v, call=%v)", p, isCall)
		}
	}
}

func TestAmericanPrice_NeverBelowIntrinsic(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	for i := 0; i < 500; i++ {
		p := sampleParams(rng)
		call, err := AmericanPrice(p, true)
		require.NoError(t, err)
		require.GreaterOrEqual(t, call, math.Max(p.Spot-p.Strike, 0)-1e-9)

		put, err := AmericanPrice(p, false)
		require.NoError(t, err)
		require.GreaterOrEqual(t, put, math.Max(p.Strike-p.Spot, 0)-1e-9)
	}
}

func TestAmericanCall_NoYieldEqualsEuropean(t *testing.T) {
	// Without dividends early exercise of a call is never optimal.
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		p := sampleParams(rng)
		p.Dividend = 0

		american, err := AmericanPrice(p, true)
		require.NoError(t, err)
		european, err := BlackScholesPrice(p, true)
		require.NoError(t, err)
		require.InDelta(t, european, american, 1e-12*math.Max(1, european))
	}
}

func TestAmericanPut_DeepITMHasPremium(t *testing.T) {
	// A deep in-the-money put on a non-dividend underlying with a
	// positive rate is worth more alive than its European twin.
	p := Params{Spot: 60, Strike: 100, Time: 1, Rate: 0.08, Sigma: 0.2}

	american, err := AmericanPrice(p, false)
	require.NoError(t, err)
	european, err := BlackScholesPrice(p, false)
	require.NoError(t, err)

	require.Greater(t, american, european+1e-4)
	// Immediate exercise is always available.
	require.GreaterOrEqual(t, american, 40.0-1e-9)
}

func TestAmericanPrice_BoundaryCollapse(t *testing.T) {
	p := Params{Spot: 90, Strike: 100, Time: 0, Rate: 0.05, Sigma: 0.2}
	put, err := AmericanPrice(p, false)
	require.NoError(t, err)
	require.Equal(t, 10.0, put)

	p = Params{Spot: 90, Strike: 100, Time: 1, Rate: 0.05, Sigma: 0}
	put, err = AmericanPrice(p, false)
	require.NoError(t, err)
	// Zero volatility: the holder can still exercise now, so the price
	// floors at intrinsic.
	require.GreaterOrEqual(t, put, 10.0-1e-12)
}

func TestAmericanGreeks_MatchClosedFormWhenEuropean(t *testing.T) {
	// For a call without dividends the American price coincides with
	// Black-Scholes, so the finite-difference Greeks must reproduce the
	// closed forms. This validates the bump sizes end to end.
	rng := rand.New(rand.NewSource(12))
	for i := 0; i < 50; i++ {
		p := sampleParams(rng)
		p.Dividend = 0

		fd, err := AmericanGreeks(p, true)
		require.NoError(t, err)
		cf, err := BlackScholesGreeks(p, true)
		require.NoError(t, err)

		relTol := func(x float64) float64 { return 1e-3 * math.Max(1, math.Abs(x)) }
		require.InDelta(t, cf.Delta, fd.Delta, relTol(cf.Delta))
		require.InDelta(t, cf.Gamma, fd.Gamma, relTol(cf.Gamma))
		require.InDelta(t, cf.Vega, fd.Vega, relTol(cf.Vega))
		require.InDelta(t, cf.Theta, fd.Theta, relTol(cf.Theta))
		require.InDelta(t, cf.Rho, fd.Rho, relTol(cf.Rho))
	}
}

func TestAmericanGreeks_PutSigns(t *testing.T) {
	p := Params{Spot: 100, Strike: 100, Time: 1, Rate: 0.05, Sigma: 0.2}

	g, err := AmericanGreeks(p, false)
	require.NoError(t, err)
	require.Less(t, g.Delta, 0.0)
	require.Greater(t, g.Gamma, 0.0)
	require.Greater(t, g.Vega, 0.0)
}

func TestAmericanPrice_DomainErrors(t *testing.T) {
	p := Params{Spot: -1, Strike: 100, Time: 1, Rate: 0.05, Sigma: 0.2}
	_, err := AmericanPrice(p, true)
	require.ErrorIs(t, err, ErrDomain)

	_, err = AmericanGreeks(p, true)
	require.ErrorIs(t, err, ErrDomain)
}
