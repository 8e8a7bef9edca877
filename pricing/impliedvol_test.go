package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/quantbatch/quantbatch/numerics"
)

func TestBlackScholesImpliedVol_ConcreteScenario(t *testing.T) {
	p := Params{Spot: 100, Strike: 100, Time: 1, Rate: 0.05}

	iv, err := BlackScholesImpliedVol(10.4506, p, true)
	require.NoError(t, err)
	require.InDelta(t, 0.2, iv, 1e-4)
}

func TestImpliedVol_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	families := []struct {
		name    string
		price   func(Params, bool) (float64, error)
		implied func(float64, Params, bool) (float64, error)
	}{
		{"BlackScholes", BlackScholesPrice, BlackScholesImpliedVol},
		{"Black76", Black76Price, Black76ImpliedVol},
		{"Merton", MertonPrice, MertonImpliedVol},
	}

	for _, fam := range families {
		fam := fam
		t.Run(fam.name, func(t *testing.T) {
			tested := 0
			for i := 0; i < 2000 && tested < 300; i++ {
				p := sampleParams(rng)
				isCall := rng.Intn(2) == 0

				// Skip samples too close to the no-arbitrage bounds or
				// with negligible vega: the inversion there is
				// ill-conditioned by construction.
				price, err := fam.price(p, isCall)
				require.NoError(t, err)
				g, err := MertonGreeks(p, isCall)
				require.NoError(t, err)
				if g.Vega < 1e-2 {
					continue
				}
				intrinsic := math.Max(p.Spot-p.Strike, 0)
				if !isCall {
					intrinsic = math.Max(p.Strike-p.Spot, 0)
				}
				if price < intrinsic*math.Exp(-math.Abs(p.Rate)*p.Time)+1e-4 || price < 1e-4 {
					continue
				}

				iv, err := fam.implied(price, p, isCall)
				require.NoError(t, err, "params %+v call=%v price=%g", p, isCall, price)
				require.InDelta(t, p.Sigma, iv, 1e-6,
					"params %+v call=%v price=%g", p, isCall, price)
				tested++
			}
			require.Greater(t, tested, 100, "sampling rejected too many cases")
		})
	}
}

func TestAmericanImpliedVol_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	tested := 0
	for i := 0; i < 2000 && tested < 100; i++ {
		p := sampleParams(rng)
		isCall := rng.Intn(2) == 0

		price, err := AmericanPrice(p, isCall)
		require.NoError(t, err)

		intrinsic := math.Max(p.Spot-p.Strike, 0)
		if !isCall {
			intrinsic = math.Max(p.Strike-p.Spot, 0)
		}
		// In the exercise region the price pins to intrinsic and no
		// volatility is recoverable.
		if price < intrinsic+1e-3 || price < 1e-3 {
			continue
		}
		g, err := MertonGreeks(p, isCall)
		require.NoError(t, err)
		if g.Vega < 1e-1 {
			continue
		}

		iv, err := AmericanImpliedVol(price, p, isCall)
		require.NoError(t, err, "params %+v call=%v price=%g", p, isCall, price)
		require.InDelta(t, p.Sigma, iv, 1e-4,
			"params %+v call=%v price=%g", p, isCall, price)
		tested++
	}
	require.Greater(t, tested, 30, "sampling rejected too many cases")
}

func TestImpliedVol_ArbitrageBounds(t *testing.T) {
	p := Params{Spot: 100, Strike: 100, Time: 1, Rate: 0.05}

	t.Run("BelowIntrinsic", func(t *testing.T) {
		_, err := BlackScholesImpliedVol(2.0, p, true)
		require.ErrorIs(t, err, ErrArbitrageBound)
	})

	t.Run("AboveSpot", func(t *testing.T) {
		_, err := BlackScholesImpliedVol(101.0, p, true)
		require.ErrorIs(t, err, ErrArbitrageBound)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		_, err := BlackScholesImpliedVol(-1.0, p, true)
		require.ErrorIs(t, err, ErrArbitrageBound)
	})

	t.Run("PutAboveDiscountedStrike", func(t *testing.T) {
		_, err := BlackScholesImpliedVol(100.0, p, false)
		require.ErrorIs(t, err, ErrArbitrageBound)
	})
}

func TestImpliedVol_DomainErrors(t *testing.T) {
	p := Params{Spot: 100, Strike: 100, Time: 0, Rate: 0.05}
	_, err := BlackScholesImpliedVol(5.0, p, true)
	require.ErrorIs(t, err, ErrDomain)

	p.Time = 1
	_, err = BlackScholesImpliedVol(math.NaN(), p, true)
	require.ErrorIs(t, err, ErrDomain)
}

func TestImpliedVol_ConvergenceFailureSurfaces(t *testing.T) {
	// A price microscopically inside the upper bound maps to a
	// volatility beyond the admissible bracket; the solver must fail
	// loudly, never return a non-converged value.
	p := Params{Spot: 100, Strike: 100, Time: 1, Rate: 0.05}
	near := p.Spot - 1e-12
	_, err := BlackScholesImpliedVol(near, p, true)
	require.Error(t, err)
	require.ErrorIs(t, err, numerics.ErrConvergence)
}
