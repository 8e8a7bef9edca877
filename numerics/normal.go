package numerics

import "math"

const (
	// Beyond this point the CDF is indistinguishable from 0 or 1 at
	// float64 precision, so skip the erf call entirely.
	cdfSaturation = 8.0

	// The density underflows to zero well before |x| reaches 40.
	pdfCutoff = 40.0
)

var invSqrt2Pi = 1.0 / math.Sqrt(2*math.Pi)

// NormCDF evaluates the standard normal cumulative distribution function
// via the error-function identity Phi(x) = 0.5*(1+erf(x/sqrt(2))).
// NaN inputs propagate to NaN.
func NormCDF(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x >= cdfSaturation {
		return 1.0
	}
	if x <= -cdfSaturation {
		return 0.0
	}
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// NormPDF evaluates the standard normal density.
func NormPDF(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x >= pdfCutoff || x <= -pdfCutoff {
		return 0.0
	}
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}
