package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain marks an input parameter that violates a mathematical
	// precondition (negative price, NaN strike, ...).
	ErrDomain = errors.New("parameter outside pricing domain")

	// ErrArbitrageBound marks a market price outside the no-arbitrage
	// bounds, making volatility inversion meaningless.
	ErrArbitrageBound = errors.New("market price violates no-arbitrage bounds")

	// ErrNumericalInstability marks a finite-difference Greek that came
	// back non-finite.
	ErrNumericalInstability = errors.New("numerically unstable result")
)

// DomainError carries the offending parameter name and value.
type DomainError struct {
	Param string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s=%g: %v", e.Param, e.Value, ErrDomain)
}

func (e *DomainError) Unwrap() error { return ErrDomain }
