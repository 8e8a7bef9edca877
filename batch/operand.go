package batch

import (
	"errors"
	"fmt"
)

// ErrShape is the call-level failure for mismatched array lengths. It
// is raised before any per-position work starts.
var ErrShape = errors.New("broadcast operands have mismatched lengths")

// Operand is the scalar-or-array broadcast input. Array values are
// borrowed from the caller's buffer and never copied; a scalar is
// logically replicated to the resolved length without allocation.
type Operand struct {
	scalar  float64
	values  []float64
	nulls   []bool // optional; true marks a missing position
	isArray bool
}

// Scalar wraps a single value.
func Scalar(v float64) Operand {
	return Operand{scalar: v}
}

// Array borrows vs for the duration of the batch call.
func Array(vs []float64) Operand {
	return Operand{values: vs, isArray: true}
}

// ArrayWithNulls borrows vs plus a validity companion; positions with
// nulls[i]==true are treated as per-position domain failures.
func ArrayWithNulls(vs []float64, nulls []bool) Operand {
	return Operand{values: vs, nulls: nulls, isArray: true}
}

// At returns the broadcast value at position i.
func (o Operand) At(i int) float64 {
	if o.isArray {
		return o.values[i]
	}
	return o.scalar
}

// IsNull reports whether position i is missing.
func (o Operand) IsNull(i int) bool {
	return o.nulls != nil && o.nulls[i]
}

func (o Operand) length() (int, bool) {
	if !o.isArray {
		return 0, false
	}
	return len(o.values), true
}

// Flag is the call/put selector: a scalar bool or a bool array
// broadcast like any other operand.
type Flag struct {
	scalar  bool
	values  []bool
	nulls   []bool
	isArray bool
}

// FlagScalar wraps a single call/put selector.
func FlagScalar(isCall bool) Flag {
	return Flag{scalar: isCall}
}

// FlagArray borrows a per-position selector array.
func FlagArray(vs []bool) Flag {
	return Flag{values: vs, isArray: true}
}

// FlagArrayWithNulls borrows a selector array with a validity
// companion.
func FlagArrayWithNulls(vs []bool, nulls []bool) Flag {
	return Flag{values: vs, nulls: nulls, isArray: true}
}

// At returns the selector at position i.
func (f Flag) At(i int) bool {
	if f.isArray {
		return f.values[i]
	}
	return f.scalar
}

// IsNull reports whether position i is missing.
func (f Flag) IsNull(i int) bool {
	return f.nulls != nil && f.nulls[i]
}

func (f Flag) length() (int, bool) {
	if !f.isArray {
		return 0, false
	}
	return len(f.values), true
}

// resolveLength validates scalar-or-vector broadcasting: every array
// operand must share one length, scalars are exempt. An all-scalar call
// resolves to length 1.
func resolveLength(named []namedOperand, flag Flag) (int, error) {
	n := -1
	check := func(name string, l int) error {
		if n == -1 {
			n = l
			return nil
		}
		if l != n {
			return fmt.Errorf("%s has length %d, expected %d: %w", name, l, n, ErrShape)
		}
		return nil
	}
	for _, op := range named {
		if l, ok := op.op.length(); ok {
			if err := check(op.name, l); err != nil {
				return 0, err
			}
		}
	}
	if l, ok := flag.length(); ok {
		if err := check("is_call", l); err != nil {
			return 0, err
		}
	}
	if n == -1 {
		n = 1
	}
	return n, nil
}

type namedOperand struct {
	name string
	op   Operand
}
