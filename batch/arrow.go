package batch

import (
	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
)

// Arrow adapters for the host-language boundary. Incoming Float64
// arrays are borrowed zero-copy (values buffer plus null bitmap);
// outgoing results become newly allocated nullable arrays where invalid
// positions are nulls, keeping per-position failures distinguishable
// from legitimate NaN values.

// OperandFromArrow borrows the array's value buffer. Null positions
// become per-position domain failures during evaluation. The caller
// must keep arr retained for the duration of the batch call.
func OperandFromArrow(arr *array.Float64) Operand {
	vs := arr.Float64Values()
	if arr.NullN() == 0 {
		return Array(vs)
	}
	nulls := make([]bool, arr.Len())
	for i := range nulls {
		nulls[i] = arr.IsNull(i)
	}
	return ArrayWithNulls(vs, nulls)
}

// FlagFromArrow adapts a boolean array into a call/put selector.
// Boolean arrays are bit-packed, so the values are unpacked here.
func FlagFromArrow(arr *array.Boolean) Flag {
	vs := make([]bool, arr.Len())
	for i := range vs {
		vs[i] = arr.Value(i)
	}
	if arr.NullN() == 0 {
		return FlagArray(vs)
	}
	nulls := make([]bool, arr.Len())
	for i := range nulls {
		nulls[i] = arr.IsNull(i)
	}
	return FlagArrayWithNulls(vs, nulls)
}

// NewArrowArray builds a nullable Float64 array from the result, with
// invalid positions as nulls.
func (r *Result) NewArrowArray(pool memory.Allocator) *array.Float64 {
	if pool == nil {
		pool = memory.NewGoAllocator()
	}
	b := array.NewFloat64Builder(pool)
	defer b.Release()
	b.Reserve(len(r.Values))
	for i, v := range r.Values {
		if r.Valid[i] {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	}
	return b.NewFloat64Array()
}

var greeksSchema = arrow.NewSchema([]arrow.Field{
	{Name: "delta", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "gamma", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "vega", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "theta", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "rho", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "dividend_rho", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
}, nil)

// NewArrowRecord builds a struct-of-arrays record with one nullable
// Float64 column per Greek, sharing the batch validity mask.
func (r *GreeksResult) NewArrowRecord(pool memory.Allocator) arrow.Record {
	if pool == nil {
		pool = memory.NewGoAllocator()
	}
	cols := make([]arrow.Array, 0, 6)
	for _, series := range [][]float64{r.Delta, r.Gamma, r.Vega, r.Theta, r.Rho, r.DividendRho} {
		b := array.NewFloat64Builder(pool)
		b.Reserve(len(series))
		for i, v := range series {
			if r.Valid[i] {
				b.Append(v)
			} else {
				b.AppendNull()
			}
		}
		cols = append(cols, b.NewArray())
		b.Release()
	}
	return array.NewRecord(greeksSchema, cols, int64(len(r.Valid)))
}
