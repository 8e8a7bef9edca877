package batch

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/quantbatch/quantbatch/pricing"
)

// Engine applies the scalar evaluators element-wise over broadcast
// operands. Engines are cheap and safe for concurrent use: all state is
// the immutable config.
type Engine struct {
	cfg Config
	log logrus.FieldLogger
}

// New fills unset Config fields with defaults and returns an engine.
func New(cfg Config) *Engine {
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = defaultParallelThreshold
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	log := cfg.Logger
	if log == nil {
		log = discardLogger()
	}
	return &Engine{cfg: cfg, log: log}
}

// Inputs names the broadcast operands of one batch call. Dividend is
// ignored by Black-Scholes and Black-76; Sigma is ignored by the
// implied-volatility entry point.
type Inputs struct {
	Spot     Operand
	Strike   Operand
	Time     Operand
	Rate     Operand
	Dividend Operand
	Sigma    Operand
	IsCall   Flag
}

func (in Inputs) operands() []namedOperand {
	return []namedOperand{
		{"spot", in.Spot},
		{"strike", in.Strike},
		{"time", in.Time},
		{"rate", in.Rate},
		{"dividend", in.Dividend},
		{"sigma", in.Sigma},
	}
}

// paramsAt gathers position i, treating null positions as per-position
// domain failures.
func (in Inputs) paramsAt(i int) (pricing.Params, bool, error) {
	for _, f := range in.operands() {
		if f.op.IsNull(i) {
			return pricing.Params{}, false, &pricing.DomainError{Param: f.name, Value: math.NaN()}
		}
	}
	if in.IsCall.IsNull(i) {
		return pricing.Params{}, false, &pricing.DomainError{Param: "is_call", Value: math.NaN()}
	}
	p := pricing.Params{
		Spot:     in.Spot.At(i),
		Strike:   in.Strike.At(i),
		Time:     in.Time.At(i),
		Rate:     in.Rate.At(i),
		Dividend: in.Dividend.At(i),
		Sigma:    in.Sigma.At(i),
	}
	return p, in.IsCall.At(i), nil
}

// Result is a batch output buffer plus its validity mask. Valid[i] is
// false where position i failed domain validation or convergence; the
// value there is NaN. A valid NaN never occurs: deterministic edge
// cases (zero volatility, zero time) produce finite prices.
type Result struct {
	Values []float64
	Valid  []bool
}

func newResult(n int) *Result {
	res := &Result{Values: make([]float64, n), Valid: make([]bool, n)}
	for i := range res.Valid {
		res.Valid[i] = true
	}
	return res
}

// InvalidCount returns the number of failed positions.
func (r *Result) InvalidCount() int {
	n := 0
	for _, ok := range r.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// GreeksResult is the struct-of-arrays batch output for sensitivities,
// one buffer per named Greek plus a shared validity mask.
type GreeksResult struct {
	Delta       []float64
	Gamma       []float64
	Vega        []float64
	Theta       []float64
	Rho         []float64
	DividendRho []float64
	Valid       []bool
}

func newGreeksResult(n int) *GreeksResult {
	res := &GreeksResult{
		Delta:       make([]float64, n),
		Gamma:       make([]float64, n),
		Vega:        make([]float64, n),
		Theta:       make([]float64, n),
		Rho:         make([]float64, n),
		DividendRho: make([]float64, n),
		Valid:       make([]bool, n),
	}
	for i := range res.Valid {
		res.Valid[i] = true
	}
	return res
}

// InvalidCount returns the number of failed positions.
func (r *GreeksResult) InvalidCount() int {
	n := 0
	for _, ok := range r.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Price evaluates the family's price at every resolved position.
// Per-position failures mark the slot invalid and the batch continues;
// only a shape mismatch or unknown model fails the whole call.
func (e *Engine) Price(model pricing.Model, in Inputs) (*Result, error) {
	if !model.Valid() {
		return nil, fmt.Errorf("unknown model %d", int(model))
	}
	n, err := resolveLength(in.operands(), in.IsCall)
	if err != nil {
		return nil, err
	}
	res := newResult(n)
	e.run(model, "price", n, func(i int) error {
		p, isCall, err := in.paramsAt(i)
		if err != nil {
			return err
		}
		v, err := model.Price(p, isCall)
		if err != nil {
			return err
		}
		res.Values[i] = v
		return nil
	}, func(i int) {
		res.Values[i] = math.NaN()
		res.Valid[i] = false
	})
	return res, nil
}

// Greeks evaluates the family's sensitivities at every resolved
// position, struct-of-arrays.
func (e *Engine) Greeks(model pricing.Model, in Inputs) (*GreeksResult, error) {
	if !model.Valid() {
		return nil, fmt.Errorf("unknown model %d", int(model))
	}
	n, err := resolveLength(in.operands(), in.IsCall)
	if err != nil {
		return nil, err
	}
	res := newGreeksResult(n)
	e.run(model, "greeks", n, func(i int) error {
		p, isCall, err := in.paramsAt(i)
		if err != nil {
			return err
		}
		g, err := model.Greeks(p, isCall)
		if err != nil {
			return err
		}
		res.Delta[i] = g.Delta
		res.Gamma[i] = g.Gamma
		res.Vega[i] = g.Vega
		res.Theta[i] = g.Theta
		res.Rho[i] = g.Rho
		res.DividendRho[i] = g.DividendRho
		return nil
	}, func(i int) {
		res.Delta[i] = math.NaN()
		res.Gamma[i] = math.NaN()
		res.Vega[i] = math.NaN()
		res.Theta[i] = math.NaN()
		res.Rho[i] = math.NaN()
		res.DividendRho[i] = math.NaN()
		res.Valid[i] = false
	})
	return res, nil
}

// ImpliedVol inverts observed prices to volatilities. in.Sigma is
// ignored; a per-position convergence or arbitrage-bound failure is
// treated exactly like a domain failure at that slot.
func (e *Engine) ImpliedVol(model pricing.Model, marketPrice Operand, in Inputs) (*Result, error) {
	if !model.Valid() {
		return nil, fmt.Errorf("unknown model %d", int(model))
	}
	in.Sigma = Scalar(0)
	named := append(in.operands(), namedOperand{"price", marketPrice})
	n, err := resolveLength(named, in.IsCall)
	if err != nil {
		return nil, err
	}
	res := newResult(n)
	e.run(model, "implied_vol", n, func(i int) error {
		if marketPrice.IsNull(i) {
			return &pricing.DomainError{Param: "price", Value: math.NaN()}
		}
		p, isCall, err := in.paramsAt(i)
		if err != nil {
			return err
		}
		v, err := model.ImpliedVol(marketPrice.At(i), p, isCall)
		if err != nil {
			return err
		}
		res.Values[i] = v
		return nil
	}, func(i int) {
		res.Values[i] = math.NaN()
		res.Valid[i] = false
	})
	return res, nil
}

// run executes eval over [0, n), sequentially below the parallel
// threshold, otherwise chunked across a worker pool. Each position
// writes only its own output slot, so workers share nothing mutable and
// the output ordering is identical on both paths.
func (e *Engine) run(model pricing.Model, op string, n int, eval func(i int) error, markInvalid func(i int)) {
	do := func(i int) {
		if err := eval(i); err != nil {
			markInvalid(i)
		}
	}

	workers := 1
	if n >= e.cfg.ParallelThreshold {
		workers = e.cfg.Workers
		if e.cfg.LoadAware {
			workers = loadAdjustedWorkers(workers)
		}
		chunks := (n + e.cfg.ChunkSize - 1) / e.cfg.ChunkSize
		workers = min(workers, chunks)
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			do(i)
		}
	} else {
		jobs := make(chan [2]int, workers)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for span := range jobs {
					for i := span[0]; i < span[1]; i++ {
						do(i)
					}
				}
			}()
		}
		for start := 0; start < n; start += e.cfg.ChunkSize {
			jobs <- [2]int{start, min(start+e.cfg.ChunkSize, n)}
		}
		close(jobs)
		wg.Wait()
	}

	e.log.WithFields(logrus.Fields{
		"model":   model.String(),
		"op":      op,
		"length":  n,
		"workers": workers,
		"chunk":   e.cfg.ChunkSize,
	}).Debug("batch dispatch complete")
}
