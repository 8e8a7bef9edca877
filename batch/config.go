package batch

import (
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/cpu"
	"github.com/sirupsen/logrus"
)

const (
	// Below this many resolved positions, parallel dispatch overhead
	// exceeds the benefit.
	defaultParallelThreshold = 10_000

	// Chunk handed to one worker at a time; sized for cache locality.
	defaultChunkSize = 2_048
)

// Config tunes one engine instance. Zero values fall back to defaults
// at use time, so Config{} is usable as-is. There is no global mutable
// configuration.
type Config struct {
	// ParallelThreshold is the resolved length at or above which the
	// engine fans out to workers. Set it above any input size to force
	// the sequential path, or to 1 to force the parallel path.
	ParallelThreshold int

	// ChunkSize is the number of positions handed to a worker at once.
	ChunkSize int

	// Workers caps the pool size; defaults to runtime.NumCPU().
	Workers int

	// LoadAware shrinks the worker pool proportionally to current
	// system CPU utilization before dispatch.
	LoadAware bool

	// Logger receives debug-level dispatch records. Defaults to a
	// discard logger: a library stays silent unless the embedder opts
	// in.
	Logger logrus.FieldLogger
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		ParallelThreshold: defaultParallelThreshold,
		ChunkSize:         defaultChunkSize,
		Workers:           runtime.NumCPU(),
	}
}

// ConfigFromEnv starts from DefaultConfig and applies QUANTBATCH_*
// overrides, loading a .env file first when one is present. The
// crossover and chunk constants are hardware-dependent, so embedders
// can retune without recompiling.
func ConfigFromEnv() Config {
	_ = godotenv.Load()
	cfg := DefaultConfig()
	if v, ok := envInt("QUANTBATCH_PARALLEL_THRESHOLD"); ok {
		cfg.ParallelThreshold = v
	}
	if v, ok := envInt("QUANTBATCH_CHUNK_SIZE"); ok && v > 0 {
		cfg.ChunkSize = v
	}
	if v, ok := envInt("QUANTBATCH_WORKERS"); ok && v > 0 {
		cfg.Workers = v
	}
	if os.Getenv("QUANTBATCH_LOAD_AWARE") == "true" {
		cfg.LoadAware = true
	}
	return cfg
}

func envInt(key string) (int, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// loadAdjustedWorkers scales the pool down by current system CPU
// utilization, keeping at least one worker. Sampling failures leave the
// pool untouched.
func loadAdjustedWorkers(workers int) int {
	pct, err := cpu.Percent(0, false)
	if err != nil || len(pct) == 0 {
		return workers
	}
	free := 1 - pct[0]/100
	adjusted := int(float64(workers) * free)
	if adjusted < 1 {
		return 1
	}
	if adjusted > workers {
		return workers
	}
	return adjusted
}
