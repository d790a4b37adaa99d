// Package engine selects a backend by name and wraps it in a MathEngine.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/born-ml/mathengine/internal/envconfig"
	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/tensor"
)

// ErrUnknownBackend reports a backend name nothing was registered under.
var ErrUnknownBackend = errors.New("engine: unknown backend")

// Config is passed to backend factories.
type Config struct {
	// WorkgroupSize is the tasks per workgroup for grid-style backends.
	WorkgroupSize int
	// ElementTasks selects one dropout task per element on the grid backend.
	ElementTasks bool
	// Parallel controls the worker pool of parallel backends.
	Parallel parallel.Config
	// Logger receives dispatch logs. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		WorkgroupSize: 256,
		Parallel:      parallel.DefaultConfig(),
	}
}

// ConfigFromEnv builds a Config from the BORN_* environment variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.WorkgroupSize = int(envconfig.GridWorkgroup()) //nolint:gosec // G115: workgroup sizes are small.
	cfg.ElementTasks = envconfig.GridElementTasks()
	if n := int(envconfig.NumThreads()); n > 0 { //nolint:gosec // G115: thread counts are small.
		cfg.Parallel.NumWorkers = n
		cfg.Parallel.Enabled = n > 1
	}
	return cfg
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Factory creates a backend.
type Factory func(Config) (tensor.Backend, error)

var (
	mu       sync.RWMutex
	backends = make(map[string]Factory)
)

// Register makes a backend available under name. It panics if name is taken.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := backends[name]; ok {
		panic("engine: backend already registered: " + name)
	}
	backends[name] = f
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend creates the backend registered under name.
func NewBackend(name string, cfg Config) (tensor.Backend, error) {
	mu.RLock()
	f, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, Names())
	}
	b, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", name, err)
	}
	return b, nil
}

// Open creates the backend registered under name and wraps it in a MathEngine.
func Open(name string, cfg Config) (*MathEngine, error) {
	b, err := NewBackend(name, cfg)
	if err != nil {
		return nil, err
	}
	log := cfg.logger()
	log.Info("backend opened", "name", name, "backend", b.Name(), "device", b.Device())
	return New(b, log), nil
}

// Release frees the device resources held by b, if it holds any.
func Release(b tensor.Backend) {
	if r, ok := b.(interface{ Release() }); ok {
		r.Release()
	}
}
