package engine

import (
	"github.com/born-ml/mathengine/internal/backend/cpu"
	"github.com/born-ml/mathengine/internal/backend/grid"
	"github.com/born-ml/mathengine/internal/reference"
	"github.com/born-ml/mathengine/internal/tensor"
)

func init() {
	Register("cpu", func(cfg Config) (tensor.Backend, error) {
		return cpu.New(cpu.WithParallel(cfg.Parallel)), nil
	})
	Register("grid", func(cfg Config) (tensor.Backend, error) {
		return grid.New(
			grid.WithWorkgroupSize(cfg.WorkgroupSize),
			grid.WithElementTasks(cfg.ElementTasks),
			grid.WithConfig(cfg.Parallel),
		), nil
	})
	Register("reference", func(Config) (tensor.Backend, error) {
		return reference.New(), nil
	})
}
