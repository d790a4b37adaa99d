//go:build windows

package engine

import (
	"github.com/born-ml/mathengine/internal/backend/webgpu"
	"github.com/born-ml/mathengine/internal/tensor"
)

func init() {
	Register("webgpu", func(Config) (tensor.Backend, error) {
		b, err := webgpu.New()
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}
