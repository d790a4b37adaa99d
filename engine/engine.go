// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package engine selects a backend by name and dispatches operations to it with
// logging, and verifies one backend against another.
//
// Backends register under short names: "cpu", "grid" and "reference" on every
// platform, plus "webgpu" on Windows.
//
// Example:
//
//	e, err := engine.Open("grid", engine.ConfigFromEnv())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = e.VectorAdd(a, b, out)
package engine

import (
	"context"

	"github.com/born-ml/mathengine/internal/engine"
	"github.com/born-ml/mathengine/internal/sweep"
	"github.com/born-ml/mathengine/tensor"
)

// MathEngine dispatches operations to a backend.
type MathEngine = engine.MathEngine

// Config is passed to backend factories.
type Config = engine.Config

// Factory builds a backend from a Config.
type Factory = engine.Factory

// VerifyOptions selects what Verify sweeps.
type VerifyOptions = engine.VerifyOptions

// Result summarises the trials of one operation regime.
type Result = sweep.Result

// Errors returned by this package.
var (
	ErrUnknownBackend = engine.ErrUnknownBackend
	ErrUnknownOp      = engine.ErrUnknownOp
)

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config { return engine.DefaultConfig() }

// ConfigFromEnv returns DefaultConfig adjusted by the BORN_* environment variables.
func ConfigFromEnv() Config { return engine.ConfigFromEnv() }

// Register adds a backend factory under name. It panics if name is taken.
func Register(name string, f Factory) { engine.Register(name, f) }

// Names returns the registered backend names in sorted order.
func Names() []string { return engine.Names() }

// Open builds the named backend and wraps it in a MathEngine.
func Open(name string, cfg Config) (*MathEngine, error) { return engine.Open(name, cfg) }

// Tolerances returns the maximum absolute difference allowed per operation.
func Tolerances() map[string]float64 { return engine.Tolerances() }

// Verify sweeps operations on got against want.
func Verify(ctx context.Context, got, want tensor.Backend, opts VerifyOptions) ([]Result, error) {
	return engine.Verify(ctx, got, want, opts)
}
