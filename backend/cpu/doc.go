// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the sequential CPU backend.
//
// # Overview
//
// This package implements every kernel as ordinary loops on the calling goroutine:
//   - Pure Go implementation (no CGO)
//   - Matrix products through gonum's BLAS
//   - Dropout decisions drawn from the shared Philox stream
//
// # Basic Usage
//
//	import "github.com/born-ml/mathengine/backend/cpu"
//
//	func main() {
//	    b := cpu.New()
//	    out := make([]float32, 8)
//	    _ = b.VectorFill(out, 1)
//	}
//
// # Thread Safety
//
// The CPU backend holds no mutable state and is safe for concurrent use.
package cpu
