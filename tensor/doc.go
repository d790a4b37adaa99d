// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor defines the contract every math engine backend implements.
//
// # Overview
//
// A Backend exposes a fixed catalogue of dense float32 kernels over flat,
// row-major buffers:
//   - Batched matrix products, including the transposed variants
//   - Row broadcasts and row reductions
//   - Element-wise vector operations
//   - Philox-driven matrix and spatial dropout
//
// Every backend checks the same preconditions before writing anything. A violated
// precondition panics with a *ContractError. A backend that has no kernel for an
// operation returns an error for which IsUnsupported reports true.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mathengine/backend/cpu"
//	)
//
//	func main() {
//	    b := cpu.New()
//
//	    a := []float32{1, 2, 3, 4, 5, 6}       // 2x3
//	    m := []float32{7, 8, 9, 10, 11, 12}    // 3x2
//	    c := make([]float32, 4)                // 2x2
//	    if err := b.MultiplyMatrixByMatrix(1, a, 2, 3, m, 2, c, len(c)); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Layout
//
// Sequence and image data is described by BlobDesc, a seven-dimensional layout
// BatchLength x BatchWidth x ListSize x Height x Width x Depth x Channels.
package tensor
