package sweep

import (
	"math/rand/v2"

	"github.com/born-ml/mathengine/internal/tensor"
)

// Runner executes a prepared trial on one backend and returns the output buffer.
// Each call allocates its own output, so a trial can be run on several backends.
type Runner func(b tensor.Backend) ([]float32, error)

// Case is one sweepable operation.
type Case struct {
	// Op is the catalogue operation name.
	Op string
	// Params is the default sweep.
	Params string
	// Large lists additional regimes with large shapes.
	Large []string
	// Tolerance is the largest accepted absolute difference between two backends.
	Tolerance float64

	prepare func(rng *rand.Rand, p Params) (Runner, error)
}

// Prepare draws the dimensions and data of one trial.
func (c Case) Prepare(rng *rand.Rand, p Params) (Runner, error) {
	return c.prepare(rng, p)
}

// Cases returns the sweep catalogue in catalogue order.
func Cases() []Case {
	return []Case{
		{
			Op:        "MultiplyMatrixByMatrix",
			Params:    "Height = (1..50); Width = (1..50); BatchSize = (1..5); Values = (-1..1); TestCount = 100;",
			Large:     []string{"Height = (100..500); Width = (100..500); BatchSize = (1..5); Values = (-1..1); TestCount = 5;"},
			Tolerance: 1e-3,
			prepare:   prepareMultiply,
		},
		{
			Op:        "MultiplyTransposedMatrixByMatrix",
			Params:    "Height = (1..50); Width = (1..50); BatchSize = (1..5); Values = (-1..1); TestCount = 100;",
			Large:     []string{"Height = (100..500); Width = (100..500); BatchSize = (1..5); Values = (-1..1); TestCount = 5;"},
			Tolerance: 1e-3,
			prepare:   prepareTransposedMultiply,
		},
		{
			Op:        "MultiplyMatrixByTransposedMatrix",
			Params:    "Height = (1..50); Width = (1..50); BatchSize = (1..5); Values = (-1..1); TestCount = 100;",
			Large:     []string{"Height = (100..500); Width = (100..500); BatchSize = (1..5); Values = (-1..1); TestCount = 5;"},
			Tolerance: 1e-3,
			prepare:   prepareMultiplyByTransposed,
		},
		{
			Op:     "SetVectorToMatrixRows",
			Params: "MatrixHeight = (1..100); MatrixWidth = (1..100); Values = (-50..50); TestCount = 100;",
			Large: []string{
				"MatrixHeight = (1089536..1089536); MatrixWidth = (48..48); Values = (-1..1); TestCount = 1;",
				"MatrixHeight = (1089536..1089536); MatrixWidth = (64..64); Values = (-1..1); TestCount = 1;",
			},
			prepare: prepareSetVectorToMatrixRows,
		},
		{
			Op:      "AddVectorToMatrixRows",
			Params:  "BatchSize = (1..5); MatrixHeight = (1..100); MatrixWidth = (1..100); Values = (-50..50); TestCount = 100;",
			prepare: prepareAddVectorToMatrixRows,
		},
		{
			Op:        "SumMatrixRows",
			Params:    "BatchSize = (1..5); MatrixHeight = (1..100); MatrixWidth = (1..100); Values = (-1..1); TestCount = 100;",
			Tolerance: 1e-3,
			prepare:   prepareSumMatrixRows,
		},
		{
			Op:      "VectorFill",
			Params:  "VectorSize = (1..10000); Values = (-50..50); TestCount = 20;",
			prepare: prepareVectorFill,
		},
		{
			Op:      "VectorAdd",
			Params:  "VectorSize = (1..10000); Values = (-50..50); TestCount = 20;",
			prepare: prepareVectorBinary(func(b tensor.Backend, first, second, result []float32) error { return b.VectorAdd(first, second, result) }),
		},
		{
			Op:      "VectorEltwiseMultiply",
			Params:  "VectorSize = (1..10000); Values = (-50..50); TestCount = 20;",
			prepare: prepareVectorBinary(func(b tensor.Backend, first, second, result []float32) error { return b.VectorEltwiseMultiply(first, second, result) }),
		},
		{
			Op:      "VectorMultiply",
			Params:  "VectorSize = (1..10000); Values = (-50..50); TestCount = 20;",
			prepare: prepareVectorMultiply,
		},
		{
			Op:      "RandomMatrixDropout",
			Params:  "MatrixHeight = (1..64); MatrixWidth = (1..300); Values = (-1..1); ForwardRatePercent = (10..100); Seed = (0..1000000); TestCount = 50;",
			prepare: prepareMatrixDropout,
		},
		{
			Op: "RandomSpatialDropout",
			Params: "ObjectCount = (1..16); MaskObjectCount = (1..4); MaskObjectSize = (1..64); Rows = (1..8); Tail = (0..3); " +
				"Values = (-1..1); ForwardRatePercent = (10..100); Seed = (0..1000000); TestCount = 50;",
			prepare: prepareSpatialDropout,
		},
	}
}

// Lookup returns the case for op.
func Lookup(op string) (Case, bool) {
	for _, c := range Cases() {
		if c.Op == op {
			return c, true
		}
	}
	return Case{}, false
}

// draw reads the named intervals and draws one integer from each.
func draw(rng *rand.Rand, p Params, names ...string) ([]int, error) {
	values := make([]int, len(names))
	for i, name := range names {
		interval, err := p.Interval(name)
		if err != nil {
			return nil, err
		}
		values[i] = interval.Uniform(rng)
	}
	return values, nil
}

// fill returns n values drawn uniformly from the Values interval.
func fill(rng *rand.Rand, p Params, n int) ([]float32, error) {
	interval, err := p.Interval("Values")
	if err != nil {
		return nil, err
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = interval.UniformFloat(rng)
	}
	return data, nil
}

// fillAll is fill for several buffers at once.
func fillAll(rng *rand.Rand, p Params, sizes ...int) ([][]float32, error) {
	buffers := make([][]float32, len(sizes))
	for i, n := range sizes {
		data, err := fill(rng, p, n)
		if err != nil {
			return nil, err
		}
		buffers[i] = data
	}
	return buffers, nil
}

// output returns a fresh copy of initial for a backend to write into.
func output(initial []float32) []float32 {
	return append([]float32(nil), initial...)
}

func prepareMultiply(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "BatchSize", "Height", "Width", "Width")
	if err != nil {
		return nil, err
	}
	batch, height, width, secondWidth := dims[0], dims[1], dims[2], dims[3]
	bufs, err := fillAll(rng, p, batch*height*width, batch*width*secondWidth, batch*height*secondWidth)
	if err != nil {
		return nil, err
	}
	first, second, initial := bufs[0], bufs[1], bufs[2]
	return func(b tensor.Backend) ([]float32, error) {
		result := output(initial)
		return result, b.MultiplyMatrixByMatrix(batch, first, height, width, second, secondWidth, result, len(result))
	}, nil
}

func prepareTransposedMultiply(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "BatchSize", "Height", "Width", "Width")
	if err != nil {
		return nil, err
	}
	batch, height, width, secondWidth := dims[0], dims[1], dims[2], dims[3]
	bufs, err := fillAll(rng, p, batch*height*width, batch*height*secondWidth, batch*width*secondWidth)
	if err != nil {
		return nil, err
	}
	first, second, initial := bufs[0], bufs[1], bufs[2]
	return func(b tensor.Backend) ([]float32, error) {
		result := output(initial)
		return result, b.MultiplyTransposedMatrixByMatrix(batch, first, height, width, second, secondWidth, result, len(result))
	}, nil
}

func prepareMultiplyByTransposed(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "BatchSize", "Height", "Width", "Height")
	if err != nil {
		return nil, err
	}
	batch, height, width, secondHeight := dims[0], dims[1], dims[2], dims[3]
	bufs, err := fillAll(rng, p, batch*height*width, batch*secondHeight*width, batch*height*secondHeight)
	if err != nil {
		return nil, err
	}
	first, second, initial := bufs[0], bufs[1], bufs[2]
	return func(b tensor.Backend) ([]float32, error) {
		result := output(initial)
		return result, b.MultiplyMatrixByTransposedMatrix(batch, first, height, width, second, secondHeight, result, len(result))
	}, nil
}

func prepareSetVectorToMatrixRows(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "MatrixHeight", "MatrixWidth")
	if err != nil {
		return nil, err
	}
	height, width := dims[0], dims[1]
	vector, err := fill(rng, p, width)
	if err != nil {
		return nil, err
	}
	return func(b tensor.Backend) ([]float32, error) {
		result := make([]float32, height*width)
		return result, b.SetVectorToMatrixRows(result, height, width, vector)
	}, nil
}

func prepareAddVectorToMatrixRows(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "BatchSize", "MatrixHeight", "MatrixWidth")
	if err != nil {
		return nil, err
	}
	batch, height, width := dims[0], dims[1], dims[2]
	bufs, err := fillAll(rng, p, batch*height*width, width)
	if err != nil {
		return nil, err
	}
	matrix, vector := bufs[0], bufs[1]
	return func(b tensor.Backend) ([]float32, error) {
		result := make([]float32, len(matrix))
		return result, b.AddVectorToMatrixRows(batch, matrix, result, height, width, vector)
	}, nil
}

func prepareSumMatrixRows(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "BatchSize", "MatrixHeight", "MatrixWidth")
	if err != nil {
		return nil, err
	}
	batch, height, width := dims[0], dims[1], dims[2]
	matrix, err := fill(rng, p, batch*height*width)
	if err != nil {
		return nil, err
	}
	return func(b tensor.Backend) ([]float32, error) {
		result := make([]float32, batch*width)
		return result, b.SumMatrixRows(batch, result, matrix, height, width)
	}, nil
}

func prepareVectorFill(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "VectorSize")
	if err != nil {
		return nil, err
	}
	value, err := fill(rng, p, 1)
	if err != nil {
		return nil, err
	}
	return func(b tensor.Backend) ([]float32, error) {
		result := make([]float32, dims[0])
		return result, b.VectorFill(result, value[0])
	}, nil
}

func prepareVectorBinary(op func(b tensor.Backend, first, second, result []float32) error) func(*rand.Rand, Params) (Runner, error) {
	return func(rng *rand.Rand, p Params) (Runner, error) {
		dims, err := draw(rng, p, "VectorSize")
		if err != nil {
			return nil, err
		}
		bufs, err := fillAll(rng, p, dims[0], dims[0])
		if err != nil {
			return nil, err
		}
		return func(b tensor.Backend) ([]float32, error) {
			result := make([]float32, dims[0])
			return result, op(b, bufs[0], bufs[1], result)
		}, nil
	}
}

func prepareVectorMultiply(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "VectorSize")
	if err != nil {
		return nil, err
	}
	bufs, err := fillAll(rng, p, dims[0], 1)
	if err != nil {
		return nil, err
	}
	first, multiplier := bufs[0], bufs[1][0]
	return func(b tensor.Backend) ([]float32, error) {
		result := make([]float32, len(first))
		return result, b.VectorMultiply(first, result, multiplier)
	}, nil
}

func prepareMatrixDropout(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "MatrixHeight", "MatrixWidth", "ForwardRatePercent", "Seed")
	if err != nil {
		return nil, err
	}
	height, width, seed := dims[0], dims[1], dims[3]
	forwardRate := float32(dims[2]) / 100
	first, err := fill(rng, p, height*width)
	if err != nil {
		return nil, err
	}
	return func(b tensor.Backend) ([]float32, error) {
		result := make([]float32, len(first))
		return result, b.RandomMatrixDropout(first, height, width, result, seed, forwardRate)
	}, nil
}

func prepareSpatialDropout(rng *rand.Rand, p Params) (Runner, error) {
	dims, err := draw(rng, p, "ObjectCount", "MaskObjectCount", "MaskObjectSize", "Rows", "Tail", "ForwardRatePercent", "Seed")
	if err != nil {
		return nil, err
	}
	objectCount, maskObjectCount, maskObjectSize, seed := dims[0], dims[1], dims[2], dims[6]
	objectSize := dims[3]*maskObjectSize + dims[4]
	forwardRate := float32(dims[5]) / 100
	bufs, err := fillAll(rng, p, objectCount*objectSize, objectCount*objectSize)
	if err != nil {
		return nil, err
	}
	input, initial := bufs[0], bufs[1]
	return func(b tensor.Backend) ([]float32, error) {
		result := output(initial)
		return result, b.RandomSpatialDropout(input, result, objectCount, objectSize,
			maskObjectCount, maskObjectSize, seed, forwardRate)
	}, nil
}
