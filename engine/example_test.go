package engine_test

import (
	"fmt"

	"github.com/born-ml/mathengine/engine"
)

func ExampleOpen() {
	e, err := engine.Open("cpu", engine.DefaultConfig())
	if err != nil {
		fmt.Println(err)
		return
	}

	a := []float32{1, 2, 3, 4, 5, 6}
	b := []float32{7, 8, 9, 10, 11, 12}
	c := make([]float32, 4)
	if err := e.MultiplyMatrixByMatrix(1, a, 2, 3, b, 2, c, len(c)); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(e.Name(), c)
	// Output: CPU [58 64 139 154]
}
