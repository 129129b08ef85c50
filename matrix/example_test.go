package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/fphi/matrix"
)

// ExampleGonumSolver decomposes a small relatedness-like matrix.
func ExampleGonumSolver() {
	m, _ := matrix.NewDenseFrom(2, 2, []float64{
		1.0, 0.5,
		0.5, 1.0,
	})
	vals, _, err := matrix.GonumSolver{}.EigenSym(m)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%.2f %.2f\n", vals[0], vals[1])
	// Output: 0.50 1.50
}

// ExampleInvert inverts a diagonal matrix.
func ExampleInvert() {
	m, _ := matrix.NewDenseFrom(2, 2, []float64{2, 0, 0, 4})
	inv, _ := matrix.Invert(m, matrix.DefaultPivotEps)
	fmt.Print(inv)
	// Output:
	// [0.5, 0]
	// [0, 0.25]
}
