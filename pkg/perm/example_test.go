package perm_test

import (
	"fmt"

	"github.com/matzehuels/derange/pkg/perm"
)

func ExampleHeap() {
	fmt.Println("All permutations of [0,1,2]:")
	for p := range perm.Heap(3) {
		fmt.Println(p)
	}
	// Output:
	// All permutations of [0,1,2]:
	// [0 1 2]
	// [1 0 2]
	// [2 0 1]
	// [0 2 1]
	// [1 2 0]
	// [2 1 0]
}

func ExampleFactorial() {
	fmt.Println("4! =", perm.Factorial(4))
	fmt.Println("5! =", perm.Factorial(5))
	// Output:
	// 4! = 24
	// 5! = 120
}

func ExampleDerangements() {
	for _, d := range perm.Derangements(4) {
		fmt.Println(d)
	}
	// Output:
	// [1 0 3 2]
	// [1 2 3 0]
	// [1 3 0 2]
	// [2 0 3 1]
	// [2 3 0 1]
	// [2 3 1 0]
	// [3 0 1 2]
	// [3 2 0 1]
	// [3 2 1 0]
}
