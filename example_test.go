package lia_test

import (
	"fmt"
	"strings"

	"github.com/cespare/lia"
)

func ExampleSolve() {
	// Problem: y = x + 2 ∧ x + y = 8
	x, y := lia.Var("x"), lia.Var("y")
	problem := []lia.Atom{
		lia.Eq(y, lia.Add(x, lia.Const(2))),
		lia.Eq(lia.Add(x, y), lia.Const(8)),
	}

	// The search is unbounded by default; a depth limit makes it give up
	// with UNKNOWN instead of running forever on hard inputs.
	res := lia.Solve(problem, lia.WithMaxDepth(100))
	fmt.Println(res.Answer, res.Model)
	// Output: SAT {x=3, y=5}
}

func ExampleParseProblem() {
	problem, err := lia.ParseProblem(strings.NewReader(`
# x is one more than twice y
x = y + y + 1
x + y = 7
`))
	if err != nil {
		panic(err)
	}
	res := lia.Solve(problem, lia.WithMaxDepth(100))
	fmt.Println(res.Answer, res.Model)
	// Output: SAT {x=5, y=2}
}
