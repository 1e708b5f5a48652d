package lia

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// A Term is an integer-valued expression: a Var, a Const, or a Sum.
//
// Terms are comparable with == and can be used as map keys; two terms are
// equal exactly when they are structurally identical.
type Term interface {
	String() string
	term()
}

// A Var is a named integer variable.
type Var string

// A Const is an integer literal.
type Const int

// A Sum is the sum of two terms.
type Sum struct {
	L, R Term
}

func (Var) term()   {}
func (Const) term() {}
func (Sum) term()   {}

func (v Var) String() string   { return string(v) }
func (c Const) String() string { return strconv.Itoa(int(c)) }
func (s Sum) String() string   { return s.L.String() + " + " + s.R.String() }

// Add builds the left-nested sum of terms. It panics if terms is empty.
func Add(terms ...Term) Term {
	if len(terms) == 0 {
		panic("lia: Add of no terms")
	}
	t := terms[0]
	for _, u := range terms[1:] {
		t = Sum{t, u}
	}
	return t
}

// An Atom is the equality constraint L = R.
type Atom struct {
	L, R Term
}

// Eq returns the atom l = r.
func Eq(l, r Term) Atom { return Atom{l, r} }

func (a Atom) String() string { return a.L.String() + " = " + a.R.String() }

// A Model assigns integers to variable names.
type Model map[string]int

func (m Model) String() string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", name, m[name])
	}
	b.WriteByte('}')
	return b.String()
}

// with returns a copy of m with name bound to v.
func (m Model) with(name string, v int) Model {
	m1 := make(Model, len(m)+1)
	for k, x := range m {
		m1[k] = x
	}
	m1[name] = v
	return m1
}

func collectVars(t Term, seen map[string]struct{}) {
	switch t := t.(type) {
	case Var:
		seen[string(t)] = struct{}{}
	case Sum:
		collectVars(t.L, seen)
		collectVars(t.R, seen)
	}
}

func sortedKeys(seen map[string]struct{}) []string {
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// Vars returns the sorted names of the variables occurring in a.
func (a Atom) Vars() []string {
	seen := make(map[string]struct{})
	collectVars(a.L, seen)
	collectVars(a.R, seen)
	return sortedKeys(seen)
}

// Vars returns the sorted union of the variables of every atom.
func Vars(atoms []Atom) []string {
	seen := make(map[string]struct{})
	for _, a := range atoms {
		collectVars(a.L, seen)
		collectVars(a.R, seen)
	}
	return sortedKeys(seen)
}

// Eval computes the value of t under m. It reports false if t mentions a
// variable that m does not bind.
func Eval(t Term, m Model) (int, bool) {
	switch t := t.(type) {
	case Var:
		v, ok := m[string(t)]
		return v, ok
	case Const:
		return int(t), true
	case Sum:
		l, ok := Eval(t.L, m)
		if !ok {
			return 0, false
		}
		r, ok := Eval(t.R, m)
		return l + r, ok
	}
	panic(fmt.Sprintf("lia: unknown term type %T", t))
}

// Check reports whether a holds under m. If m leaves some variable of a
// unbound the atom is undetermined and determined is false.
func (a Atom) Check(m Model) (holds, determined bool) {
	l, ok := Eval(a.L, m)
	if !ok {
		return false, false
	}
	r, ok := Eval(a.R, m)
	if !ok {
		return false, false
	}
	return l == r, true
}
