package lia

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheck(t *testing.T) {
	x, y := Var("x"), Var("y")
	for _, tt := range []struct {
		a              Atom
		m              Model
		holds, defined bool
	}{
		{Eq(Add(x, Const(1)), Const(5)), Model{"x": 4}, true, true},
		{Eq(Add(x, Const(1)), Const(5)), Model{"x": 3}, false, true},
		{Eq(Add(x, y), Const(3)), Model{"x": 3}, false, false},
		{Eq(Add(Const(2), Const(2)), Const(4)), nil, true, true},
	} {
		holds, defined := tt.a.Check(tt.m)
		if holds != tt.holds || defined != tt.defined {
			t.Errorf("(%s).Check(%s): got (%t, %t); want (%t, %t)",
				tt.a, tt.m, holds, defined, tt.holds, tt.defined)
		}
	}
}

func TestVars(t *testing.T) {
	atoms := []Atom{
		Eq(Add(Var("b"), Var("a"), Const(1)), Var("c")),
		Eq(Var("a"), Add(Var("b"), Var("b"))),
	}
	if diff := cmp.Diff(Vars(atoms), []string{"a", "b", "c"}); diff != "" {
		t.Errorf("Vars (-got, +want):\n%s", diff)
	}
	if diff := cmp.Diff(atoms[1].Vars(), []string{"a", "b"}); diff != "" {
		t.Errorf("Atom.Vars (-got, +want):\n%s", diff)
	}
}

func TestTermsAreKeys(t *testing.T) {
	// Structurally equal terms built separately must be the same map key.
	m := map[Term]int{Add(Var("x"), Const(1)): 1}
	if _, ok := m[Sum{Var("x"), Const(1)}]; !ok {
		t.Fatal("equal sums are distinct keys")
	}
	if _, ok := m[Sum{Const(1), Var("x")}]; ok {
		t.Fatal("commuted sum matched")
	}
}

func TestModelString(t *testing.T) {
	m := Model{"y": -3, "x": 4}
	if got, want := m.String(), "{x=4, y=-3}"; got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}
