package lia

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cespare/lia/interval"
	"github.com/cespare/lia/strategy"
)

func TestMerge(t *testing.T) {
	x := Var("x")
	bound := NewState().With(x, interval.Range(0, 5))
	for _, tt := range []struct {
		name     string
		st       State
		i        interval.Interval
		wantKind strategy.Kind
		want     interval.Interval // binding of x afterwards
	}{
		{"unbound", NewState(), interval.Range(0, 5), strategy.UpdatedValue, interval.Range(0, 5)},
		{"unbound empty", NewState(), interval.Empty, strategy.Contradicted, interval.Empty},
		{"same", bound, interval.Range(0, 5), strategy.Valued, interval.Range(0, 5)},
		{"narrower", bound, interval.Range(3, 9), strategy.UpdatedValue, interval.Range(3, 5)},
		{"wider", bound, interval.Full, strategy.Valued, interval.Range(0, 5)},
		{"half-open", bound, interval.AtMost(2), strategy.UpdatedValue, interval.Range(0, 2)},
		{"disjoint", bound, interval.Range(7, 9), strategy.Contradicted, interval.Range(0, 5)},
		{"empty", bound, interval.Empty, strategy.Contradicted, interval.Range(0, 5)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			st := strategy.Run(Merge(x, tt.i), tt.st)
			if st.Kind() != tt.wantKind {
				t.Fatalf("Merge(x, %s): got %s; want %s", tt.i, st, tt.wantKind)
			}
			if st.Failed() {
				return
			}
			if v, _ := st.Value(); v != tt.want {
				t.Errorf("Merge(x, %s) value: got %s; want %s", tt.i, v, tt.want)
			}
			env := tt.st
			if e, ok := st.Env(); ok {
				env = e
			}
			if got, _ := env.Lookup(x); got != tt.want {
				t.Errorf("after Merge(x, %s): x ∈ %s; want %s", tt.i, got, tt.want)
			}
		})
	}
}

func TestMergeNeverWidens(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	randomInterval := func() interval.Interval {
		a, b := rng.Intn(41)-20, rng.Intn(41)-20
		switch rng.Intn(4) {
		case 0:
			return interval.Full
		case 1:
			return interval.AtMost(a)
		case 2:
			return interval.AtLeast(a)
		}
		if a > b {
			a, b = b, a
		}
		return interval.Range(a, b)
	}
	x := Var("x")
	for seed := 0; seed < 100; seed++ {
		st := NewState()
		prev := interval.Full
		for i := 0; i < 10; i++ {
			res := strategy.Run(Merge(x, randomInterval()), st)
			if res.Failed() {
				break
			}
			if env, ok := res.Env(); ok {
				st = env
			}
			cur, _ := st.Lookup(x)
			if !cur.Subset(prev) {
				t.Fatalf("merge widened %s to %s", prev, cur)
			}
			prev = cur
		}
	}
}

func TestStateWithCopies(t *testing.T) {
	x, y := Var("x"), Var("y")
	s0 := NewState().With(x, interval.Range(0, 1))
	s1 := s0.With(y, interval.AtLeast(3))
	s2 := s1.With(x, interval.Singleton(1))
	if _, ok := s0.Lookup(y); ok {
		t.Error("binding y leaked into the original state")
	}
	if got, _ := s1.Lookup(x); got != interval.Range(0, 1) {
		t.Errorf("s1: x ∈ %s after rebinding in s2", got)
	}
	if s2.Len() != 2 || s1.Equal(s2) {
		t.Errorf("s2 = %s; want two bindings differing from s1 = %s", s2, s1)
	}
	if got, want := s2.String(), "{x ∈ [1, 1]; y ∈ [3, +∞)}"; got != want {
		t.Errorf("s2.String() = %q; want %q", got, want)
	}
}

func TestEvaluate(t *testing.T) {
	x := Var("x")
	sum := Add(x, Const(1))

	st := strategy.Run(Evaluate(sum), NewState())
	if st.Kind() != strategy.UpdatedValue {
		t.Fatalf("Evaluate(%s) on empty state: got %s", sum, st)
	}
	env, _ := st.Env()
	got := make(map[string]interval.Interval)
	for _, term := range []Term{x, Const(1), sum} {
		i, ok := env.Lookup(term)
		if !ok {
			t.Fatalf("%s was not memoized", term)
		}
		got[term.String()] = i
	}
	want := map[string]interval.Interval{
		"x":     interval.Full,
		"1":     interval.Singleton(1),
		"x + 1": interval.Full,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("memoized intervals (-got, +want):\n%s", diff)
	}

	// A memoized sum is not recomputed from its operands.
	stale := NewState().With(x, interval.Range(0, 3)).With(sum, interval.Singleton(2))
	i, ok := strategy.RunOptional(Evaluate(sum), stale)
	if !ok || i != interval.Singleton(2) {
		t.Fatalf("Evaluate(%s) on memoized state: got (%s, %t); want [2, 2]", sum, i, ok)
	}
}

func TestPropagateForwardAndBackward(t *testing.T) {
	x := Var("x")
	a := Eq(Add(x, Const(1)), Const(5))

	st := strategy.Run(PropagateForward(a), NewState())
	if st.Kind() != strategy.UpdatedValue {
		t.Fatalf("PropagateForward(%s): got %s", a, st)
	}
	env, _ := st.Env()
	if got, _ := env.Lookup(a.L); got != interval.Singleton(5) {
		t.Fatalf("after forward: %s ∈ %s; want [5, 5]", a.L, got)
	}
	if got, _ := env.Lookup(x); got != interval.Full {
		t.Fatalf("after forward: x ∈ %s; want ℤ", got)
	}

	st = strategy.Run(PropagateBackward(a), env)
	if st.Kind() != strategy.UpdatedValue {
		t.Fatalf("PropagateBackward(%s): got %s", a, st)
	}
	env, _ = st.Env()
	if got, _ := env.Lookup(x); got != interval.Singleton(4) {
		t.Fatalf("after backward: x ∈ %s; want [4, 4]", got)
	}
}

func TestPropagateForwardConflict(t *testing.T) {
	x := Var("x")
	st := strategy.Run(PropagateForward(Eq(x, Const(5))), NewState().With(x, interval.Singleton(3)))
	if st.Kind() != strategy.Contradicted {
		t.Fatalf("got %s; want contradiction", st)
	}
	if got, want := st.Message(), "x = 5: [3, 3] ∩ [5, 5] = ∅"; got != want {
		t.Errorf("message: got %q; want %q", got, want)
	}
}

func TestPropagateIdempotent(t *testing.T) {
	x, y := Var("x"), Var("y")
	for _, tt := range []struct {
		name  string
		atoms []Atom
	}{
		{"increment", []Atom{Eq(Add(x, Const(1)), Const(5))}},
		{"double", []Atom{Eq(Add(x, x), Const(4))}},
		{"pair", []Atom{Eq(y, Add(x, Const(2))), Eq(Add(x, y), Const(8))}},
		{"cycle", []Atom{Eq(x, Add(x, Const(1)))}},
		{"none", nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			st := strategy.Run(Saturate(tt.atoms, 100), NewState())
			if st.Failed() {
				t.Fatalf("Saturate: got %s", st)
			}
			env := NewState()
			if e, ok := st.Env(); ok {
				env = e
			}
			again := strategy.Run(Propagate(tt.atoms), env)
			if again.Kind() != strategy.Valued {
				t.Fatalf("Propagate after Saturate: got %s; want a pure value", again)
			}
		})
	}
}

func TestSaturateRoundLimit(t *testing.T) {
	// With x bounded above, x = x + 1 lowers the bound by one on every pass.
	x := Var("x")
	atoms := []Atom{Eq(x, Add(x, Const(1)))}
	st := strategy.Run(Saturate(atoms, 10), NewState().With(x, interval.AtMost(0)))
	if st.Kind() != strategy.Aborted {
		t.Fatalf("got %s; want abort", st)
	}
}

func TestSearch(t *testing.T) {
	x := Var("x")
	atoms := []Atom{Eq(Add(x, Const(1)), Const(5))}
	for _, tt := range []struct {
		name string
		s    modelStrategy
	}{
		{"after propagation", strategy.Bind(Propagate(atoms), func(struct{}) modelStrategy {
			return Search(atoms, []string{"x"})
		})},
		{"from scratch", Search(atoms, []string{"x"})},
	} {
		t.Run(tt.name, func(t *testing.T) {
			st := strategy.Run(tt.s, NewState())
			m, ok := st.Value()
			if !ok {
				t.Fatalf("got %s; want a model", st)
			}
			if diff := cmp.Diff(m, Model{"x": 4}); diff != "" {
				t.Fatalf("model (-got, +want):\n%s", diff)
			}
		})
	}
}
