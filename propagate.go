package lia

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/lia/interval"
	"github.com/cespare/lia/strategy"
)

// State records, for each term seen so far, an interval known to contain its
// value. A State is immutable: With returns a modified copy, so a State handed
// to one search branch is never changed by another.
type State struct {
	m map[Term]interval.Interval
}

// NewState returns a State with no bindings.
func NewState() State { return State{} }

// Lookup returns the interval bound to t.
func (s State) Lookup(t Term) (interval.Interval, bool) {
	i, ok := s.m[t]
	return i, ok
}

// With returns a copy of s with t bound to i.
func (s State) With(t Term, i interval.Interval) State {
	m := make(map[Term]interval.Interval, len(s.m)+1)
	for k, v := range s.m {
		m[k] = v
	}
	m[t] = i
	return State{m}
}

func (s State) Len() int { return len(s.m) }

// Equal reports whether s and o bind the same terms to the same intervals.
func (s State) Equal(o State) bool {
	if len(s.m) != len(o.m) {
		return false
	}
	for t, i := range s.m {
		if j, ok := o.m[t]; !ok || i != j {
			return false
		}
	}
	return true
}

// Each calls f for every binding, ordered by the string form of the term.
func (s State) Each(f func(Term, interval.Interval)) {
	terms := make([]Term, 0, len(s.m))
	for t := range s.m {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].String() < terms[j].String() })
	for _, t := range terms {
		f(t, s.m[t])
	}
}

func (s State) String() string {
	lines := make([]string, 0, len(s.m))
	s.Each(func(t Term, i interval.Interval) {
		lines = append(lines, t.String()+" ∈ "+i.String())
	})
	return "{" + strings.Join(lines, "; ") + "}"
}

// Propagation strategies run against a State. Interval-valued ones report the
// resulting interval of the term they worked on.
type (
	intervalStrategy = strategy.Strategy[State, interval.Interval]
	unitStrategy     = strategy.Strategy[State, struct{}]
)

func bindTerm(t Term, i interval.Interval) func(State) State {
	return func(s State) State { return s.With(t, i) }
}

// Merge narrows the interval of t by i. An unbound term is bound to i. A
// binding that would become empty is a contradiction; a binding that does
// not change yields a pure value.
func Merge(t Term, i interval.Interval) intervalStrategy {
	return strategy.Step(func(s State) intervalStrategy {
		old, ok := s.Lookup(t)
		if !ok {
			if i.IsEmpty() {
				return strategy.Contradictf[State, interval.Interval]("term %s: bound to ∅", t)
			}
			return strategy.UpdateWithValue(i, bindTerm(t, i))
		}
		if old == i {
			return strategy.Return[State](i)
		}
		meet := interval.Intersect(old, i)
		switch {
		case meet.IsEmpty():
			return strategy.Contradictf[State, interval.Interval]("term %s: %s ∩ %s = ∅", t, old, i)
		case meet == old:
			return strategy.Return[State](old)
		}
		return strategy.UpdateWithValue(meet, bindTerm(t, meet))
	})
}

// Evaluate computes the interval of t from its subterms, memoizing every
// result in the state. A term that is already bound is not recomputed.
func Evaluate(t Term) intervalStrategy {
	return strategy.Step(func(s State) intervalStrategy {
		if i, ok := s.Lookup(t); ok {
			return strategy.Return[State](i)
		}
		switch t := t.(type) {
		case Var:
			return Merge(t, interval.Full)
		case Const:
			return Merge(t, interval.Singleton(int(t)))
		case Sum:
			return strategy.Bind(Evaluate(t.L), func(l interval.Interval) intervalStrategy {
				return strategy.Bind(Evaluate(t.R), func(r interval.Interval) intervalStrategy {
					return Merge(t, interval.Add(l, r))
				})
			})
		}
		panic(fmt.Sprintf("lia: evaluate of unsupported term %#v", t))
	})
}

// PropagateForward restricts both sides of an equality to the intersection
// of their intervals.
func PropagateForward(a Atom) intervalStrategy {
	return strategy.Bind(Evaluate(a.L), func(l interval.Interval) intervalStrategy {
		return strategy.Bind(Evaluate(a.R), func(r interval.Interval) intervalStrategy {
			meet := interval.Intersect(l, r)
			if meet.IsEmpty() {
				return strategy.Contradictf[State, interval.Interval]("%s: %s ∩ %s = ∅", a, l, r)
			}
			return strategy.Bind(Merge(a.L, meet), func(interval.Interval) intervalStrategy {
				return Merge(a.R, meet)
			})
		})
	})
}

// PropagateBackward pushes the interval of each side of a down into the
// operands of its sums.
func PropagateBackward(a Atom) intervalStrategy {
	return strategy.Bind(Evaluate(a.L), func(l interval.Interval) intervalStrategy {
		return strategy.Bind(pushDown(a.L, l), func(interval.Interval) intervalStrategy {
			return strategy.Bind(Evaluate(a.R), func(r interval.Interval) intervalStrategy {
				return pushDown(a.R, r)
			})
		})
	})
}

// pushDown merges target into t and, if t is a sum, derives bounds for its
// operands with interval.InverseOfSum and recurses into them.
func pushDown(t Term, target interval.Interval) intervalStrategy {
	merged := Merge(t, target)
	sum, ok := t.(Sum)
	if !ok {
		return merged
	}
	return strategy.Bind(merged, func(target interval.Interval) intervalStrategy {
		return strategy.Bind(Evaluate(sum.L), func(l interval.Interval) intervalStrategy {
			return strategy.Bind(Evaluate(sum.R), func(r interval.Interval) intervalStrategy {
				nl, nr := interval.InverseOfSum(l, r, target)
				return strategy.Bind(pushDown(sum.L, nl), func(interval.Interval) intervalStrategy {
					return strategy.Bind(pushDown(sum.R, nr), func(interval.Interval) intervalStrategy {
						return strategy.Return[State](target)
					})
				})
			})
		})
	})
}

func discard(interval.Interval) struct{} { return struct{}{} }

// Propagate runs PropagateForward over every atom in order, then
// PropagateBackward over every atom in order. A single pass need not reach a
// fixpoint; see Saturate.
//
// The outcome is a pure value when nothing was narrowed.
func Propagate(atoms []Atom) unitStrategy {
	s := strategy.Return[State](struct{}{})
	for _, pass := range []func(Atom) intervalStrategy{PropagateForward, PropagateBackward} {
		for _, a := range atoms {
			step := strategy.Map(discard, pass(a))
			s = s.Bind(func(struct{}) unitStrategy { return step })
		}
	}
	return s
}

// Saturate repeats Propagate until a pass narrows nothing. A maxRounds of
// zero means no limit; otherwise the strategy aborts after that many passes.
func Saturate(atoms []Atom, maxRounds int) unitStrategy {
	return strategy.StabilizeWith(strategy.Forget(Propagate(atoms)), strategy.Bound[State]{
		Equal:         State.Equal,
		MaxIterations: maxRounds,
	})
}
