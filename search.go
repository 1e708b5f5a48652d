package lia

import (
	"sort"

	"github.com/cespare/lia/interval"
	"github.com/cespare/lia/strategy"
)

type modelStrategy = strategy.Strategy[State, Model]

// searcher resolves the variables of a problem one at a time, splitting the
// interval of each unresolved variable and backtracking on contradictions.
//
// The search is incomplete over unbounded domains: narrowing a half-open
// interval can continue forever unless Options.MaxDepth is set.
type searcher struct {
	atoms  []Atom
	opts   Options
	tracer Tracer
	stats  *Stats
}

func newSearcher(atoms []Atom, opts Options, stats *Stats) *searcher {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = NopTracer{}
	}
	return &searcher{atoms: atoms, opts: opts, tracer: tracer, stats: stats}
}

// Search returns the strategy that resolves vars in the given order against
// a propagation state, yielding a model of atoms. Solve runs it after an
// initial propagation; running it on a state that has not been propagated is
// correct but may need more decisions.
func Search(atoms []Atom, vars []string, opts ...Option) modelStrategy {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newSearcher(atoms, o, new(Stats)).search(vars, Model{}, 0)
}

// order lists the variables in the order they are resolved.
func (sr *searcher) order() []string {
	vars := Vars(sr.atoms)
	if sr.opts.Order != OrderOccurrence {
		return vars
	}
	// Variables that occur most often go first.
	counts := make(map[string]int)
	var count func(Term)
	count = func(t Term) {
		switch t := t.(type) {
		case Var:
			counts[string(t)]++
		case Sum:
			count(t.L)
			count(t.R)
		}
	}
	for _, a := range sr.atoms {
		count(a.L)
		count(a.R)
	}
	sort.SliceStable(vars, func(i, j int) bool {
		return counts[vars[i]] > counts[vars[j]]
	})
	return vars
}

// initial is the propagation that runs before any decision.
func (sr *searcher) initial() unitStrategy {
	if sr.opts.Saturate {
		return sr.counted(Saturate(sr.atoms, sr.opts.MaxRounds))
	}
	return sr.counted(Propagate(sr.atoms))
}

func (sr *searcher) counted(s unitStrategy) unitStrategy {
	return func(st State) strategy.Status[State, struct{}] {
		sr.stats.Propagations++
		return s(st)
	}
}

// search resolves vars in order, extending model.
func (sr *searcher) search(vars []string, model Model, depth int) modelStrategy {
	return func(st State) strategy.Status[State, Model] {
		if depth > sr.stats.MaxDepth {
			sr.stats.MaxDepth = depth
		}
		if sr.opts.MaxDepth > 0 && depth > sr.opts.MaxDepth {
			sr.stats.Aborts++
			sr.tracer.Trace(Event{Kind: EventAbort, Depth: depth, State: st, Message: "depth limit reached"})
			return strategy.Abortf[State, Model]("search: depth limit %d reached", sr.opts.MaxDepth)(st)
		}
		if len(vars) == 0 {
			return sr.verify(model, depth)(st)
		}
		return sr.resolve(vars, model, depth)(st)
	}
}

// resolve handles the first variable of vars. A variable whose interval is a
// single value is bound without branching; otherwise its interval is split and
// the candidates are tried in order: the representative of each half as a
// decision, then each half as a narrowed domain for the same variable.
func (sr *searcher) resolve(vars []string, model Model, depth int) modelStrategy {
	name := vars[0]
	return strategy.Bind(Evaluate(Var(name)), func(dom interval.Interval) modelStrategy {
		left, right, ok := dom.Split()
		if !ok {
			return sr.search(vars[1:], model.with(name, dom.Peek()), depth+1)
		}
		return strategy.FirstOf(
			sr.decide(vars, model, depth, left.Peek()),
			sr.decide(vars, model, depth, right.Peek()),
			sr.narrow(vars, model, depth, left),
			sr.narrow(vars, model, depth, right),
		)
	})
}

func (sr *searcher) decide(vars []string, model Model, depth, v int) modelStrategy {
	name := vars[0]
	ev := Event{Kind: EventDecide, Var: name, Interval: interval.Singleton(v), Depth: depth}
	return strategy.Bind(sr.assume(ev), func(struct{}) modelStrategy {
		return sr.search(vars[1:], model.with(name, v), depth+1)
	})
}

func (sr *searcher) narrow(vars []string, model Model, depth int, dom interval.Interval) modelStrategy {
	ev := Event{Kind: EventNarrow, Var: vars[0], Interval: dom, Depth: depth}
	return strategy.Bind(sr.assume(ev), func(struct{}) modelStrategy {
		return sr.search(vars, model, depth+1)
	})
}

// assume merges the decision described by ev and propagates its
// consequences.
func (sr *searcher) assume(ev Event) unitStrategy {
	s := strategy.Bind(Merge(Var(ev.Var), ev.Interval), func(interval.Interval) unitStrategy {
		return Propagate(sr.atoms)
	})
	return func(st State) strategy.Status[State, struct{}] {
		switch ev.Kind {
		case EventDecide:
			sr.stats.Decisions++
		case EventNarrow:
			sr.stats.Narrowings++
		}
		sr.stats.Propagations++
		e := ev
		e.State = st
		sr.tracer.Trace(e)
		res := s(st)
		if res.Kind() == strategy.Contradicted {
			sr.stats.Conflicts++
			sr.tracer.Trace(Event{Kind: EventConflict, Var: ev.Var, Depth: ev.Depth, State: st, Message: res.Message()})
		}
		return res
	}
}

// verify checks a complete model against every atom.
func (sr *searcher) verify(model Model, depth int) modelStrategy {
	for _, a := range sr.atoms {
		holds, determined := a.Check(model)
		if !determined {
			return strategy.Abortf[State, Model]("verify: %s is undetermined under %s", a, model)
		}
		if !holds {
			sr.stats.Conflicts++
			return strategy.Contradictf[State, Model]("model %s violates %s", model, a)
		}
	}
	return func(st State) strategy.Status[State, Model] {
		sr.tracer.Trace(Event{Kind: EventModel, Depth: depth, State: st, Model: model})
		return strategy.Return[State](model)(st)
	}
}
