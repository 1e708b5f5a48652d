// Package lia decides the satisfiability of conjunctions of linear integer
// equalities using interval constraint propagation plus a splitting search.
//
// Every term is abstracted by an interval of the integers it may denote.
// Propagation narrows those intervals forward (from operands to sums) and
// backward (from a sum to its operands); the search then splits the interval
// of each unresolved variable, tries the representative of each half, and
// falls back to narrowing the domain and retrying, backtracking whenever
// propagation finds a contradiction.
//
// The procedure is sound but incomplete: a SAT answer comes with a model that
// has been checked against every constraint and an UNSAT answer is backed by a
// contradiction, but on unbounded domains the search may not terminate unless
// a depth limit is set.
package lia

import (
	"errors"
	"fmt"

	"github.com/cespare/lia/strategy"
)

// An Answer is the outcome of Solve.
type Answer uint8

const (
	Unknown Answer = iota
	Sat
	Unsat
)

func (a Answer) String() string {
	switch a {
	case Unknown:
		return "UNKNOWN"
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		panic("unreached")
	}
}

var (
	// ErrUnsatisfiable wraps the contradiction behind an Unsat answer.
	ErrUnsatisfiable = errors.New("constraints not satisfiable")
	// ErrIncomplete means the procedure gave up: a limit was hit or the
	// search ended without a verdict.
	ErrIncomplete = errors.New("search incomplete")
	// ErrInternal means a fault was recovered while solving. The answer is
	// still Unknown, but this likely indicates a bug.
	ErrInternal = errors.New("internal solver failure")
)

// Stats are informational counters about a run. The set of counters may
// change at any time.
type Stats struct {
	Decisions    int64 `yaml:"decisions"`
	Narrowings   int64 `yaml:"narrowings"`
	Propagations int64 `yaml:"propagations"`
	Conflicts    int64 `yaml:"conflicts"`
	Aborts       int64 `yaml:"aborts"`
	MaxDepth     int   `yaml:"max_depth"`
}

// A Result is the outcome of Solve. Model is set only for Sat. Reason is nil
// for Sat and explains Unsat and Unknown answers; it wraps ErrUnsatisfiable,
// ErrIncomplete, or ErrInternal.
type Result struct {
	Answer Answer
	Model  Model
	Stats  Stats
	Reason error
}

// Solve decides whether the conjunction of problem is satisfiable over the
// integers and, if it is, gives a satisfying assignment for every variable.
//
// An empty problem is trivially satisfiable with an empty model. Each call is
// independent; Solve may be called concurrently on different problems.
func Solve(problem []Atom, opts ...Option) (res Result) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return Result{Answer: Unknown, Reason: err}
	}
	var stats Stats
	defer func() {
		// A panic here is an invariant violation inside the engine. Keep the
		// three-way contract but say what happened.
		if r := recover(); r != nil {
			res = Result{
				Answer: Unknown,
				Stats:  stats,
				Reason: fmt.Errorf("%w: %v", ErrInternal, r),
			}
		}
	}()

	sr := newSearcher(problem, o, &stats)
	vars := sr.order()
	s := strategy.Bind(sr.initial(), func(struct{}) modelStrategy {
		return sr.search(vars, Model{}, 0)
	})
	st := strategy.Run(s, NewState())

	res.Stats = stats
	switch st.Kind() {
	case strategy.Valued, strategy.UpdatedValue:
		model, _ := st.Value()
		res.Answer = Sat
		res.Model = model
	case strategy.Contradicted:
		res.Answer = Unsat
		res.Reason = ErrUnsatisfiable
		if msg := st.Message(); msg != "" {
			res.Reason = fmt.Errorf("%w: %s", ErrUnsatisfiable, msg)
		}
	case strategy.Aborted:
		res.Answer = Unknown
		res.Reason = fmt.Errorf("%w: %s", ErrIncomplete, st.Message())
	default:
		res.Answer = Unknown
		res.Reason = fmt.Errorf("%w: search ended with %s", ErrIncomplete, st.Kind())
	}
	return res
}
