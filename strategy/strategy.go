// Package strategy implements composable computations that thread an
// environment through a sequence of steps and report one of five outcomes.
//
// A Strategy[E, R] runs against an environment of type E. Its Status is
// exactly one of:
//
//   - Aborted: deliberate early termination, with a message.
//   - Contradicted: the environment is inconsistent; alternatives may be tried.
//   - Updated: progress was made and the environment changed, no value yet.
//   - UpdatedValue: the environment changed and a value was produced.
//   - Valued: a value was produced and the environment is unchanged.
//
// Strategies are plain functions and environments are passed by value, so two
// alternatives started from the same environment never observe each other's
// changes as long as E itself is immutable.
package strategy

import "fmt"

// Kind identifies which outcome a Status carries.
type Kind uint8

const (
	Aborted Kind = iota + 1
	Contradicted
	Updated
	UpdatedValue
	Valued
)

func (k Kind) String() string {
	switch k {
	case Aborted:
		return "abort"
	case Contradicted:
		return "contradiction"
	case Updated:
		return "update"
	case UpdatedValue:
		return "update+value"
	case Valued:
		return "value"
	default:
		panic("unreached")
	}
}

// Status is the outcome of running a Strategy.
type Status[E, R any] struct {
	kind  Kind
	env   E
	value R
	msg   string
}

func (s Status[E, R]) Kind() Kind { return s.kind }

// Env returns the updated environment for Updated and UpdatedValue.
func (s Status[E, R]) Env() (E, bool) {
	return s.env, s.kind == Updated || s.kind == UpdatedValue
}

// Value returns the carried value for UpdatedValue and Valued.
func (s Status[E, R]) Value() (R, bool) {
	return s.value, s.kind == UpdatedValue || s.kind == Valued
}

// Message returns the diagnostic of an Aborted or Contradicted status.
// A contradiction may have an empty message.
func (s Status[E, R]) Message() string { return s.msg }

// Failed reports whether s is Aborted or Contradicted.
func (s Status[E, R]) Failed() bool {
	return s.kind == Aborted || s.kind == Contradicted
}

func (s Status[E, R]) String() string {
	switch s.kind {
	case Aborted, Contradicted:
		if s.msg == "" {
			return s.kind.String()
		}
		return fmt.Sprintf("%s: %s", s.kind, s.msg)
	case Updated:
		return fmt.Sprintf("update(%v)", s.env)
	case UpdatedValue:
		return fmt.Sprintf("update(%v) value(%v)", s.env, s.value)
	case Valued:
		return fmt.Sprintf("value(%v)", s.value)
	}
	return "invalid status"
}

// recast carries a status without a value over to another result type.
func recast[E, R, S any](st Status[E, R]) Status[E, S] {
	switch st.kind {
	case Aborted, Contradicted, Updated:
		return Status[E, S]{kind: st.kind, env: st.env, msg: st.msg}
	}
	panic("strategy: recast of a status carrying a value")
}

// A Strategy is a computation over an environment.
type Strategy[E, R any] func(env E) Status[E, R]

// Run executes s against env.
func Run[E, R any](s Strategy[E, R], env E) Status[E, R] { return s(env) }

// RunOptional executes s and returns its result only when s reports a pure
// Valued outcome.
func RunOptional[E, R any](s Strategy[E, R], env E) (R, bool) {
	st := s(env)
	if st.kind != Valued {
		var zero R
		return zero, false
	}
	return st.value, true
}

// Return yields v without touching the environment.
func Return[E, R any](v R) Strategy[E, R] {
	return func(E) Status[E, R] { return Status[E, R]{kind: Valued, value: v} }
}

// Abort always fails with msg.
func Abort[E, R any](msg string) Strategy[E, R] {
	return func(E) Status[E, R] { return Status[E, R]{kind: Aborted, msg: msg} }
}

// Abortf is Abort with a formatted message.
func Abortf[E, R any](format string, args ...interface{}) Strategy[E, R] {
	return Abort[E, R](fmt.Sprintf(format, args...))
}

// Contradict always reports a contradiction.
func Contradict[E, R any]() Strategy[E, R] {
	return func(E) Status[E, R] { return Status[E, R]{kind: Contradicted} }
}

// Contradictf reports a contradiction with a diagnostic.
func Contradictf[E, R any](format string, args ...interface{}) Strategy[E, R] {
	msg := fmt.Sprintf(format, args...)
	return func(E) Status[E, R] { return Status[E, R]{kind: Contradicted, msg: msg} }
}

// Skip reports progress without changing the environment.
func Skip[E, R any]() Strategy[E, R] {
	return func(env E) Status[E, R] { return Status[E, R]{kind: Updated, env: env} }
}

// Update applies f to the environment.
func Update[E, R any](f func(E) E) Strategy[E, R] {
	return func(env E) Status[E, R] { return Status[E, R]{kind: Updated, env: f(env)} }
}

// UpdateWithValue applies f to the environment and yields v.
func UpdateWithValue[E, R any](v R, f func(E) E) Strategy[E, R] {
	return func(env E) Status[E, R] {
		return Status[E, R]{kind: UpdatedValue, env: f(env), value: v}
	}
}

// Step selects a strategy by inspecting the environment, then runs it
// against that same environment.
func Step[E, R any](f func(E) Strategy[E, R]) Strategy[E, R] {
	return func(env E) Status[E, R] { return f(env)(env) }
}

// after lifts the outcome of a step that ran against an updated environment
// so the update is not lost when the step itself reports no change.
func after[E, R any](env E, st Status[E, R]) Status[E, R] {
	if st.kind == Valued {
		return Status[E, R]{kind: UpdatedValue, env: env, value: st.value}
	}
	return st
}

// Bind sequences s and f. A value produced by s is passed to f, which runs
// against the environment s left behind. Updated, Contradicted and Aborted
// outcomes of s are returned without calling f.
func Bind[E, R, S any](s Strategy[E, R], f func(R) Strategy[E, S]) Strategy[E, S] {
	return func(env E) Status[E, S] {
		st := s(env)
		switch st.kind {
		case Valued:
			return f(st.value)(env)
		case UpdatedValue:
			return after(st.env, f(st.value)(st.env))
		}
		return recast[E, R, S](st)
	}
}

// Bind is the same-type form of the package-level Bind.
func (s Strategy[E, R]) Bind(f func(R) Strategy[E, R]) Strategy[E, R] {
	return Bind(s, f)
}

// Map transforms the value carried by s.
func Map[E, R, S any](f func(R) S, s Strategy[E, R]) Strategy[E, S] {
	return func(env E) Status[E, S] {
		st := s(env)
		switch st.kind {
		case Valued, UpdatedValue:
			return Status[E, S]{kind: st.kind, env: st.env, value: f(st.value)}
		}
		return recast[E, R, S](st)
	}
}

// Map is the same-type form of the package-level Map.
func (s Strategy[E, R]) Map(f func(R) R) Strategy[E, R] {
	return Map(f, s)
}

// Forget drops the value of an UpdatedValue outcome, reporting Updated.
// Other outcomes pass through.
func Forget[E, R any](s Strategy[E, R]) Strategy[E, R] {
	return func(env E) Status[E, R] {
		st := s(env)
		if st.kind == UpdatedValue {
			return Status[E, R]{kind: Updated, env: st.env}
		}
		return st
	}
}

// Alternative runs s1 and, if it contradicts or aborts, runs s2 against the
// original environment instead.
func Alternative[E, R any](s1, s2 Strategy[E, R]) Strategy[E, R] {
	return func(env E) Status[E, R] {
		if st := s1(env); !st.Failed() {
			return st
		}
		return s2(env)
	}
}

// FirstOf tries each strategy in order against the same environment and
// returns the first outcome that is not a failure. If all fail, the result is
// a contradiction only when every strategy contradicted; otherwise it is the
// first abort, since an aborted branch proves nothing about the environment.
func FirstOf[E, R any](ss ...Strategy[E, R]) Strategy[E, R] {
	return func(env E) Status[E, R] {
		var (
			aborted  *Status[E, R]
			conflict = Status[E, R]{kind: Contradicted}
		)
		for _, s := range ss {
			st := s(env)
			switch st.kind {
			case Aborted:
				if aborted == nil {
					aborted = &st
				}
			case Contradicted:
				conflict = st
			default:
				return st
			}
		}
		if aborted != nil {
			return *aborted
		}
		return conflict
	}
}

// AndThen chains two passes. If s1 reports Updated, s2 runs against the
// updated environment; if s1 aborts, s2 runs against the original one. Any
// other outcome of s1 is returned as is.
func AndThen[E, R any](s1, s2 Strategy[E, R]) Strategy[E, R] {
	return func(env E) Status[E, R] {
		st := s1(env)
		switch st.kind {
		case Updated:
			return after(st.env, s2(st.env))
		case Aborted:
			return s2(env)
		}
		return st
	}
}

// Fixpoint ties the knot: step receives the resulting strategy as recall and
// may invoke it to recurse. Recursion is unbounded; see FixpointN.
func Fixpoint[E, R any](step func(recall Strategy[E, R], env E) Strategy[E, R]) Strategy[E, R] {
	return FixpointN(0, step)
}

// FixpointN is Fixpoint with a limit on the nesting depth of recall. When
// recall would exceed limit levels the strategy aborts. A limit of zero means
// no limit.
func FixpointN[E, R any](limit int, step func(recall Strategy[E, R], env E) Strategy[E, R]) Strategy[E, R] {
	var at func(depth int) Strategy[E, R]
	at = func(depth int) Strategy[E, R] {
		return func(env E) Status[E, R] {
			if limit > 0 && depth > limit {
				return Status[E, R]{kind: Aborted, msg: fmt.Sprintf("fixpoint: recursion limit %d reached", limit)}
			}
			return step(at(depth+1), env)(env)
		}
	}
	return at(0)
}

// Bound limits Stabilize.
type Bound[E any] struct {
	// Equal, if set, stops iteration once an update leaves the environment
	// unchanged.
	Equal func(a, b E) bool
	// MaxIterations aborts after that many runs of the strategy. Zero means
	// no limit.
	MaxIterations int
}

// Stabilize reruns s against its own output while it reports Updated.
func Stabilize[E, R any](s Strategy[E, R]) Strategy[E, R] {
	return StabilizeWith(s, Bound[E]{})
}

// StabilizeWith is Stabilize with an equality test and an iteration limit.
// The loop is iterative, so long runs do not grow the stack.
func StabilizeWith[E, R any](s Strategy[E, R], b Bound[E]) Strategy[E, R] {
	return func(env E) Status[E, R] {
		var (
			cur     = env
			updated bool
		)
		for n := 1; ; n++ {
			st := s(cur)
			if st.kind != Updated {
				if updated {
					return after(cur, st)
				}
				return st
			}
			if b.Equal != nil && b.Equal(cur, st.env) {
				return st
			}
			cur, updated = st.env, true
			if b.MaxIterations > 0 && n >= b.MaxIterations {
				return Status[E, R]{kind: Aborted, msg: fmt.Sprintf("stabilize: iteration limit %d reached", b.MaxIterations)}
			}
		}
	}
}
