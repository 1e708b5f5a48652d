package lia

import (
	"fmt"
	"io"

	"github.com/kr/pretty"

	"github.com/cespare/lia/interval"
)

type EventKind uint8

const (
	EventDecide EventKind = iota + 1
	EventNarrow
	EventConflict
	EventAbort
	EventModel
)

func (k EventKind) String() string {
	switch k {
	case EventDecide:
		return "decide"
	case EventNarrow:
		return "narrow"
	case EventConflict:
		return "conflict"
	case EventAbort:
		return "abort"
	case EventModel:
		return "model"
	default:
		panic("unreached")
	}
}

// An Event describes one step of the search.
type Event struct {
	Kind     EventKind
	Var      string            // decide, narrow, conflict
	Interval interval.Interval // decide, narrow
	Depth    int
	Message  string // conflict, abort
	Model    Model  // model
	State    State  // the state the step started from
}

// A Tracer observes the search.
type Tracer interface {
	Trace(e Event)
}

type NopTracer struct{}

func (NopTracer) Trace(Event) {}

// LoggingTracer writes one line per event to Writer. If Verbose is set, it
// also dumps the propagation state before every step.
type LoggingTracer struct {
	Writer  io.Writer
	Verbose bool
}

func (t LoggingTracer) Trace(e Event) {
	indent := fmt.Sprintf("%*s", 2*e.Depth, "")
	switch e.Kind {
	case EventDecide:
		fmt.Fprintf(t.Writer, "%sdecide %s = %d\n", indent, e.Var, e.Interval.Peek())
	case EventNarrow:
		fmt.Fprintf(t.Writer, "%snarrow %s ∈ %s\n", indent, e.Var, e.Interval)
	case EventConflict:
		fmt.Fprintf(t.Writer, "%sconflict on %s: %s\n", indent, e.Var, e.Message)
	case EventAbort:
		fmt.Fprintf(t.Writer, "%sabort: %s\n", indent, e.Message)
	case EventModel:
		fmt.Fprintf(t.Writer, "%smodel %s\n", indent, e.Model)
	}
	if t.Verbose && e.Kind != EventModel {
		pretty.Fprintf(t.Writer, "%s  state: %# v\n", indent, e.State)
	}
}
