package lia

import "fmt"

// Order selects the order in which the search resolves variables.
type Order string

const (
	// OrderName resolves variables in lexical order.
	OrderName Order = "name"
	// OrderOccurrence resolves the variables that occur most often first,
	// breaking ties by name.
	OrderOccurrence Order = "occurrence"
)

// Options configure Solve. The zero value of each limit means no limit, so
// DefaultOptions imposes none: the search may run forever on some inputs.
type Options struct {
	// MaxDepth bounds the nesting of search steps. Exceeding it makes the
	// current branch abort, and a run whose every branch failed with at
	// least one abort answers Unknown.
	MaxDepth int `yaml:"max_depth"`
	// Saturate repeats the initial propagation until it narrows nothing,
	// instead of running a single pass.
	Saturate bool `yaml:"saturate"`
	// MaxRounds bounds the passes made by Saturate.
	MaxRounds int `yaml:"max_rounds"`
	// Order is the variable order; empty means OrderName.
	Order Order `yaml:"order"`

	Tracer Tracer `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{Order: OrderName}
}

// Validate reports option values that Solve cannot use.
func (o Options) Validate() error {
	switch o.Order {
	case "", OrderName, OrderOccurrence:
	default:
		return fmt.Errorf("unknown variable order %q (want %q or %q)", o.Order, OrderName, OrderOccurrence)
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("invalid max depth %d", o.MaxDepth)
	}
	if o.MaxRounds < 0 {
		return fmt.Errorf("invalid max rounds %d", o.MaxRounds)
	}
	return nil
}

// An Option modifies the Options used by Solve.
type Option func(*Options)

// WithOptions replaces all options, keeping an already configured Tracer if
// o has none.
func WithOptions(o Options) Option {
	return func(dst *Options) {
		if o.Tracer == nil {
			o.Tracer = dst.Tracer
		}
		*dst = o
	}
}

func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithSaturation makes the initial propagation run to a fixpoint, aborting
// after maxRounds passes if maxRounds is positive.
func WithSaturation(maxRounds int) Option {
	return func(o *Options) {
		o.Saturate = true
		o.MaxRounds = maxRounds
	}
}

func WithOrder(order Order) Option {
	return func(o *Options) { o.Order = order }
}

func WithTracer(t Tracer) Option {
	return func(o *Options) { o.Tracer = t }
}
