// Package interval implements the integer interval lattice used to describe
// partial knowledge about the value of an integer term.
//
// An Interval is one of Empty, Full, AtMost(n), AtLeast(n) or a closed range
// [lo, hi]. Values are canonical: a closed range with lo > hi is never
// observed, it is always normalized to Empty, so two intervals denote the same
// set exactly when they are ==.
package interval

import "fmt"

type shape uint8

const (
	empty shape = iota // zero value: Interval{} is Empty
	full
	atMost
	atLeast
	closed
)

// An Interval is a convex set of integers.
type Interval struct {
	shape shape
	lo    int // valid for atLeast and closed
	hi    int // valid for atMost and closed
}

var (
	// Empty contains no integers.
	Empty = Interval{}
	// Full contains every integer.
	Full = Interval{shape: full}
)

// AtMost returns (-∞, n].
func AtMost(n int) Interval { return Interval{shape: atMost, hi: n} }

// AtLeast returns [n, +∞).
func AtLeast(n int) Interval { return Interval{shape: atLeast, lo: n} }

// Range returns [lo, hi], or Empty if lo > hi.
func Range(lo, hi int) Interval {
	return Interval{shape: closed, lo: lo, hi: hi}.Normalize()
}

// Singleton returns [v, v].
func Singleton(v int) Interval { return Range(v, v) }

// Normalize collapses a closed range whose bounds cross to Empty.
func (i Interval) Normalize() Interval {
	if i.shape == closed && i.lo > i.hi {
		return Empty
	}
	return i
}

func (i Interval) IsEmpty() bool { return i.shape == empty }

func (i Interval) IsFull() bool { return i.shape == full }

// IsSingleton reports whether i contains exactly one integer.
func (i Interval) IsSingleton() bool { return i.shape == closed && i.lo == i.hi }

func (i Interval) Equal(o Interval) bool { return i == o }

// Contains reports whether v is a member of i.
func (i Interval) Contains(v int) bool {
	lo, hasLo, hi, hasHi := i.bounds()
	if i.shape == empty {
		return false
	}
	return (!hasLo || lo <= v) && (!hasHi || v <= hi)
}

// Subset reports whether every member of i is a member of o.
func (i Interval) Subset(o Interval) bool {
	return i.Intersect(o) == i
}

// bounds decomposes i into optional lower and upper bounds. It must not be
// called on Empty except by callers that check for it separately.
func (i Interval) bounds() (lo int, hasLo bool, hi int, hasHi bool) {
	switch i.shape {
	case atMost:
		return 0, false, i.hi, true
	case atLeast:
		return i.lo, true, 0, false
	case closed:
		return i.lo, true, i.hi, true
	}
	return 0, false, 0, false
}

func fromBounds(lo int, hasLo bool, hi int, hasHi bool) Interval {
	switch {
	case hasLo && hasHi:
		return Range(lo, hi)
	case hasLo:
		return AtLeast(lo)
	case hasHi:
		return AtMost(hi)
	}
	return Full
}

// Add returns the set of all sums a+b with a in x and b in y. A bound survives
// only when both operands carry it.
func Add(x, y Interval) Interval {
	if x.shape == empty || y.shape == empty {
		return Empty
	}
	xlo, xhasLo, xhi, xhasHi := x.bounds()
	ylo, yhasLo, yhi, yhasHi := y.bounds()
	return fromBounds(xlo+ylo, xhasLo && yhasLo, xhi+yhi, xhasHi && yhasHi)
}

// Intersect returns the lattice meet of x and y.
func Intersect(x, y Interval) Interval {
	if x.shape == empty || y.shape == empty {
		return Empty
	}
	xlo, xhasLo, xhi, xhasHi := x.bounds()
	ylo, yhasLo, yhi, yhasHi := y.bounds()
	lo, hi := xlo, xhi
	if !xhasLo || (yhasLo && ylo > lo) {
		lo = ylo
	}
	if !xhasHi || (yhasHi && yhi < hi) {
		hi = yhi
	}
	return fromBounds(lo, xhasLo || yhasLo, hi, xhasHi || yhasHi)
}

// Intersect is shorthand for Intersect(i, o).
func (i Interval) Intersect(o Interval) Interval { return Intersect(i, o) }

// Negate reflects i around zero.
func (i Interval) Negate() Interval {
	if i.shape == empty {
		return Empty
	}
	lo, hasLo, hi, hasHi := i.bounds()
	return fromBounds(-hi, hasHi, -lo, hasLo)
}

// Sub returns Add(x, y.Negate()).
func Sub(x, y Interval) Interval { return Add(x, y.Negate()) }

// InverseOfSum narrows the operands of a sum: if x+y must lie in target, then
// the first operand lies in target-y and the second in target-x. The results
// are not intersected with x and y.
func InverseOfSum(x, y, target Interval) (Interval, Interval) {
	return Sub(target, y), Sub(target, x)
}

// Split divides i into two strictly smaller intervals whose union is i.
// If i holds a single value there is nothing to split and ok is false;
// the value is i.Peek(). Split panics on Empty.
func (i Interval) Split() (left, right Interval, ok bool) {
	switch i.shape {
	case empty:
		panic("interval: split of empty interval")
	case full:
		return AtMost(0), AtLeast(1), true
	case atMost:
		return AtMost(i.hi - 1), Singleton(i.hi), true
	case atLeast:
		return Singleton(i.lo), AtLeast(i.lo + 1), true
	}
	if i.lo == i.hi {
		return i, Empty, false
	}
	mid := i.lo + (i.hi-i.lo)/2
	return Range(i.lo, mid), Range(mid+1, i.hi), true
}

// Peek returns a representative member of i: 0 for Full, the single bound of
// a half-open interval, or the lower bound of a closed range. Peek panics on
// Empty.
func (i Interval) Peek() int {
	switch i.shape {
	case empty:
		panic("interval: peek of empty interval")
	case full:
		return 0
	case atMost:
		return i.hi
	}
	return i.lo
}

func (i Interval) String() string {
	switch i.shape {
	case empty:
		return "∅"
	case full:
		return "ℤ"
	case atMost:
		return fmt.Sprintf("(-∞, %d]", i.hi)
	case atLeast:
		return fmt.Sprintf("[%d, +∞)", i.lo)
	}
	return fmt.Sprintf("[%d, %d]", i.lo, i.hi)
}
