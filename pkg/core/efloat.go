package core

import (
	"fmt"
	"math"
)

// EFloat is a float64 carrying a conservative interval [low, high]
// that contains the exact result of the computation that produced it.
type EFloat struct {
	v, low, high float64
}

// NewEFloat creates an EFloat with value v and absolute error err
func NewEFloat(v, err float64) EFloat {
	if err == 0 {
		return EFloat{v: v, low: v, high: v}
	}
	return EFloat{v: v, low: NextFloatDown(v - err), high: NextFloatUp(v + err)}
}

// Exact wraps a value known without error
func Exact(v float64) EFloat {
	return EFloat{v: v, low: v, high: v}
}

// Value returns the computed value
func (e EFloat) Value() float64 { return e.v }

// LowerBound returns the lower end of the error interval
func (e EFloat) LowerBound() float64 { return e.low }

// UpperBound returns the upper end of the error interval
func (e EFloat) UpperBound() float64 { return e.high }

// AbsoluteError returns the width of the interval above its value,
// the larger of the two one-sided errors
func (e EFloat) AbsoluteError() float64 {
	return NextFloatUp(math.Max(math.Abs(e.high-e.v), math.Abs(e.v-e.low)))
}

// Add returns e+o
func (e EFloat) Add(o EFloat) EFloat {
	return EFloat{
		v:    e.v + o.v,
		low:  NextFloatDown(e.low + o.low),
		high: NextFloatUp(e.high + o.high),
	}
}

// Sub returns e-o
func (e EFloat) Sub(o EFloat) EFloat {
	return EFloat{
		v:    e.v - o.v,
		low:  NextFloatDown(e.low - o.high),
		high: NextFloatUp(e.high - o.low),
	}
}

// Mul returns e*o
func (e EFloat) Mul(o EFloat) EFloat {
	p0, p1, p2, p3 := e.low*o.low, e.high*o.low, e.low*o.high, e.high*o.high
	return EFloat{
		v:    e.v * o.v,
		low:  NextFloatDown(math.Min(math.Min(p0, p1), math.Min(p2, p3))),
		high: NextFloatUp(math.Max(math.Max(p0, p1), math.Max(p2, p3))),
	}
}

// Div returns e/o. A divisor interval spanning zero yields an unbounded interval.
func (e EFloat) Div(o EFloat) EFloat {
	r := EFloat{v: e.v / o.v}
	if o.low < 0 && o.high > 0 {
		r.low, r.high = math.Inf(-1), math.Inf(1)
		return r
	}
	d0, d1, d2, d3 := e.low/o.low, e.high/o.low, e.low/o.high, e.high/o.high
	r.low = NextFloatDown(math.Min(math.Min(d0, d1), math.Min(d2, d3)))
	r.high = NextFloatUp(math.Max(math.Max(d0, d1), math.Max(d2, d3)))
	return r
}

// Neg returns -e
func (e EFloat) Neg() EFloat {
	return EFloat{v: -e.v, low: -e.high, high: -e.low}
}

// Scale multiplies by an exact constant
func (e EFloat) Scale(s float64) EFloat {
	return e.Mul(Exact(s))
}

// Sqrt returns the square root
func (e EFloat) Sqrt() EFloat {
	return EFloat{
		v:    math.Sqrt(e.v),
		low:  NextFloatDown(math.Sqrt(math.Max(0, e.low))),
		high: NextFloatUp(math.Sqrt(e.high)),
	}
}

// Abs returns the absolute value
func (e EFloat) Abs() EFloat {
	switch {
	case e.low >= 0:
		return e
	case e.high <= 0:
		return e.Neg()
	default:
		return EFloat{v: math.Abs(e.v), low: 0, high: math.Max(-e.low, e.high)}
	}
}

func (e EFloat) String() string {
	return fmt.Sprintf("%g [%g, %g]", e.v, e.low, e.high)
}

// Quadratic solves a*t^2 + b*t + c = 0 and returns the roots with t0 <= t1.
// It reports false when there is no real root.
func Quadratic(a, b, c EFloat) (EFloat, EFloat, bool) {
	if a.v == 0 {
		if b.v == 0 {
			return EFloat{}, EFloat{}, false
		}
		t := c.Div(b).Neg()
		return t, t, true
	}

	// b*b - 4*a*c with a single rounding
	discrim := math.FMA(b.v, b.v, -4*a.v*c.v)
	if discrim < 0 {
		return EFloat{}, EFloat{}, false
	}
	rootDiscrim := math.Sqrt(discrim)
	floatRootDiscrim := NewEFloat(rootDiscrim, MachineEpsilon*rootDiscrim)

	var q EFloat
	if b.v < 0 {
		q = b.Sub(floatRootDiscrim).Scale(-0.5)
	} else {
		q = b.Add(floatRootDiscrim).Scale(-0.5)
	}
	t0 := q.Div(a)
	if q.v == 0 {
		return t0, t0, true
	}
	t1 := c.Div(q)
	if t0.v > t1.v {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}
