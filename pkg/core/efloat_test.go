package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGamma(t *testing.T) {
	assert.Equal(t, 0.0, Gamma(0))
	assert.InDelta(t, 3*MachineEpsilon, Gamma(3), 1e-30)
	assert.Greater(t, Gamma(5), Gamma(3))
}

func TestNextFloat(t *testing.T) {
	assert.Greater(t, NextFloatUp(1), 1.0)
	assert.Less(t, NextFloatDown(1), 1.0)
	assert.Greater(t, NextFloatUp(0), 0.0)
	assert.Less(t, NextFloatDown(0), 0.0)
	assert.True(t, math.IsInf(NextFloatUp(math.Inf(1)), 1))
}

func TestEFloat_BoundsContainValue(t *testing.T) {
	a := NewEFloat(1.5, 1e-10)
	b := NewEFloat(-0.25, 1e-12)

	results := map[string]EFloat{
		"add": a.Add(b),
		"sub": a.Sub(b),
		"mul": a.Mul(b),
		"div": a.Div(b),
		"neg": a.Neg(),
		"abs": b.Abs(),
	}
	for name, r := range results {
		t.Run(name, func(t *testing.T) {
			assert.LessOrEqual(t, r.LowerBound(), r.Value())
			assert.GreaterOrEqual(t, r.UpperBound(), r.Value())
		})
	}
}

func TestEFloat_DivisionSpanningZero(t *testing.T) {
	r := Exact(1).Div(NewEFloat(0, 1e-3))
	assert.True(t, math.IsInf(r.LowerBound(), -1))
	assert.True(t, math.IsInf(r.UpperBound(), 1))
}

func TestQuadratic(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  float64
		ok       bool
		t0, t1   float64
	}{
		{"two roots", 1, -3, 2, true, 1, 2},
		{"double root", 1, -2, 1, true, 1, 1},
		{"no real roots", 1, 0, 1, false, 0, 0},
		{"negative a", -1, 0, 4, true, -2, 2},
		{"linear", 0, 2, -4, true, 2, 2},
		{"degenerate", 0, 0, 1, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t0, t1, ok := Quadratic(Exact(tt.a), Exact(tt.b), Exact(tt.c))
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.t0, t0.Value(), 1e-12)
			assert.InDelta(t, tt.t1, t1.Value(), 1e-12)
			assert.LessOrEqual(t, t0.LowerBound(), tt.t0)
			assert.GreaterOrEqual(t, t1.UpperBound(), tt.t1)
		})
	}
}

func TestQuadratic_CancellationStable(t *testing.T) {
	// roots 1e-8 and 1e8; the naive formula loses the small root entirely
	t0, t1, ok := Quadratic(Exact(1), Exact(-(1e8 + 1e-8)), Exact(1))
	require.True(t, ok)
	assert.InEpsilon(t, 1e-8, t0.Value(), 1e-9)
	assert.InEpsilon(t, 1e8, t1.Value(), 1e-9)
}
