package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/lanefit/pkg/types"
)

// parallelLanes returns two lines of slope m crossing the bottom of a 224px
// frame at columns q1 and q2.
func parallelLanes(m, q1, q2 float64) types.FullLabel {
	return types.FullLabel{M1: m, M2: m, B1: 224 - m*q1, B2: 224 - m*q2}
}

func TestParametricRoundTrip(t *testing.T) {
	for _, m := range []float64{-6, -1.8, 2, 3.5, 50} {
		p, err := ToParametric(m, 35, 224)
		require.NoError(t, err)
		gotM, gotB, err := FromParametric(p, 224)
		require.NoError(t, err)
		assert.InDelta(t, m, gotM, 1e-9)
		assert.InDelta(t, 35.0, gotB, 1e-9)
	}
}

func TestParametricDegenerate(t *testing.T) {
	_, err := ToParametric(0, 10, 224)
	assert.ErrorIs(t, err, types.ErrGeometryDegenerate)

	_, _, err = FromParametric(Parametric{W: 0, Q: 100}, 224)
	assert.ErrorIs(t, err, types.ErrGeometryDegenerate)
}

func TestReducedEncodeDecode(t *testing.T) {
	c := newTestCodec(t)
	lanes := parallelLanes(3, 63, 159)

	target, err := c.Encode(lanes, types.IdentityFrame(224), types.VariantReduced)
	require.NoError(t, err)
	reduced, ok := target.(types.ReducedLabel)
	require.True(t, ok)
	assert.Len(t, reduced.Values(), 3)

	cal := DefaultCalibration()
	assert.InDelta(t, cal.W1.Normalize(1.0/3.0), reduced.W1, 1e-12)
	assert.InDelta(t, cal.Q1.Normalize(63), reduced.Q1, 1e-9)
	assert.InDelta(t, cal.Q2.Normalize(159), reduced.Q2, 1e-9)
	for _, v := range reduced.Values() {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}

	got, err := c.Decode(reduced)
	require.NoError(t, err)
	assert.InDelta(t, lanes.M1, got.M1, 1e-9)
	assert.InDelta(t, lanes.M2, got.M2, 1e-9)
	assert.InDelta(t, lanes.B1, got.B1, 1e-6)
	assert.InDelta(t, lanes.B2, got.B2, 1e-6)
}

func TestReducedDropsSecondWeight(t *testing.T) {
	c := newTestCodec(t)
	// The second line is steeper; only the first weight survives.
	lanes := types.FullLabel{M1: 2, M2: 4, B1: 224 - 2*60, B2: 224 - 4*150}

	target, err := c.Encode(lanes, types.IdentityFrame(224), types.VariantReduced)
	require.NoError(t, err)

	got, err := c.Decode(target)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got.M1, 1e-9)
	assert.InDelta(t, 2.0, got.M2, 1e-9, "second slope is rebuilt from the first")
}

func TestReducedHorizontalLine(t *testing.T) {
	c := newTestCodec(t)
	_, err := c.Encode(types.FullLabel{M1: 0, M2: 1, B1: 100, B2: 0}, types.IdentityFrame(224), types.VariantReduced)
	assert.ErrorIs(t, err, types.ErrGeometryDegenerate)
}

func TestReducedFromRaw(t *testing.T) {
	l, err := ReducedFromRaw(0.25, 63, 159, 224)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, l.M1, 1e-12)
	assert.InDelta(t, 4.0, l.M2, 1e-12)
	assert.InDelta(t, 224-4*63.0, l.B1, 1e-9)
	assert.InDelta(t, 224-4*159.0, l.B2, 1e-9)
}

func TestIntervalNormalize(t *testing.T) {
	iv := Interval{Min: 50.52, Max: 76.89}
	assert.InDelta(t, -1.0, iv.Normalize(50.52), 1e-12)
	assert.InDelta(t, 1.0, iv.Normalize(76.89), 1e-12)
	assert.InDelta(t, 63.0, iv.Denormalize(iv.Normalize(63)), 1e-12)
}
