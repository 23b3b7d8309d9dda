package tickmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBoundaryTicksScenario(t *testing.T) {
	bounds, err := ResolveBoundaryTicks(200, 60)
	require.NoError(t, err)
	assert.Equal(t, BoundaryTicks{Lower: 180, Upper: 240}, bounds)

	assert.Less(t, SqrtPriceAtTick(180), SqrtPriceAtTick(200))
	assert.Less(t, SqrtPriceAtTick(200), SqrtPriceAtTick(240))
}

func TestResolveBoundaryTicksProperties(t *testing.T) {
	spacings := []int32{1, 10, 60, 200}
	ticks := []int32{-887272, -200311, -61, -60, -59, -1, 0, 1, 59, 60, 61, 195000, 887272}

	for _, s := range spacings {
		for _, tick := range ticks {
			bounds, err := ResolveBoundaryTicks(tick, s)
			require.NoError(t, err)
			assert.Zero(t, bounds.Lower%s, "tick=%d spacing=%d", tick, s)
			assert.Equal(t, bounds.Lower+s, bounds.Upper, "tick=%d spacing=%d", tick, s)
			assert.LessOrEqual(t, bounds.Lower, tick, "tick=%d spacing=%d", tick, s)
			assert.Less(t, tick, bounds.Upper, "tick=%d spacing=%d", tick, s)
		}
	}
}

func TestResolveBoundaryTicksNegativeFloors(t *testing.T) {
	bounds, err := ResolveBoundaryTicks(-59, 60)
	require.NoError(t, err)
	assert.Equal(t, BoundaryTicks{Lower: -60, Upper: 0}, bounds)

	bounds, err = ResolveBoundaryTicks(-60, 60)
	require.NoError(t, err)
	assert.Equal(t, BoundaryTicks{Lower: -60, Upper: 0}, bounds)
}

func TestResolveBoundaryTicksOutOfInt32Range(t *testing.T) {
	cases := []struct {
		tick    int32
		spacing int32
	}{
		{math.MinInt32, 60},
		{math.MinInt32 + 1, 200},
		{math.MaxInt32, 60},
	}
	for _, tc := range cases {
		bounds, err := ResolveBoundaryTicks(tc.tick, tc.spacing)
		require.ErrorIs(t, err, ErrInvalidPriceRange, "tick=%d spacing=%d", tc.tick, tc.spacing)
		assert.Equal(t, BoundaryTicks{}, bounds)
	}

	bounds, err := ResolveBoundaryTicks(math.MinInt32, 1)
	require.NoError(t, err)
	assert.Equal(t, BoundaryTicks{Lower: math.MinInt32, Upper: math.MinInt32 + 1}, bounds)
}

func TestResolveBoundaryTicksInvalidSpacing(t *testing.T) {
	for _, s := range []int32{0, -10} {
		bounds, err := ResolveBoundaryTicks(200, s)
		require.ErrorIs(t, err, ErrInvalidSpacing)
		assert.Equal(t, BoundaryTicks{}, bounds)
	}
}

func TestSqrtPriceMatchesPrice(t *testing.T) {
	for _, tick := range []int32{-80000, -12345, -1, 0, 1, 200, 12345, 80000} {
		got := SqrtPriceAtTick(tick)
		want := math.Sqrt(PriceAtTick(tick))
		assert.InEpsilon(t, want, got, 1e-12, "tick=%d", tick)
	}
	assert.Equal(t, 1.0, PriceAtTick(0))
	assert.InDelta(t, 1.0001, PriceAtTick(1), 1e-15)
}

func TestSqrtPriceStrictlyIncreasing(t *testing.T) {
	prev := SqrtPriceAtTick(-50000)
	for tick := int32(-49999); tick <= 50000; tick += 7 {
		cur := SqrtPriceAtTick(tick)
		require.Greater(t, cur, prev, "tick=%d", tick)
		prev = cur
	}
}

func TestSqrtPriceStableAtExtremes(t *testing.T) {
	for _, tick := range []int32{-887272, 887272} {
		v := SqrtPriceAtTick(tick)
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v) || v <= 0, "tick=%d value=%v", tick, v)
	}
}

func TestSqrtPriceBoundsAt(t *testing.T) {
	bounds, err := SqrtPriceBoundsAt(200, BoundaryTicks{Lower: 180, Upper: 240})
	require.NoError(t, err)
	assert.Less(t, bounds.Lower, bounds.Current)
	assert.Less(t, bounds.Current, bounds.Upper)

	_, err = SqrtPriceBoundsAt(240, BoundaryTicks{Lower: 180, Upper: 240})
	require.ErrorIs(t, err, ErrInvalidPriceRange)
}
