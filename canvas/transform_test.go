package canvas

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meikuraledutech/chainchart"
)

func TestScreenToWorld(t *testing.T) {
	tr := Transform{X: 100, Y: -40, K: 2}
	w := ScreenToWorld(chainchart.Point{X: 300, Y: 60}, tr)
	assert.Equal(t, chainchart.Point{X: 100, Y: 50}, w)
	assert.Equal(t, chainchart.Point{X: 300, Y: 60}, WorldToScreen(w, tr))
}

func TestSnapToGrid(t *testing.T) {
	assert.Equal(t, 60.0, SnapToGrid(57, 10))
	assert.Equal(t, 50.0, SnapToGrid(53, 10))
	assert.Equal(t, -10.0, SnapToGrid(-12, 10))
	assert.Equal(t, 7.3, SnapToGrid(7.3, 0))
}

func TestSnapToGrid_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := (rng.Float64() - 0.5) * 1e6
		g := rng.Float64()*50 + 0.5
		once := SnapToGrid(v, g)
		assert.Equal(t, once, SnapToGrid(once, g), "v=%v g=%v", v, g)
	}
}

func TestZoomAt_Scenario(t *testing.T) {
	pivot := chainchart.Point{X: 400, Y: 300}
	before := ScreenToWorld(pivot, Identity())

	tr := ZoomAt(Identity(), pivot, 1.1)

	assert.InDelta(t, 1.1, tr.K, 1e-12)
	after := WorldToScreen(before, tr)
	assert.InDelta(t, 400, after.X, 1e-9)
	assert.InDelta(t, 300, after.Y, 1e-9)
}

func TestZoomAt_PivotInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		tr := Transform{
			X: (rng.Float64() - 0.5) * 4000,
			Y: (rng.Float64() - 0.5) * 4000,
			K: MinZoom + rng.Float64()*(MaxZoom-MinZoom),
		}
		pivot := chainchart.Point{X: rng.Float64() * 1920, Y: rng.Float64() * 1080}
		factor := 0.1 + rng.Float64()*3

		before := ScreenToWorld(pivot, tr)
		after := ScreenToWorld(pivot, ZoomAt(tr, pivot, factor))

		assert.InDelta(t, before.X, after.X, 1e-6)
		assert.InDelta(t, before.Y, after.Y, 1e-6)
	}
}

func TestZoomAt_Clamped(t *testing.T) {
	tr := ZoomAt(Identity(), chainchart.Point{}, 100)
	assert.Equal(t, MaxZoom, tr.K)

	tr = ZoomAt(Identity(), chainchart.Point{}, 0.001)
	assert.Equal(t, MinZoom, tr.K)

	// At the limit the view does not drift.
	tr = Transform{X: 13, Y: 17, K: MaxZoom}
	assert.Equal(t, tr, ZoomAt(tr, chainchart.Point{X: 500, Y: 500}, 1.1))
}

func TestPan(t *testing.T) {
	tr := Pan(Transform{X: 1, Y: 2, K: 3}, 10, -5)
	assert.Equal(t, Transform{X: 11, Y: -3, K: 3}, tr)
}

func TestEdgeCurve(t *testing.T) {
	b := EdgeCurve(chainchart.Point{X: 100, Y: 50}, chainchart.Point{X: 300, Y: 150})
	assert.Equal(t, chainchart.Point{X: 200, Y: 50}, b.C1)
	assert.Equal(t, chainchart.Point{X: 200, Y: 150}, b.C2)
	assert.Equal(t, "M 100 50 C 200 50, 200 150, 300 150", b.Path())

	// Leftward edges use the absolute distance.
	b = EdgeCurve(chainchart.Point{X: 300, Y: 0}, chainchart.Point{X: 100, Y: 0})
	assert.Equal(t, chainchart.Point{X: 400, Y: 0}, b.C1)
	assert.Equal(t, chainchart.Point{X: 0, Y: 0}, b.C2)

	assert.Equal(t, b.Start, b.At(0))
	assert.Equal(t, b.End, b.At(1))
}
