// Package canvas implements the pointer-driven editing surface of a diagram:
// view transform, grid snapping, node dragging and connection drawing.
package canvas

import (
	"math"

	"github.com/meikuraledutech/chainchart"
)

const (
	MinZoom = 0.2
	MaxZoom = 4.0
	// ZoomStep is the scale change per wheel notch.
	ZoomStep = 0.1
	// SnapSize is the world-space grid unit node positions snap to.
	SnapSize = 10.0
	// GridSize is the spacing of the painted background grid.
	GridSize = 20.0
)

// Transform maps world coordinates onto the screen: screen = world*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform of a fresh editing session.
func Identity() Transform {
	return Transform{K: 1}
}

// ScreenToWorld converts a screen point into world space.
func ScreenToWorld(p chainchart.Point, t Transform) chainchart.Point {
	return chainchart.Point{
		X: (p.X - t.X) / t.K,
		Y: (p.Y - t.Y) / t.K,
	}
}

// WorldToScreen converts a world point into screen space.
func WorldToScreen(p chainchart.Point, t Transform) chainchart.Point {
	return chainchart.Point{
		X: p.X*t.K + t.X,
		Y: p.Y*t.K + t.Y,
	}
}

// SnapToGrid rounds v to the nearest multiple of grid.
func SnapToGrid(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapPoint snaps both axes of p independently.
func SnapPoint(p chainchart.Point, grid float64) chainchart.Point {
	return chainchart.Point{X: SnapToGrid(p.X, grid), Y: SnapToGrid(p.Y, grid)}
}

// ClampZoom limits k to [MinZoom, MaxZoom].
func ClampZoom(k float64) float64 {
	return math.Min(math.Max(k, MinZoom), MaxZoom)
}

// ZoomAt scales t by factor around the screen point pivot, keeping the world
// point under the pivot fixed.
func ZoomAt(t Transform, pivot chainchart.Point, factor float64) Transform {
	k := ClampZoom(t.K * factor)
	ratio := k / t.K
	return Transform{
		X: pivot.X - (pivot.X-t.X)*ratio,
		Y: pivot.Y - (pivot.Y-t.Y)*ratio,
		K: k,
	}
}

// Pan shifts t by a screen-space delta.
func Pan(t Transform, dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}
