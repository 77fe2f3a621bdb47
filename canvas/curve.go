package canvas

import (
	"fmt"
	"math"
	"strconv"

	"github.com/meikuraledutech/chainchart"
)

// Bezier is a cubic curve from Start to End.
type Bezier struct {
	Start chainchart.Point `json:"start"`
	C1    chainchart.Point `json:"c1"`
	C2    chainchart.Point `json:"c2"`
	End   chainchart.Point `json:"end"`
}

// EdgeCurve returns the S-curve drawn between two port anchors. Both control
// points are pushed horizontally by half the horizontal distance.
func EdgeCurve(start, end chainchart.Point) Bezier {
	c := math.Abs(end.X-start.X) * 0.5
	return Bezier{
		Start: start,
		C1:    chainchart.Point{X: start.X + c, Y: start.Y},
		C2:    chainchart.Point{X: end.X - c, Y: end.Y},
		End:   end,
	}
}

// At evaluates the curve at parameter t in [0, 1].
func (b Bezier) At(t float64) chainchart.Point {
	u := 1 - t
	a, bb, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return chainchart.Point{
		X: a*b.Start.X + bb*b.C1.X + c*b.C2.X + d*b.End.X,
		Y: a*b.Start.Y + bb*b.C1.Y + c*b.C2.Y + d*b.End.Y,
	}
}

// Path renders the curve as an SVG path.
func (b Bezier) Path() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(b.Start.X), num(b.Start.Y),
		num(b.C1.X), num(b.C1.Y),
		num(b.C2.X), num(b.C2.Y),
		num(b.End.X), num(b.End.Y))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// distanceTo approximates the distance from p to the curve by sampling.
func (b Bezier) distanceTo(p chainchart.Point) float64 {
	const steps = 32
	best := math.Inf(1)
	for i := 0; i <= steps; i++ {
		q := b.At(float64(i) / steps)
		if d := math.Hypot(p.X-q.X, p.Y-q.Y); d < best {
			best = d
		}
	}
	return best
}
