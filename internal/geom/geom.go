// Package geom provides the small amount of plane geometry the annotation
// tools need: distances, ray angles, angle folding and integer-degree snapping.
//
// All angles are in degrees and measured in canvas space, where y grows
// downwards, so positive angles turn clockwise on screen.
package geom

import "math"

// Point is a position in canvas pixels.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Lerp returns the point a fraction t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Angle returns the direction of the ray from center through p, in degrees
// within [0, 360).
func Angle(center, p Point) float64 {
	return Normalize(math.Atan2(p.Y-center.Y, p.X-center.X) * 180 / math.Pi)
}

// Normalize maps any angle onto [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Sweep returns the raw angular difference from ray a to ray b, in [0, 360).
func Sweep(a, b float64) float64 {
	return Normalize(b - a)
}

// Fold returns the smaller of theta and 360-theta for a sweep in [0, 360).
// The result is always within [0, 180].
func Fold(theta float64) float64 {
	theta = Normalize(theta)
	if theta > 180 {
		return 360 - theta
	}
	return theta
}

// Snap rounds deg to the nearest integer when it lies within tolerance of it.
// The second result reports whether snapping happened.
func Snap(deg, tolerance float64) (float64, bool) {
	r := math.Round(deg)
	if math.Abs(deg-r) <= tolerance {
		return r, true
	}
	return deg, false
}

// PointOnRay returns the point at the given distance from center along the
// ray with direction deg.
func PointOnRay(center Point, deg, radius float64) Point {
	rad := deg * math.Pi / 180
	return Point{center.X + radius*math.Cos(rad), center.Y + radius*math.Sin(rad)}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Interpolate returns the samples strictly between from and to, spaced step
// apart. It returns nil when the two points are closer than step.
func Interpolate(from, to Point, step float64) []Point {
	d := Distance(from, to)
	if step <= 0 || d <= step {
		return nil
	}
	n := int(math.Floor(d / step))
	if float64(n)*step >= d {
		n--
	}
	out := make([]Point, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, from.Lerp(to, float64(i)*step/d))
	}
	return out
}

// Angular describes a two-ray construction (protractor or arc) resolved
// against a snapping tolerance.
type Angular struct {
	Start    float64 // direction of the first ray
	End      float64 // direction of the second ray, after snapping
	Sweep    float64 // End-Start in [0, 360)
	Display  float64 // folded angle in [0, 180], after snapping
	Snapped  bool
	Endpoint Point // end of the second ray at the pointer's radius
}

// ResolveAngle computes the displayed angle between the ray center→first and
// the ray center→pointer. When the folded angle is within tolerance of an
// integer degree, the second ray is rotated onto that integer angle and the
// endpoint recomputed at the pointer's original radius.
func ResolveAngle(center, first, pointer Point, tolerance float64) Angular {
	a1 := Angle(center, first)
	a2 := Angle(center, pointer)
	theta := Sweep(a1, a2)
	display := Fold(theta)
	res := Angular{Start: a1, End: a2, Sweep: theta, Display: display, Endpoint: pointer}

	snapped, ok := Snap(display, tolerance)
	if !ok {
		return res
	}
	end := a1 + snapped
	if theta > 180 {
		end = a1 - snapped
	}
	end = Normalize(end)
	res.End = end
	res.Sweep = Sweep(a1, end)
	res.Display = snapped
	res.Snapped = true
	res.Endpoint = PointOnRay(center, end, Distance(center, pointer))
	return res
}

// MinorArc returns the start and end directions to draw the arc between
// rays a and b that never exceeds 180 degrees. The returned pair always
// sweeps in increasing angle from start to end. A sweep of exactly 180
// degrees keeps the direct direction.
func MinorArc(a, b float64) (start, end float64) {
	theta := Sweep(a, b)
	if theta <= 180 {
		return a, a + theta
	}
	return b, b + (360 - theta)
}
