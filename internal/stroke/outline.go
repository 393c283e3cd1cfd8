// Package stroke turns pointer samples into filled freehand stroke outlines
// and keeps the per-page list of vector strokes.
package stroke

import (
	"math"

	"inkpdf/internal/geom"
)

// Sample is one pointer position with its pressure in [0, 1].
type Sample struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"p"`
}

// Point returns the sample position.
func (s Sample) Point() geom.Point { return geom.Pt(s.X, s.Y) }

// Style holds the rendering parameters of a stroke.
type Style struct {
	Color      string  `json:"color"`
	Size       float64 `json:"size"`
	Thinning   float64 `json:"thinning"`
	Smoothing  float64 `json:"smoothing"`
	Streamline float64 `json:"streamline"`
}

// DefaultStyle is a 4px black pen.
func DefaultStyle() Style {
	return Style{Color: "#000000", Size: 4, Thinning: 0.5, Smoothing: 0.5, Streamline: 0.5}
}

const capSegments = 8

type node struct {
	p geom.Point
	r float64
}

// Outline returns the closed polygon enclosing a stroke through samples.
// The last sample is always reached exactly so a stroke ends under the
// pointer; earlier samples are pulled along by the streamline factor and
// averaged by the smoothing factor.
func Outline(samples []Sample, st Style) []geom.Point {
	if len(samples) == 0 {
		return nil
	}
	nodes := streamline(samples, st)
	if len(nodes) == 1 {
		return dot(nodes[0])
	}

	n := len(nodes)
	left := make([]geom.Point, n)
	right := make([]geom.Point, n)
	dirs := make([]geom.Point, n)
	for i := range nodes {
		prev := nodes[max(i-1, 0)].p
		next := nodes[min(i+1, n-1)].p
		d := next.Sub(prev)
		if l := d.Len(); l > 0 {
			d = d.Mul(1 / l)
		} else if i > 0 {
			d = dirs[i-1]
		} else {
			d = geom.Pt(1, 0)
		}
		dirs[i] = d
		normal := geom.Pt(-d.Y, d.X).Mul(nodes[i].r)
		left[i] = nodes[i].p.Add(normal)
		right[i] = nodes[i].p.Sub(normal)
	}

	out := make([]geom.Point, 0, 2*n+2*capSegments+2)
	out = append(out, left...)
	out = append(out, roundCap(nodes[n-1], dirs[n-1], true)...)
	for i := n - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	out = append(out, roundCap(nodes[0], dirs[0], false)...)
	return out
}

func streamline(samples []Sample, st Style) []node {
	t := 0.15 + (1-clamp01(st.Streamline))*0.85
	minGap := 0.5
	pts := make([]node, 0, len(samples))
	cur := samples[0].Point()
	pts = append(pts, node{p: cur, r: radius(st, samples[0].Pressure)})
	last := len(samples) - 1
	for i := 1; i <= last; i++ {
		target := samples[i].Point()
		if i == last {
			cur = target
		} else {
			cur = cur.Lerp(target, t)
		}
		if geom.Distance(cur, pts[len(pts)-1].p) < minGap {
			if i == last {
				pts[len(pts)-1].p = cur
			}
			continue
		}
		pts = append(pts, node{p: cur, r: radius(st, samples[i].Pressure)})
	}

	s := clamp01(st.Smoothing) / 2
	if s > 0 && len(pts) > 2 {
		smoothed := make([]node, len(pts))
		copy(smoothed, pts)
		for i := 1; i < len(pts)-1; i++ {
			avg := pts[i-1].p.Add(pts[i+1].p).Mul(0.5)
			smoothed[i].p = pts[i].p.Lerp(avg, s)
		}
		pts = smoothed
	}
	return pts
}

func radius(st Style, pressure float64) float64 {
	size := st.Size
	if size <= 0 {
		size = 1
	}
	p := clamp01(pressure)
	r := size / 2 * (1 - clamp01(st.Thinning)*(1-2*p))
	return math.Max(r, 0.25)
}

func roundCap(n node, d geom.Point, end bool) []geom.Point {
	theta := math.Atan2(d.Y, d.X)
	from := theta + math.Pi/2
	if !end {
		from = theta - math.Pi/2
	}
	out := make([]geom.Point, 0, capSegments-1)
	for k := 1; k < capSegments; k++ {
		phi := from - math.Pi*float64(k)/capSegments
		out = append(out, geom.Pt(n.p.X+n.r*math.Cos(phi), n.p.Y+n.r*math.Sin(phi)))
	}
	return out
}

func dot(n node) []geom.Point {
	const segs = 16
	out := make([]geom.Point, segs)
	for k := range out {
		phi := 2 * math.Pi * float64(k) / segs
		out[k] = geom.Pt(n.p.X+n.r*math.Cos(phi), n.p.Y+n.r*math.Sin(phi))
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
