package plot

import "github.com/opd-ai/go-plotutils/internal/geom"

// initialPathCap is the capacity of a path buffer on first use. The buffer
// doubles whenever it fills.
const initialPathCap = 16

// Path is the vertex buffer of a path in progress, in user coordinates.
type Path struct {
	Points []geom.Point
	// Closed is set when the path is finished with first == last and at
	// least three vertices.
	Closed bool
}

// Len returns the number of pending vertices.
func (p *Path) Len() int {
	return len(p.Points)
}

func (p *Path) add(pt geom.Point) {
	if len(p.Points) == cap(p.Points) {
		n := 2 * cap(p.Points)
		if n < initialPathCap {
			n = initialPathCap
		}
		grown := make([]geom.Point, len(p.Points), n)
		copy(grown, p.Points)
		p.Points = grown
	}
	p.Points = append(p.Points, pt)
}

// classify sets Closed from the vertex list.
func (p *Path) classify() {
	n := len(p.Points)
	p.Closed = n >= 3 && p.Points[0] == p.Points[n-1]
}

func (p *Path) reset() {
	p.Points = p.Points[:0]
	p.Closed = false
}

// DevicePoints maps the vertices through t.
func (p *Path) DevicePoints(t geom.Transform) []geom.Point {
	out := make([]geom.Point, len(p.Points))
	for i, pt := range p.Points {
		out[i] = t.ToDevice(pt)
	}
	return out
}
