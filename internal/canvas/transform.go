package canvas

import "math"

const (
	MinZoom = 0.1
	MaxZoom = 3.0
)

// Viewport is the canvas transform: translate by Pan, then scale by Zoom.
type Viewport struct {
	Pan  Point   `json:"pan" yaml:"pan"`
	Zoom float64 `json:"zoom" yaml:"zoom"`
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// ClientToCanvas maps a pointer position in client space to canvas space.
func ClientToCanvas(client Point, v Viewport) Point {
	z := v.zoom()
	return Point{X: (client.X - v.Pan.X) / z, Y: (client.Y - v.Pan.Y) / z}
}

// CanvasToClient is the forward transform.
func CanvasToClient(p Point, v Viewport) Point {
	z := v.zoom()
	return Point{X: p.X*z + v.Pan.X, Y: p.Y*z + v.Pan.Y}
}

// ClampZoom bounds z to [MinZoom, MaxZoom], the range the toolbar allows.
func ClampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ZoomAt returns the viewport at newZoom that keeps the canvas point under
// anchor (client space) in place.
func (v Viewport) ZoomAt(anchor Point, newZoom float64) Viewport {
	p := ClientToCanvas(anchor, v)
	next := Viewport{Zoom: newZoom}
	z := next.zoom()
	next.Pan = Point{X: anchor.X - p.X*z, Y: anchor.Y - p.Y*z}
	return next
}
