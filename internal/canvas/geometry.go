package canvas

import (
	"math"
	"strconv"

	"prismora-backend/internal/models"
)

// ControlOffset is how far Bezier control points sit from their anchor,
// along the port's outward normal.
const ControlOffset = 50.0

// BoundsMargin expands connector bounds on every side.
const BoundsMargin = 10.0

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// PrismionRect returns the card's bounding box.
func PrismionRect(p models.Prismion) Rect {
	return Rect{X: p.Position.X, Y: p.Position.Y, W: p.Size.W, H: p.Size.H}
}

// PaddedRect grows the card's box by padding on each axis, keeping the anchor.
func PaddedRect(p models.Prismion, padding float64) Rect {
	return Rect{X: p.Position.X, Y: p.Position.Y, W: p.Size.W + padding, H: p.Size.H + padding}
}

// Center returns the midpoint of the card.
func Center(p models.Prismion) Point {
	return Point{X: p.Position.X + p.Size.W/2, Y: p.Position.Y + p.Size.H/2}
}

// RectanglesOverlap reports whether a and b share interior area.
// Rectangles that only touch along an edge do not overlap.
func RectanglesOverlap(a, b Rect) bool {
	return a.X < b.X+b.W &&
		a.X+a.W > b.X &&
		a.Y < b.Y+b.H &&
		a.Y+a.H > b.Y
}

func CalculateDistance(p1, p2 Point) float64 {
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
}

// FindClosestPrismion returns the card whose center is nearest to point.
// The first card wins on ties; ok is false for an empty list.
func FindClosestPrismion(point Point, list []models.Prismion) (closest models.Prismion, ok bool) {
	best := math.Inf(1)
	for _, p := range list {
		d := CalculateDistance(point, Center(p))
		if !ok || d < best {
			closest, best, ok = p, d, true
		}
	}
	return closest, ok
}

// CalculatePortPosition returns the midpoint of the card edge named by side.
// Unknown sides resolve to the card center.
func CalculatePortPosition(p models.Prismion, side models.Port) Point {
	x, y, w, h := p.Position.X, p.Position.Y, p.Size.W, p.Size.H
	switch side {
	case models.PortTop:
		return Point{X: x + w/2, Y: y}
	case models.PortRight:
		return Point{X: x + w, Y: y + h/2}
	case models.PortBottom:
		return Point{X: x + w/2, Y: y + h}
	case models.PortLeft:
		return Point{X: x, Y: y + h/2}
	}
	return Center(p)
}

// OptimalPorts is the pair of sides a connector should use.
type OptimalPorts struct {
	FromPort models.Port `json:"fromPort"`
	ToPort   models.Port `json:"toPort"`
}

// FindOptimalPorts picks facing sides based on the dominant axis of the
// center-to-center vector. Equal magnitudes fall through to the vertical pair.
func FindOptimalPorts(from, to models.Prismion) OptimalPorts {
	fc, tc := Center(from), Center(to)
	dx, dy := tc.X-fc.X, tc.Y-fc.Y

	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return OptimalPorts{FromPort: models.PortRight, ToPort: models.PortLeft}
		}
		return OptimalPorts{FromPort: models.PortLeft, ToPort: models.PortRight}
	}
	if dy > 0 {
		return OptimalPorts{FromPort: models.PortBottom, ToPort: models.PortTop}
	}
	return OptimalPorts{FromPort: models.PortTop, ToPort: models.PortBottom}
}

// portNormal is the outward unit direction of a side.
func portNormal(side models.Port) Point {
	switch side {
	case models.PortTop:
		return Point{X: 0, Y: -1}
	case models.PortRight:
		return Point{X: 1, Y: 0}
	case models.PortBottom:
		return Point{X: 0, Y: 1}
	case models.PortLeft:
		return Point{X: -1, Y: 0}
	}
	return Point{}
}

func controlPoint(anchor Point, side models.Port) Point {
	n := portNormal(side)
	return Point{X: anchor.X + n.X*ControlOffset, Y: anchor.Y + n.Y*ControlOffset}
}

// GenerateConnectionPath builds an SVG cubic Bezier path that leaves and
// enters perpendicular to the card edges.
func GenerateConnectionPath(fromPos, toPos Point, fromPort, toPort models.Port) string {
	c1 := controlPoint(fromPos, fromPort)
	c2 := controlPoint(toPos, toPort)
	return "M " + num(fromPos.X) + " " + num(fromPos.Y) +
		" C " + num(c1.X) + " " + num(c1.Y) +
		", " + num(c2.X) + " " + num(c2.Y) +
		", " + num(toPos.X) + " " + num(toPos.Y)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GetConnectorBounds boxes the two endpoints plus BoundsMargin.
// The curve bulge past the endpoints is not included.
func GetConnectorBounds(from, to Point, _ string) Rect {
	minX, maxX := math.Min(from.X, to.X), math.Max(from.X, to.X)
	minY, maxY := math.Min(from.Y, to.Y), math.Max(from.Y, to.Y)
	return Rect{
		X: minX - BoundsMargin,
		Y: minY - BoundsMargin,
		W: maxX - minX + 2*BoundsMargin,
		H: maxY - minY + 2*BoundsMargin,
	}
}
