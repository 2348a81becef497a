package canvas

import (
	"math"
	"sort"

	"prismora-backend/internal/models"
)

const (
	DefaultMaxIterations = 100
	DefaultPadding       = 20.0
)

// ResolveOptions tunes the overlap resolver. A nil *ResolveOptions means
// DefaultResolveOptions.
type ResolveOptions struct {
	MaxIterations int
	SnapToGrid    float64
	Padding       float64
	// TargetID, when set, moves only that card; every other card keeps its
	// position and acts as an obstacle.
	TargetID string
}

func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{
		MaxIterations: DefaultMaxIterations,
		Padding:       DefaultPadding,
	}
}

func (o *ResolveOptions) normalized() ResolveOptions {
	if o == nil {
		return DefaultResolveOptions()
	}
	opts := *o
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	return opts
}

// ResolveOverlapsList returns a copy of cards with positions adjusted so the
// padded boxes do not overlap. Cards are placed greedily in slice order; each
// one searches a fixed spiral of offsets around its original position. When
// the search budget runs out the last attempted position is kept.
func ResolveOverlapsList(cards []models.Prismion, opts *ResolveOptions) []models.Prismion {
	o := opts.normalized()
	out := make([]models.Prismion, len(cards))
	copy(out, cards)

	if o.TargetID != "" {
		for i := range out {
			if out[i].ID() != o.TargetID {
				continue
			}
			obstacles := make([]models.Prismion, 0, len(out)-1)
			obstacles = append(obstacles, out[:i]...)
			obstacles = append(obstacles, out[i+1:]...)
			out[i].Position = placeCard(out[i], obstacles, o)
			break
		}
		return out
	}

	for i := range out {
		out[i].Position = placeCard(out[i], out[:i], o)
	}
	return out
}

// ResolveOverlapsByID is ResolveOverlapsList for an id-keyed set. Maps carry
// no order, so order gives the insertion order of the keys; cards are placed
// in that order, exactly as the list form would place them. Ids in order that
// are not in cards are skipped, and cards missing from order go last in
// ascending id order.
func ResolveOverlapsByID(cards map[string]models.Prismion, order []string, opts *ResolveOptions) map[string]models.Prismion {
	ids := make([]string, 0, len(cards))
	listed := make(map[string]bool, len(cards))
	for _, id := range order {
		if _, ok := cards[id]; ok && !listed[id] {
			listed[id] = true
			ids = append(ids, id)
		}
	}
	var rest []string
	for id := range cards {
		if !listed[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	ids = append(ids, rest...)

	list := make([]models.Prismion, len(ids))
	for i, id := range ids {
		list[i] = cards[id]
	}

	resolved := ResolveOverlapsList(list, opts)
	out := make(map[string]models.Prismion, len(resolved))
	for i, id := range ids {
		out[id] = resolved[i]
	}
	return out
}

func placeCard(card models.Prismion, placed []models.Prismion, o ResolveOptions) models.Position {
	origin := card.Position
	pos := origin

	for attempts := 0; attempts < o.MaxIterations && collides(card, pos, placed, o.Padding); attempts++ {
		offset := 10 + float64(attempts)*5
		angle := float64((attempts*45)%360) * math.Pi / 180
		pos.X = origin.X + math.Cos(angle)*offset
		pos.Y = origin.Y + math.Sin(angle)*offset
	}

	if o.SnapToGrid > 0 {
		pos.X = snap(pos.X, o.SnapToGrid)
		pos.Y = snap(pos.Y, o.SnapToGrid)
	}
	return pos
}

func collides(card models.Prismion, pos models.Position, placed []models.Prismion, padding float64) bool {
	card.Position = pos
	r := PaddedRect(card, padding)
	for _, other := range placed {
		if RectanglesOverlap(r, PaddedRect(other, padding)) {
			return true
		}
	}
	return false
}

func snap(v, grid float64) float64 {
	return math.Round(v/grid) * grid
}
