package boardstate

import (
	"sort"
	"time"

	"prismora-backend/internal/canvas"
	"prismora-backend/internal/models"
)

// InactiveAfter is how long a participant can go without activity before
// being shown as inactive.
const InactiveAfter = 5 * time.Minute

func IsInactive(p models.Participant, now time.Time) bool {
	return now.Sub(p.LastActiveAt) >= InactiveAfter
}

// ActiveParticipants lists participants seen within InactiveAfter of now,
// ordered by user name then id.
func (s *Store) ActiveParticipants(now time.Time) []models.Participant {
	s.mu.RLock()
	out := make([]models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		if !IsInactive(p, now) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UserName != out[j].UserName {
			return out[i].UserName < out[j].UserName
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

// CursorPosition is a participant cursor placed on the canvas.
type CursorPosition struct {
	UserID     string       `json:"userId"`
	ColorToken string       `json:"colorToken"`
	Point      canvas.Point `json:"point"`
}

// RemoteCursors maps the client-space cursors of active participants other
// than self into canvas space for the current viewport.
func (s *Store) RemoteCursors(self string, now time.Time) []CursorPosition {
	v := s.Canvas().Viewport()
	var out []CursorPosition
	for _, p := range s.ActiveParticipants(now) {
		if p.ID() == self {
			continue
		}
		out = append(out, CursorPosition{
			UserID:     p.ID(),
			ColorToken: p.ColorToken,
			Point:      canvas.ClientToCanvas(canvas.Point{X: p.CursorX, Y: p.CursorY}, v),
		})
	}
	return out
}
