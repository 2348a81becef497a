package handlers

import (
	"context"
	"io"
	"prismora-backend/internal/models"
	"prismora-backend/internal/repo"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memDB backs every fake repository with plain maps.
type memDB struct {
	mu           sync.Mutex
	boards       map[uuid.UUID]models.Board
	prismions    map[uuid.UUID]models.Prismion
	connections  map[uuid.UUID]models.Connection
	participants map[uuid.UUID]models.Participant
	seq          int
}

func newMemDB() *memDB {
	return &memDB{
		boards:       map[uuid.UUID]models.Board{},
		prismions:    map[uuid.UUID]models.Prismion{},
		connections:  map[uuid.UUID]models.Connection{},
		participants: map[uuid.UUID]models.Participant{},
	}
}

// tick hands out strictly increasing timestamps so list order is stable
func (m *memDB) tick() time.Time {
	m.seq++
	return time.Unix(1700000000, 0).Add(time.Duration(m.seq) * time.Millisecond)
}

type fakeBoardRepo struct{ db *memDB }

func (r fakeBoardRepo) CreateBoard(b *models.Board) (uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b.UUID = uuid.New()
	if b.ShareID == uuid.Nil {
		b.ShareID = uuid.New()
	}
	b.CreatedAt = r.db.tick()
	b.UpdatedAt = b.CreatedAt
	r.db.boards[b.UUID] = *b
	return b.UUID, nil
}

func (r fakeBoardRepo) GetBoardByID(id uuid.UUID) (*models.Board, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.boards[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &b, nil
}

func (r fakeBoardRepo) GetBoardByShareID(shareID uuid.UUID) (*models.Board, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, b := range r.db.boards {
		if b.ShareID == shareID {
			return &b, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r fakeBoardRepo) UpdateBoard(id uuid.UUID, updates map[string]interface{}) (*models.Board, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.boards[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if v, ok := updates["title"].(string); ok {
		b.Title = v
	}
	if v, ok := updates["description"].(string); ok {
		b.Description = v
	}
	if v, ok := updates["is_public"].(bool); ok {
		b.IsPublic = v
	}
	r.db.boards[id] = b
	return &b, nil
}

func (r fakeBoardRepo) DeleteBoard(id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.boards[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.db.boards, id)
	for k, p := range r.db.prismions {
		if p.BoardID == id {
			delete(r.db.prismions, k)
		}
	}
	for k, c := range r.db.connections {
		if c.BoardID == id {
			delete(r.db.connections, k)
		}
	}
	for k, p := range r.db.participants {
		if p.BoardID == id {
			delete(r.db.participants, k)
		}
	}
	return nil
}

type fakePrismionRepo struct{ db *memDB }

func (r fakePrismionRepo) CreatePrismion(p *models.Prismion) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	p.CreatedAt = r.db.tick()
	r.db.prismions[p.UUID] = *p
	return nil
}

func (r fakePrismionRepo) GetPrismion(id uuid.UUID) (*models.Prismion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.prismions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (r fakePrismionRepo) ListPrismions(boardID uuid.UUID) ([]models.Prismion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Prismion
	for _, p := range r.db.prismions {
		if p.BoardID == boardID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakePrismionRepo) UpdatePrismion(p *models.Prismion) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.prismions[p.UUID] = *p
	return nil
}

func (r fakePrismionRepo) SavePositions(list []models.Prismion) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range list {
		stored := r.db.prismions[p.UUID]
		stored.Position = p.Position
		r.db.prismions[p.UUID] = stored
	}
	return nil
}

func (r fakePrismionRepo) DeletePrismion(id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.prismions[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.db.prismions, id)
	for k, c := range r.db.connections {
		if c.FromPrismionID == id || c.ToPrismionID == id {
			delete(r.db.connections, k)
		}
	}
	return nil
}

type fakeConnectionRepo struct{ db *memDB }

func (r fakeConnectionRepo) CreateConnection(c *models.Connection) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	c.CreatedAt = r.db.tick()
	r.db.connections[c.UUID] = *c
	return nil
}

func (r fakeConnectionRepo) ListConnections(boardID uuid.UUID) ([]models.Connection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Connection
	for _, c := range r.db.connections {
		if c.BoardID == boardID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakeConnectionRepo) DeleteConnection(id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.connections[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.db.connections, id)
	return nil
}

type fakeParticipantRepo struct{ db *memDB }

func (r fakeParticipantRepo) CreateParticipant(p *models.Participant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p.CreatedAt = r.db.tick()
	p.LastActiveAt = p.CreatedAt
	r.db.participants[p.UUID] = *p
	return nil
}

func (r fakeParticipantRepo) ListParticipants(boardID uuid.UUID) ([]models.Participant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Participant
	for _, p := range r.db.participants {
		if p.BoardID == boardID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeParticipantRepo) UpdatePresence(boardID, id uuid.UUID, updates map[string]interface{}) (*models.Participant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.participants[id]
	if !ok || p.BoardID != boardID {
		return nil, repo.ErrNotFound
	}
	if v, ok := updates["cursor_x"].(float64); ok {
		p.CursorX = v
	}
	if v, ok := updates["cursor_y"].(float64); ok {
		p.CursorY = v
	}
	if v, ok := updates["is_active"].(bool); ok {
		p.IsActive = v
	}
	p.LastActiveAt = r.db.tick()
	r.db.participants[id] = p
	return &p, nil
}

type recordingNotifier struct {
	updates []models.Participant
}

func (n *recordingNotifier) NotifyPresence(p models.Participant) {
	n.updates = append(n.updates, p)
}

// memStore is an in-memory libraries.FileStore
type memStore struct {
	files map[string][]byte
}

func (s *memStore) Save(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.files[objectPath] = b
	return "/uploads/" + objectPath, nil
}
