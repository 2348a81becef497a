package boardstate

import (
	"errors"
	"sort"
	"sync"

	"prismora-backend/internal/canvas"
	"prismora-backend/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotConnecting       = errors.New("no connection is being drafted")
	ErrSelfConnection      = errors.New("cannot connect a prismion to itself")
	ErrUnknownPrismion     = errors.New("prismion not found")
	ErrDuplicateConnection = errors.New("prismions are already connected")
)

// Endpoint is one side of a connection: a card and one of its ports.
type Endpoint struct {
	PrismionID string      `json:"prismionId"`
	Port       models.Port `json:"port"`
}

type CanvasState struct {
	Zoom                 float64      `json:"zoom"`
	Pan                  canvas.Point `json:"pan"`
	SelectedPrismionIDs  []string     `json:"selectedPrismionIds"`
	SelectedConnectorIDs []string     `json:"selectedConnectorIds"`
	IsDragging           bool         `json:"isDragging"`
	IsConnecting         bool         `json:"isConnecting"`
	ConnectingFrom       *Endpoint    `json:"connectingFrom"`
}

// Viewport returns the pan/zoom part of the state.
func (c CanvasState) Viewport() canvas.Viewport {
	return canvas.Viewport{Pan: c.Pan, Zoom: c.Zoom}
}

type ContextMenu struct {
	Open     bool         `json:"open"`
	Position canvas.Point `json:"position"`
}

// UIState holds overlay flags and the presenter fields. An empty
// PresenterUserID means nobody is presenting.
type UIState struct {
	InspectorOpen      bool             `json:"inspectorOpen"`
	MergeDrawerOpen    bool             `json:"mergeDrawerOpen"`
	CommandPaletteOpen bool             `json:"commandPaletteOpen"`
	ContextMenu        ContextMenu      `json:"contextMenu"`
	PresenterMode      bool             `json:"presenterMode"`
	PresenterUserID    string           `json:"presenterUserId"`
	PresenterView      *canvas.Viewport `json:"presenterView"`
	FollowingPresenter bool             `json:"followingPresenter"`
}

type ChangeKind string

const (
	ChangeCanvas       ChangeKind = "canvas"
	ChangeUI           ChangeKind = "ui"
	ChangePrismions    ChangeKind = "prismions"
	ChangeConnections  ChangeKind = "connections"
	ChangeParticipants ChangeKind = "participants"
)

// Change tells listeners which slice of the state was replaced.
type Change struct {
	Kind ChangeKind
}

type Listener func(Change)

// Store is the view state of a single board. Each board view owns its own
// Store; mutations are synchronous and listeners run after the write lock
// is released.
type Store struct {
	boardID uuid.UUID

	mu           sync.RWMutex
	canvas       CanvasState
	ui           UIState
	prismions    map[string]models.Prismion
	prismionIDs  []string // insertion order of prismions
	connections  map[string]models.Connection
	participants map[string]models.Participant

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

func NewStore(boardID uuid.UUID) *Store {
	return &Store{
		boardID:      boardID,
		canvas:       CanvasState{Zoom: 1},
		prismions:    make(map[string]models.Prismion),
		connections:  make(map[string]models.Connection),
		participants: make(map[string]models.Participant),
		listeners:    make(map[int]Listener),
	}
}

func (s *Store) BoardID() uuid.UUID {
	return s.boardID
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(kind ChangeKind) {
	s.listenersMu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(Change{Kind: kind})
	}
}

func (s *Store) updateCanvas(fn func(c *CanvasState)) {
	s.mu.Lock()
	fn(&s.canvas)
	s.mu.Unlock()
	s.notify(ChangeCanvas)
}

func (s *Store) updateUI(fn func(u *UIState)) {
	s.mu.Lock()
	fn(&s.ui)
	s.mu.Unlock()
	s.notify(ChangeUI)
}

// Canvas returns a copy of the canvas state.
func (s *Store) Canvas() CanvasState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.canvas
	c.SelectedPrismionIDs = cloneIDs(c.SelectedPrismionIDs)
	c.SelectedConnectorIDs = cloneIDs(c.SelectedConnectorIDs)
	if c.ConnectingFrom != nil {
		from := *c.ConnectingFrom
		c.ConnectingFrom = &from
	}
	return c
}

// UI returns a copy of the UI state.
func (s *Store) UI() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.ui
	if u.PresenterView != nil {
		v := *u.PresenterView
		u.PresenterView = &v
	}
	return u
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// view

// SetPan overwrites the pan offset.
func (s *Store) SetPan(pan canvas.Point) {
	s.updateCanvas(func(c *CanvasState) { c.Pan = pan })
}

// SetZoom overwrites the zoom. Callers clamp; see canvas.ClampZoom.
func (s *Store) SetZoom(zoom float64) {
	s.updateCanvas(func(c *CanvasState) { c.Zoom = zoom })
}

// CanvasPoint maps a client-space pointer position into canvas space using
// the current pan and zoom.
func (s *Store) CanvasPoint(client canvas.Point) canvas.Point {
	s.mu.RLock()
	v := s.canvas.Viewport()
	s.mu.RUnlock()
	return canvas.ClientToCanvas(client, v)
}

// selection

func (s *Store) SetSelectedPrismionIDs(ids []string) {
	ids = cloneIDs(ids)
	s.updateCanvas(func(c *CanvasState) { c.SelectedPrismionIDs = ids })
}

func (s *Store) SetSelectedConnectorIDs(ids []string) {
	ids = cloneIDs(ids)
	s.updateCanvas(func(c *CanvasState) { c.SelectedConnectorIDs = ids })
}

// interaction mode

func (s *Store) SetIsDragging(v bool) {
	s.updateCanvas(func(c *CanvasState) { c.IsDragging = v })
}

func (s *Store) SetIsConnecting(v bool) {
	s.updateCanvas(func(c *CanvasState) { c.IsConnecting = v })
}

func (s *Store) SetConnectingFrom(from *Endpoint) {
	if from != nil {
		e := *from
		from = &e
	}
	s.updateCanvas(func(c *CanvasState) { c.ConnectingFrom = from })
}

// BeginConnecting starts a drag-to-connect gesture from a card port.
func (s *Store) BeginConnecting(from Endpoint) {
	s.updateCanvas(func(c *CanvasState) {
		c.IsConnecting = true
		c.ConnectingFrom = &from
	})
}

func (s *Store) CancelConnecting() {
	s.updateCanvas(func(c *CanvasState) {
		c.IsConnecting = false
		c.ConnectingFrom = nil
	})
}

// CompleteConnecting ends the drafting gesture on card toID and records the
// new connection. The target port, and the source port when unset, come from
// canvas.FindOptimalPorts. The gesture is cleared whatever the outcome.
func (s *Store) CompleteConnecting(toID string) (models.Connection, error) {
	s.mu.Lock()
	conn, err := s.completeConnectingLocked(toID)
	s.canvas.IsConnecting = false
	s.canvas.ConnectingFrom = nil
	s.mu.Unlock()

	s.notify(ChangeCanvas)
	if err != nil {
		return models.Connection{}, err
	}
	s.notify(ChangeConnections)
	return conn, nil
}

func (s *Store) completeConnectingLocked(toID string) (models.Connection, error) {
	from := s.canvas.ConnectingFrom
	if !s.canvas.IsConnecting || from == nil {
		return models.Connection{}, ErrNotConnecting
	}
	if from.PrismionID == toID {
		return models.Connection{}, ErrSelfConnection
	}
	src, ok := s.prismions[from.PrismionID]
	if !ok {
		return models.Connection{}, ErrUnknownPrismion
	}
	dst, ok := s.prismions[toID]
	if !ok {
		return models.Connection{}, ErrUnknownPrismion
	}
	if canvas.ConnectionExists(s.connectionListLocked(), from.PrismionID, toID) {
		return models.Connection{}, ErrDuplicateConnection
	}

	ports := canvas.FindOptimalPorts(src, dst)
	fromPort := ports.FromPort
	if from.Port.Valid() {
		fromPort = from.Port
	}
	conn := models.Connection{
		UUID:           uuid.New(),
		BoardID:        s.boardID,
		FromPrismionID: src.UUID,
		FromPort:       fromPort,
		ToPrismionID:   dst.UUID,
		ToPort:         ports.ToPort,
	}
	s.connections[conn.ID()] = conn
	return conn, nil
}

// bulk loaders

// SetPrismions replaces every card. Later duplicates win but keep the slot
// of the first occurrence.
func (s *Store) SetPrismions(list []models.Prismion) {
	m := make(map[string]models.Prismion, len(list))
	ids := make([]string, 0, len(list))
	for _, p := range list {
		if _, dup := m[p.ID()]; !dup {
			ids = append(ids, p.ID())
		}
		m[p.ID()] = p
	}
	s.mu.Lock()
	s.prismions = m
	s.prismionIDs = ids
	s.mu.Unlock()
	s.notify(ChangePrismions)
}

// SetConnections replaces every connection. Later duplicates win.
func (s *Store) SetConnections(list []models.Connection) {
	m := make(map[string]models.Connection, len(list))
	for _, c := range list {
		m[c.ID()] = c
	}
	s.mu.Lock()
	s.connections = m
	s.mu.Unlock()
	s.notify(ChangeConnections)
}

// SetParticipants replaces every presence record. Later duplicates win.
func (s *Store) SetParticipants(list []models.Participant) {
	m := make(map[string]models.Participant, len(list))
	for _, p := range list {
		m[p.ID()] = p
	}
	s.mu.Lock()
	s.participants = m
	s.mu.Unlock()
	s.notify(ChangeParticipants)
}

// UpsertParticipant records one presence update.
func (s *Store) UpsertParticipant(p models.Participant) {
	s.mu.Lock()
	s.participants[p.ID()] = p
	s.mu.Unlock()
	s.notify(ChangeParticipants)
}

func (s *Store) RemoveParticipant(id string) {
	s.mu.Lock()
	delete(s.participants, id)
	s.mu.Unlock()
	s.notify(ChangeParticipants)
}

// Prismions returns a copy of the id-keyed card set.
func (s *Store) Prismions() map[string]models.Prismion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Prismion, len(s.prismions))
	for id, p := range s.prismions {
		out[id] = p
	}
	return out
}

func (s *Store) Prismion(id string) (models.Prismion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prismions[id]
	return p, ok
}

// Connections returns the connections ordered by id.
func (s *Store) Connections() []models.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectionListLocked()
}

func (s *Store) connectionListLocked() []models.Connection {
	out := make([]models.Connection, 0, len(s.connections))
	for _, c := range s.connections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Participants returns a copy of the id-keyed presence records.
func (s *Store) Participants() map[string]models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Participant, len(s.participants))
	for id, p := range s.participants {
		out[id] = p
	}
	return out
}

func (s *Store) ConnectionExists(idA, idB string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return canvas.ConnectionExists(s.connectionListLocked(), idA, idB)
}

// card edits

func (s *Store) UpsertPrismion(p models.Prismion) {
	s.mu.Lock()
	if _, ok := s.prismions[p.ID()]; !ok {
		s.prismionIDs = append(s.prismionIDs, p.ID())
	}
	s.prismions[p.ID()] = p
	s.mu.Unlock()
	s.notify(ChangePrismions)
}

func (s *Store) editPrismion(id string, fn func(p *models.Prismion)) bool {
	s.mu.Lock()
	p, ok := s.prismions[id]
	if ok {
		fn(&p)
		s.prismions[id] = p
	}
	s.mu.Unlock()
	if ok {
		s.notify(ChangePrismions)
	}
	return ok
}

// MovePrismion sets the card's top-left anchor.
func (s *Store) MovePrismion(id string, x, y float64) bool {
	return s.editPrismion(id, func(p *models.Prismion) {
		p.Position.X, p.Position.Y = x, y
	})
}

// ResizePrismion sets the card size, never below its minimums.
func (s *Store) ResizePrismion(id string, w, h float64) bool {
	return s.editPrismion(id, func(p *models.Prismion) {
		p.Size.W, p.Size.H = w, h
		p.Size = p.Size.Clamp()
	})
}

// BringToFront stacks the card above every other card.
func (s *Store) BringToFront(id string) bool {
	// editPrismion holds the write lock, so top cannot go stale
	return s.editPrismion(id, func(p *models.Prismion) {
		top := 0
		for _, other := range s.prismions {
			if other.Position.ZIndex > top {
				top = other.Position.ZIndex
			}
		}
		p.Position.ZIndex = top + 1
	})
}

// RemovePrismion deletes the card, its connections, and any selection of
// either.
func (s *Store) RemovePrismion(id string) bool {
	s.mu.Lock()
	if _, ok := s.prismions[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.prismions, id)
	s.prismionIDs = without(s.prismionIDs, func(v string) bool { return v == id })

	removed := make(map[string]bool)
	for cid, c := range s.connections {
		if c.FromPrismionID.String() == id || c.ToPrismionID.String() == id {
			delete(s.connections, cid)
			removed[cid] = true
		}
	}
	s.canvas.SelectedPrismionIDs = without(s.canvas.SelectedPrismionIDs, func(v string) bool { return v == id })
	s.canvas.SelectedConnectorIDs = without(s.canvas.SelectedConnectorIDs, func(v string) bool { return removed[v] })
	if s.canvas.ConnectingFrom != nil && s.canvas.ConnectingFrom.PrismionID == id {
		s.canvas.IsConnecting = false
		s.canvas.ConnectingFrom = nil
	}
	s.mu.Unlock()

	s.notify(ChangePrismions)
	s.notify(ChangeConnections)
	s.notify(ChangeCanvas)
	return true
}

func without(ids []string, drop func(string) bool) []string {
	if ids == nil {
		return nil
	}
	out := ids[:0:0]
	for _, v := range ids {
		if !drop(v) {
			out = append(out, v)
		}
	}
	return out
}

// ResolveOverlaps de-overlaps the stored cards in place of the current set.
// Cards are placed in the order they were added.
func (s *Store) ResolveOverlaps(opts *canvas.ResolveOptions) map[string]models.Prismion {
	s.mu.Lock()
	s.prismions = canvas.ResolveOverlapsByID(s.prismions, s.prismionIDs, opts)
	out := make(map[string]models.Prismion, len(s.prismions))
	for id, p := range s.prismions {
		out[id] = p
	}
	s.mu.Unlock()
	s.notify(ChangePrismions)
	return out
}

// overlays

func (s *Store) ToggleInspector() {
	s.updateUI(func(u *UIState) { u.InspectorOpen = !u.InspectorOpen })
}

func (s *Store) ToggleMergeDrawer() {
	s.updateUI(func(u *UIState) { u.MergeDrawerOpen = !u.MergeDrawerOpen })
}

func (s *Store) ToggleCommandPalette() {
	s.updateUI(func(u *UIState) { u.CommandPaletteOpen = !u.CommandPaletteOpen })
}

func (s *Store) SetContextMenu(open bool, pos canvas.Point) {
	s.updateUI(func(u *UIState) { u.ContextMenu = ContextMenu{Open: open, Position: pos} })
}

// presenter
//
// Only the last value is recorded. Making sure a single user presents at a
// time is up to whoever broadcasts these updates.

func (s *Store) SetPresenterMode(v bool) {
	s.updateUI(func(u *UIState) { u.PresenterMode = v })
}

func (s *Store) SetPresenterUser(userID string) {
	s.updateUI(func(u *UIState) { u.PresenterUserID = userID })
}

func (s *Store) SetPresenterView(view *canvas.Viewport) {
	if view != nil {
		v := *view
		view = &v
	}
	s.updateUI(func(u *UIState) { u.PresenterView = view })
}

func (s *Store) SetFollowingPresenter(v bool) {
	s.updateUI(func(u *UIState) { u.FollowingPresenter = v })
}
