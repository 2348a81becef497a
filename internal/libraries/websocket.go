package libraries

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"prismora-backend/internal/boardstate"
	"prismora-backend/internal/canvas"
	"prismora-backend/internal/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// WebSocketMessageType names the realtime events exchanged on a board
type WebSocketMessageType string

const (
	WebSocketMessageTypePing           WebSocketMessageType = "ping"
	WebSocketMessageTypePong           WebSocketMessageType = "pong"
	WebSocketMessageTypeError          WebSocketMessageType = "error"
	WebSocketMessageTypeJoin           WebSocketMessageType = "join"
	WebSocketMessageTypeLeave          WebSocketMessageType = "leave"
	WebSocketMessageTypePresence       WebSocketMessageType = "presence"
	WebSocketMessageTypePresenterStart WebSocketMessageType = "presenter_start"
	WebSocketMessageTypePresenterStop  WebSocketMessageType = "presenter_stop"
	WebSocketMessageTypePresenterView  WebSocketMessageType = "presenter_view"
)

var (
	ErrNotJoined        = errors.New("join the board first")
	ErrPresenterActive  = errors.New("another user is presenting")
	ErrNotPresenter     = errors.New("only the presenter can do that")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidBoardID   = errors.New("invalid board id")
	ErrMissingPayload   = errors.New("payload is required")
	ErrUnknownEventType = errors.New("type is invalid or not provided")
)

type Client struct {
	ID      string
	BoardID string
	UserID  string
	Conn    *websocket.Conn
	Send    chan []byte
	once    sync.Once
}

func NewClient(boardID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:      uuid.NewString(),
		BoardID: boardID,
		Conn:    conn,
		Send:    make(chan []byte, 256),
	}
}

type WebSocketMessage struct {
	Type WebSocketMessageType `json:"type"`
	Data interface{}          `json:"data,omitempty"`
}

type JoinPayload struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	ColorToken string `json:"colorToken,omitempty"`
}

type PresencePayload struct {
	UserID   string  `json:"userId,omitempty"`
	CursorX  float64 `json:"cursorX"`
	CursorY  float64 `json:"cursorY"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type PresenterPayload struct {
	UserID string           `json:"userId,omitempty"`
	View   *canvas.Viewport `json:"view,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// room is one board's set of connections plus the view state they share
type room struct {
	clients map[string]*Client
	state   *boardstate.Store
}

// envelope is a message for every client of a board except the sender
type envelope struct {
	boardID  string
	senderID string
	payload  []byte
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan envelope

	now func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]*room),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan envelope, 256),
		now:        time.Now,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case msg := <-h.Broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) roomFor(boardID string) *room {
	r, ok := h.rooms[boardID]
	if !ok {
		id, _ := uuid.Parse(boardID)
		r = &room{clients: make(map[string]*Client), state: boardstate.NewStore(id)}
		h.rooms[boardID] = r
	}
	return r
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.roomFor(c.BoardID).clients[c.ID] = c
	h.mu.Unlock()
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	r, ok := h.rooms[c.BoardID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, exists := r.clients[c.ID]; !exists {
		h.mu.Unlock()
		return
	}
	delete(r.clients, c.ID)
	c.once.Do(func() {
		close(c.Send)
	})
	if len(r.clients) == 0 {
		delete(h.rooms, c.BoardID)
	}
	// the same user may still be connected from another tab
	stillConnected := false
	for _, other := range r.clients {
		if c.UserID != "" && other.UserID == c.UserID {
			stillConnected = true
			break
		}
	}
	h.mu.Unlock()

	if c.UserID == "" || stillConnected {
		return
	}
	r.state.RemoveParticipant(c.UserID)
	if r.state.UI().PresenterUserID == c.UserID {
		clearPresenter(r.state)
		h.deliver(newEnvelope(c, WebSocketMessageTypePresenterStop, &PresenterPayload{UserID: c.UserID}))
	}
	h.deliver(newEnvelope(c, WebSocketMessageTypeLeave, &PresencePayload{UserID: c.UserID}))
}

func (h *Hub) deliver(msg envelope) {
	if msg.payload == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[msg.boardID]
	if !ok {
		return
	}
	for id, client := range r.clients {
		if id == msg.senderID {
			continue
		}
		select {
		case client.Send <- msg.payload:
		default:
			log.Println("dropping message for slow client", id)
		}
	}
}

// BoardState returns the view state kept for a board, or nil when nobody
// is connected to it.
func (h *Hub) BoardState(boardID string) *boardstate.Store {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[boardID]; ok {
		return r.state
	}
	return nil
}

func (h *Hub) state(boardID string) *boardstate.Store {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.roomFor(boardID).state
}

func newEnvelope(from *Client, t WebSocketMessageType, data interface{}) envelope {
	b, err := json.Marshal(WebSocketMessage{Type: t, Data: data})
	if err != nil {
		log.Println("failed to marshal message:", err)
		return envelope{}
	}
	return envelope{boardID: from.BoardID, senderID: from.ID, payload: b}
}

func (h *Hub) relay(from *Client, t WebSocketMessageType, data interface{}) {
	if env := newEnvelope(from, t, data); env.payload != nil {
		h.Broadcast <- env
	}
}

// HandleMessage records an event in the board state and relays it to the
// other clients of the board.
func (h *Hub) HandleMessage(client *Client, msg *WebSocketMessage) error {
	switch msg.Type {
	case WebSocketMessageTypePing:
		sendMessage(client, WebSocketMessage{Type: WebSocketMessageTypePong})
		return nil
	case WebSocketMessageTypeJoin:
		p, ok := msg.Data.(*JoinPayload)
		if !ok || p == nil {
			return ErrMissingPayload
		}
		return h.join(client, p)
	}

	if client.UserID == "" {
		return ErrNotJoined
	}
	state := h.state(client.BoardID)

	switch msg.Type {
	case WebSocketMessageTypePresence:
		p, ok := msg.Data.(*PresencePayload)
		if !ok || p == nil {
			return ErrMissingPayload
		}
		participant, ok := state.Participants()[client.UserID]
		if !ok {
			return ErrNotJoined
		}
		participant.CursorX, participant.CursorY = p.CursorX, p.CursorY
		if p.IsActive != nil {
			participant.IsActive = *p.IsActive
		}
		participant.LastActiveAt = h.now()
		state.UpsertParticipant(participant)
		p.UserID = client.UserID
		h.relay(client, msg.Type, p)

	case WebSocketMessageTypePresenterStart:
		p, _ := msg.Data.(*PresenterPayload)
		if p == nil {
			p = &PresenterPayload{}
		}
		if err := h.startPresenting(client, state, p.View); err != nil {
			return err
		}
		p.UserID = client.UserID
		h.relay(client, msg.Type, p)

	case WebSocketMessageTypePresenterView:
		p, ok := msg.Data.(*PresenterPayload)
		if !ok || p == nil || p.View == nil {
			return ErrMissingPayload
		}
		if state.UI().PresenterUserID != client.UserID {
			return ErrNotPresenter
		}
		state.SetPresenterView(p.View)
		p.UserID = client.UserID
		h.relay(client, msg.Type, p)

	case WebSocketMessageTypePresenterStop:
		if state.UI().PresenterUserID != client.UserID {
			return ErrNotPresenter
		}
		clearPresenter(state)
		h.relay(client, msg.Type, &PresenterPayload{UserID: client.UserID})

	default:
		return ErrUnknownEventType
	}
	return nil
}

func (h *Hub) join(client *Client, p *JoinPayload) error {
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return ErrInvalidUserID
	}
	name := p.UserName
	if name == "" {
		name = "Guest"
	}
	color := p.ColorToken
	if color == "" {
		color = models.ColorTokenFor(userID)
	}
	boardID, err := uuid.Parse(client.BoardID)
	if err != nil {
		return ErrInvalidBoardID
	}

	h.mu.Lock()
	client.UserID = userID.String()
	h.mu.Unlock()
	h.state(client.BoardID).UpsertParticipant(models.Participant{
		UUID:         userID,
		BoardID:      boardID,
		UserName:     name,
		ColorToken:   color,
		IsActive:     true,
		LastActiveAt: h.now(),
	})
	h.relay(client, WebSocketMessageTypeJoin, &JoinPayload{UserID: client.UserID, UserName: name, ColorToken: color})
	return nil
}

// startPresenting makes client the board's presenter unless someone else
// already is.
func (h *Hub) startPresenting(client *Client, state *boardstate.Store, view *canvas.Viewport) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	current := state.UI().PresenterUserID
	if current != "" && current != client.UserID {
		return ErrPresenterActive
	}
	state.SetPresenterMode(true)
	state.SetPresenterUser(client.UserID)
	state.SetPresenterView(view)
	return nil
}

func clearPresenter(state *boardstate.Store) {
	state.SetPresenterMode(false)
	state.SetPresenterUser("")
	state.SetPresenterView(nil)
}

// NotifyPresence records a presence update that arrived over REST and
// relays it to the board's websocket clients.
func (h *Hub) NotifyPresence(p models.Participant) {
	boardID := p.BoardID.String()
	// boards with no open sockets keep no state
	state := h.BoardState(boardID)
	if state == nil {
		return
	}
	state.UpsertParticipant(p)
	isActive := p.IsActive
	h.Broadcast <- newEnvelope(&Client{BoardID: boardID}, WebSocketMessageTypePresence, &PresencePayload{
		UserID:   p.ID(),
		CursorX:  p.CursorX,
		CursorY:  p.CursorY,
		IsActive: &isActive,
	})
}

func sendMessage(client *Client, msg WebSocketMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Println("failed to marshal message:", err)
		return
	}
	select {
	case client.Send <- b:
	default:
		log.Println("dropping message for slow client", client.ID)
	}
}

// SendErrorMessage sends a standardized error message to a client
func SendErrorMessage(client *Client, errorMsg string) {
	sendMessage(client, WebSocketMessage{
		Type: WebSocketMessageTypeError,
		Data: &ErrorPayload{Message: errorMsg},
	})
}

// parseWebSocketMessage parses incoming websocket message and returns the message structure
func parseWebSocketMessage(msg []byte) (*WebSocketMessage, error) {
	var rawMessage struct {
		Type WebSocketMessageType `json:"type"`
		Data json.RawMessage      `json:"data,omitempty"`
	}
	if err := json.Unmarshal(msg, &rawMessage); err != nil {
		return nil, err
	}

	message := &WebSocketMessage{
		Type: rawMessage.Type,
	}
	if len(rawMessage.Data) == 0 {
		return message, nil
	}

	var target interface{}
	switch rawMessage.Type {
	case WebSocketMessageTypeJoin:
		target = &JoinPayload{}
	case WebSocketMessageTypePresence:
		target = &PresencePayload{}
	case WebSocketMessageTypePresenterStart, WebSocketMessageTypePresenterView, WebSocketMessageTypePresenterStop:
		target = &PresenterPayload{}
	default:
		var data interface{}
		target = &data
	}
	if err := json.Unmarshal(rawMessage.Data, target); err != nil {
		return nil, err
	}
	message.Data = target
	return message, nil
}

// WebSocketHandler serves /ws/boards/:boardId. Paths whose board id is not
// a uuid are refused before the upgrade.
func WebSocketHandler(hub *Hub) fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		client := NewClient(conn.Params("boardId"), conn)
		hub.Register <- client

		// Write loop
		go func() {
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Println("write error:", err)
					return
				}
			}
		}()

		// Read loop
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Println("read error:", err)
				break
			}

			message, err := parseWebSocketMessage(msg)
			if err != nil {
				log.Println("failed to parse JSON:", err)
				SendErrorMessage(client, "Invalid JSON format")
				continue
			}
			if err := hub.HandleMessage(client, message); err != nil {
				SendErrorMessage(client, err.Error())
			}
		}

		hub.Unregister <- client
		conn.Close()
	})

	return func(c *fiber.Ctx) error {
		if _, err := uuid.Parse(c.Params("boardId")); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": ErrInvalidBoardID.Error(),
			})
		}
		return upgrade(c)
	}
}
