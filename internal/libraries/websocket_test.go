package libraries

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prismora-backend/internal/canvas"
	"prismora-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func expectMessage(t *testing.T, c *Client, want WebSocketMessageType) map[string]interface{} {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		if !ok {
			t.Fatalf("send channel closed while waiting for %s", want)
		}
		var msg struct {
			Type WebSocketMessageType   `json:"type"`
			Data map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != want {
			t.Fatalf("Expected %s, got %s", want, msg.Type)
		}
		return msg.Data
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
	return nil
}

func joinedPair(t *testing.T) (*Hub, *Client, *Client) {
	t.Helper()
	hub := NewHub()
	go hub.Run()

	board := uuid.NewString()
	a, b := NewClient(board, nil), NewClient(board, nil)
	hub.Register <- a
	hub.Register <- b

	if err := hub.HandleMessage(a, &WebSocketMessage{Type: WebSocketMessageTypeJoin, Data: &JoinPayload{UserID: uuid.NewString(), UserName: "ada"}}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, b, WebSocketMessageTypeJoin)
	if err := hub.HandleMessage(b, &WebSocketMessage{Type: WebSocketMessageTypeJoin, Data: &JoinPayload{UserID: uuid.NewString()}}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, a, WebSocketMessageTypeJoin)
	return hub, a, b
}

func TestHub_JoinRecordsParticipant(t *testing.T) {
	hub, a, b := joinedPair(t)
	state := hub.BoardState(a.BoardID)
	if state == nil {
		t.Fatal("expected board state")
	}
	participants := state.Participants()
	if len(participants) != 2 {
		t.Fatalf("Expected 2 participants, got %d", len(participants))
	}
	if participants[b.UserID].UserName != "Guest" {
		t.Errorf("Expected default name Guest, got %q", participants[b.UserID].UserName)
	}
	if participants[a.UserID].ColorToken == "" {
		t.Error("Expected a color token")
	}
}

func TestHub_PresenceRequiresJoin(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	c := NewClient(uuid.NewString(), nil)
	hub.Register <- c
	err := hub.HandleMessage(c, &WebSocketMessage{Type: WebSocketMessageTypePresence, Data: &PresencePayload{CursorX: 1}})
	if !errors.Is(err, ErrNotJoined) {
		t.Errorf("Expected ErrNotJoined, got %v", err)
	}
	if err := hub.HandleMessage(c, &WebSocketMessage{Type: WebSocketMessageTypeJoin, Data: &JoinPayload{UserID: "nope"}}); !errors.Is(err, ErrInvalidUserID) {
		t.Errorf("Expected ErrInvalidUserID, got %v", err)
	}
}

func TestHub_PresenceRelayed(t *testing.T) {
	hub, a, b := joinedPair(t)
	if err := hub.HandleMessage(a, &WebSocketMessage{Type: WebSocketMessageTypePresence, Data: &PresencePayload{CursorX: 10, CursorY: 20}}); err != nil {
		t.Fatal(err)
	}
	data := expectMessage(t, b, WebSocketMessageTypePresence)
	if data["userId"] != a.UserID || data["cursorX"] != 10.0 {
		t.Errorf("unexpected payload %v", data)
	}
	p := hub.BoardState(a.BoardID).Participants()[a.UserID]
	if p.CursorX != 10 || p.CursorY != 20 {
		t.Errorf("cursor not stored: %+v", p)
	}
}

func TestHub_SinglePresenter(t *testing.T) {
	hub, a, b := joinedPair(t)
	view := &canvas.Viewport{Pan: canvas.Point{X: 1, Y: 2}, Zoom: 1.5}

	if err := hub.HandleMessage(a, &WebSocketMessage{Type: WebSocketMessageTypePresenterStart, Data: &PresenterPayload{View: view}}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, b, WebSocketMessageTypePresenterStart)

	if err := hub.HandleMessage(b, &WebSocketMessage{Type: WebSocketMessageTypePresenterStart}); !errors.Is(err, ErrPresenterActive) {
		t.Errorf("Expected ErrPresenterActive, got %v", err)
	}
	if err := hub.HandleMessage(b, &WebSocketMessage{Type: WebSocketMessageTypePresenterView, Data: &PresenterPayload{View: view}}); !errors.Is(err, ErrNotPresenter) {
		t.Errorf("Expected ErrNotPresenter, got %v", err)
	}

	next := &canvas.Viewport{Pan: canvas.Point{X: -30, Y: 40}, Zoom: 2}
	if err := hub.HandleMessage(a, &WebSocketMessage{Type: WebSocketMessageTypePresenterView, Data: &PresenterPayload{View: next}}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, b, WebSocketMessageTypePresenterView)

	ui := hub.BoardState(a.BoardID).UI()
	if !ui.PresenterMode || ui.PresenterUserID != a.UserID || ui.PresenterView == nil || *ui.PresenterView != *next {
		t.Errorf("unexpected presenter state %+v", ui)
	}

	if err := hub.HandleMessage(a, &WebSocketMessage{Type: WebSocketMessageTypePresenterStop}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, b, WebSocketMessageTypePresenterStop)
	if ui := hub.BoardState(a.BoardID).UI(); ui.PresenterMode || ui.PresenterUserID != "" {
		t.Errorf("presenter not cleared: %+v", ui)
	}
}

func TestHub_PresenterLeavingClearsPresenter(t *testing.T) {
	hub, a, b := joinedPair(t)
	if err := hub.HandleMessage(a, &WebSocketMessage{Type: WebSocketMessageTypePresenterStart}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, b, WebSocketMessageTypePresenterStart)

	hub.Unregister <- a
	expectMessage(t, b, WebSocketMessageTypePresenterStop)
	data := expectMessage(t, b, WebSocketMessageTypeLeave)
	if data["userId"] != a.UserID {
		t.Errorf("unexpected leave payload %v", data)
	}

	state := hub.BoardState(b.BoardID)
	if _, ok := state.Participants()[a.UserID]; ok {
		t.Error("participant not removed")
	}
	if state.UI().PresenterUserID != "" {
		t.Error("presenter not cleared")
	}
}

func TestHub_Ping(t *testing.T) {
	hub := NewHub()
	c := NewClient(uuid.NewString(), nil)
	if err := hub.HandleMessage(c, &WebSocketMessage{Type: WebSocketMessageTypePing}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, c, WebSocketMessageTypePong)
}

func TestParseWebSocketMessage(t *testing.T) {
	msg, err := parseWebSocketMessage([]byte(`{"type":"presenter_view","data":{"view":{"pan":{"x":3,"y":4},"zoom":2}}}`))
	if err != nil {
		t.Fatal(err)
	}
	p, ok := msg.Data.(*PresenterPayload)
	if !ok || p.View == nil || p.View.Zoom != 2 || p.View.Pan.X != 3 {
		t.Errorf("unexpected payload %#v", msg.Data)
	}

	if _, err := parseWebSocketMessage([]byte(`not json`)); err == nil {
		t.Error("expected parse error")
	}

	msg, err = parseWebSocketMessage([]byte(`{"type":"ping"}`))
	if err != nil || msg.Type != WebSocketMessageTypePing || msg.Data != nil {
		t.Errorf("unexpected ping parse %+v %v", msg, err)
	}
}

func TestHub_NotifyPresence(t *testing.T) {
	hub, a, b := joinedPair(t)
	participant := hub.BoardState(a.BoardID).Participants()[a.UserID]
	participant.CursorX, participant.CursorY = 42, 7

	hub.NotifyPresence(participant)

	// REST updates have no sending socket, so every client hears them
	for _, c := range []*Client{a, b} {
		data := expectMessage(t, c, WebSocketMessageTypePresence)
		if data["userId"] != a.UserID || data["cursorX"] != float64(42) {
			t.Errorf("Expected cursor update for %s, got %v", a.UserID, data)
		}
	}
	if got := hub.BoardState(a.BoardID).Participants()[a.UserID].CursorX; got != 42 {
		t.Errorf("Expected stored cursorX 42, got %v", got)
	}
}

func TestHub_NotifyPresenceWithoutRoom(t *testing.T) {
	hub := NewHub()
	board := uuid.New()
	hub.NotifyPresence(models.Participant{UUID: uuid.New(), BoardID: board})
	if hub.BoardState(board.String()) != nil {
		t.Error("Expected no state for a board without sockets")
	}
}

func TestHub_SecondTabKeepsPresence(t *testing.T) {
	hub, a, b := joinedPair(t)
	tab := NewClient(a.BoardID, nil)
	hub.Register <- tab
	if err := hub.HandleMessage(tab, &WebSocketMessage{Type: WebSocketMessageTypeJoin, Data: &JoinPayload{UserID: a.UserID, UserName: "ada"}}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, a, WebSocketMessageTypeJoin)
	expectMessage(t, b, WebSocketMessageTypeJoin)

	if err := hub.HandleMessage(a, &WebSocketMessage{Type: WebSocketMessageTypePresenterStart}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, b, WebSocketMessageTypePresenterStart)
	expectMessage(t, tab, WebSocketMessageTypePresenterStart)

	hub.Unregister <- a
	// the hub loop handles the unregister before this relay, so a leave
	// would reach b first
	if err := hub.HandleMessage(tab, &WebSocketMessage{Type: WebSocketMessageTypePresence, Data: &PresencePayload{CursorX: 1}}); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, b, WebSocketMessageTypePresence)

	state := hub.BoardState(b.BoardID)
	if _, ok := state.Participants()[a.UserID]; !ok {
		t.Error("Expected participant to remain while another tab is open")
	}
	if state.UI().PresenterUserID != a.UserID {
		t.Error("Expected presenter to remain while another tab is open")
	}

	hub.Unregister <- tab
	expectMessage(t, b, WebSocketMessageTypePresenterStop)
	expectMessage(t, b, WebSocketMessageTypeLeave)
}

func TestHub_JoinRejectsInvalidBoard(t *testing.T) {
	hub := NewHub()
	c := NewClient("not-a-board", nil)
	err := hub.HandleMessage(c, &WebSocketMessage{Type: WebSocketMessageTypeJoin, Data: &JoinPayload{UserID: uuid.NewString()}})
	if !errors.Is(err, ErrInvalidBoardID) {
		t.Errorf("Expected ErrInvalidBoardID, got %v", err)
	}
	if c.UserID != "" {
		t.Error("Expected client to stay unjoined")
	}
}

func TestWebSocketHandler_RejectsInvalidBoard(t *testing.T) {
	app := fiber.New()
	app.Get("/ws/boards/:boardId", WebSocketHandler(NewHub()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws/boards/not-a-uuid", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws/boards/"+uuid.NewString(), nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("Expected 426 for a plain request, got %d", resp.StatusCode)
	}
}
