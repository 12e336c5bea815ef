package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/cloudgroundcontrol/live-translator/pkg/processor"
	"github.com/cloudgroundcontrol/live-translator/pkg/room"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Handler owns the WebSocket endpoints. Each accepted connection gets
// its own goroutine running the receive loop, which is the only writer
// to that participant's buffer and gate state.
type Handler struct {
	registry  *room.Registry
	processor *processor.Processor
	upgrader  websocket.Upgrader
}

func NewHandler(registry *room.Registry, proc *processor.Processor) *Handler {
	return &Handler{
		registry:  registry,
		processor: proc,
		upgrader: websocket.Upgrader{
			// Browser clients connect from arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// sender serialises writes: gorilla connections permit one concurrent
// writer, and both the connection loop and pipeline workers send.
type sender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *sender) SendJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *sender) SendBinary(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

type connectionEstablished struct {
	Type          string `json:"type"`
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
}

type controlFrame struct {
	Type    string `json:"type"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// Serve handles GET /ws/:room_id. Query parameter target_lang selects
// the participant's translation target, defaulting to English.
func (h *Handler) Serve(c echo.Context) error {
	roomID := c.Param("room_id")
	targetLang := c.QueryParam("target_lang")
	if targetLang == "" {
		targetLang = "en"
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s := &sender{conn: conn}
	p := h.registry.AddParticipant(roomID, s, targetLang)
	log.Infof("participant joined | room: %s, participant: %s, target: %s", roomID, p.ID, targetLang)

	defer func() {
		h.registry.RemoveParticipant(roomID, p.ID)
		h.processor.RemoveParticipant(roomID, p.ID)
		h.registry.BroadcastParticipantCount(roomID)
		log.Infof("participant left | room: %s, participant: %s", roomID, p.ID)
	}()

	if err = s.SendJSON(connectionEstablished{
		Type:          "connection_established",
		RoomID:        roomID,
		ParticipantID: p.ID,
	}); err != nil {
		return nil
	}
	h.registry.BroadcastParticipantCount(roomID)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			// The loop ends only on a genuine transport-level disconnect
			log.Debugf("connection closed | room: %s, participant: %s, reason: %v", roomID, p.ID, err)
			return nil
		}

		switch msgType {
		case websocket.TextMessage:
			h.handleControl(s, p, data)
		case websocket.BinaryMessage:
			h.processor.ProcessChunk(p, data)
		}
	}
}

func (h *Handler) handleControl(s *sender, p *room.Participant, data []byte) {
	var cmd controlFrame
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.Warnf("cannot parse control frame | error: %v, payload: %.50s", err, data)
		return
	}

	switch cmd.Type {
	case "ping":
		if err := s.SendJSON(map[string]string{"type": "pong"}); err != nil {
			log.Warnf("cannot send pong | error: %v, participant: %s", err, p.ID)
		}
	case "set_mirror":
		if cmd.Enabled == nil {
			log.Warnf("set_mirror without enabled flag | participant: %s", p.ID)
			return
		}
		p.SetMirror(*cmd.Enabled)
		log.Infof("mirror override | participant: %s, enabled: %v", p.ID, *cmd.Enabled)
	default:
		log.Debugf("ignoring control frame | type: %s, participant: %s", cmd.Type, p.ID)
	}
}

// Test handles GET /ws/test, a plain echo endpoint for connectivity
// checks.
func (h *Handler) Test(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err = conn.WriteMessage(websocket.TextMessage, []byte("Connection established. Server is running.")); err != nil {
		return nil
	}
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		if err = conn.WriteMessage(msgType, append([]byte("Message received: "), data...)); err != nil {
			return nil
		}
	}
}
