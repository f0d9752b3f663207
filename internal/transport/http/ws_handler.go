package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/shivapreetham/quiz-application/internal/domain"
	"github.com/shivapreetham/quiz-application/internal/quiz"
)

// WSHandler is the broadcast gateway: it routes participant and admin
// intents into the registry and fans room snapshots back out.
type WSHandler struct {
	registry    *quiz.Registry
	adminSecret string
	upgrader    websocket.Upgrader
}

func NewWSHandler(registry *quiz.Registry, adminSecret string) *WSHandler {
	return &WSHandler{
		registry:    registry,
		adminSecret: adminSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

type initPayload struct {
	UserID *string             `json:"userId"`
	State  domain.WireSnapshot `json:"state"`
}

type submitPayload struct {
	ProblemID      string `json:"problemId"`
	OptionSelected *int   `json:"optionSelected,omitempty"`
	Skip           bool   `json:"skip,omitempty"`
}

type submitResult struct {
	ProblemID string `json:"problemId,omitempty"`
	Accepted  bool   `json:"accepted"`
}

type bulkSubmitPayload struct {
	Answers []domain.BulkAnswer `json:"answers"`
}

// ServeWS upgrades participant connections. The participant joins the
// room named in the query string, receives an init message with its
// identifier and the current state, then a state message on every
// broadcast.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	name := r.URL.Query().Get("name")
	if roomID == "" || name == "" {
		http.Error(w, "missing roomId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	room, err := h.registry.Room(roomID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[initPayload]{Type: "init", Payload: initPayload{
			State: domain.Wire(domain.RoomNotFoundSnapshot{}),
		}})
		return
	}

	userID, joined := room.Join(name)
	init := initPayload{State: domain.Wire(room.Snapshot())}
	if joined {
		init.UserID = &userID
	}

	updates, cancel := room.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// A single writer goroutine serializes all writes to the connection.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "init", Payload: init}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: domain.Wire(update)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
				continue
			}
			option := payload.OptionSelected
			if payload.Skip {
				option = nil
			}
			accepted := room.SubmitAnswer(userID, payload.ProblemID, option)
			send <- outboundMessage[any]{Type: "submitResult", Payload: submitResult{
				ProblemID: payload.ProblemID,
				Accepted:  accepted,
			}}
		case "bulkSubmit":
			var payload bulkSubmitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid bulkSubmit payload"}}
				continue
			}
			accepted := room.BulkSubmit(userID, payload.Answers)
			send <- outboundMessage[any]{Type: "bulkSubmitResult", Payload: submitResult{Accepted: accepted}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
