package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/shivapreetham/quiz-application/internal/domain"
	"github.com/shivapreetham/quiz-application/internal/quiz"
)

type authPayload struct {
	Secret string `json:"secret"`
}

type authResult struct {
	Success bool `json:"success"`
}

type createQuizPayload struct {
	RoomID string            `json:"roomId"`
	Config domain.QuizConfig `json:"config"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type addProblemPayload struct {
	RoomID  string              `json:"roomId"`
	Problem domain.ProblemInput `json:"problem"`
}

type updateProblemPayload struct {
	RoomID    string              `json:"roomId"`
	ProblemID string              `json:"problemId"`
	Problem   domain.ProblemPatch `json:"problem"`
}

type deleteProblemPayload struct {
	RoomID    string `json:"roomId"`
	ProblemID string `json:"problemId"`
}

type reorderProblemsPayload struct {
	RoomID     string   `json:"roomId"`
	ProblemIDs []string `json:"problemIds"`
}

type importProblemsPayload struct {
	RoomID   string                `json:"roomId"`
	Problems []domain.ProblemInput `json:"problems"`
}

type importSetPayload struct {
	RoomID string `json:"roomId"`
	SetID  string `json:"setId"`
}

type scheduleQuizPayload struct {
	RoomID             string `json:"roomId"`
	ScheduledStartTime int64  `json:"scheduledStartTime"`
}

type startQuizPayload struct {
	RoomID             string `json:"roomId"`
	JoinWindowDuration int    `json:"joinWindowDuration,omitempty"`
}

type userSubmissionsPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type problemsImportedResult struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count"`
}

type problemIDResult struct {
	RoomID    string `json:"roomId"`
	ProblemID string `json:"problemId"`
}

type submissionsExport struct {
	RoomID       string               `json:"roomId"`
	Submissions  []domain.Submission  `json:"submissions"`
	Participants []domain.Participant `json:"participants"`
}

// ServeAdminWS upgrades admin connections. The first message must be an
// auth message carrying the shared admin secret; every following message
// is a command answered on the same connection.
func (h *WSHandler) ServeAdminWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("admin ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if !h.authenticate(conn) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		reply := h.handleAdminCommand(r, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (h *WSHandler) authenticate(conn *websocket.Conn) bool {
	var inbound inboundMessage
	if err := conn.ReadJSON(&inbound); err != nil {
		return false
	}
	var payload authPayload
	if inbound.Type != "auth" || json.Unmarshal(inbound.Payload, &payload) != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "auth required"}})
		return false
	}
	if h.adminSecret == "" || payload.Secret != h.adminSecret {
		log.Printf("admin authentication failed")
		_ = conn.WriteJSON(outboundMessage[authResult]{Type: "authResult", Payload: authResult{Success: false}})
		return false
	}
	_ = conn.WriteJSON(outboundMessage[authResult]{Type: "authResult", Payload: authResult{Success: true}})
	return true
}

func (h *WSHandler) handleAdminCommand(r *http.Request, inbound inboundMessage) any {
	switch inbound.Type {
	case "createQuiz":
		var p createQuizPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		if err := h.registry.Create(p.RoomID, p.Config); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[roomPayload]{Type: "quizCreated", Payload: roomPayload{RoomID: p.RoomID}}

	case "deleteQuiz":
		var p roomPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		if err := h.registry.Delete(p.RoomID); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[roomPayload]{Type: "quizDeleted", Payload: roomPayload{RoomID: p.RoomID}}

	case "addProblem":
		var p addProblemPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		problemID, err := h.registry.AddProblem(p.RoomID, p.Problem)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[problemIDResult]{Type: "problemAdded", Payload: problemIDResult{RoomID: p.RoomID, ProblemID: problemID}}

	case "updateProblem":
		var p updateProblemPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		if err := room.UpdateProblem(p.ProblemID, p.Problem); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[problemIDResult]{Type: "problemUpdated", Payload: problemIDResult{RoomID: p.RoomID, ProblemID: p.ProblemID}}

	case "deleteProblem":
		var p deleteProblemPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		if err := room.DeleteProblem(p.ProblemID); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[problemIDResult]{Type: "problemDeleted", Payload: problemIDResult{RoomID: p.RoomID, ProblemID: p.ProblemID}}

	case "reorderProblems":
		var p reorderProblemsPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		if err := room.ReorderProblems(p.ProblemIDs); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[roomPayload]{Type: "problemsReordered", Payload: roomPayload{RoomID: p.RoomID}}

	case "importProblems":
		var p importProblemsPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		count, err := h.registry.ImportProblems(p.RoomID, p.Problems)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[problemsImportedResult]{Type: "problemsImported", Payload: problemsImportedResult{RoomID: p.RoomID, Count: count}}

	case "importSet":
		var p importSetPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		count, err := h.registry.ImportSet(r.Context(), p.RoomID, p.SetID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[problemsImportedResult]{Type: "problemsImported", Payload: problemsImportedResult{RoomID: p.RoomID, Count: count}}

	case "scheduleQuiz":
		var p scheduleQuizPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		if err := room.Schedule(p.ScheduledStartTime); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[roomPayload]{Type: "quizScheduled", Payload: roomPayload{RoomID: p.RoomID}}

	case "startQuiz":
		var p startQuizPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		if err := room.Start(p.JoinWindowDuration); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[roomPayload]{Type: "quizStarted", Payload: roomPayload{RoomID: p.RoomID}}

	case "next":
		var p roomPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		if err := room.Next(); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[roomPayload]{Type: "advanced", Payload: roomPayload{RoomID: p.RoomID}}

	case "getQuizState":
		var p roomPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			// Not-found state is a snapshot, not an error, so admin UIs can
			// render it like any other room state.
			return outboundMessage[domain.WireSnapshot]{Type: "quizState", Payload: domain.Wire(domain.RoomNotFoundSnapshot{})}
		}
		return outboundMessage[domain.WireSnapshot]{Type: "quizState", Payload: domain.Wire(room.Snapshot())}

	case "getQuizzes":
		return outboundMessage[[]quiz.RoomSummary]{Type: "quizzes", Payload: h.registry.Summaries()}

	case "getProblems":
		var p roomPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[[]domain.Problem]{Type: "problems", Payload: room.Problems()}

	case "getUserSubmissions":
		var p userSubmissionsPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		subs, err := room.Submissions(p.UserID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[[]domain.Submission]{Type: "userSubmissions", Payload: subs}

	case "exportSubmissions":
		var p roomPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return errorMessage(err)
		}
		room, err := h.registry.Room(p.RoomID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[submissionsExport]{Type: "submissionsExport", Payload: submissionsExport{
			RoomID:       p.RoomID,
			Submissions:  room.AllSubmissions(),
			Participants: room.Leaderboard(),
		}}

	default:
		return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.Validationf("invalid payload: %v", err)
	}
	return nil
}

func errorMessage(err error) outboundMessage[errorPayload] {
	return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{
		Message: err.Error(),
		Kind:    errorKind(err),
	}}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrState):
		return "state"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
