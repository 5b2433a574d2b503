package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"qcm-attempt-service/internal/app"
	"qcm-attempt-service/internal/domain"
)

type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService) *WSHandler {
	return &WSHandler{
		service: service,
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

type answerPayload struct {
	QuestionIndex int      `json:"questionIndex"`
	Choices       []string `json:"choices"`
}

type answerAck struct {
	QuestionIndex int      `json:"questionIndex"`
	Choices       []string `json:"choices"`
}

type startedPayload struct {
	AttemptID     string         `json:"attemptId"`
	AttemptNumber int            `json:"attemptNumber"`
	ExpiresAt     *string        `json:"expiresAt,omitempty"`
	Questions     []questionView `json:"questions"`
}

// questionView is the learner-facing shape of a question: correct answers
// are never sent over the wire.
type questionView struct {
	Index   int             `json:"index"`
	Type    string          `json:"type"`
	Prompt  string          `json:"prompt,omitempty"`
	Choices []domain.Choice `json:"choices"`
	Points  int             `json:"points"`
}

type resultPayload struct {
	AttemptID        string                       `json:"attemptId"`
	Status           string                       `json:"status"`
	TotalScore       int                          `json:"totalScore"`
	MaxScore         int                          `json:"maxScore"`
	Passed           *bool                        `json:"passed,omitempty"`
	TimeSpentSeconds int                          `json:"timeSpentSeconds"`
	QuestionScores   map[int]domain.QuestionScore `json:"questionScores"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS runs one attempt over one websocket connection: the attempt starts
// on connect, answers stream in, and the connection ends with a terminal
// result (completed, abandoned, or expired).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	studentID := r.URL.Query().Get("studentId")
	if quizID == "" || studentID == "" {
		http.Error(w, "missing quizId or studentId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	attempt, err := h.service.Start(ctx, quizID, studentID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	quiz, err := h.service.Quiz(ctx, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	_ = conn.WriteJSON(outboundMessage[startedPayload]{Type: "started", Payload: startedView(attempt, quiz)})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			// Connection dropped mid-attempt: leave it in progress for the
			// expiry sweep or a later explicit abandon.
			return
		}

		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid answer payload")
				continue
			}
			next, err := h.service.SubmitAnswer(ctx, attempt.ID, payload.QuestionIndex, payload.Choices)
			if err != nil {
				h.writeError(conn, err.Error())
				if errors.Is(err, domain.ErrAttemptTerminal) {
					return
				}
				continue
			}
			if next.Status == domain.AttemptExpired {
				// Deadline passed; the answer was discarded.
				h.writeResult(conn, next, quiz)
				return
			}
			_ = conn.WriteJSON(outboundMessage[answerAck]{Type: "answerAck", Payload: answerAck{
				QuestionIndex: payload.QuestionIndex,
				Choices:       next.Answers[payload.QuestionIndex],
			}})

		case "complete":
			next, err := h.service.Complete(ctx, attempt.ID)
			if err != nil {
				h.writeError(conn, err.Error())
				return
			}
			h.writeResult(conn, next, quiz)
			return

		case "abandon":
			next, err := h.service.Abandon(ctx, attempt.ID)
			if err != nil {
				h.writeError(conn, err.Error())
				return
			}
			h.writeResult(conn, next, quiz)
			return

		default:
			h.writeError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}

func (h *WSHandler) writeResult(conn *websocket.Conn, attempt domain.Attempt, quiz domain.QuizDefinition) {
	_ = conn.WriteJSON(outboundMessage[resultPayload]{Type: "result", Payload: resultPayload{
		AttemptID:        attempt.ID,
		Status:           string(attempt.Status),
		TotalScore:       attempt.TotalScore,
		MaxScore:         quiz.MaxScore(),
		Passed:           attempt.Passed,
		TimeSpentSeconds: attempt.TimeSpentSeconds,
		QuestionScores:   attempt.QuestionScores,
	}})
}

func startedView(attempt domain.Attempt, quiz domain.QuizDefinition) startedPayload {
	payload := startedPayload{
		AttemptID:     attempt.ID,
		AttemptNumber: attempt.AttemptNumber,
		Questions:     make([]questionView, 0, len(quiz.Questions)),
	}
	if attempt.ExpiresAt != nil {
		formatted := attempt.ExpiresAt.Format(time.RFC3339)
		payload.ExpiresAt = &formatted
	}
	for i, question := range quiz.Questions {
		payload.Questions = append(payload.Questions, questionView{
			Index:   i,
			Type:    string(question.Type),
			Prompt:  question.Prompt,
			Choices: question.Choices,
			Points:  question.Points,
		})
	}
	return payload
}
