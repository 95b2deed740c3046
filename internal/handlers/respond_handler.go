package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/errs"
)

// RespondHandler serves the magic-link response flow: GET returns the
// questions and any existing answers for prefill, POST records answers.
type RespondHandler struct {
	tokenService   contract.TokenService
	answerService  contract.AnswerService
	instanceLoader InstanceLoader
}

// InstanceLoader fetches an instance for the prefill view.
type InstanceLoader func(instanceID int64) (questions []string, targetDate string, err error)

func NewRespondHandler(tokenService contract.TokenService, answerService contract.AnswerService, instanceLoader InstanceLoader) *RespondHandler {
	return &RespondHandler{
		tokenService:   tokenService,
		answerService:  answerService,
		instanceLoader: instanceLoader,
	}
}

type respondView struct {
	InstanceID       int64        `json:"instance_id"`
	TargetDate       string       `json:"target_date"`
	Questions        []string     `json:"questions"`
	Answers          []answerView `json:"answers"`
	AlreadySubmitted bool         `json:"already_submitted"`
}

type answerView struct {
	QuestionIndex int    `json:"question_index"`
	Text          string `json:"text"`
}

type submitRequest struct {
	Token   string                 `json:"token"`
	Answers []contract.AnswerInput `json:"answers"`
}

type submitResponse struct {
	Written int `json:"written"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleGet validates the token from the query string and returns the prefill
// view for the response form.
func (h *RespondHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	payload, err := h.tokenService.Validate(r.URL.Query().Get("token"), time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	questions, targetDate, err := h.instanceLoader(payload.InstanceID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	answers, err := h.answerService.GetAnswers(payload.InstanceID, payload.MemberID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	view := respondView{
		InstanceID:       payload.InstanceID,
		TargetDate:       targetDate,
		Questions:        questions,
		Answers:          []answerView{},
		AlreadySubmitted: len(answers) >= len(questions),
	}
	for _, a := range answers {
		view.Answers = append(view.Answers, answerView{QuestionIndex: a.QuestionIndex, Text: a.Text})
	}

	h.writeJSON(w, http.StatusOK, view)
}

// HandlePost validates the token from the body and records the answers.
func (h *RespondHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	now := time.Now()
	payload, err := h.tokenService.Validate(req.Token, now)
	if err != nil {
		h.writeError(w, err)
		return
	}

	written, err := h.answerService.SubmitFullResponse(r.Context(), payload.InstanceID, req.Answers, payload.MemberID, payload.OrgID, now)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, submitResponse{Written: written})
}

func (h *RespondHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.HandleGet(w, r)
	case http.MethodPost:
		h.HandlePost(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// StatusFor maps the engine's error taxonomy to transport status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrWindowClosed):
		return http.StatusGone
	default:
		// Dependency failures are retryable
		return http.StatusBadGateway
	}
}

func (h *RespondHandler) writeError(w http.ResponseWriter, err error) {
	message := err.Error()
	if errors.Is(err, errs.ErrUnauthorized) {
		// Token rejections stay opaque
		message = "unauthorized"
	}
	h.writeJSON(w, StatusFor(err), errorResponse{Error: message})
}

func (h *RespondHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
