package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/internal/domain/types"
)

// IdempotencyHeader carries the client key that makes an answer replay safe.
const IdempotencyHeader = "Idempotency-Key"

type conferenceRequest struct {
	Conference string `json:"conference" validate:"required,oneof=east west"`
}

type answerRequest struct {
	Answer *bool `json:"answer" validate:"required"`
	Round  *int  `json:"round,omitempty" validate:"omitempty,min=0"`
}

type choiceRequest struct {
	Name string `json:"name" validate:"required"`
}

// gameResponse is the session view returned by every game endpoint.
type gameResponse struct {
	*game.Session
	Remaining int  `json:"remaining"`
	Duplicate bool `json:"duplicate,omitempty"`
}

func respond(sess *game.Session, duplicate bool) gameResponse {
	return gameResponse{Session: sess, Remaining: sess.Remaining(), Duplicate: duplicate}
}

func conferenceOf(raw string) model.Conference {
	return model.Conference(raw)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.newGame"
	var req conferenceRequest
	if err := s.decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	sess, err := s.deps.NewGame(r.Context(), conferenceOf(req.Conference))
	if err != nil {
		s.fail(w, r, op, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/api/v1/games/"+sess.ID)
	writeJSON(w, http.StatusCreated, respond(sess, false))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.getGame"
	sess, err := s.deps.Game(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, respond(sess, false))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.deleteGame"
	if err := s.deps.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, op, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.answer"
	var req answerRequest
	if err := s.decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	in := types.AnswerInput{
		Answer:         *req.Answer,
		Round:          req.Round,
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
	}
	sess, dup, err := s.deps.Answer(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, respond(sess, dup))
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	const op = "api.choice"
	var req choiceRequest
	if err := s.decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	sess, err := s.deps.Choose(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.fail(w, r, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, respond(sess, false))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset"
	sess, err := s.deps.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, respond(sess, false))
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	const op = "api.begin"
	var req conferenceRequest
	if err := s.decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	sess, err := s.deps.Begin(r.Context(), chi.URLParam(r, "id"), conferenceOf(req.Conference))
	if err != nil {
		s.fail(w, r, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, respond(sess, false))
}
