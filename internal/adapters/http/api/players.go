package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/legend/internal/domain/types"
)

const defaultTopLimit = 10

type topPlayersResponse struct {
	Limit   int           `json:"limit"`
	Players []types.Entry `json:"players"`
}

func (s *Server) handleTopPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.topPlayers"
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.fail(w, r, op, NewKind(op, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest)))
			return
		}
		limit = n
	}
	if maxLimit := s.deps.MaxTopLimit(); maxLimit > 0 && limit > maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded",
			fmt.Errorf("limit %d exceeds maximum %d", limit, maxLimit))
		return
	}
	entries, err := s.deps.TopPlayers(r.Context(), limit)
	if err != nil {
		s.fail(w, r, op, Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	writeJSON(w, http.StatusOK, topPlayersResponse{Limit: limit, Players: entries})
}
