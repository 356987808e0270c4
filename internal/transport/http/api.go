package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quizboard/internal/domain"
)

type jsonResponse struct {
	Error   bool   `json:"error"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any, msg string) {
	isErr := status >= http.StatusBadRequest
	resp := jsonResponse{Error: isErr, Message: msg}
	if !isErr {
		resp.Data = data
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) apiListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListQuizzes(r.Context())
	if err != nil {
		h.logger.Error("list quizzes", "error", err)
		writeJSON(w, http.StatusInternalServerError, nil, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, quizzes, "")
}

func (h *Handler) apiLeaderboard(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, nil, domain.ErrQuizNotFound.Error())
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, nil, "limit must be a positive integer")
			return
		}
		limit = n
	}

	lb, err := h.quizzes.Leaderboard(r.Context(), quizID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			writeJSON(w, http.StatusNotFound, nil, err.Error())
			return
		}
		h.logger.Error("leaderboard", "quiz_id", quizID, "error", err)
		writeJSON(w, http.StatusInternalServerError, nil, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, lb, "")
}
