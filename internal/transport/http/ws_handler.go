package http

import (
	"errors"
	"net/http"

	"quizboard/internal/domain"
)

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeLeaderboardWS upgrades to a websocket and streams leaderboard snapshots
// for one quiz until the client goes away.
func (h *Handler) ServeLeaderboardWS(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDParam(r)
	if !ok {
		http.Error(w, domain.ErrQuizNotFound.Error(), http.StatusNotFound)
		return
	}
	updates, cancel, err := h.quizzes.Subscribe(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("subscribe leaderboard", "quiz_id", quizID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Clients only listen; reading surfaces the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.Leaderboard]{Type: "leaderboard", Payload: update}); err != nil {
				h.logger.Warn("ws write error", "error", err)
				return
			}
		case <-closed:
			return
		}
	}
}
