package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "quizboard_flash"

type flash struct {
	Kind string `json:"kind"` // success, error, info
	Text string `json:"text"`
}

// setFlash queues messages for the next rendered page, replacing any pending ones.
func (h *Handler) setFlash(w http.ResponseWriter, msgs ...flash) {
	data, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) consumeFlashes(w http.ResponseWriter, r *http.Request) []flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var msgs []flash
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil
	}
	return msgs
}

func success(text string) flash { return flash{Kind: "success", Text: text} }
func failure(text string) flash { return flash{Kind: "error", Text: text} }
func info(text string) flash    { return flash{Kind: "info", Text: text} }
