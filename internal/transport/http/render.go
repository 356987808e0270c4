package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"quizboard/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home", "register", "login", "create_quiz", "add_question",
	"take_quiz", "my_results", "leaderboard", "error",
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// page is the data every template receives.
type page struct {
	Title   string
	User    domain.Principal
	Flashes []flash
	Form    any
	Data    any
}

type views map[string]*template.Template

func parseViews() views {
	v := make(views, len(pageNames))
	for _, name := range pageNames {
		v[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html"))
	}
	return v
}

// render writes the named page with the flashes queued for this request.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	tmpl, ok := h.views[name]
	if !ok {
		h.logger.Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	p.User = principalFrom(r.Context())
	p.Flashes = append(h.consumeFlashes(w, r), p.Flashes...)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.logger.Error("render template", "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
