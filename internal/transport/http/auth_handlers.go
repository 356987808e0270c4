package http

import (
	"net/http"

	"quizboard/internal/app"
)

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", page{Title: "Register"})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	err := h.decodeForm(r, &form)
	if err == nil {
		_, err = h.auth.Register(r.Context(), app.RegisterInput{
			Username: form.Username,
			Password: form.Password,
			Confirm:  form.Confirm,
		})
	}
	if err != nil {
		msg, ok := formMessage(err)
		if !ok {
			h.fail(w, r, err)
			return
		}
		form.Password, form.Confirm = "", ""
		h.render(w, r, http.StatusUnprocessableEntity, "register", page{
			Title: "Register", Form: form, Flashes: []flash{failure(msg)},
		})
		return
	}

	h.setFlash(w, success("Registration successful. Please log in."))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", page{
		Title: "Log in",
		Form:  loginForm{Next: r.URL.Query().Get("next")},
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := h.decodeForm(r, &form); err != nil {
		h.render(w, r, http.StatusBadRequest, "login", page{Title: "Log in", Form: form, Flashes: []flash{failure("Invalid credentials")}})
		return
	}

	session, err := h.auth.Login(r.Context(), app.LoginInput{Username: form.Username, Password: form.Password})
	if err != nil {
		if _, ok := formMessage(err); !ok {
			h.fail(w, r, err)
			return
		}
		// Missing fields and bad passwords read the same to the user.
		form.Password = ""
		h.render(w, r, http.StatusUnauthorized, "login", page{
			Title: "Log in", Form: form, Flashes: []flash{failure("Invalid credentials")},
		})
		return
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, safeNext(form.Next), http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookieName); err == nil {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			h.logger.Warn("logout failed", "error", err)
		}
	}
	h.clearSessionCookie(w)
	h.setFlash(w, info("You have been logged out."))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
