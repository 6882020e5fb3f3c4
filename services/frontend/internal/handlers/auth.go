package handlers

import (
	"net/http"
	"strings"

	"github.com/amirv/salonbook/services/frontend/internal/session"
)

type authPageData struct {
	Error    string
	Username string
	Email    string
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", pageData{Title: "Sign in", Data: authPageData{}})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "login.html", pageData{Title: "Sign in", Data: authPageData{Error: "Invalid form submission"}})
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.render(w, "login.html", pageData{Title: "Sign in", Data: authPageData{
			Error:    "Username and password are required",
			Username: username,
		}})
		return
	}

	token, user, err := h.api.Login(r.Context(), username, password)
	if err != nil {
		h.render(w, "login.html", pageData{Title: "Sign in", Data: authPageData{
			Error:    errorMessage(err),
			Username: username,
		}})
		return
	}

	sid := session.NewSID()
	sess := session.Session{
		Token: token,
		User:  session.User{Username: user.Username, IsAdmin: user.IsAdmin},
		Flash: &session.Flash{Kind: "success", Message: "Welcome, " + user.Username},
	}
	if err := h.store.Put(r.Context(), sid, sess); err != nil {
		h.logger.Error("session save failed", "err", err)
		h.render(w, "login.html", pageData{Title: "Sign in", Data: authPageData{
			Error:    "Could not start a session. Please try again.",
			Username: username,
		}})
		return
	}
	session.SetCookie(w, sid, h.secureCookies)

	if user.IsAdmin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", pageData{Title: "Create account", Data: authPageData{}})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "register.html", pageData{Title: "Create account", Data: authPageData{Error: "Invalid form submission"}})
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	data := authPageData{Username: username, Email: email}
	if username == "" || email == "" || password == "" {
		data.Error = "All fields are required"
		h.render(w, "register.html", pageData{Title: "Create account", Data: data})
		return
	}
	if len(password) < 6 {
		data.Error = "Password must be at least 6 characters"
		h.render(w, "register.html", pageData{Title: "Create account", Data: data})
		return
	}

	if _, err := h.api.Register(r.Context(), username, email, password); err != nil {
		data.Error = errorMessage(err)
		h.render(w, "register.html", pageData{Title: "Create account", Data: data})
		return
	}

	// Log the fresh account straight in.
	token, user, err := h.api.Login(r.Context(), username, password)
	if err != nil {
		h.render(w, "login.html", pageData{Title: "Sign in", Data: authPageData{
			Error:    "Account created. Please sign in.",
			Username: username,
		}})
		return
	}
	sid := session.NewSID()
	sess := session.Session{
		Token: token,
		User:  session.User{Username: user.Username, IsAdmin: user.IsAdmin},
		Flash: &session.Flash{Kind: "success", Message: "Account created"},
	}
	if err := h.store.Put(r.Context(), sid, sess); err != nil {
		h.logger.Error("session save failed", "err", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	session.SetCookie(w, sid, h.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid := session.SIDFromRequest(r); sid != "" {
		if err := h.store.Delete(r.Context(), sid); err != nil {
			h.logger.Error("session delete failed", "err", err)
		}
	}
	session.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
