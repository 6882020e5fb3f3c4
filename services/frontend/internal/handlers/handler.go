package handlers

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/amirv/salonbook/services/frontend/internal/apiclient"
	"github.com/amirv/salonbook/services/frontend/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	api           *apiclient.Client
	store         session.Store
	logger        *slog.Logger
	tmpl          *template.Template
	secureCookies bool
}

func New(api *apiclient.Client, store session.Store, logger *slog.Logger, secureCookies bool) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		api:           api,
		store:         store,
		logger:        logger,
		tmpl:          tmpl,
		secureCookies: secureCookies,
	}, nil
}

// Routes registers every page on mux. Admin pages carry the admin gate;
// everything except login/register sits behind CheckAuth.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterPage)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("POST /logout", h.Logout)

	mux.HandleFunc("GET /{$}", h.CheckAuth(h.BookingPage))
	mux.HandleFunc("POST /book", h.CheckAuth(h.Book))
	mux.HandleFunc("GET /my-appointments", h.CheckAuth(h.MyAppointmentsPage))
	mux.HandleFunc("POST /my-appointments", h.CheckAuth(h.MyAppointments))

	mux.HandleFunc("GET /admin", h.CheckAuth(h.requireAdmin(h.Dashboard)))
	mux.HandleFunc("GET /admin/history", h.CheckAuth(h.requireAdmin(h.History)))
	mux.HandleFunc("POST /admin/appointments/{id}/status", h.CheckAuth(h.requireAdmin(h.UpdateAppointmentStatus)))
	mux.HandleFunc("POST /admin/services", h.CheckAuth(h.requireAdmin(h.CreateService)))
	mux.HandleFunc("POST /admin/settings", h.CheckAuth(h.requireAdmin(h.UpdateSettings)))
}

type sessionKey struct{}

type sessionState struct {
	sid  string
	sess session.Session
}

func stateFrom(ctx context.Context) (sessionState, bool) {
	st, ok := ctx.Value(sessionKey{}).(sessionState)
	return st, ok
}

// CheckAuth loads the session for the sid cookie and stores it on the
// request context. Requests without a valid session go to the login page.
func (h *Handler) CheckAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := session.SIDFromRequest(r)
		if sid == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		sess, err := h.store.Get(r.Context(), sid)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				h.logger.Error("session load failed", "err", err)
			}
			session.ClearCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sessionState{sid: sid, sess: sess})
		next(w, r.WithContext(ctx))
	}
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := stateFrom(r.Context())
		if !ok || !st.sess.User.IsAdmin {
			h.redirectWithFlash(w, r, st.sid, "/", "error", "Admin access required")
			return
		}
		next(w, r)
	}
}

// handleAPIError deals with the one cross-cutting case: a 401 from any
// backend call destroys the session and lands on the login page. It returns
// true when the response has been written.
func (h *Handler) handleAPIError(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return false
	}
	if st, ok := stateFrom(r.Context()); ok {
		if derr := h.store.Delete(r.Context(), st.sid); derr != nil {
			h.logger.Error("session delete failed", "err", derr)
		}
	}
	session.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// errorMessage maps an API or transport error to a notification string.
func errorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return "Could not reach the server. Please try again."
}

// redirectWithFlash stores a one-shot notification on the session, then
// redirects. Sessions are best-effort here: a store failure only loses the
// notification.
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, sid, location, kind, message string) {
	if sid != "" {
		if sess, err := h.store.Get(r.Context(), sid); err == nil {
			sess.Flash = &session.Flash{Kind: kind, Message: message}
			if err := h.store.Put(r.Context(), sid, sess); err != nil {
				h.logger.Error("flash store failed", "err", err)
			}
		}
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// popFlash removes and returns the pending notification, if any.
func (h *Handler) popFlash(ctx context.Context, st sessionState) *session.Flash {
	flash := st.sess.Flash
	if flash == nil {
		return nil
	}
	st.sess.Flash = nil
	if err := h.store.Put(ctx, st.sid, st.sess); err != nil {
		h.logger.Error("flash clear failed", "err", err)
	}
	return flash
}

type pageData struct {
	Title    string
	User     session.User
	LoggedIn bool
	Flash    *session.Flash
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	st, ok := stateFrom(r.Context())
	pd := pageData{Title: title, Data: data}
	if ok {
		pd.User = st.sess.User
		pd.LoggedIn = true
		pd.Flash = h.popFlash(r.Context(), st)
	}
	h.render(w, name, pd)
}
