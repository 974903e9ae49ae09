package middleware

import (
	"net/http"

	"evoting-portal/internal/session"
	"evoting-portal/pkg/logger"
)

// Guard resolves the session cookie and enforces route access rules
type Guard struct {
	store      *session.Store
	cookieName string
	secure     bool
	log        *logger.Logger
}

// NewGuard creates a route guard backed by the session store
func NewGuard(store *session.Store, cookieName string, secure bool, log *logger.Logger) *Guard {
	return &Guard{
		store:      store,
		cookieName: cookieName,
		secure:     secure,
		log:        log,
	}
}

// Resolve looks up the session for the request's cookie and stashes it on the
// context. Anonymous requests pass through with no session; the stricter
// middlewares below decide what that means per route.
func (g *Guard) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(g.cookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := g.store.Get(r.Context(), cookie.Value)
		if err != nil {
			g.log.WithError(err).Error("Session lookup failed")
			next.ServeHTTP(w, r)
			return
		}
		if sess == nil {
			g.ClearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

// RequireAuth redirects anonymous requests to the login page
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows the request through when the session satisfies any of
// the given role predicates. A mismatched role lands on its own home page,
// never on an error.
func (g *Guard) RequireRole(allowed func(*session.Session) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if sess == nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			if !allowed(sess) {
				http.Redirect(w, r, HomeFor(sess), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectAuthenticated sends already-logged-in users away from the login
// and registration pages to their home page.
func (g *Guard) RedirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := session.FromContext(r.Context()); sess != nil {
			http.Redirect(w, r, HomeFor(sess), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HomeFor returns the landing route for a session's role
func HomeFor(sess *session.Session) string {
	if sess != nil && sess.IsAdmin() {
		return "/admin"
	}
	return "/"
}

// SetCookie writes the session cookie for a freshly created session
func (g *Guard) SetCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie
func (g *Guard) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
