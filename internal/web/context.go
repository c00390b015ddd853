package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/buyside/internal/logging"
	"github.com/JonMunkholm/buyside/internal/session"
)

type ctxKey int

const sessionKey ctxKey = iota

// withSession resolves the browser session from its cookie and adds it to
// the request context. The cookie is re-issued on every request so its
// MaxAge slides with the store's idle TTL.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}

		sess, created := s.sessions.Get(id)
		if created {
			logging.FromContext(r.Context()).Debug("session started", "session_id", sess.ID)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     s.cfg.Session.CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.cfg.Session.TTL.Seconds()),
			HttpOnly: true,
			Secure:   s.cfg.Session.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		ctx = logging.WithSessionID(ctx, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session added by withSession.
func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}
