// internal/adapters/in/http/mall/handler/helper_handler.go
package mallHandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"modaorganica/internal/adapters/in/http/middleware"
	usecase "modaorganica/internal/application/usecase"
)

// SessionCookieName identifies anonymous storefront sessions.
const SessionCookieName = "mo_session"

const maxBodyBytes = 1 << 20

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(msg)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not found")
}

// decodeJSON reads at most 1MiB. An empty body decodes to the zero value.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// trimPrefixPath normalizes the path (drop trailing slash) and strips prefix.
func trimPrefixPath(p, prefix string) string {
	p = strings.TrimSuffix(p, "/")
	p = strings.TrimPrefix(p, prefix)
	return strings.Trim(p, "/")
}

// ============================================================
// Storefront session resolution
// ============================================================

// SessionResolver maps a request to its storefront session:
// the Firebase uid when BuyerAuth verified a token, the mo_session cookie otherwise.
// A request without either gets a fresh cookie.
type SessionResolver struct {
	Sessions     *usecase.StorefrontSessions
	SecureCookie bool
	MaxAge       time.Duration
	NewID        func() string
}

func (s *SessionResolver) Resolve(w http.ResponseWriter, r *http.Request) (*usecase.StorefrontSession, error) {
	if s == nil || s.Sessions == nil {
		return nil, errors.New("storefront sessions are not configured")
	}
	if uid, ok := middleware.CurrentUserUID(r); ok {
		return s.Sessions.Get(r.Context(), "uid:"+uid)
	}

	if c, err := r.Cookie(SessionCookieName); err == nil && validSessionID(c.Value) {
		return s.Sessions.Get(r.Context(), "anon:"+c.Value)
	}

	id := s.newID()
	maxAge := s.MaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return s.Sessions.Get(r.Context(), "anon:"+id)
}

func (s *SessionResolver) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func validSessionID(v string) bool {
	if len(v) < 8 || len(v) > 64 {
		return false
	}
	for _, r := range v {
		if !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
