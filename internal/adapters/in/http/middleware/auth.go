// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// TokenVerifier is satisfied by *firebase auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var (
	ctxKeyUID   = ctxKey{name: "uid"}
	ctxKeyEmail = ctxKey{name: "email"}
	ctxKeyAdmin = ctxKey{name: "admin"}
)

// BuyerAuth は Authorization: Bearer <ID_TOKEN> があれば検証し、uid/email を context に詰める。
// トークンなしのリクエストは匿名（cookie セッション）としてそのまま通す。
type BuyerAuth struct {
	Verifier TokenVerifier
	Log      *zap.Logger
}

func (m *BuyerAuth) Handler(next http.Handler) http.Handler {
	log := zap.NewNop()
	if m != nil && m.Log != nil {
		log = m.Log.Named("buyer_auth")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if m == nil || m.Verifier == nil || authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeAuthErr(w, "unauthorized: missing bearer token")
			return
		}
		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			writeAuthErr(w, "unauthorized: empty bearer token")
			return
		}

		token, err := m.Verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil || token == nil {
			log.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			writeAuthErr(w, "invalid token")
			return
		}
		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			writeAuthErr(w, "invalid uid in token")
			return
		}

		log.Debug("token accepted", zap.String("uid", maskUID(uid)))

		ctx := context.WithValue(r.Context(), ctxKeyUID, uid)
		if e, ok := token.Claims["email"].(string); ok && strings.TrimSpace(e) != "" {
			ctx = context.WithValue(ctx, ctxKeyEmail, strings.TrimSpace(e))
		}
		if isAdminClaims(token.Claims) {
			ctx = context.WithValue(ctx, ctxKeyAdmin, true)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isAdminClaims は custom claims の role == "admin" または admin == true を管理者とみなす。
func isAdminClaims(claims map[string]any) bool {
	if role, ok := claims["role"].(string); ok && strings.EqualFold(strings.TrimSpace(role), "admin") {
		return true
	}
	admin, _ := claims["admin"].(bool)
	return admin
}

// RequireAdmin guards the admin API. It must run after BuyerAuth:
// 401 without a verified token, 403 when the token has no admin claim.
func RequireAdmin(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("require_admin")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := CurrentUserUID(r)
			if !ok {
				writeAuthErr(w, "unauthorized: admin token required")
				return
			}
			if !IsAdmin(r) {
				log.Info("admin access denied", zap.String("uid", maskUID(uid)), zap.String("path", r.URL.Path))
				writeJSONErr(w, http.StatusForbidden, "forbidden: admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthErr(w http.ResponseWriter, msg string) {
	writeJSONErr(w, http.StatusUnauthorized, msg)
}

func writeJSONErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// CurrentUserUID returns the Firebase uid put in the context by BuyerAuth.
func CurrentUserUID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(ctxKeyUID).(string)
	return uid, ok && uid != ""
}

// UIDFromContext is CurrentUserUID for code that only has the context.
func UIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(ctxKeyUID).(string)
	return uid
}

// IsAdmin is true when BuyerAuth verified a token carrying the admin claim.
func IsAdmin(r *http.Request) bool {
	admin, _ := r.Context().Value(ctxKeyAdmin).(bool)
	return admin
}

func CurrentUserEmail(r *http.Request) (string, bool) {
	e, ok := r.Context().Value(ctxKeyEmail).(string)
	return e, ok && e != ""
}

// WithUID is used by tests and the CLI to act as a signed-in buyer.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKeyUID, strings.TrimSpace(uid))
}

// WithAdmin marks ctx as carrying a verified admin token; tests only.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyAdmin, true)
}

// avoid logging raw uid
func maskUID(uid string) string {
	if len(uid) <= 6 {
		return "***"
	}
	return uid[:3] + "***" + uid[len(uid)-3:]
}
