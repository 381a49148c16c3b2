package browser

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const visitorKey ctxKey = "visitor_id"

const visitorCookie = "visitor_id"

func VisitorFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(visitorKey).(string)
	return v, ok
}

// EnsureVisitor tags every request with an anonymous visitor id so
// shared favorites backends can scope their sets. First-time visitors
// get a uuid cookie.
func EnsureVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(visitorCookie); err == nil && c.Value != "" {
			id = c.Value
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     visitorCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   60 * 60 * 24 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), visitorKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
