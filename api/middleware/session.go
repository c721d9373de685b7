package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/skillwave/skillwave-backend/pkg/logger"
)

const sessionHeader = "X-Session-Id"

// GuestSession attaches a browsing session identifier to every request so
// anonymous visitors can hold a cart. The client echoes the header back on
// subsequent requests; a fresh identifier is minted when none is supplied
// or the supplied value is not a UUID.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionHeader))
			if _, err := uuid.Parse(sessionID); err != nil {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
