package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

const (
	cartSessionHeader = "X-Cart-Session"
	cartSessionCookie = "cart_session"
	maxSessionLength  = 64
)

// CartSession resolves the browsing session that owns the cart and RFQ panel.
// The header wins over the cookie; a malformed or missing value is replaced
// with a fresh uuid. The resolved id is echoed in both header and cookie.
func CartSession(ttl time.Duration, secure bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(cartSessionHeader))
			if sessionID == "" {
				if cookie, err := r.Cookie(cartSessionCookie); err == nil {
					sessionID = strings.TrimSpace(cookie.Value)
				}
			}

			minted := false
			if !validSessionID(sessionID) {
				sessionID = uuid.NewString()
				minted = true
			}

			w.Header().Set(cartSessionHeader, sessionID)
			cookie := &http.Cookie{
				Name:     cartSessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			}
			if ttl > 0 {
				cookie.MaxAge = int(ttl.Seconds())
			}
			http.SetCookie(w, cookie)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
				if minted {
					logg.Debug(ctx, "cart_session.minted")
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validSessionID(value string) bool {
	if value == "" || len(value) > maxSessionLength {
		return false
	}
	for _, ch := range value {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return false
		}
	}
	return true
}
