package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/nordsearch/pagefinder/internal/search/domain"
	"github.com/nordsearch/pagefinder/internal/search/session"
	"github.com/nordsearch/pagefinder/internal/search/store"
	"github.com/nordsearch/pagefinder/pkg/httpx"
	"github.com/nordsearch/pagefinder/pkg/slogx"
)

const sessionCookieName = "pagefinder_session"

type ctxKey string

const ctxKeyUser ctxKey = "current_user"

// SessionMiddleware resolves the session cookie to a user exactly once per
// request and stores the result in the request context. Absent cookies,
// bad tokens, and dangling user ids all resolve to anonymous; only a
// genuine store failure fails the request, so an outage is not masked as a
// silent logout.
func SessionMiddleware(sessions *session.Manager, st store.Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			user, err := resolveSession(ctx, sessions, st, r)
			if err != nil {
				slogx.FromContext(ctx).Error("session user lookup failed", "err", err)
				httpx.WriteError(w, http.StatusInternalServerError, "session resolution failed")
				return
			}
			if user != nil {
				ctx = context.WithValue(ctx, ctxKeyUser, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveSession(
	ctx context.Context,
	sessions *session.Manager,
	st store.Store,
	r *http.Request,
) (*domain.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	userID, err := sessions.Parse(cookie.Value)
	if err != nil {
		return nil, nil
	}

	user, err := st.Users().GetUserByID(ctx, userID)
	if err != nil {
		// A deleted user degrades to anonymous.
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CurrentUser returns the authenticated user for this request, or nil for
// anonymous.
func CurrentUser(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(ctxKeyUser).(*domain.User); ok {
		return u
	}
	return nil
}

// establishSession binds the session cookie to the issued token.
func establishSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSession removes any session binding. Clearing an anonymous session
// is a no-op, not an error.
func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
