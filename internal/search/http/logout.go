package http

import (
	"net/http"

	"github.com/nordsearch/pagefinder/pkg/httpx"
	"github.com/nordsearch/pagefinder/pkg/slogx"
)

type LogoutHandler struct{}

// ServeHTTP handles logout. Clearing an absent session is fine; the
// endpoint is idempotent.
//
//	@Summary		Log out
//	@Description	Clears the session cookie. Safe to call without an active session.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	OutcomeResponse	"Logged out"
//	@Router			/api/logout [get].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if user := CurrentUser(ctx); user != nil {
		slogx.FromContext(ctx).Info("user logged out", "user_id", user.ID)
	}
	clearSession(w)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, OutcomeResponse{
		Message:  "You were logged out",
		Redirect: "/",
	})
}
