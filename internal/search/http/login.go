package http

import (
	"errors"
	"net/http"

	"github.com/nordsearch/pagefinder/internal/search/service"
	"github.com/nordsearch/pagefinder/internal/search/session"
	"github.com/nordsearch/pagefinder/pkg/httpx"
	"github.com/nordsearch/pagefinder/pkg/slogx"
)

type LoginHandler struct {
	AccountService *service.AccountService
	Sessions       *session.Manager
}

// ServeHTTP handles form login.
//
//	@Summary		Log in
//	@Description	Verifies a username/password pair and establishes a session cookie.
//	@Description	Unknown usernames and wrong passwords fail with distinct messages.
//	@Tags			Accounts
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Username"
//	@Param			password	formData	string	true	"Password"
//	@Success		200			{object}	OutcomeResponse			"Logged in"
//	@Failure		401			{object}	httpx.ErrorResponse		"Invalid username or Invalid password"
//	@Failure		500			{object}	httpx.ErrorResponse		"Internal server error"
//	@Router			/api/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.AccountService.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUsername) || errors.Is(err, service.ErrInvalidPassword) {
			httpx.WriteError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Error("authenticate failed", "username", username, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.Sessions.Issue(user.ID)
	if err != nil {
		log.Error("issuing session token failed", "user_id", user.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}
	establishSession(w, token)

	log.Info("user logged in", "user_id", user.ID, "username", user.Username)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, OutcomeResponse{
		Message:  "You were logged in",
		Redirect: "/",
		UserID:   user.ID,
	})
}
