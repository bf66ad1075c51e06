package http

import (
	"errors"
	"net/http"

	"github.com/nordsearch/pagefinder/internal/search/service"
	"github.com/nordsearch/pagefinder/internal/search/store"
	"github.com/nordsearch/pagefinder/pkg/httpx"
	"github.com/nordsearch/pagefinder/pkg/slogx"
)

type RegisterHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP handles account registration.
//
//	@Summary		Register an account
//	@Description	Validates the submitted form and creates a user. An already
//	@Description	authenticated caller is redirected without any account being written.
//	@Tags			Accounts
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Desired username"
//	@Param			email		formData	string	true	"Email address"
//	@Param			password	formData	string	true	"Password"
//	@Param			password2	formData	string	true	"Password confirmation"
//	@Success		201			{object}	OutcomeResponse			"Account created"
//	@Failure		409			{object}	httpx.ErrorResponse		"Username already taken"
//	@Failure		422			{object}	httpx.ErrorResponse		"Validation failure"
//	@Failure		500			{object}	httpx.ErrorResponse		"Internal server error"
//	@Router			/api/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// A logged-in user cannot register again; send them home untouched.
	if CurrentUser(ctx) != nil {
		httpx.WriteJSON(w, http.StatusOK, OutcomeResponse{
			Message:  "You are already logged in",
			Redirect: "/",
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	userID, err := h.AccountService.Register(ctx,
		r.PostFormValue("username"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
		r.PostFormValue("password2"),
	)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			code := http.StatusUnprocessableEntity
			if verr.Message == "The username is already taken" {
				code = http.StatusConflict
			}
			httpx.WriteError(w, code, verr.Message)
		case errors.Is(err, store.ErrAlreadyExists):
			// Lost a race with a concurrent registration of the same name.
			httpx.WriteError(w, http.StatusConflict, "The username is already taken")
		default:
			log.Error("register failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	log.Info("user registered", "user_id", userID)
	httpx.WriteJSON(w, http.StatusCreated, OutcomeResponse{
		Message:  "You were successfully registered and can login now",
		Redirect: "/login",
		UserID:   userID,
	})
}
