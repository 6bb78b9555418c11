package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/icco/yamdb/lib/auth"
	"github.com/icco/yamdb/lib/store"
	"github.com/icco/yamdb/lib/validation"
)

type registrationRequest struct {
	Email string `json:"email"`
}

type tokenRequest struct {
	Email            string `json:"email"`
	ConfirmationCode string `json:"confirmation_code"`
}

type authResponse struct {
	Response string `json:"response"`
	Token    string `json:"token"`
}

// Register creates the account for an email, or finds the existing one, and
// mails it a fresh confirmation code.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := decode(r, validation.RegistrationSchema, false, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	code := auth.NewConfirmationCode()
	u, err := a.store.RegisterUser(r.Context(), req.Email, code)
	if errors.Is(err, store.ErrDuplicate) {
		a.writeError(w, r, validation.NewError("email", "A user with that username already exists."))
		return
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	body := fmt.Sprintf("Your activation code is %s", code)
	if err := a.mailer.Send(r.Context(), u.Email, a.mailSubject, body); err != nil {
		a.writeError(w, r, fmt.Errorf("failed to send confirmation code: %w", err))
		return
	}

	a.logger.InfoContext(r.Context(), "Issued confirmation code", slog.Uint64("user_id", uint64(u.ID)))
	writeJSON(w, http.StatusCreated, map[string]string{"response": "We send you email with confirmation code"})
}

// Token exchanges an email and its current confirmation code for an access
// token.
func (a *API) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decode(r, validation.TokenSchema, false, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	u, err := a.store.UserByConfirmation(r.Context(), req.Email, req.ConfirmationCode)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusBadRequest, authResponse{
			Response: "User with this email and confirmation code not found",
		})
		return
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	token, err := a.issuer.Issue(u)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token})
}
