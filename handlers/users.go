package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/icco/yamdb/lib/store"
	"github.com/icco/yamdb/lib/validation"
	"github.com/icco/yamdb/models"
)

const uniqueMessage = "This field must be unique."

func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	users, total, err := a.store.ListUsers(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	results := make([]userResponse, 0, len(users))
	for i := range users {
		results = append(results, newUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, paginate(r, page, total, results))
}

func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decode(r, validation.UserSchema, false, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	u := &models.User{Role: models.RoleUser}
	req.apply(u, true)
	if err := a.checkUnique(r.Context(), u); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.store.CreateUser(r.Context(), u); err != nil {
		a.writeError(w, r, uniqueViolation(err))
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(u))
}

func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.store.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

// UpdateUser serves PUT and PATCH on a user for administrators.
func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.store.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.updateUser(w, r, u, r.Method == http.MethodPatch, true)
}

func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.store.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.store.DeleteUser(r.Context(), u); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) GetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newUserResponse(actor(r)))
}

// UpdateMe lets the caller edit their own profile. The role cannot be changed
// this way.
func (a *API) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u := *actor(r)
	a.updateUser(w, r, &u, true, false)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, u *models.User, partial, withRole bool) {
	var req userRequest
	if err := decode(r, validation.UserSchema, partial, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	req.apply(u, withRole)
	if err := a.checkUnique(r.Context(), u); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.store.UpdateUser(r.Context(), u); err != nil {
		a.writeError(w, r, uniqueViolation(err))
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

// checkUnique reports username and email values already held by another user.
func (a *API) checkUnique(ctx context.Context, u *models.User) error {
	errs := validation.Errors{}

	taken, err := a.store.UsernameTaken(ctx, u.Username, u.ID)
	if err != nil {
		return err
	}
	if taken {
		errs.Add("username", uniqueMessage)
	}

	taken, err = a.store.EmailTaken(ctx, u.Email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		errs.Add("email", uniqueMessage)
	}
	return errs.Err()
}

// uniqueViolation maps a unique index failure that slipped past checkUnique
// to a validation error.
func uniqueViolation(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return validation.NewError(validation.NonFieldErrors, "A user with that username or email already exists.")
	}
	return err
}
