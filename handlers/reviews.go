package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/icco/yamdb/lib/permissions"
	"github.com/icco/yamdb/lib/store"
	"github.com/icco/yamdb/lib/validation"
	"github.com/icco/yamdb/models"
)

const duplicateReviewMessage = "You have already left the review"

// reviewPolicy guards reviews and comments: anyone reads, signed in users
// write, and only the author, moderators and administrators change existing
// objects.
var reviewPolicy = permissions.Set{
	permissions.AuthenticatedOrReadOnly,
	permissions.OwnerAdministratorOrModeratorOrReadOnly,
}

// titleFromRoute returns the id of the title in the URL after checking that
// it exists.
func (a *API) titleFromRoute(r *http.Request) (uint, error) {
	id, err := parseID(chi.URLParam(r, "titleID"))
	if err != nil {
		return 0, err
	}
	ok, err := a.store.TitleExists(r.Context(), id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("title %d: %w", id, store.ErrNotFound)
	}
	return id, nil
}

func (a *API) reviewFromRoute(r *http.Request) (*models.Review, error) {
	titleID, err := a.titleFromRoute(r)
	if err != nil {
		return nil, err
	}
	reviewID, err := parseID(chi.URLParam(r, "reviewID"))
	if err != nil {
		return nil, err
	}
	return a.store.GetReview(r.Context(), titleID, reviewID)
}

func (a *API) ListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, err := a.titleFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	reviews, total, err := a.store.ListReviews(r.Context(), titleID, page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	results := make([]reviewResponse, 0, len(reviews))
	for i := range reviews {
		results = append(results, newReviewResponse(&reviews[i]))
	}
	writeJSON(w, http.StatusOK, paginate(r, page, total, results))
}

func (a *API) CreateReview(w http.ResponseWriter, r *http.Request) {
	titleID, err := a.titleFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req reviewRequest
	if err := decode(r, validation.ReviewSchema, false, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	author := actor(r)
	exists, err := a.store.HasReview(r.Context(), titleID, author.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if exists {
		a.writeError(w, r, validation.NewError(validation.NonFieldErrors, duplicateReviewMessage))
		return
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Author:   author,
		Text:     *req.Text,
		Score:    *req.Score,
	}
	if err := a.store.CreateReview(r.Context(), review); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = validation.NewError(validation.NonFieldErrors, duplicateReviewMessage)
		}
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newReviewResponse(review))
}

func (a *API) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := a.reviewFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewResponse(review))
}

// UpdateReview serves PUT and PATCH. The one-review-per-title rule is only
// checked on create.
func (a *API) UpdateReview(w http.ResponseWriter, r *http.Request) {
	review, err := a.reviewFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := checkObject(r, reviewPolicy, review); err != nil {
		a.writeError(w, r, err)
		return
	}

	var req reviewRequest
	if err := decode(r, validation.ReviewSchema, r.Method == http.MethodPatch, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	if err := a.store.UpdateReview(r.Context(), review); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewResponse(review))
}

func (a *API) DeleteReview(w http.ResponseWriter, r *http.Request) {
	review, err := a.reviewFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := checkObject(r, reviewPolicy, review); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.store.DeleteReview(r.Context(), review); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
