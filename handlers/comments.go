package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/icco/yamdb/lib/validation"
	"github.com/icco/yamdb/models"
)

func (a *API) commentFromRoute(r *http.Request) (*models.Comment, error) {
	review, err := a.reviewFromRoute(r)
	if err != nil {
		return nil, err
	}
	commentID, err := parseID(chi.URLParam(r, "commentID"))
	if err != nil {
		return nil, err
	}
	return a.store.GetComment(r.Context(), review.ID, commentID)
}

func (a *API) ListComments(w http.ResponseWriter, r *http.Request) {
	review, err := a.reviewFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	comments, total, err := a.store.ListComments(r.Context(), review.ID, page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	results := make([]commentResponse, 0, len(comments))
	for i := range comments {
		results = append(results, newCommentResponse(&comments[i]))
	}
	writeJSON(w, http.StatusOK, paginate(r, page, total, results))
}

func (a *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	review, err := a.reviewFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req commentRequest
	if err := decode(r, validation.CommentSchema, false, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	author := actor(r)
	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: author.ID,
		Author:   author,
		Text:     *req.Text,
	}
	if err := a.store.CreateComment(r.Context(), comment); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCommentResponse(comment))
}

func (a *API) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, err := a.commentFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentResponse(comment))
}

// UpdateComment serves PUT and PATCH.
func (a *API) UpdateComment(w http.ResponseWriter, r *http.Request) {
	comment, err := a.commentFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := checkObject(r, reviewPolicy, comment); err != nil {
		a.writeError(w, r, err)
		return
	}

	var req commentRequest
	if err := decode(r, validation.CommentSchema, r.Method == http.MethodPatch, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Text != nil {
		comment.Text = *req.Text
	}

	if err := a.store.UpdateComment(r.Context(), comment); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentResponse(comment))
}

func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, err := a.commentFromRoute(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := checkObject(r, reviewPolicy, comment); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.store.DeleteComment(r.Context(), comment); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
