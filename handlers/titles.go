package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/icco/yamdb/lib/store"
	"github.com/icco/yamdb/lib/validation"
	"github.com/icco/yamdb/models"
)

func (a *API) ListTitles(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := store.TitleFilter{
		Name:     q.Get("name"),
		Genre:    q.Get("genre"),
		Category: q.Get("category"),
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			a.writeError(w, r, validation.NewError("year", "Enter a number."))
			return
		}
		filter.Year = &year
	}

	titles, total, err := a.store.ListTitles(r.Context(), filter, page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	results := make([]titleReadResponse, 0, len(titles))
	for i := range titles {
		results = append(results, newTitleReadResponse(&titles[i]))
	}
	writeJSON(w, http.StatusOK, paginate(r, page, total, results))
}

func (a *API) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "titleID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	t, err := a.store.GetTitle(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTitleReadResponse(t))
}

func (a *API) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decode(r, validation.TitleSchema, false, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	t := &models.Title{}
	genres, err := a.applyTitle(r.Context(), t, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.store.CreateTitle(r.Context(), t, genres); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTitleWriteResponse(t))
}

// UpdateTitle serves PUT and PATCH.
func (a *API) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "titleID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	t, err := a.store.GetTitle(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req titleRequest
	if err := decode(r, validation.TitleSchema, r.Method == http.MethodPatch, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	genres, err := a.applyTitle(r.Context(), t, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.store.UpdateTitle(r.Context(), t, genres); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTitleWriteResponse(t))
}

func (a *API) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "titleID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.store.DeleteTitle(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyTitle copies the fields present in req onto t, resolving the category
// and genre slugs. The returned genres are nil when req does not name any.
func (a *API) applyTitle(ctx context.Context, t *models.Title, req titleRequest) ([]models.Genre, error) {
	errs := validation.Errors{}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Year != nil {
		if err := validation.ValidateYear(*req.Year); err != nil {
			errs.Add("year", err.Error())
		}
		t.Year = *req.Year
	}

	if req.Category != nil {
		c, err := store.GetSlugged[models.Category](ctx, a.store, *req.Category)
		switch {
		case errors.Is(err, store.ErrNotFound):
			errs.Add("category", missingSlug(*req.Category))
		case err != nil:
			return nil, err
		default:
			t.CategoryID = &c.ID
			t.Category = c
		}
	}

	var genres []models.Genre
	if req.Genre != nil {
		found, missing, err := a.store.GenresBySlugs(ctx, req.Genre)
		if err != nil {
			return nil, err
		}
		for _, s := range missing {
			errs.Add("genre", missingSlug(s))
		}
		genres = found
		if genres == nil {
			genres = []models.Genre{}
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}

func missingSlug(s string) string {
	return fmt.Sprintf("Object with slug=%s does not exist.", strings.TrimSpace(s))
}
