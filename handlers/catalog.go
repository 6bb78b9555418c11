package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"
	"github.com/icco/yamdb/lib/store"
	"github.com/icco/yamdb/lib/validation"
	"github.com/icco/yamdb/models"
)

const maxSlugLen = 50

// catalog serves the list, create and delete endpoints shared by categories
// and genres.
type catalog[T store.Slugged] struct {
	api    *API
	build  func(name, slug string) T
	render func(T) slugResponse
	remove func(ctx context.Context, slug string) error
}

func (a *API) categories() *catalog[models.Category] {
	return &catalog[models.Category]{
		api:    a,
		build:  func(name, slug string) models.Category { return models.Category{Name: name, Slug: slug} },
		render: categoryResponse,
		remove: a.store.DeleteCategory,
	}
}

func (a *API) genres() *catalog[models.Genre] {
	return &catalog[models.Genre]{
		api:    a,
		build:  func(name, slug string) models.Genre { return models.Genre{Name: name, Slug: slug} },
		render: genreResponse,
		remove: a.store.DeleteGenre,
	}
}

func (c *catalog[T]) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		c.api.writeError(w, r, err)
		return
	}

	items, total, err := store.ListSlugged[T](r.Context(), c.api.store, r.URL.Query().Get("search"), page)
	if err != nil {
		c.api.writeError(w, r, err)
		return
	}

	results := make([]slugResponse, 0, len(items))
	for _, item := range items {
		results = append(results, c.render(item))
	}
	writeJSON(w, http.StatusOK, paginate(r, page, total, results))
}

func (c *catalog[T]) Create(w http.ResponseWriter, r *http.Request) {
	var req slugRequest
	if err := decode(r, validation.SlugEntitySchema, false, &req); err != nil {
		c.api.writeError(w, r, err)
		return
	}

	s := req.Slug
	if s == "" {
		s = deriveSlug(req.Name)
	}
	if s == "" {
		c.api.writeError(w, r, validation.NewError("slug", "This field is required."))
		return
	}

	taken, err := store.SlugTaken[T](r.Context(), c.api.store, s)
	if err != nil {
		c.api.writeError(w, r, err)
		return
	}
	if taken {
		c.api.writeError(w, r, validation.NewError("slug", uniqueMessage))
		return
	}

	item := c.build(req.Name, s)
	if err := store.CreateSlugged(r.Context(), c.api.store, &item); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = validation.NewError("slug", uniqueMessage)
		}
		c.api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c.render(item))
}

func (c *catalog[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.remove(r.Context(), chi.URLParam(r, "slug")); err != nil {
		c.api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deriveSlug turns a display name into a slug that fits the column.
func deriveSlug(name string) string {
	s := slug.Make(name)
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}
