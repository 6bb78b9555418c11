package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/icco/yamdb/lib/auth"
	"github.com/icco/yamdb/lib/permissions"
	"github.com/icco/yamdb/lib/store"
	"github.com/icco/yamdb/lib/validation"
	"github.com/icco/yamdb/models"
)

const (
	maxBodyBytes    = 1 << 20
	defaultPageSize = 10
)

var errPermissionDenied = errors.New("permission denied")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError turns err into the matching HTTP response. Anything that is not
// a validation, permission or lookup failure is logged and reported as 500.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, verrs)
	case errors.Is(err, errPermissionDenied):
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, store.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	default:
		a.logger.ErrorContext(r.Context(), "Request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// requirePolicy rejects requests the view level of p does not allow.
func requirePolicy(p permissions.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.Allow(r.Method, auth.UserFrom(r.Context())) {
				writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkObject applies the object level of p to obj.
func checkObject(r *http.Request, p permissions.Policy, obj permissions.Authored) error {
	if !p.AllowObject(r.Method, auth.UserFrom(r.Context()), obj) {
		return errPermissionDenied
	}
	return nil
}

func actor(r *http.Request) *models.User {
	return auth.UserFrom(r.Context())
}

// decode validates the request body against schema and unmarshals it into dst.
// An empty body is treated as an empty object.
func decode(r *http.Request, schema *validation.Schema, partial bool, dst interface{}) error {
	body, err := readBody(r)
	if err != nil {
		return validation.NewError(validation.NonFieldErrors, err.Error())
	}
	if err := schema.Validate(body, partial); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return validation.NewError(validation.NonFieldErrors, fmt.Sprintf("Invalid JSON: %v", err))
	}
	return nil
}

// readBody returns the request body as JSON. Form submissions are converted
// to an object of their first values.
func readBody(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("Malformed form data: %w", err)
		}
		fields := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		return json.Marshal(fields)
	}

	if r.Body == nil {
		return []byte("{}"), nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("Failed to read request body: %w", err)
	}
	if len(body) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

// parseID reads a numeric URL parameter. Malformed ids are reported as not
// found, like ids that do not exist.
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("bad id %q: %w", raw, store.ErrNotFound)
	}
	return uint(id), nil
}

func parsePage(r *http.Request) (store.Page, error) {
	page := store.Page{Number: 1, Size: defaultPageSize}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, validation.NewError("page", "A valid integer is required.")
		}
		page.Number = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, validation.NewError("page_size", "A valid integer is required.")
		}
		page.Size = n
	}
	if err := validation.ValidatePagination(page.Number, page.Size); err != nil {
		return page, err
	}
	return page, nil
}

type pageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func paginate(r *http.Request, page store.Page, total int64, results interface{}) pageResponse {
	resp := pageResponse{Count: total, Results: results}
	if int64(page.Number*page.Size) < total {
		next := pageURL(r, page.Number+1)
		resp.Next = &next
	}
	if page.Number > 1 {
		prev := pageURL(r, page.Number-1)
		resp.Previous = &prev
	}
	return resp
}

func pageURL(r *http.Request, number int) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(number))
	u.RawQuery = q.Encode()
	return u.String()
}
