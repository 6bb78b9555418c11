package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// NonFieldErrors is the key used for errors that do not belong to one field.
const NonFieldErrors = "non_field_errors"

// Errors maps field names to the messages describing what is wrong with them.
// It is rendered as-is in 400 responses.
type Errors map[string][]string

// Add appends msg to the messages recorded for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Err returns e as an error, or nil when nothing was recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NewError builds a single-message Errors value.
func NewError(field, msg string) Errors {
	return Errors{field: {msg}}
}

var ErrFutureYear = errors.New("Year of title cannot be more than current year!")

// ValidateYear rejects years later than the current calendar year.
func ValidateYear(year int) error {
	if year > time.Now().Year() {
		return ErrFutureYear
	}
	return nil
}

// ValidatePagination checks the page and page_size query parameters. Errors
// are keyed by parameter name.
func ValidatePagination(page, size int) error {
	errs := Errors{}
	if page < 1 {
		errs.Add("page", "page must be greater than 0")
	}
	if size < 1 || size > 100 {
		errs.Add("page_size", "page_size must be between 1 and 100")
	}
	return errs.Err()
}
