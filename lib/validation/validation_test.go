package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/icco/yamdb/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateYear(t *testing.T) {
	now := time.Now().Year()

	assert.NoError(t, ValidateYear(now))
	assert.NoError(t, ValidateYear(1895))
	assert.ErrorIs(t, ValidateYear(now+1), ErrFutureYear)
	assert.Equal(t, "Year of title cannot be more than current year!", ErrFutureYear.Error())
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		page, size int
		wantFields []string
	}{
		{1, 10, nil},
		{3, 100, nil},
		{0, 10, []string{"page"}},
		{1, 0, []string{"page_size"}},
		{1, 101, []string{"page_size"}},
		{0, 500, []string{"page", "page_size"}},
	}
	for _, tt := range tests {
		err := ValidatePagination(tt.page, tt.size)
		if tt.wantFields == nil {
			assert.NoError(t, err, "page=%d size=%d", tt.page, tt.size)
			continue
		}
		var errs Errors
		require.True(t, errors.As(err, &errs), "page=%d size=%d", tt.page, tt.size)
		assert.Len(t, errs, len(tt.wantFields))
		for _, f := range tt.wantFields {
			assert.Contains(t, errs, f)
		}
	}
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	assert.NoError(t, errs.Err())

	errs.Add("name", "This field is required.")
	errs.Add("name", "Too long.")
	errs.Add(NonFieldErrors, "Bad.")

	err := errs.Err()
	require.Error(t, err)
	var target Errors
	require.True(t, errors.As(err, &target))
	assert.Equal(t, []string{"This field is required.", "Too long."}, target["name"])
	assert.Equal(t, "validation failed: name: This field is required.; Too long., non_field_errors: Bad.", err.Error())
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		body    string
		partial bool
		valid   bool
	}{
		{"valid review", ReviewSchema, `{"text":"Great","score":10}`, false, true},
		{"partial skips required", ReviewSchema, `{"score":5}`, true, true},
		{"score too high", ReviewSchema, `{"text":"x","score":11}`, true, false},
		{"score not integer", ReviewSchema, `{"text":"x","score":"high"}`, true, false},
		{"valid token request", TokenSchema, `{"email":"a@example.com","confirmation_code":"abc"}`, false, true},
		{"bad email", RegistrationSchema, `{"email":"nope"}`, false, false},
		{"email longer than a username", RegistrationSchema, `{"email":"` + strings.Repeat("a", 140) + `@example.com"}`, false, false},
		{"email at username limit", RegistrationSchema, `{"email":"` + strings.Repeat("a", 138) + `@example.com"}`, false, true},
		{"unknown role", UserSchema, `{"role":"owner"}`, true, false},
		{"bad slug", SlugEntitySchema, `{"name":"Films","slug":"no spaces"}`, false, false},
		{"empty genre list", TitleSchema, `{"genre":[]}`, true, false},
		{"not an object", CommentSchema, `[]`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate([]byte(tt.body), tt.partial)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var errs Errors
			require.True(t, errors.As(err, &errs), "got %v", err)
			assert.NotEmpty(t, errs)
		})
	}
}

func TestUserSchemaRoles(t *testing.T) {
	for _, r := range models.Roles {
		assert.NoError(t, UserSchema.Validate([]byte(`{"role":"`+string(r)+`"}`), true), r)
	}
	assert.Error(t, UserSchema.Validate([]byte(`{"role":"owner"}`), true))
}

func TestSchemaRequired(t *testing.T) {
	err := TitleSchema.Validate([]byte(`{"name":"Solaris"}`), false)
	assert.Equal(t, Errors{
		"year":     {"This field is required."},
		"category": {"This field is required."},
		"genre":    {"This field is required."},
	}, err)
}

func TestSchemaFieldKeys(t *testing.T) {
	err := ReviewSchema.Validate([]byte(`{"text":"x","score":11}`), false)
	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "score")

	err = CommentSchema.Validate([]byte(`[]`), false)
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, NonFieldErrors)

	err = TokenSchema.Validate([]byte(`{not json`), false)
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, NonFieldErrors)
}
