package validation

import (
	"fmt"
	"strings"

	"github.com/icco/yamdb/models"
	"github.com/xeipuuv/gojsonschema"
)

// Schema validates request bodies of one shape. Create and Partial differ only
// in whether required properties are enforced.
type Schema struct {
	create  *gojsonschema.Schema
	partial *gojsonschema.Schema
}

type property map[string]interface{}

var (
	stringProp     = func(maxLen int) property { return property{"type": "string", "maxLength": maxLen} }
	requiredText   = property{"type": "string", "minLength": 1}
	emailProp      = property{"type": "string", "format": "email", "maxLength": 254}
	slugProp       = property{"type": "string", "pattern": `^[-a-zA-Z0-9_]+$`, "maxLength": 50}
	usernameProp   = property{"type": "string", "pattern": `^[\w.@+-]+$`, "minLength": 1, "maxLength": 150}
	loginEmailProp = property{"type": "string", "format": "email", "maxLength": 150} // also stored as the username
)

var (
	RegistrationSchema = mustSchema(property{
		"email": loginEmailProp,
	}, "email")

	TokenSchema = mustSchema(property{
		"email":             loginEmailProp,
		"confirmation_code": property{"type": "string", "minLength": 1, "maxLength": 32},
	}, "email", "confirmation_code")

	UserSchema = mustSchema(property{
		"username":   usernameProp,
		"email":      emailProp,
		"first_name": stringProp(150),
		"last_name":  stringProp(150),
		"bio":        stringProp(500),
		"role":       property{"type": "string", "enum": roleNames()},
	}, "username", "email")

	SlugEntitySchema = mustSchema(property{
		"name": property{"type": "string", "minLength": 1, "maxLength": 256},
		"slug": slugProp,
	}, "name")

	TitleSchema = mustSchema(property{
		"name":        property{"type": "string", "minLength": 1, "maxLength": 256},
		"year":        property{"type": "integer", "minimum": 0},
		"description": property{"type": "string"},
		"category":    slugProp,
		"genre":       property{"type": "array", "items": slugProp, "minItems": 1},
	}, "name", "year", "category", "genre")

	ReviewSchema = mustSchema(property{
		"text":  requiredText,
		"score": property{"type": "integer", "minimum": 0, "maximum": 10},
	}, "text", "score")

	CommentSchema = mustSchema(property{
		"text": requiredText,
	}, "text")
)

func roleNames() []string {
	names := make([]string, 0, len(models.Roles))
	for _, r := range models.Roles {
		names = append(names, string(r))
	}
	return names
}

func mustSchema(props property, required ...string) *Schema {
	build := func(req []string) *gojsonschema.Schema {
		doc := map[string]interface{}{
			"type":       "object",
			"properties": props,
		}
		if len(req) > 0 {
			doc["required"] = req
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
		if err != nil {
			panic(fmt.Sprintf("invalid request schema: %v", err))
		}
		return s
	}
	return &Schema{create: build(required), partial: build(nil)}
}

// Validate checks body against the schema. partial skips required checks, for
// PATCH requests.
func (s *Schema) Validate(body []byte, partial bool) error {
	schema := s.create
	if partial {
		schema = s.partial
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return NewError(NonFieldErrors, fmt.Sprintf("Invalid JSON: %v", err))
	}
	if result.Valid() {
		return nil
	}

	errs := Errors{}
	for _, desc := range result.Errors() {
		field, _, _ := strings.Cut(desc.Field(), ".")
		if desc.Type() == "required" {
			if p, ok := desc.Details()["property"].(string); ok {
				errs.Add(p, "This field is required.")
				continue
			}
		}
		if field == "(root)" || field == "" {
			field = NonFieldErrors
		}
		errs.Add(field, desc.Description())
	}
	return errs
}
