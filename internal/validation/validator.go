// Package validation checks request payloads and cleans free-text input.
package validation

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// ErrInvalid is matched by every error returned from Validate.
var ErrInvalid = errors.New("validation failed")

// Error lists the offending fields by their JSON names.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Field builds a single-field validation error.
func Field(name, message string) error {
	return &Error{Fields: map[string]string{name: message}}
}

type Validator struct {
	v      *validator.Validate
	policy *bluemonday.Policy
}

func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("imageref", isImageRef)

	return &Validator{v: v, policy: bluemonday.StrictPolicy()}
}

// isImageRef accepts an http(s) URL or a root-relative path such as
// "/media/u/x.jpg".
func isImageRef(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	if strings.HasPrefix(s, "/") {
		return !strings.HasPrefix(s, "//")
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate runs the struct's validate tags.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[fieldName(e)] = friendlyMessage(e)
	}
	return &Error{Fields: fields}
}

// maxTextPasses bounds Text for pathological nesting like "&amp;amp;lt;".
const maxTextPasses = 8

// Text strips markup from user-supplied text and trims surrounding space.
// Entities are decoded so "Rock & Roll" survives, and the result is sanitised
// again until it is stable, so encoded markup never comes back to life.
func (v *Validator) Text(s string) string {
	for i := 0; i < maxTextPasses; i++ {
		next := html.UnescapeString(v.policy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	// Still changing: keep the escaped form rather than risk live markup.
	return strings.TrimSpace(v.policy.Sanitize(s))
}

// fieldName drops the struct name from the namespace so nested and slice
// fields read like "tags[1]".
func fieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "imageref":
		return "must be an http(s) URL or an absolute path"
	default:
		return "is invalid"
	}
}
