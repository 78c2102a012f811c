package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/voxkit/errors"
)

// FieldError is one rejected field, reported under "fields" in the error
// details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Tag names consulted, in order, for the name a field is reported under.
var nameTags = []string{"mapstructure", "json", "form"}

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
})

func fieldName(f reflect.StructField) string {
	for _, tag := range nameTags {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return toSnakeCase(f.Name)
}

// Validate checks s against its `validate` tags. Failures come back as an
// INVALID_INPUT AppError.
func Validate(s any) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Validation("validation failed").WithCause(err)
	}

	fields := make([]FieldError, len(verrs))
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: path(fe), Message: describe(fe)}
		parts[i] = fields[i].Field + ": " + fields[i].Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}

// path is the field namespace without the root type, e.g. "chunking.window".
func path(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

var tagMessages = map[string]string{
	"required": "is required",
	"url":      "must be a valid URL",
	"http_url": "must be a valid URL",
	"oneof":    "must be one of: ",
	"gt":       "must be greater than ",
	"gte":      "must be at least ",
	"min":      "must be at least ",
	"lt":       "must be less than ",
	"lte":      "must be at most ",
	"max":      "must be at most ",
}

func describe(fe validator.FieldError) string {
	if fe.Tag() == "gtefield" {
		return "must be at least " + toSnakeCase(fe.Param())
	}
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.HasSuffix(msg, " ") {
		return msg + fe.Param()
	}
	return msg
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
