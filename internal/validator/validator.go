package validator

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	json "github.com/goccy/go-json"
)

var (
	// trans is the singleton English translator for validation errors.
	trans ut.Translator
	once  sync.Once
)

// Setup registers the validator with English translations on Gin's binding engine.
// Safe to call more than once; only the first call has an effect.
func Setup() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("notblank", validators.NotBlank)

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		_ = v.RegisterTranslation("notblank", trans,
			func(t ut.Translator) error {
				return t.Add("notblank", "{0} must not be blank", true)
			},
			func(t ut.Translator, fe govalidator.FieldError) string {
				msg, _ := t.T("notblank", fe.Field())
				return msg
			},
		)
	})
}

// Fields extracts a field name → human-readable message map from a
// validation error. ok is false when err is not a validation error
// (e.g. a JSON syntax error).
func Fields(err error) (fields map[string]string, ok bool) {
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}

	fields = make(map[string]string, len(ve))
	for _, fe := range ve {
		if trans != nil {
			fields[fe.Field()] = fe.Translate(trans)
		} else {
			fields[fe.Field()] = fe.Error()
		}
	}
	return fields, true
}

// Normalizer is implemented by payloads that clean up their fields
// (e.g. trimming whitespace) before validation.
type Normalizer interface {
	Normalize()
}

// Bind decodes the JSON request body into dst, normalizes it and validates it.
// An empty body is validated as an empty object, so required fields are
// reported instead of a decode error.
func Bind(c *gin.Context, dst interface{}) error {
	if c.Request.Body != nil {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, dst); err != nil {
				return err
			}
		}
	}

	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	return binding.Validator.ValidateStruct(dst)
}
