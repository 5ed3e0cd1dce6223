// Package validate wraps a singleton go-playground validator with English
// messages keyed by json field names.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/Simplici0/quote.works/internal/sla"
)

// Error carries one message per invalid field, keyed by json path.
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
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field builds an Error for a single field.
func Field(name, message string) *Error {
	return &Error{Fields: map[string]string{name: message}}
}

type service struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	once sync.Once
	svc  *service
)

func get() *service {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerShort(v, trans, "min", "{0} must be at least {1}")
		registerShort(v, trans, "max", "{0} must be at most {1}")

		_ = v.RegisterValidation("page_range", func(fl validator.FieldLevel) bool {
			return sla.ValidRange(fl.Field().String())
		})
		registerShort(v, trans, "page_range", "{0} must be a page range like 1-3, 4+ or 5")

		svc = &service{v: v, trans: trans}
	})
	return svc
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Struct validates v. Field failures come back as *Error; anything else
// (a nil or non-struct argument) is returned wrapped.
func Struct(v any) error {
	s := get()
	err := s.v.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		if _, dup := out.Fields[key]; !dup {
			out.Fields[key] = fe.Translate(s.trans)
		}
	}
	return out
}
