package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

const maxRequestBody = 64 << 10

// requestValidator checks request structs against their `validate` tags and
// renders failures as English messages keyed by JSON field name.
type requestValidator struct {
	v     *validator.Validate
	trans ut.Translator
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(err)
	}

	return &requestValidator{v: v, trans: trans}
}

// fieldErrors is the result of a failed validation.
type fieldErrors struct {
	details map[string]string
	missing bool // at least one required field was absent
}

// check returns nil when req is valid.
func (rv *requestValidator) check(req any) *fieldErrors {
	err := rv.v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &fieldErrors{details: map[string]string{"": err.Error()}}
	}

	fe := &fieldErrors{details: make(map[string]string, len(verrs))}
	for _, e := range verrs {
		fe.details[e.Field()] = e.Translate(rv.trans)
		if e.Tag() == "required" {
			fe.missing = true
		}
	}
	return fe
}

var errBadBody = errors.New("invalid request body")

// decodeBody reads a single JSON object into dst. An empty body leaves dst
// untouched so that validation reports the missing fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}
