package rpc

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag  = "notblank"
	notBlankText = "{0} must not be blank"

	requiredTag  = "required"
	requiredText = "{0} is required"
)

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")

	validate = validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names, they are what callers send.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	registerTranslation(notBlankTag, notBlankText, false)
	registerTranslation(requiredTag, requiredText, true)
}

func registerTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// notBlank rejects strings made only of whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validate checks the validate tags of a struct input. Non-struct inputs
// carry no rules and always pass.
func Validate(in interface{}) error {
	v := reflect.ValueOf(in)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(in); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return fieldErrors(verrs)
		}
		return BadRequest(err.Error())
	}
	return nil
}

func fieldErrors(verrs validator.ValidationErrors) *Error {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &Error{Code: CodeBadRequest, Message: "Invalid input", Fields: fields}
}
