package catalog

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/agentstation/opslevel/pkg/errors"
)

// entityNamePattern matches Backstage object names: alphanumerics separated
// by single dashes, underscores or dots.
var entityNamePattern = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9_.]*)?[A-Za-z0-9]$`)

type entityValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	validatorOnce sync.Once
	validatorSvc  *entityValidator
)

func getValidator() *entityValidator {
	validatorOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// report fields by their catalog key, not the Go name
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

		_ = v.RegisterValidation("entityname", func(fl validator.FieldLevel) bool {
			return entityNamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterTranslation("entityname", trans,
			func(ut ut.Translator) error {
				return ut.Add("entityname", "{0} must be alphanumerics separated by [-_.]", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("entityname", fe.Field())
				return msg
			},
		)

		validatorSvc = &entityValidator{validate: v, translator: trans}
	})
	return validatorSvc
}

// Validate checks that e is a well formed catalog entity. The first failing
// field is reported as an *errors.ValidationError.
func Validate(e *Entity) error {
	if e == nil {
		return &errors.ValidationError{Message: "entity is nil"}
	}

	svc := getValidator()
	err := svc.validate.Struct(e)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.WrapValidation("", err)
	}
	fe := verrs[0]
	return &errors.ValidationError{
		Field:   fieldPath(fe.Namespace()),
		Value:   fe.Value(),
		Message: fe.Translate(svc.translator),
	}
}

// fieldPath drops the root struct name from a validator namespace, turning
// "Entity.metadata.name" into "metadata.name".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
