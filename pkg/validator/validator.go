// Package validator valida los DTO de entrada con go-playground/validator.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/pkg/rut"
)

var (
	once     sync.Once
	validate *validator.Validate

	periodoRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
)

// Get devuelve el validador compartido con las reglas propias registradas.
func Get() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("periodo", func(fl validator.FieldLevel) bool {
			return periodoRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
			_, err := rut.Validate(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// ValidatePeriodo indica si s tiene formato YYYY-MM.
func ValidatePeriodo(s string) bool {
	return periodoRe.MatchString(s)
}

// ValidateRequest valida req y devuelve domain.ErrInvalidInput con los campos que fallan.
func ValidateRequest(req interface{}) error {
	if err := Get().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
		}
		campos := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			campos = append(campos, describe(fe))
		}
		return fmt.Errorf("%s: %w", strings.Join(campos, "; "), domain.ErrInvalidInput)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " es obligatorio"
	case "email":
		return fe.Field() + " no es un email válido"
	case "uuid":
		return fe.Field() + " no es un identificador válido"
	case "min":
		return fmt.Sprintf("%s debe ser al menos %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s debe ser como máximo %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de [%s]", fe.Field(), fe.Param())
	case "periodo":
		return fe.Field() + " debe tener formato YYYY-MM"
	case "rut":
		return fe.Field() + " no es un RUT válido"
	default:
		return fmt.Sprintf("%s no cumple %s", fe.Field(), fe.Tag())
	}
}
