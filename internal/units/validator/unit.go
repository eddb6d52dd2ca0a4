package validator

import (
	"errors"
	"fmt"
	"reflect"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type UnitValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewUnitValidator(log *logger.Logger) *UnitValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	log.Info("Unit validator initialized successfully")

	return &UnitValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func (v *UnitValidator) Validate(unit *model.Unit) error {
	if err := v.validate.Struct(unit); err != nil {
		return v.translate(err)
	}
	return nil
}

func (v *UnitValidator) ValidateUpdate(update *model.UnitUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return v.translate(err)
	}
	return nil
}

func (v *UnitValidator) ValidateKind(kind string) error {
	if kind == "" || kind == model.KindRoom || kind == model.KindVehicle {
		return nil
	}
	return ValidationErrors{{
		Field:   "kind",
		Message: fmt.Sprintf("kind must be one of: %s %s", model.KindRoom, model.KindVehicle),
	}}
}

func (v *UnitValidator) translate(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translateValidationErrors(validationErrs)
	}
	return err
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
