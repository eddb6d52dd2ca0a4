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

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("reservation_status", validateReservationStatus); err != nil {
		log.Fatal("Failed to register 'reservation_status' validator",
			"error", err,
		)
	}

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

// validateReservationStatus checks the status against the sibling Kind field, since
// rooms and vehicles have different lifecycles.
func validateReservationStatus(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Pointer {
		parent = parent.Elem()
	}
	kind := parent.FieldByName("Kind")
	if !kind.IsValid() || kind.Kind() != reflect.String {
		return false
	}
	return model.IsValidStatus(kind.String(), fl.Field().String())
}

func (v *ReservationValidator) Validate(r *model.Reservation) error {
	return v.translate(v.validate.Struct(r))
}

func (v *ReservationValidator) ValidateHoldRequest(req *model.HoldRequest) error {
	return v.translate(v.validate.Struct(req))
}

func (v *ReservationValidator) ValidateReservationRequest(req *model.ReservationRequest) error {
	return v.translate(v.validate.Struct(req))
}

func (v *ReservationValidator) ValidateGuest(guest *model.GuestDetails) error {
	return v.translate(v.validate.Struct(guest))
}

func (v *ReservationValidator) ValidateCorrection(c *model.AmountsCorrection) error {
	return v.translate(v.validate.Struct(c))
}

func (v *ReservationValidator) ValidatePayment(p *model.PaymentUpdate) error {
	return v.translate(v.validate.Struct(p))
}

func (v *ReservationValidator) translate(err error) error {
	if err == nil {
		return nil
	}
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
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be a valid phone number in E.164 format (e.g., +972501234567)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "reservation_status":
			message = fmt.Sprintf("%s is not a valid status for this unit kind", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
