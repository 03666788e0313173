package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	_ "time/tzdata" // the timezone tag loads zones on hosts without a zone database

	apperrors "tourism/pkg/errors"
	"tourism/pkg/logger"
	"tourism/pkg/model"

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

func Field(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// Validator wraps go-playground/validator with the domain enum tags
// registered and field names reported by their JSON keys.
type Validator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func New(log *logger.Logger) *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"property_type":       enumValidator(func(s string) bool { return model.PropertyType(s).IsValid() }),
		"meal_plan":           enumValidator(func(s string) bool { return model.MealPlan(s).IsValid() }),
		"cancellation_policy": enumValidator(func(s string) bool { return model.CancellationPolicy(s).IsValid() }),
		"flight_status":       enumValidator(func(s string) bool { return model.FlightStatus(s).IsValid() }),
		"fare_class":          enumValidator(func(s string) bool { return model.FareClass(s).IsValid() }),
		"resource_type":       enumValidator(func(s string) bool { return model.ResourceType(s).IsValid() }),
		"discount_type":       enumValidator(func(s string) bool { return model.DiscountType(s).IsValid() }),
		"role":                enumValidator(func(s string) bool { return model.Role(s).IsValid() }),
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	v.RegisterStructValidation(validateGeoPoint, model.GeoPoint{})

	return &Validator{
		validate: v,
		logger:   log,
	}
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return valid(fl.Field().String())
	}
}

func validateGeoPoint(sl validator.StructLevel) {
	point, ok := sl.Current().Interface().(model.GeoPoint)
	if !ok {
		return
	}
	if point.Type != model.GeoPointType || len(point.Coordinates) != 2 {
		sl.ReportError(point.Coordinates, "coordinates", "Coordinates", "geopoint", "")
		return
	}
	lng, lat := point.Coordinates[0], point.Coordinates[1]
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		sl.ReportError(point.Coordinates, "coordinates", "Coordinates", "geopoint", "")
	}
}

// Struct validates s and returns ValidationErrors on failure.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required", "required_if":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "len":
			message = fmt.Sprintf("%s must have length %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "nefield":
			message = fmt.Sprintf("%s must differ from %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +12125551234)", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "iso4217":
			message = fmt.Sprintf("%s must be an ISO 4217 currency code", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", err.Field())
		case "credit_card":
			message = fmt.Sprintf("%s must be a valid card number", err.Field())
		case "property_type", "meal_plan", "cancellation_policy", "flight_status",
			"fare_class", "resource_type", "discount_type", "role":
			message = fmt.Sprintf("%s has an unsupported value", err.Field())
		case "geopoint":
			message = fmt.Sprintf("%s must be a GeoJSON Point with [lng, lat] in range", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// ToAppError converts validation failures into a 400 VALIDATION_ERROR.
// Other errors pass through unchanged.
func ToAppError(err error) error {
	if err == nil {
		return nil
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Validation failed", map[string]any{
			"errors": []ValidationError(verrs),
		})
	}
	return err
}
