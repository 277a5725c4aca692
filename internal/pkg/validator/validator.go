package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Product type validation
	validate.RegisterValidation("producttype", func(fl validator.FieldLevel) bool {
		pt := fl.Field().String()
		validTypes := []string{"photobook", "canvas", "calendar", "mug", "photo", "other"}
		for _, t := range validTypes {
			if pt == t {
				return true
			}
		}
		return false
	})

	// Element type validation
	validate.RegisterValidation("elementtype", func(fl validator.FieldLevel) bool {
		et := fl.Field().String()
		validTypes := []string{"text", "image", "shape"}
		for _, t := range validTypes {
			if et == t {
				return true
			}
		}
		return false
	})

	// Project status validation
	validate.RegisterValidation("projectstatus", func(fl validator.FieldLevel) bool {
		st := fl.Field().String()
		validStatuses := []string{"draft", "completed", "exported", "ordered", ""}
		for _, s := range validStatuses {
			if st == s {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "hexcolor":
			errors[field] = "Invalid color, expected #RRGGBB"
		case "uuid":
			errors[field] = "Invalid id format"
		case "producttype":
			errors[field] = "Invalid product type. Must be: photobook, canvas, calendar, mug, photo, or other"
		case "elementtype":
			errors[field] = "Invalid element type. Must be: text, image, or shape"
		case "projectstatus":
			errors[field] = "Invalid status. Must be: draft, completed, exported, or ordered"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
