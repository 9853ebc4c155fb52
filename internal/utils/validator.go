// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	dataURIPattern     = regexp.MustCompile(`^data:[a-z]+/[a-z0-9.+-]+;base64,[A-Za-z0-9+/]+={0,2}$`)
	aspectRatioPattern = regexp.MustCompile(`^[1-9][0-9]*:[1-9][0-9]*$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("datauri", validateDataURI)
	validate.RegisterValidation("aspectratio", validateAspectRatio)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateDataURI(fl validator.FieldLevel) bool {
	return dataURIPattern.MatchString(fl.Field().String())
}

func validateAspectRatio(fl validator.FieldLevel) bool {
	return aspectRatioPattern.MatchString(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "url":
		return "Invalid URL provided"
	case "datauri":
		return e.Field() + " must be a base64 data URI with a MIME type prefix"
	case "aspectratio":
		return e.Field() + " must be an aspect ratio like 1:1, 4:5 or 9:16"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
