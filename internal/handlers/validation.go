package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/response"
	appValidator "github.com/everafterhq/everafter/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation
// rules. When binding or validation fails an error response is written and
// false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewValidation("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, validationError(err))
		return false
	}

	return true
}

// validationError converts validator failures into a per-field error payload
// so forms can render inline messages.
func validationError(err error) *appErrors.AppError {
	ve, ok := err.(appValidator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return appErrors.NewValidation("invalid request payload")
	}

	fields := make(map[string]string, len(ve))
	for _, failure := range ve {
		switch failure.Tag {
		case "required":
			fields[failure.Field] = "this field is required"
		case "email":
			fields[failure.Field] = "must be a valid email address"
		case "min":
			fields[failure.Field] = "must be at least " + failure.Param + " characters"
		case "max":
			fields[failure.Field] = "must be at most " + failure.Param + " characters"
		case "oneof":
			fields[failure.Field] = "must be one of: " + failure.Param
		default:
			if failure.Param != "" {
				fields[failure.Field] = "failed validation: " + failure.Tag + "=" + failure.Param
			} else {
				fields[failure.Field] = "failed validation: " + failure.Tag
			}
		}
	}

	return appErrors.NewFieldValidation(fields)
}

func requestContext(c *gin.Context) context.Context {
	return c.Request.Context()
}
