package service

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/pkg/api"
)

var errInternal = errors.New("internal error")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks the validate tags of a request message and reports
// the first failure as a models.ValidationError.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return models.Invalid(fe.Field(), describe(fe))
	}
	return models.Invalid("request", err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// toConnectError maps the domain error taxonomy onto Connect codes and tags
// the response with the failure reason. System errors are logged here with
// full detail and reach the caller only as "internal error".
func toConnectError(logger *slog.Logger, msg string, err error, attrs ...any) error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}

	reason := models.Reason(err)
	var code connect.Code
	switch {
	case errors.Is(err, models.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, models.ErrInvalidCredential):
		code = connect.CodeUnauthenticated
	case errors.Is(err, models.ErrInsufficientBalance), errors.Is(err, models.ErrInvalidState):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrDuplicate):
		code = connect.CodeAlreadyExists
	case errors.Is(err, models.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, models.ErrConflict):
		// Conflicts wrap the storage failure; only the sentinel is returned.
		logger.Warn(msg, append(attrs, "reason", reason, "error", err)...)
		return api.NewError(connect.CodeAborted, reason, models.ErrConflict)
	default:
		logger.Error(msg, append(attrs, "error", err)...)
		return api.NewError(connect.CodeInternal, reason, errInternal)
	}

	logger.Debug(msg, append(attrs, "reason", reason, "error", err)...)
	return api.NewError(code, reason, err)
}
