package payment

import (
	"errors"
	"strings"

	ierr "github.com/billforge/billforge/internal/errors"
)

// FromSubscriptionOp classifies an error raised by a subscription
// operation. Already-classified errors pass through; internal sentinel
// errors and recognizable messages map onto the taxonomy.
func FromSubscriptionOp(err error, opContext string) *Error {
	if err == nil {
		return nil
	}

	var paymentErr *Error
	if errors.As(err, &paymentErr) {
		return paymentErr
	}

	metadata := map[string]any{}
	if opContext != "" {
		metadata["context"] = opContext
	}

	message := err.Error()
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "plan") && (strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist")):
		return NewError(ErrorTypePlanNotFound, message,
			WithCause(err), WithMetadata(metadata))
	case ierr.IsNotFound(err),
		strings.Contains(lower, "not found"),
		strings.Contains(lower, "does not exist"):
		return NewError(ErrorTypeSubscriptionNotFound, message,
			WithCause(err), WithMetadata(metadata))
	case strings.Contains(lower, "canceled"), strings.Contains(lower, "cancelled"):
		return NewError(ErrorTypeSubscriptionCanceled, message,
			WithCause(err), WithMetadata(metadata))
	case ierr.IsInvalidOperation(err):
		return NewError(ErrorTypeInvalidPlanChange, message,
			WithCause(err), WithMetadata(metadata))
	case ierr.IsValidation(err):
		return NewError(ErrorTypeMissingRequiredField, message,
			WithCause(err), WithMetadata(metadata))
	default:
		return NewError(ErrorTypeUnknownError, message,
			WithCause(err), WithMetadata(metadata))
	}
}
