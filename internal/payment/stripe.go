package payment

import (
	"context"
	"errors"
	"net"

	"github.com/stripe/stripe-go/v82"
)

// Normalize coerces any error into a classified payment error. Errors that
// already carry a classification pass through unchanged.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var paymentErr *Error
	if errors.As(err, &paymentErr) {
		return paymentErr
	}
	return FromStripe(err)
}

// FromStripe maps a provider error onto the payment error taxonomy. Card
// errors are refined by decline code; transport failures map to retryable
// types; anything unrecognized becomes an unknown error.
func FromStripe(err error) *Error {
	if err == nil {
		return NewError(ErrorTypeUnknownError, "unknown error occurred")
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fromStripeError(stripeErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(ErrorTypeTimeoutError, err.Error(),
			WithCause(err),
			WithRetryable(true),
		)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		errType := ErrorTypeNetworkError
		if netErr.Timeout() {
			errType = ErrorTypeTimeoutError
		}
		return NewError(errType, err.Error(),
			WithCause(err),
			WithRetryable(true),
		)
	}

	return NewError(ErrorTypeUnknownError, err.Error(), WithCause(err))
}

func fromStripeError(stripeErr *stripe.Error) *Error {
	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		return fromCardError(stripeErr)
	case stripe.ErrorTypeInvalidRequest:
		if stripeErr.HTTPStatusCode == 401 {
			return NewError(ErrorTypeConfigurationError, stripeErr.Msg,
				WithCode(string(stripeErr.Code)),
				WithCause(stripeErr),
				WithRetryable(false),
			)
		}
		if stripeErr.Code == stripe.ErrorCodeRateLimit || stripeErr.HTTPStatusCode == 429 {
			return rateLimitError(stripeErr)
		}
		return NewError(ErrorTypeMissingRequiredField, stripeErr.Msg,
			WithCode(string(stripeErr.Code)),
			WithCause(stripeErr),
			WithUserMessage(validationUserMessage(stripeErr)),
		)
	case stripe.ErrorTypeAPI:
		if stripeErr.HTTPStatusCode == 429 {
			return rateLimitError(stripeErr)
		}
		return NewError(ErrorTypeAPIError, stripeErr.Msg,
			WithCode(string(stripeErr.Code)),
			WithCause(stripeErr),
			WithRetryable(true),
		)
	default:
		return NewError(ErrorTypeUnknownError, stripeErr.Msg,
			WithCode(string(stripeErr.Code)),
			WithCause(stripeErr),
		)
	}
}

func rateLimitError(stripeErr *stripe.Error) *Error {
	return NewError(ErrorTypeAPIError, stripeErr.Msg,
		WithCode(string(stripeErr.Code)),
		WithCause(stripeErr),
		WithRetryable(true),
		WithUserMessage("Too many requests. Please wait a moment and try again."),
	)
}

func validationUserMessage(stripeErr *stripe.Error) string {
	if stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return "Please check your payment information and try again."
}

func fromCardError(stripeErr *stripe.Error) *Error {
	declineCode := string(stripeErr.DeclineCode)
	code := string(stripeErr.Code)

	switch {
	case declineCode == "insufficient_funds" || code == "insufficient_funds":
		return NewError(ErrorTypeInsufficientFunds, stripeErr.Msg,
			WithCode(code),
			WithCause(stripeErr),
		)
	case declineCode == "expired_card" || stripeErr.Code == stripe.ErrorCodeExpiredCard:
		return NewError(ErrorTypeExpiredCard, stripeErr.Msg,
			WithCode(code),
			WithCause(stripeErr),
		)
	case stripeErr.Code == stripe.ErrorCodeIncorrectCVC:
		return NewError(ErrorTypeIncorrectCVC, stripeErr.Msg,
			WithCode(code),
			WithCause(stripeErr),
		)
	default:
		return NewError(ErrorTypeCardDeclined, stripeErr.Msg,
			WithCode(code),
			WithCause(stripeErr),
			WithMetadata(map[string]any{"decline_code": declineCode}),
		)
	}
}
