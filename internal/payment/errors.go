package payment

import (
	"time"

	"github.com/samber/lo"
)

// ErrorType classifies payment failures into a closed set the rendering
// layer can switch on.
type ErrorType string

const (
	// Card failures reported by the payment provider.
	ErrorTypeCardDeclined      ErrorType = "card_declined"
	ErrorTypeInsufficientFunds ErrorType = "insufficient_funds"
	ErrorTypeExpiredCard       ErrorType = "expired_card"
	ErrorTypeIncorrectCVC      ErrorType = "incorrect_cvc"
	ErrorTypeProcessingError   ErrorType = "processing_error"

	// Subscription lifecycle failures.
	ErrorTypeSubscriptionNotFound ErrorType = "subscription_not_found"
	ErrorTypeSubscriptionCanceled ErrorType = "subscription_canceled"
	ErrorTypePlanNotFound         ErrorType = "plan_not_found"
	ErrorTypeInvalidPlanChange    ErrorType = "invalid_plan_change"

	// Request validation failures.
	ErrorTypeInvalidAmount        ErrorType = "invalid_amount"
	ErrorTypeInvalidCurrency      ErrorType = "invalid_currency"
	ErrorTypeInvalidEmail         ErrorType = "invalid_email"
	ErrorTypeMissingRequiredField ErrorType = "missing_required_field"

	// Access failures.
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeSessionExpired ErrorType = "session_expired"

	// Transport failures.
	ErrorTypeNetworkError ErrorType = "network_error"
	ErrorTypeAPIError     ErrorType = "api_error"
	ErrorTypeTimeoutError ErrorType = "timeout_error"

	ErrorTypeUnknownError       ErrorType = "unknown_error"
	ErrorTypeConfigurationError ErrorType = "configuration_error"
)

// retryableTypes are the error types that are safe to retry by default.
// Card failures never retry automatically.
var retryableTypes = []ErrorType{
	ErrorTypeNetworkError,
	ErrorTypeAPIError,
	ErrorTypeTimeoutError,
	ErrorTypeProcessingError,
}

var defaultUserMessages = map[ErrorType]string{
	ErrorTypeCardDeclined:         "Your card was declined. Please try a different payment method.",
	ErrorTypeInsufficientFunds:    "Your card has insufficient funds. Please try a different payment method.",
	ErrorTypeExpiredCard:          "Your card has expired. Please update your payment information.",
	ErrorTypeIncorrectCVC:         "The security code (CVC) is incorrect. Please check and try again.",
	ErrorTypeProcessingError:      "There was an error processing your payment. Please try again.",
	ErrorTypeSubscriptionNotFound: "Subscription not found. Please contact support if this continues.",
	ErrorTypeSubscriptionCanceled: "This subscription has been canceled and cannot be modified.",
	ErrorTypePlanNotFound:         "The selected plan is no longer available. Please choose a different plan.",
	ErrorTypeInvalidPlanChange:    "This plan change is not allowed. Please contact support for assistance.",
	ErrorTypeInvalidAmount:        "The payment amount is invalid. Please check and try again.",
	ErrorTypeInvalidCurrency:      "The selected currency is not supported.",
	ErrorTypeInvalidEmail:         "Please enter a valid email address.",
	ErrorTypeMissingRequiredField: "Please fill in all required fields.",
	ErrorTypeUnauthorized:         "You need to log in to access this feature.",
	ErrorTypeForbidden:            "You do not have permission to perform this action.",
	ErrorTypeSessionExpired:       "Your session has expired. Please log in again.",
	ErrorTypeNetworkError:         "Network connection error. Please check your internet connection and try again.",
	ErrorTypeAPIError:             "Service temporarily unavailable. Please try again in a few moments.",
	ErrorTypeTimeoutError:         "Request timed out. Please try again.",
	ErrorTypeConfigurationError:   "Service configuration error. Please contact support.",
}

const fallbackUserMessage = "An unexpected error occurred. Please try again or contact support."

// DefaultUserMessage returns the customer-facing message for an error type.
func DefaultUserMessage(t ErrorType) string {
	if msg, ok := defaultUserMessages[t]; ok {
		return msg
	}
	return fallbackUserMessage
}

// Error is a classified payment failure. UserMessage is always safe to
// show to a customer; Message is the internal description.
type Error struct {
	Type        ErrorType      `json:"type"`
	Code        string         `json:"code,omitempty"`
	Message     string         `json:"message"`
	UserMessage string         `json:"user_message"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Retryable   bool           `json:"retryable"`

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Fields flattens the error for structured logging.
func (e *Error) Fields() map[string]any {
	fields := map[string]any{
		"type":         string(e.Type),
		"message":      e.Message,
		"user_message": e.UserMessage,
		"retryable":    e.Retryable,
		"timestamp":    e.Timestamp.UTC().Format(time.RFC3339),
	}
	if e.Code != "" {
		fields["code"] = e.Code
	}
	if len(e.Metadata) > 0 {
		fields["metadata"] = e.Metadata
	}
	if e.cause != nil {
		fields["cause"] = e.cause.Error()
	}
	return fields
}

// Option configures an Error beyond its type defaults.
type Option func(*Error)

func WithCode(code string) Option {
	return func(e *Error) { e.Code = code }
}

func WithUserMessage(msg string) Option {
	return func(e *Error) { e.UserMessage = msg }
}

func WithCause(cause error) Option {
	return func(e *Error) { e.cause = cause }
}

func WithMetadata(metadata map[string]any) Option {
	return func(e *Error) { e.Metadata = metadata }
}

func WithRetryable(retryable bool) Option {
	return func(e *Error) { e.Retryable = retryable }
}

// NewError builds a classified payment error. The user message and
// retryability default from the error type unless overridden.
func NewError(errType ErrorType, message string, opts ...Option) *Error {
	e := &Error{
		Type:        errType,
		Message:     message,
		UserMessage: DefaultUserMessage(errType),
		Timestamp:   time.Now().UTC(),
		Retryable:   lo.Contains(retryableTypes, errType),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DisplayMessage extracts a customer-safe message from any error.
func DisplayMessage(err error) string {
	if err == nil {
		return fallbackUserMessage
	}
	return Normalize(err).UserMessage
}

// IsRetryable reports whether the operation that produced the error can
// be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Normalize(err).Retryable
}

// ErrorResponse is the wire shape of a payment error.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
	Timestamp string `json:"timestamp"`
}

// FormatResponse renders any error as a payment error response.
func FormatResponse(err error) *ErrorResponse {
	e := Normalize(err)
	return &ErrorResponse{
		Error:     string(e.Type),
		Message:   e.UserMessage,
		Code:      e.Code,
		Retryable: e.Retryable,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
	}
}
