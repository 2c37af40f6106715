package validator

import (
	"net/url"
	"regexp"
	"strings"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

const (
	// MinPaymentAmount is the smallest chargeable amount in minor units.
	MinPaymentAmount = 50
	// MaxPaymentAmount is the largest chargeable amount in minor units.
	MaxPaymentAmount = 99999999

	maxQuantity      = 100
	maxTrialDays     = 365
	maxEmailLength   = 254
	maxURLLength     = 2048
	maxMetadataPairs = 50
	maxMetadataKey   = 40
	maxMetadataValue = 500
	maxPromoCodeLen  = 50
)

var (
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	promoCodeRegex  = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
	priceIDRegex    = regexp.MustCompile(`^price_[a-zA-Z0-9_]+$`)
	customerIDRegex = regexp.MustCompile(`^cus_[a-zA-Z0-9_]+$`)
)

// ValidatePaymentAmount checks an amount in minor currency units against the
// chargeable range.
func ValidatePaymentAmount(amount int64) error {
	if amount <= 0 {
		return ierr.NewError("payment amount must be greater than zero").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{"amount": amount}).
			Mark(ierr.ErrValidation)
	}
	if amount < MinPaymentAmount {
		return ierr.NewError("payment amount below minimum").
			WithHint("Payment amount must be at least $0.50").
			WithReportableDetails(map[string]any{"amount": amount}).
			Mark(ierr.ErrValidation)
	}
	if amount > MaxPaymentAmount {
		return ierr.NewError("payment amount above maximum").
			WithHint("Payment amount exceeds maximum limit").
			WithReportableDetails(map[string]any{"amount": amount}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SanitizeCurrency normalizes a currency code to uppercase and checks it is
// supported. An empty code defaults to USD.
func SanitizeCurrency(currency string) (string, error) {
	if currency == "" {
		return "USD", nil
	}

	upper := strings.ToUpper(strings.TrimSpace(currency))
	if !types.IsSupportedCurrency(upper) {
		return "", ierr.NewError("unsupported currency").
			WithHintf("Unsupported currency: %s", currency).
			WithReportableDetails(map[string]any{
				"currency":  currency,
				"supported": types.SupportedCurrencies,
			}).
			Mark(ierr.ErrValidation)
	}
	return upper, nil
}

// SanitizeQuantity applies the default quantity and bounds it. Zero means
// unset and defaults to one.
func SanitizeQuantity(quantity int64) (int64, error) {
	if quantity == 0 {
		return 1, nil
	}
	if quantity < 1 {
		return 0, ierr.NewError("invalid quantity").
			WithHint("Quantity must be at least 1").
			Mark(ierr.ErrValidation)
	}
	if quantity > maxQuantity {
		return 0, ierr.NewError("invalid quantity").
			WithHint("Quantity cannot exceed 100").
			Mark(ierr.ErrValidation)
	}
	return quantity, nil
}

// SanitizeURL trims and parses a redirect URL, requiring an http or https
// scheme and a sane length.
func SanitizeURL(raw string, fieldName string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ierr.NewError("missing url").
			WithHintf("%s cannot be empty", fieldName).
			Mark(ierr.ErrValidation)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return "", ierr.NewError("invalid url").
			WithHintf("%s must be a valid URL", fieldName).
			Mark(ierr.ErrValidation)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ierr.NewError("invalid url scheme").
			WithHintf("%s must use HTTP or HTTPS protocol", fieldName).
			Mark(ierr.ErrValidation)
	}

	if len(trimmed) > maxURLLength {
		return "", ierr.NewError("url too long").
			WithHintf("%s is too long", fieldName).
			Mark(ierr.ErrValidation)
	}

	return trimmed, nil
}

// SanitizeEmail lowercases and validates an email address.
func SanitizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", ierr.NewError("missing email").
			WithHint("Email cannot be empty").
			Mark(ierr.ErrValidation)
	}
	if !emailRegex.MatchString(trimmed) {
		return "", ierr.NewError("invalid email").
			WithHint("Invalid email format").
			Mark(ierr.ErrValidation)
	}
	if len(trimmed) > maxEmailLength {
		return "", ierr.NewError("email too long").
			WithHint("Email address is too long").
			Mark(ierr.ErrValidation)
	}
	return trimmed, nil
}

// ValidateTrialDays bounds a trial period to at most a year.
func ValidateTrialDays(days int) error {
	if days < 0 {
		return ierr.NewError("invalid trial days").
			WithHint("Trial days cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if days > maxTrialDays {
		return ierr.NewError("invalid trial days").
			WithHint("Trial period cannot exceed 365 days").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SanitizeMetadata trims keys and values and enforces provider limits on
// key length, value length and pair count.
func SanitizeMetadata(metadata types.Metadata) (types.Metadata, error) {
	if metadata == nil {
		return types.Metadata{}, nil
	}

	sanitized := make(types.Metadata, len(metadata))
	for key, value := range metadata {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return nil, ierr.NewError("invalid metadata key").
				WithHint("Metadata keys must be non-empty strings").
				Mark(ierr.ErrValidation)
		}
		if len(key) > maxMetadataKey {
			return nil, ierr.NewError("metadata key too long").
				WithHint("Metadata keys cannot exceed 40 characters").
				Mark(ierr.ErrValidation)
		}

		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) > maxMetadataValue {
			return nil, ierr.NewError("metadata value too long").
				WithHint("Metadata values cannot exceed 500 characters").
				Mark(ierr.ErrValidation)
		}
		sanitized[trimmedKey] = trimmedValue
	}

	if len(sanitized) > maxMetadataPairs {
		return nil, ierr.NewError("too many metadata pairs").
			WithHint("Metadata cannot have more than 50 key-value pairs").
			Mark(ierr.ErrValidation)
	}

	return sanitized, nil
}

// SanitizePromoCode validates the promo code charset and returns the
// uppercase form.
func SanitizePromoCode(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", ierr.NewError("missing promo code").
			WithHint("Promo code cannot be empty").
			Mark(ierr.ErrValidation)
	}
	if len(trimmed) > maxPromoCodeLen {
		return "", ierr.NewError("promo code too long").
			WithHint("Promo code cannot exceed 50 characters").
			Mark(ierr.ErrValidation)
	}
	if !promoCodeRegex.MatchString(trimmed) {
		return "", ierr.NewError("invalid promo code").
			WithHint("Promo code contains invalid characters").
			Mark(ierr.ErrValidation)
	}
	return strings.ToUpper(trimmed), nil
}

// ValidatePriceID checks a provider price identifier.
func ValidatePriceID(priceID string) error {
	if !priceIDRegex.MatchString(priceID) {
		return ierr.NewError("invalid price id").
			WithHintf("Price ID %s is not valid", priceID).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ValidateCustomerID checks a provider customer identifier.
func ValidateCustomerID(customerID string) error {
	if !customerIDRegex.MatchString(customerID) {
		return ierr.NewError("invalid customer id").
			WithHintf("Customer ID %s is not valid", customerID).
			Mark(ierr.ErrValidation)
	}
	return nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeHTML escapes characters that are unsafe to render verbatim in
// user-facing messages.
func SanitizeHTML(input string) string {
	return htmlEscaper.Replace(input)
}
