package stripe

import (
	"github.com/billforge/billforge/internal/config"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Client is the Stripe-backed payment provider.
type Client struct {
	client *stripe.Client
	cfg    config.StripeConfig
	logger *logger.Logger
}

// NewClient creates a Stripe provider client from the configured secret key.
func NewClient(cfg config.StripeConfig, log *logger.Logger) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, ierr.NewError("stripe secret key not configured").
			WithHint("Set the Stripe secret key in the configuration").
			Mark(ierr.ErrValidation)
	}

	return &Client{
		client: stripe.NewClient(cfg.SecretKey, nil),
		cfg:    cfg,
		logger: log,
	}, nil
}
