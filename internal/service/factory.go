package service

import (
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/payment"
	"github.com/billforge/billforge/internal/provider"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	PlanRepo plan.Repository
	SubRepo  subscription.Repository

	// Collaborators
	Provider provider.Client
	Cache    cache.Cache
	ErrorLog *payment.ErrorLog
	Retry    *payment.RetryHandler
}
