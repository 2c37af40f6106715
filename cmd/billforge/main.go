package main

import (
	"context"
	"log"
	"time"

	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/payment"
	stripeprovider "github.com/billforge/billforge/internal/provider/stripe"
	"github.com/billforge/billforge/internal/repository/supabase"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/validator"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	validator.NewValidator()

	supaClient, err := supabase.NewClient(cfg.Supabase, logg)
	if err != nil {
		logg.Fatalw("failed to initialize supabase client", "error", err)
	}

	providerClient, err := stripeprovider.NewClient(cfg.Stripe, logg)
	if err != nil {
		logg.Fatalw("failed to initialize stripe client", "error", err)
	}

	errorLog := payment.NewErrorLog(logg)
	params := service.ServiceParams{
		Logger:   logg,
		Config:   cfg,
		PlanRepo: supabase.NewPlanRepository(supaClient, logg),
		SubRepo:  supabase.NewSubscriptionRepository(supaClient, logg),
		Provider: providerClient,
		Cache:    cache.NewInMemoryCache(),
		ErrorLog: errorLog,
	}

	subscriptionService := service.NewSubscriptionService(params)

	ctx := context.Background()
	plans, err := subscriptionService.GetAvailablePlans(ctx)
	if err != nil {
		logg.Fatalw("failed to load plan catalog", "error", err)
	}

	logg.Infow("billforge ready", "plans", plans.Total)
	for _, p := range plans.Plans {
		logg.Infow("plan available",
			"plan_id", p.ID,
			"name", p.Name,
			"price", p.FormattedPrice,
			"interval", p.Interval,
		)
	}
}
