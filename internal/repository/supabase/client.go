package supabase

import (
	"strings"

	"github.com/billforge/billforge/internal/config"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	supa "github.com/nedpals/supabase-go"
)

const (
	plansTable         = "plans"
	subscriptionsTable = "subscriptions"
)

// NewClient creates a Supabase client from configuration.
func NewClient(cfg config.SupabaseConfig, log *logger.Logger) (*supa.Client, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, ierr.NewError("supabase not configured").
			WithHint("Supabase URL and service key are required").
			Mark(ierr.ErrValidation)
	}

	client := supa.CreateClient(cfg.URL, cfg.ServiceKey)
	if client == nil {
		return nil, ierr.NewError("failed to create supabase client").
			WithHint("Could not initialize the Supabase client").
			Mark(ierr.ErrSystem)
	}

	log.Debugw("supabase client initialized", "url", cfg.URL)
	return client, nil
}

// wrapStoreError classifies a PostgREST failure. A missing relation maps
// to ErrTableNotFound so callers can fall back to the provider catalog.
func wrapStoreError(err error, table string) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	if strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation") {
		return ierr.WithError(err).
			WithHintf("Table %s does not exist", table).
			Mark(ierr.ErrTableNotFound)
	}

	return ierr.WithError(err).
		WithHintf("Query against %s failed", table).
		WithReportableDetails(map[string]any{"table": table}).
		Mark(ierr.ErrDatabase)
}
