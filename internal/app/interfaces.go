package app

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"

	"github.com/plantee/storefront/config"
	"github.com/plantee/storefront/internal/assistant"
	"github.com/plantee/storefront/internal/checkout"
	"github.com/plantee/storefront/internal/idempotency"
	"github.com/plantee/storefront/internal/repository"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the repositories of the configured backend
type StoreProvider interface {
	Store() *repository.Store
}

// CheckoutProvider provides the order placement service
type CheckoutProvider interface {
	Checkout() *checkout.Service
}

// IdempotencyProvider provides the idempotency key store. It returns nil
// when idempotency is disabled.
type IdempotencyProvider interface {
	Idempotency() *idempotency.Store
}

type AssistantProvider interface {
	Assistant() assistant.Client
}

// EventProvider provides the in-process event bus
type EventProvider interface {
	Bus() EventBus.Bus
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	StoreProvider
	CheckoutProvider
	IdempotencyProvider
	AssistantProvider
	EventProvider
	SchedulerProvider

	// MigrateDB creates or updates the SQL schema; a no-op for other backends
	MigrateDB(track bool) error
	// SeedCatalog loads the built-in catalog. Without force it only seeds an
	// empty catalog; with force it replaces the catalog.
	SeedCatalog(ctx context.Context, force bool) (int, error)
	Release()
}
