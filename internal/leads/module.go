// Package leads provides the lead management bounded context module.
package leads

import (
	"context"

	"telemarketing_backend/internal/events"
	apphttp "telemarketing_backend/internal/http"
	"telemarketing_backend/internal/leads/handler"
	"telemarketing_backend/internal/leads/repository"
	"telemarketing_backend/internal/leads/service"
	"telemarketing_backend/platform/logger"
	"telemarketing_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the leads module and subscribes it to import events.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool))

	events.OnLeadsImported(eventBus, func(ctx context.Context, e events.LeadsImported) error {
		log.WithContext(ctx).Info("imported leads available",
			"importId", e.ImportID, "tenantId", e.TenantID, "count", e.InsertedCount)
		return nil
	})

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
