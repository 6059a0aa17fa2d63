// Package imports provides the lead spreadsheet import bounded context module.
package imports

import (
	"telemarketing_backend/internal/events"
	apphttp "telemarketing_backend/internal/http"
	"telemarketing_backend/internal/imports/handler"
	"telemarketing_backend/internal/imports/ingest"
	"telemarketing_backend/internal/imports/repository"
	"telemarketing_backend/internal/imports/service"
	"telemarketing_backend/internal/imports/session"
	"telemarketing_backend/internal/scheduler"
	"telemarketing_backend/platform/config"
	"telemarketing_backend/platform/logger"
	"telemarketing_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the collaborators of the imports module. Archive and Expiry may be
// nil, in which case uploads are not archived.
type Deps struct {
	Pool     *pgxpool.Pool
	Sessions session.Store
	Archive  service.Archive
	Bucket   string
	Expiry   scheduler.ArchiveExpiryScheduler
	Aliases  ingest.AliasTable
	Bus      events.Bus
	Val      *validator.Validator
	Config   config.ImportConfig
	Log      *logger.Logger
}

// Module is the imports bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the imports module with all its dependencies.
func NewModule(deps Deps) *Module {
	svc := service.New(service.Options{
		Engine:      ingest.NewEngine(deps.Aliases),
		Repo:        repository.New(deps.Pool),
		Sessions:    deps.Sessions,
		Archive:     deps.Archive,
		Bucket:      deps.Bucket,
		Expiry:      deps.Expiry,
		Bus:         deps.Bus,
		PreviewTTL:  deps.Config.GetImportPreviewTTL(),
		MaxFileSize: deps.Config.GetImportMaxFileSize(),
		Log:         deps.Log,
	})

	return &Module{
		handler: handler.New(svc, deps.Val, deps.Config.GetImportMaxFileSize()),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "imports"
}

// Service returns the import service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts import routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	var uploadLimit gin.HandlerFunc
	if ctx.UploadRateLimiter != nil {
		uploadLimit = ctx.UploadRateLimiter.RateLimit()
	}
	m.handler.RegisterRoutes(ctx.Protected.Group("/imports/leads"), uploadLimit)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
