package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"telemarketing_backend/internal/imports/ingest"
	"telemarketing_backend/internal/imports/service"
	"telemarketing_backend/internal/imports/session"
	"telemarketing_backend/internal/imports/transport"
	"telemarketing_backend/platform/httpkit"
	"telemarketing_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	formFileField    = "file"
	templateFileName = "lead-import-template.xlsx"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgMissingFile      = "file is required"
	msgInvalidID        = "invalid import id"
)

// ImportService is the part of the import service the handler drives.
type ImportService interface {
	Upload(ctx context.Context, actor session.Key, upload service.Upload) (transport.PreviewResponse, error)
	Preview(ctx context.Context, actor session.Key, full bool) (transport.PreviewResponse, error)
	Commit(ctx context.Context, actor session.Key) (transport.CommitResponse, error)
	Clear(ctx context.Context, actor session.Key) error
	ListImports(ctx context.Context, tenant uuid.UUID, req transport.ListImportsRequest) (transport.ImportListResponse, error)
	ArchiveURL(ctx context.Context, tenant, importID uuid.UUID) (transport.ArchiveURLResponse, error)
}

// Handler handles HTTP requests for lead imports.
type Handler struct {
	svc         ImportService
	val         *validator.Validator
	maxFileSize int64
}

// New creates a new import handler. Uploads over maxFileSize bytes are refused
// before they are read.
func New(svc ImportService, val *validator.Validator, maxFileSize int64) *Handler {
	return &Handler{svc: svc, val: val, maxFileSize: maxFileSize}
}

// Upload parses a spreadsheet into the caller's pending preview.
// POST /api/v1/imports/leads
func (h *Handler) Upload(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	header, err := c.FormFile(formFileField)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		httpkit.Error(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize), nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), actor, service.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Preview returns the caller's pending preview. ?full=true includes every lead.
// GET /api/v1/imports/leads/preview
func (h *Handler) Preview(c *gin.Context) {
	var query transport.PreviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	result, err := h.svc.Preview(c.Request.Context(), actor, query.Full)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Commit writes the pending preview to the leads table.
// POST /api/v1/imports/leads/commit
func (h *Handler) Commit(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	result, err := h.svc.Commit(c.Request.Context(), actor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Clear discards the pending preview.
// DELETE /api/v1/imports/leads/preview
func (h *Handler) Clear(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	if err := h.svc.Clear(c.Request.Context(), actor); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// ListImports lists committed imports of the caller's company.
// GET /api/v1/imports/leads
func (h *Handler) ListImports(c *gin.Context) {
	var req transport.ListImportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListImports(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ArchiveURL returns a download link for the original file of an import.
// GET /api/v1/imports/leads/:id/file
func (h *Handler) ArchiveURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ArchiveURL(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Template downloads an empty spreadsheet with the recognised headers.
// GET /api/v1/imports/leads/template
func (h *Handler) Template(c *gin.Context) {
	var buf bytes.Buffer
	if err := ingest.WriteTemplate(&buf); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to build template", nil)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+templateFileName)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func mustGetActor(c *gin.Context) (session.Key, bool) {
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return session.Key{}, false
	}
	return session.Key{TenantID: tenantID, UserID: identity.UserID()}, true
}

// RegisterRoutes mounts the import routes on rg. uploadLimit guards the upload
// endpoint only; it may be nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, uploadLimit gin.HandlerFunc) {
	upload := []gin.HandlerFunc{h.Upload}
	if uploadLimit != nil {
		upload = append([]gin.HandlerFunc{uploadLimit}, upload...)
	}
	rg.POST("", upload...)
	rg.GET("", h.ListImports)
	rg.GET("/preview", h.Preview)
	rg.DELETE("/preview", h.Clear)
	rg.POST("/commit", h.Commit)
	rg.GET("/template", h.Template)
	rg.GET("/:id/file", h.ArchiveURL)
}
