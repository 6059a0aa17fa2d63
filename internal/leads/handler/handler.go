package handler

import (
	"net/http"

	"telemarketing_backend/internal/leads/service"
	"telemarketing_backend/internal/leads/transport"
	"telemarketing_backend/platform/httpkit"
	"telemarketing_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/stats", h.Stats)
	rg.GET("/calls", h.ListCalls)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.POST("/:id/calls", h.LogCall)
	rg.GET("/:id/calls", h.ListLeadCalls)
}

// List returns the caller's company leads.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
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

	result, err := h.svc.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GET /api/v1/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStatus moves a lead along the pipeline.
// PATCH /api/v1/leads/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}
	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	result, err := h.svc.UpdateStatus(c.Request.Context(), tenantID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Stats returns the pipeline and call counters of the caller's company.
// GET /api/v1/leads/stats
func (h *Handler) Stats(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Stats(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LogCall records a call to a lead.
// POST /api/v1/leads/:id/calls
func (h *Handler) LogCall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}
	var req transport.CreateCallLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.LogCall(c.Request.Context(), tenantID, identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// ListCalls returns the company's call history.
// GET /api/v1/leads/calls
func (h *Handler) ListCalls(c *gin.Context) {
	h.listCalls(c, nil)
}

// GET /api/v1/leads/:id/calls
func (h *Handler) ListLeadCalls(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}
	h.listCalls(c, &id)
}

func (h *Handler) listCalls(c *gin.Context, leadID *uuid.UUID) {
	var req transport.ListCallLogsRequest
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

	result, err := h.svc.ListCalls(c.Request.Context(), tenantID, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
