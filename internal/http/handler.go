package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/termination-service/internal/http/middleware"
	"github.com/nurpe/termination-service/internal/model"
	"github.com/nurpe/termination-service/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

type Handler struct {
	cases *service.TerminationService
	log   zerolog.Logger
}

func NewHandler(cases *service.TerminationService, log zerolog.Logger) *Handler {
	return &Handler{cases: cases, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	protected := router.Group("/termination")
	protected.Use(authMiddleware)
	protected.POST("/cases", h.createCase)
	protected.GET("/cases", h.listCases)
	protected.GET("/cases/export", h.exportCases)
	protected.GET("/cases/:id", h.getCase)
	protected.PATCH("/cases/:id/checklist", h.updateChecklist)
	protected.PATCH("/cases/:id/status", h.updateStatus)
	protected.POST("/cases/:id/settlement", h.calculateSettlement)
	protected.POST("/cases/:id/refund", h.processRefund)
	protected.POST("/cases/:id/authority-report", h.reportToAuthority)
	protected.POST("/cases/:id/authority-response", h.recordAuthorityResponse)
	protected.POST("/cases/:id/cancel", h.cancelCase)
	protected.GET("/cases/:id/statement.pdf", h.settlementStatement)
}

type createCaseRequest struct {
	ContractID      string `json:"contract_id" binding:"required"`
	TerminationType string `json:"termination_type" binding:"required"`
	NoticeDate      string `json:"notice_date" binding:"required"`
	Notes           string `json:"notes"`
}

type updateChecklistRequest struct {
	Item  string `json:"item" binding:"required"`
	Value *bool  `json:"value" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type calculateSettlementRequest struct {
	DocApprovedDate     string           `json:"doc_approved_date" binding:"required"`
	OtherDeductions     *decimal.Decimal `json:"other_deductions"`
	OtherDeductionNotes string           `json:"other_deduction_notes"`
}

type processRefundRequest struct {
	RefundMethod  string `json:"refund_method" binding:"required"`
	RefundAccount string `json:"refund_account"`
	RefundReceipt string `json:"refund_receipt"`
	Notes         string `json:"notes"`
}

type authorityRequest struct {
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

type cancelCaseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) createCase(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	contractID, err := uuid.Parse(strings.TrimSpace(req.ContractID))
	if err != nil {
		h.fail(c, http.StatusBadRequest, "invalid contract_id")
		return
	}
	noticeDate, err := parseDate(req.NoticeDate)
	if err != nil {
		h.fail(c, http.StatusBadRequest, "invalid notice_date")
		return
	}

	view, err := h.cases.CreateCase(c.Request.Context(), service.CreateCaseInput{
		ContractID:      contractID,
		TerminationType: model.TerminationType(strings.ToLower(strings.TrimSpace(req.TerminationType))),
		NoticeDate:      noticeDate,
		Notes:           req.Notes,
		Principal:       principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusCreated, view)
}

func (h *Handler) getCase(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	caseID, ok := h.caseID(c)
	if !ok {
		return
	}

	view, err := h.cases.GetCase(c.Request.Context(), caseID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, view)
}

func (h *Handler) listCases(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.cases.ListCases(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, views)
}

func (h *Handler) exportCases(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.cases.ExportCases(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) updateChecklist(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	caseID, ok := h.caseID(c)
	if !ok {
		return
	}

	var req updateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.cases.UpdateChecklist(c.Request.Context(), caseID, req.Item, *req.Value, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, result)
}

func (h *Handler) updateStatus(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	caseID, ok := h.caseID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	status := model.CaseStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	view, err := h.cases.UpdateStatus(c.Request.Context(), caseID, status, req.Notes, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, view)
}

func (h *Handler) calculateSettlement(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	caseID, ok := h.caseID(c)
	if !ok {
		return
	}

	var req calculateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	approved, err := parseDate(req.DocApprovedDate)
	if err != nil {
		h.fail(c, http.StatusBadRequest, "invalid doc_approved_date")
		return
	}
	other := decimal.Zero
	if req.OtherDeductions != nil {
		other = *req.OtherDeductions
	}

	view, err := h.cases.CalculateSettlement(c.Request.Context(), service.SettlementRequest{
		CaseID:              caseID,
		DocApprovedDate:     approved,
		OtherDeductions:     other,
		OtherDeductionNotes: req.OtherDeductionNotes,
		Principal:           principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, view)
}

func (h *Handler) processRefund(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	caseID, ok := h.caseID(c)
	if !ok {
		return
	}

	var req processRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.cases.ProcessRefund(c.Request.Context(), service.RefundRequest{
		CaseID:    caseID,
		Method:    model.RefundMethod(req.RefundMethod),
		Account:   req.RefundAccount,
		Receipt:   req.RefundReceipt,
		Notes:     req.Notes,
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, view)
}

func (h *Handler) reportToAuthority(c *gin.Context) {
	h.authority(c, h.cases.ReportToAuthority)
}

func (h *Handler) recordAuthorityResponse(c *gin.Context) {
	h.authority(c, h.cases.RecordAuthorityResponse)
}

func (h *Handler) authority(c *gin.Context, apply func(ctx context.Context, input service.AuthorityInput) (*model.CaseView, error)) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	caseID, ok := h.caseID(c)
	if !ok {
		return
	}

	var req authorityRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			h.fail(c, http.StatusBadRequest, "invalid date")
			return
		}
		date = parsed
	}

	view, err := apply(c.Request.Context(), service.AuthorityInput{
		CaseID:    caseID,
		Date:      date,
		Notes:     req.Notes,
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, view)
}

func (h *Handler) cancelCase(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	caseID, ok := h.caseID(c)
	if !ok {
		return
	}

	var req cancelCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.cases.CancelCase(c.Request.Context(), caseID, req.Reason, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, view)
}

func (h *Handler) settlementStatement(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	caseID, ok := h.caseID(c)
	if !ok {
		return
	}

	result, err := h.cases.SettlementStatement(c.Request.Context(), caseID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, pdfContentType, result.Content)
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		h.fail(c, http.StatusUnauthorized, "missing principal")
		return model.Principal{}, false
	}
	return principal, true
}

func (h *Handler) caseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.fail(c, http.StatusBadRequest, "invalid case id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func (h *Handler) fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		h.fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		h.fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		h.fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidState):
		h.fail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("termination request failed")
		h.fail(c, http.StatusInternalServerError, "internal error")
	}
}

func parseFilter(c *gin.Context) (model.CaseFilter, error) {
	var filter model.CaseFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.CaseStatus(strings.ToLower(raw))
		if !status.Valid() {
			return filter, errors.New("invalid status")
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("contract_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid contract_id")
		}
		filter.ContractID = &id
	}
	filter.Limit = 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = limit
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, errors.New("invalid offset")
		}
		filter.Offset = offset
	}
	return filter, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
