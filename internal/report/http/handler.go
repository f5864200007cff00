// Package http exposes cached, optimistic report operations to the front-end.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/inspecta/internal/errors"
	"github.com/allisson/inspecta/internal/httputil"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
	mutationUsecase "github.com/allisson/inspecta/internal/mutation/usecase"
	reportDomain "github.com/allisson/inspecta/internal/report/domain"
	"github.com/allisson/inspecta/internal/report/http/dto"
	reportUseCase "github.com/allisson/inspecta/internal/report/usecase"
)

// ReportHandler handles HTTP requests for the reports of an inspection.
//
// Writes answer 202 Accepted as soon as the optimistic change is visible in the cache.
// With ?wait=true the handler blocks until the mutation settles and answers with the
// server value or the mapped error.
type ReportHandler struct {
	reportUseCase reportUseCase.ReportUseCase
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reportUseCase reportUseCase.ReportUseCase, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
		logger:        logger,
	}
}

// ListHandler returns the cached reports of an inspection.
// GET /v1/inspections/:inspection_id/reports[?refresh=true] - Returns 200 OK.
func (h *ReportHandler) ListHandler(c *gin.Context) {
	inspectionID, ok := h.inspectionID(c)
	if !ok {
		return
	}

	var (
		list *reportUseCase.ReportList
		err  error
	)
	if c.Query("refresh") == "true" {
		list, err = h.reportUseCase.Refresh(c.Request.Context(), inspectionID)
	} else {
		list, err = h.reportUseCase.List(c.Request.Context(), inspectionID)
	}
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapListToResponse(list))
}

// CreateHandler issues an optimistic report create.
// POST /v1/inspections/:inspection_id/reports - Returns 202 Accepted, or 201 Created with ?wait=true.
func (h *ReportHandler) CreateHandler(c *gin.Context) {
	inspectionID, ok := h.inspectionID(c)
	if !ok {
		return
	}

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	pending, err := h.reportUseCase.Create(mutationContext(c), req.ToInput(inspectionID))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.respond(c, pending, http.StatusCreated)
}

// UpdateHandler issues an optimistic partial update.
// PATCH /v1/inspections/:inspection_id/reports/:id - Returns 202 Accepted, or 200 OK with ?wait=true.
func (h *ReportHandler) UpdateHandler(c *gin.Context) {
	inspectionID, ok := h.inspectionID(c)
	if !ok {
		return
	}

	var req dto.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	pending, err := h.reportUseCase.Update(mutationContext(c), inspectionID, c.Param("id"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.respond(c, pending, http.StatusOK)
}

// DeleteHandler issues an optimistic delete.
// DELETE /v1/inspections/:inspection_id/reports/:id - Returns 202 Accepted, or 204 No Content with ?wait=true.
func (h *ReportHandler) DeleteHandler(c *gin.Context) {
	inspectionID, ok := h.inspectionID(c)
	if !ok {
		return
	}

	pending, err := h.reportUseCase.Delete(mutationContext(c), inspectionID, c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.respond(c, pending, http.StatusNoContent)
}

func (h *ReportHandler) inspectionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("inspection_id"), 10, 64)
	if err != nil || id < 1 {
		httputil.HandleValidationErrorGin(c,
			errors.New("invalid inspection ID format: must be a positive integer"),
			h.logger)
		return 0, false
	}
	return id, true
}

// mutationContext returns the context a write is issued with. A 202 answer outlives the
// request, so its dispatch must not be canceled when the handler returns.
func mutationContext(c *gin.Context) context.Context {
	if c.Query("wait") == "true" {
		return c.Request.Context()
	}
	return context.WithoutCancel(c.Request.Context())
}

// respond acknowledges the pending mutation, or waits for it when asked to.
func (h *ReportHandler) respond(c *gin.Context, pending *mutationUsecase.Pending, settledStatus int) {
	if c.Query("wait") != "true" {
		c.JSON(http.StatusAccepted, dto.MutationResponse{
			MutationID: pending.ID(),
			TempID:     pending.TempID(),
			State:      string(mutationDomain.StatePending),
		})
		return
	}

	result, err := pending.Wait(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if settledStatus == http.StatusNoContent || result == nil || len(result.Value) == 0 {
		c.Status(settledStatus)
		return
	}

	var report reportDomain.Report
	if err := json.Unmarshal(result.Value, &report); err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrapf(apperrors.ErrConflict, "report response: %v", err), h.logger)
		return
	}
	c.JSON(settledStatus, dto.MapReportToResponse(report))
}
