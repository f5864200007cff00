package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	"github.com/allisson/inspecta/internal/access/http/dto"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
	apperrors "github.com/allisson/inspecta/internal/errors"
	"github.com/allisson/inspecta/internal/httputil"
	customValidation "github.com/allisson/inspecta/internal/validation"
)

// AccessHandler answers the guard questions of the front-end.
type AccessHandler struct {
	guardUseCase accessUseCase.GuardUseCase
	logger       *slog.Logger
}

// NewAccessHandler creates a new access handler.
func NewAccessHandler(guardUseCase accessUseCase.GuardUseCase, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		guardUseCase: guardUseCase,
		logger:       logger,
	}
}

// MeHandler describes the authenticated user.
// GET /v1/access/me - Returns 200 OK with roles, permissions and the navigable routes.
func (h *AccessHandler) MeHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	nav := h.guardUseCase.Navigation(c.Request.Context(), user)
	c.JSON(http.StatusOK, dto.MapMeResponse(user, nav))
}

// EvaluateHandler evaluates one requirement or a batch for the authenticated user.
// POST /v1/access/evaluate - Returns 200 OK with the decisions; a denial is not an error.
func (h *AccessHandler) EvaluateHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	reqs := req.Flatten()
	decisions := make([]accessDomain.Decision, len(reqs))
	for i, r := range reqs {
		decisions[i] = h.guardUseCase.Evaluate(c.Request.Context(), user, r)
	}

	c.JSON(http.StatusOK, dto.MapDecisions(reqs, decisions))
}

// CheckRouteHandler answers whether the authenticated user may open a front-end path.
// GET /v1/access/check?path=/psv - Returns 200 OK with the decision and the matched route.
func (h *AccessHandler) CheckRouteHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	req := dto.CheckRouteRequest{Path: c.Query("path")}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	decision, route := h.guardUseCase.CheckRoute(c.Request.Context(), user, req.Path)
	c.JSON(http.StatusOK, dto.MapCheckRouteResponse(req.Path, decision, route))
}

// ListRoutesHandler returns the route table with pagination support.
// GET /v1/access/routes?offset=0&limit=50 - Guarded by the Global Admin role.
func (h *AccessHandler) ListRoutesHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	routes := httputil.Page(h.guardUseCase.Routes(c.Request.Context()), offset, limit)
	c.JSON(http.StatusOK, dto.ListRoutesResponse{Data: dto.MapRoutesToResponse(routes)})
}
