package api

import (
	"time"

	"NeoFin/internal/domain/models"
	"NeoFin/internal/service/metrics"
	"NeoFin/internal/service/ratelimit"
	"NeoFin/internal/usecase"
	"NeoFin/pkg/config"
	xhttp "NeoFin/pkg/http"
	applogger "NeoFin/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PlannerHandler serves health, tenure and plan. Plan is the only endpoint
// that fans out to collaborators, so it is the only rate-limited one.
type PlannerHandler struct {
	logger   *applogger.Logger
	planner  *usecase.GoalPlanner
	limiter  *ratelimit.Limiter
	features config.Features
}

func NewPlannerHandler(logger *applogger.Logger, planner *usecase.GoalPlanner, limiter *ratelimit.Limiter, features config.Features) *PlannerHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	metrics.Register()
	return &PlannerHandler{logger: logger, planner: planner, limiter: limiter, features: features}
}

func (h *PlannerHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.POST("/tenure", h.Tenure)
	if h.limiter != nil {
		g.POST("/plan", h.Plan, h.limiter.Middleware())
	} else {
		g.POST("/plan", h.Plan)
	}
}

func (h *PlannerHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":   "ok",
		"features": h.features,
	})
}

// Tenure needs no API key: it only runs the estimator.
func (h *PlannerHandler) Tenure(c echo.Context) error {
	start := time.Now()
	defer metrics.Observe("tenure", start)

	req := &models.TenureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	in, err := req.Input()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	res, err := h.planner.Tenure(in)
	if err != nil {
		appErr := toAppError(err, "planning")
		metrics.Fail("tenure", appErr.Code)
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"tenure":  res,
		"message": res.Message(),
	})
}

// Plan returns the full plan. A failed narration still answers 200 with the
// basket and a warning; terminal outcomes map to 4xx/5xx codes.
func (h *PlannerHandler) Plan(c echo.Context) error {
	start := time.Now()
	defer metrics.Observe("plan", start)

	req := &models.TenureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	in, err := req.Input()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	res, err := h.planner.Plan(c.Request().Context(), in)
	if err != nil {
		appErr := toAppError(err, "planning").WithParam("tenure", res.Tenure.String())
		metrics.Fail("plan", appErr.Code)
		h.logger.Warn("plan request failed",
			applogger.String("profile", in.Profile.Short()),
			applogger.String("code", appErr.Code),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, res)
}
