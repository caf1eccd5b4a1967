package api

import (
	"context"
	"errors"
	"net/http"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/internal/session"
	"NeoFin/internal/usecase"
	xhttp "NeoFin/pkg/http"
)

// toAppError maps use-case errors onto the API error envelope. feature names
// the capability reported when a collaborator is not configured.
func toAppError(err error, feature string) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domsvc.ErrNotConfigured):
		return xhttp.FeatureDisabledError(feature).WithError(err)
	case errors.Is(err, usecase.ErrNoMarketData):
		return xhttp.UnprocessableError("NO_MARKET_DATA", "Could not retrieve historical market data to build your plan.").WithError(err)
	case errors.Is(err, usecase.ErrNoEligibleAssets):
		return xhttp.UnprocessableError("NO_ELIGIBLE_ASSETS", usecase.ErrNoEligibleAssets.Error()).WithError(err)
	case errors.Is(err, session.ErrNotFound):
		return xhttp.NotFoundErrorf("session not found").WithError(err)
	case errors.Is(err, session.ErrBusy):
		return xhttp.ConflictError("session is busy with another request").WithError(err)
	case errors.Is(err, models.ErrInvalidGoal),
		errors.Is(err, usecase.ErrNoDocuments),
		errors.Is(err, usecase.ErrNoText):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.NewAppError("ERR_TIMEOUT", "", "the request timed out", http.StatusGatewayTimeout).WithError(err)
	default:
		return xhttp.BadGatewayError(err.Error()).WithError(err)
	}
}
