package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hireflow/onboarding/internal/logging"
	"github.com/hireflow/onboarding/internal/models"
	"github.com/hireflow/onboarding/internal/services"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OverrideRequest is the body of a manual status override.
type OverrideRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// ResendRequest names the communication to re-dispatch.
type ResendRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// StartOnboarding godoc
// @Summary Start onboarding for a candidate
// @Description Creates the candidate record and sends the provisional offer
// @Tags candidates
// @Accept json
// @Produce json
// @Param candidate body services.StartOnboardingInput true "Candidate data"
// @Success 201 {object} models.Candidate
// @Failure 400 {object} ErrorResponse
// @Router /candidates [post]
func StartOnboarding(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "StartOnboarding")
	defer span.End()

	var input services.StartOnboardingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	span.SetAttributes(attribute.String("candidate.email", input.Email))

	candidate, err := workflow.StartOnboarding(ctx, input)
	if err != nil {
		logging.Logger.Error("failed to start onboarding", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, candidate)
}

// GetCandidate godoc
// @Summary Get a candidate record
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} models.Candidate
// @Failure 404 {object} ErrorResponse
// @Router /candidates/{id} [get]
func GetCandidate(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GetCandidate")
	defer span.End()

	candidate, err := store.Fetch(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// DetailsReceived godoc
// @Summary Confirm acceptance details for a candidate
// @Description Provisions the document folder and sends the formal offer. Idempotent.
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} models.Candidate
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /candidates/{id}/details-received [post]
func DetailsReceived(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "DetailsReceived")
	defer span.End()

	candidate, err := workflow.DetailsReceived(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// ReleaseOffer godoc
// @Summary Release the final offer for a candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} models.Candidate
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /candidates/{id}/release-offer [post]
func ReleaseOffer(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ReleaseOffer")
	defer span.End()

	candidate, err := workflow.ReleaseOffer(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// Finalize godoc
// @Summary Finalize onboarding for a candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} models.Candidate
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /candidates/{id}/finalize [post]
func Finalize(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "Finalize")
	defer span.End()

	candidate, err := workflow.Finalize(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// OverrideStatus godoc
// @Summary Manually override a candidate's status
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param override body OverrideRequest true "Target status and reason"
// @Success 200 {object} models.Candidate
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /candidates/{id}/override [post]
func OverrideStatus(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "OverrideStatus")
	defer span.End()

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	candidate, err := workflow.Override(ctx, c.Param("id"), models.Status(req.Status), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// ResendCommunication godoc
// @Summary Re-dispatch a previously sent communication
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param resend body ResendRequest true "Communication kind"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /candidates/{id}/resend [post]
func ResendCommunication(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ResendCommunication")
	defer span.End()

	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := workflow.Resend(ctx, c.Param("id"), models.TemplateKind(req.Kind)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrCandidateNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrWrongStage),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidKind),
		errors.Is(err, models.ErrMissingContact):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case models.IsTransient(err):
		logging.Logger.Error("transient failure serving request", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		logging.Logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
