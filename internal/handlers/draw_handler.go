package handlers

import (
	"errors"
	"net/http"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DrawHandler handles draw lifecycle HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: drawService}
}

// drawErrorStatus maps the service error taxonomy onto HTTP statuses.
func drawErrorStatus(err error) int {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNoValidScores),
		errors.Is(err, models.ErrMissingReference):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrFutureCycleLocked),
		errors.Is(err, models.ErrAlreadyFinalized),
		errors.Is(err, models.ErrUnverifiedWinnersRemain),
		errors.Is(err, models.ErrPersistenceConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrExternalTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, models.ErrExternalPaymentFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// OpenCycleRequest is the payload for POST /draws
type OpenCycleRequest struct {
	MonthYear string `json:"monthYear" binding:"required"`
}

// OpenCycle handles POST /draws
func (h *DrawHandler) OpenCycle(c *gin.Context) {
	var request OpenCycleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cycle, err := h.drawService.OpenCycle(c.Request.Context(), request.MonthYear)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cycle)
}

// GetDraws handles GET /draws
func (h *DrawHandler) GetDraws(c *gin.Context) {
	draws, err := h.drawService.GetCycles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve draws: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, draws)
}

// GetCurrentDraw handles GET /draws/current
func (h *DrawHandler) GetCurrentDraw(c *gin.Context) {
	draw, err := h.drawService.GetCurrentCycle(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDrawByID handles GET /draws/:id
func (h *DrawHandler) GetDrawByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	draw, err := h.drawService.GetCycleByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draw)
}

// RunAnalysisRequest is the optional payload for POST /draws/:id/analysis
type RunAnalysisRequest struct {
	RangeMin int `json:"rangeMin"`
	RangeMax int `json:"rangeMax"`
}

// RunAnalysis handles POST /draws/:id/analysis
func (h *DrawHandler) RunAnalysis(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request RunAnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	computation, err := h.drawService.RunAnalysis(c.Request.Context(), id, request.RangeMin, request.RangeMax)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, computation)
}

// FinalizeDraft handles POST /draws/:id/finalize
func (h *DrawHandler) FinalizeDraft(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	draw, err := h.drawService.FinalizeDraft(c.Request.Context(), id)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draw)
}

// PublishDraw handles POST /draws/:id/publish
func (h *DrawHandler) PublishDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	draw, next, err := h.drawService.Publish(c.Request.Context(), id)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draw": draw, "nextCycle": next})
}

// ResetDrawRequest requires the admin to type the cycle label back as an
// explicit confirmation of the destructive reset.
type ResetDrawRequest struct {
	ConfirmMonthYear string `json:"confirmMonthYear" binding:"required"`
}

// ResetDraw handles POST /draws/:id/reset
func (h *DrawHandler) ResetDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request ResetDrawRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draw, err := h.drawService.GetCycleByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if request.ConfirmMonthYear != draw.MonthYear {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Confirmation label does not match the draw cycle"})
		return
	}
	draw, err = h.drawService.Reset(c.Request.Context(), id)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDrawWinners handles GET /draws/:id/winners
func (h *DrawHandler) GetDrawWinners(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	winners, err := h.drawService.GetWinnersByDrawID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve winners: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, winners)
}

// VerifyWinnerRequest is the payload for PUT /winners/:id/verification
type VerifyWinnerRequest struct {
	Status string `json:"status" binding:"required"` // VERIFIED or REJECTED
}

// VerifyWinner handles PUT /winners/:id/verification
func (h *DrawHandler) VerifyWinner(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request VerifyWinnerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actorID := c.GetString("adminID")
	if err := h.drawService.VerifyWinner(c.Request.Context(), id, models.VerificationStatus(request.Status), actorID); err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Winner verification updated"})
}
