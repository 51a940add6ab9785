package handlers

import (
	"net/http"

	"github.com/brightpools/charity-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettlementHandler handles winner payout and charity settlement HTTP requests
type SettlementHandler struct {
	settlementService services.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// MarkPaidRequest is the payload for manual settlement endpoints
type MarkPaidRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// MarkWinnerPaid handles POST /winners/:id/settle
func (h *SettlementHandler) MarkWinnerPaid(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request MarkPaidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settlementService.MarkWinnerPaid(c.Request.Context(), id, request.Reference); err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Winner marked as paid"})
}

// BatchSettleRequest is the payload for POST /draws/:id/winners/settle
type BatchSettleRequest struct {
	WinnerIDs []string `json:"winnerIds" binding:"required"`
	Reference string   `json:"reference" binding:"required"`
}

// MarkWinnersPaidBatch handles POST /draws/:id/winners/settle
func (h *SettlementHandler) MarkWinnersPaidBatch(c *gin.Context) {
	drawID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request BatchSettleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ids := make([]primitive.ObjectID, 0, len(request.WinnerIDs))
	for _, raw := range request.WinnerIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid winner ID: " + raw})
			return
		}
		ids = append(ids, id)
	}
	if err := h.settlementService.MarkWinnersPaidBatch(c.Request.Context(), drawID, ids, request.Reference); err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Winners marked as paid", "count": len(ids)})
}

// StartWinnerCheckout handles POST /winners/:id/checkout
func (h *SettlementHandler) StartWinnerCheckout(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	session, err := h.settlementService.StartWinnerCheckout(c.Request.Context(), id)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// CharityCheckoutRequest is the payload for POST /charities/:charityId/checkout
type CharityCheckoutRequest struct {
	PayeeAccount string `json:"payeeAccount" binding:"required"`
}

// StartCharityCheckout handles POST /charities/:charityId/checkout
func (h *SettlementHandler) StartCharityCheckout(c *gin.Context) {
	charityID := c.Param("charityId")
	var request CharityCheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payout, session, err := h.settlementService.StartCharityCheckout(c.Request.Context(), charityID, request.PayeeAccount)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": payout, "session": session})
}

// SettleCharityManual handles POST /charities/:charityId/settle
func (h *SettlementHandler) SettleCharityManual(c *gin.Context) {
	charityID := c.Param("charityId")
	var request MarkPaidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payout, err := h.settlementService.SettleCharityManual(c.Request.Context(), charityID, request.Reference)
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payout)
}

// GetCharityPayouts handles GET /charities/:charityId/payouts
func (h *SettlementHandler) GetCharityPayouts(c *gin.Context) {
	payouts, err := h.settlementService.GetCharityPayouts(c.Request.Context(), c.Param("charityId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payouts: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, payouts)
}

// PaymentCallbackRequest is the payload the payment provider posts back after
// a checkout session completes.
type PaymentCallbackRequest struct {
	Kind        string `json:"kind" binding:"required"` // "winner" or "charity"
	TargetID    string `json:"targetId" binding:"required"`
	ProviderRef string `json:"providerRef" binding:"required"`
	Status      string `json:"status" binding:"required"` // "success" or "failed"
}

// PaymentCallback handles POST /payments/callback. Failed sessions are
// acknowledged without state changes; the pending records stay retryable.
func (h *SettlementHandler) PaymentCallback(c *gin.Context) {
	var request PaymentCallbackRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Status != "success" {
		c.JSON(http.StatusOK, gin.H{"message": "Callback acknowledged; no settlement recorded"})
		return
	}
	targetID, err := primitive.ObjectIDFromHex(request.TargetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target ID"})
		return
	}
	switch request.Kind {
	case "winner":
		err = h.settlementService.ConfirmWinnerPayment(c.Request.Context(), targetID, request.ProviderRef)
	case "charity":
		err = h.settlementService.ConfirmCharityPayment(c.Request.Context(), targetID, request.ProviderRef)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown callback kind: " + request.Kind})
		return
	}
	if err != nil {
		c.JSON(drawErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settlement recorded"})
}
