package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appreferral "github.com/vestfolio/backend/internal/application/referral"
	"github.com/vestfolio/backend/internal/domain/referral"
)

// ReferralHandler handles referral tree and commission API endpoints
type ReferralHandler struct {
	BaseHandler
	cascadeService *appreferral.CascadeService
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(cascadeService *appreferral.CascadeService) *ReferralHandler {
	return &ReferralHandler{cascadeService: cascadeService}
}

// EnrollRequest represents a referral enrollment
// @Description Request body for enrolling under a referrer
type EnrollRequest struct {
	ParentUserID uuid.UUID `json:"parent_user_id" binding:"required"`
}

// ReferralEdgeResponse represents one upline edge in API responses
// @Description Referral edge response
type ReferralEdgeResponse struct {
	ParentUserID string `json:"parent_user_id"`
	Level        int    `json:"level"`
}

// CommissionResponse represents a settled commission in API responses
// @Description Commission response
type CommissionResponse struct {
	ID             string          `json:"id"`
	EventID        string          `json:"event_id"`
	DownlineUserID string          `json:"downline_user_id"`
	Level          int             `json:"level"`
	Percent        decimal.Decimal `json:"percent"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionID  string          `json:"transaction_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// LevelEntry represents one commission level in API payloads
// @Description Commission level entry
type LevelEntry struct {
	Level   int             `json:"level" binding:"required,min=1"`
	Percent decimal.Decimal `json:"percent" binding:"required"`
}

// UpdateLevelsRequest replaces the commission schedule
// @Description Request body for replacing the commission level schedule
type UpdateLevelsRequest struct {
	Levels []LevelEntry `json:"levels" binding:"required,min=1,dive"`
}

// Enroll godoc
// @ID           enrollReferral
// @Summary      Enroll under a referrer
// @Description  Records the full upline chain for the authenticated user. Enrollment is permanent.
// @Tags         referral
// @Accept       json
// @Produce      json
// @Param        request body EnrollRequest true "Referrer"
// @Success      201 {object} SuccessResponse
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /referral/enroll [post]
func (h *ReferralHandler) Enroll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.cascadeService.Enroll(c.Request.Context(), userID, req.ParentUserID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"enrolled": true})
}

// GetUpline godoc
// @ID           getReferralUpline
// @Summary      Get own upline chain
// @Tags         referral
// @Produce      json
// @Success      200 {object} APIResponse[[]ReferralEdgeResponse]
// @Security     BearerAuth
// @Router       /referral/upline [get]
func (h *ReferralHandler) GetUpline(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	chain, err := h.cascadeService.GetUplineChain(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ReferralEdgeResponse, len(chain))
	for i, edge := range chain {
		responses[i] = ReferralEdgeResponse{
			ParentUserID: edge.ParentUserID.String(),
			Level:        edge.Level,
		}
	}
	h.Success(c, responses)
}

// GetCommissions godoc
// @ID           getReferralCommissions
// @Summary      List own earned commissions
// @Tags         referral
// @Produce      json
// @Success      200 {object} APIResponse[[]CommissionResponse]
// @Security     BearerAuth
// @Router       /referral/commissions [get]
func (h *ReferralHandler) GetCommissions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	commissions, err := h.cascadeService.GetCommissions(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CommissionResponse, len(commissions))
	for i, commission := range commissions {
		responses[i] = CommissionResponse{
			ID:             commission.ID.String(),
			EventID:        commission.EventID.String(),
			DownlineUserID: commission.DownlineUserID.String(),
			Level:          commission.Level,
			Percent:        commission.Percent,
			Amount:         commission.Amount,
			TransactionID:  commission.TransactionID.String(),
			CreatedAt:      commission.CreatedAt,
		}
	}
	h.Success(c, responses)
}

// GetLevels godoc
// @ID           getReferralLevels
// @Summary      Get the commission level schedule
// @Tags         referral
// @Produce      json
// @Success      200 {object} APIResponse[[]LevelEntry]
// @Security     BearerAuth
// @Router       /referral/levels [get]
func (h *ReferralHandler) GetLevels(c *gin.Context) {
	config := h.cascadeService.GetLevels(c.Request.Context())

	responses := make([]LevelEntry, len(config))
	for i, level := range config {
		responses[i] = LevelEntry{Level: level.Level, Percent: level.Percent}
	}
	h.Success(c, responses)
}

// UpdateLevels godoc
// @ID           updateReferralLevels
// @Summary      Replace the commission level schedule
// @Description  The new schedule applies to future distributions only
// @Tags         referral
// @Accept       json
// @Produce      json
// @Param        request body UpdateLevelsRequest true "New schedule"
// @Success      200 {object} APIResponse[[]LevelEntry]
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /referral/levels [put]
func (h *ReferralHandler) UpdateLevels(c *gin.Context) {
	var req UpdateLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	config := make(referral.LevelConfig, len(req.Levels))
	for i, entry := range req.Levels {
		config[i] = referral.Level{Level: entry.Level, Percent: entry.Percent}
	}

	if err := h.cascadeService.UpdateLevels(c.Request.Context(), config); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req.Levels)
}
