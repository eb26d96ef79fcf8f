package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinvestment "github.com/vestfolio/backend/internal/application/investment"
	"github.com/vestfolio/backend/internal/domain/investment"
	"github.com/vestfolio/backend/internal/infrastructure/auth"
	"github.com/vestfolio/backend/internal/interfaces/http/middleware"
)

// InvestmentHandler handles investment plan and position API endpoints
type InvestmentHandler struct {
	BaseHandler
	service *appinvestment.Service
}

// NewInvestmentHandler creates a new InvestmentHandler
func NewInvestmentHandler(service *appinvestment.Service) *InvestmentHandler {
	return &InvestmentHandler{service: service}
}

// CreatePlanRequest represents a new investment plan
// @Description Request body for creating an investment plan
type CreatePlanRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	MinAmount    decimal.Decimal `json:"min_amount" binding:"required"`
	MaxAmount    decimal.Decimal `json:"max_amount" binding:"required"`
	DurationDays int             `json:"duration_days" binding:"required,min=1"`
}

// SubscribeRequest represents a subscription to a plan
// @Description Request body for subscribing to an investment plan
type SubscribeRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// PlanResponse represents an investment plan in API responses
// @Description Investment plan response
type PlanResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	DurationDays int             `json:"duration_days"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PositionResponse represents an investment position in API responses
// @Description Investment position response
type PositionResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	PlanID          string          `json:"plan_id"`
	InvestedAmount  decimal.Decimal `json:"invested_amount"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Status          string          `json:"status"`
	TotalProfitPaid decimal.Decimal `json:"total_profit_paid"`
	CreatedAt       time.Time       `json:"created_at"`
}

func planToResponse(p investment.Plan) PlanResponse {
	return PlanResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		MinAmount:    p.MinAmount,
		MaxAmount:    p.MaxAmount,
		DurationDays: p.DurationDays,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
	}
}

func positionToResponse(p investment.Position) PositionResponse {
	return PositionResponse{
		ID:              p.ID.String(),
		UserID:          p.UserID.String(),
		PlanID:          p.PlanID.String(),
		InvestedAmount:  p.InvestedAmount,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		Status:          string(p.Status),
		TotalProfitPaid: p.TotalProfitPaid,
		CreatedAt:       p.CreatedAt,
	}
}

// CreatePlan godoc
// @ID           createInvestmentPlan
// @Summary      Create an investment plan
// @Tags         investment
// @Accept       json
// @Produce      json
// @Param        request body CreatePlanRequest true "Plan definition"
// @Success      201 {object} APIResponse[PlanResponse]
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /investment/plans [post]
func (h *InvestmentHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.service.CreatePlan(c.Request.Context(), appinvestment.CreatePlanParams{
		Name:         req.Name,
		MinAmount:    req.MinAmount,
		MaxAmount:    req.MaxAmount,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, planToResponse(*plan))
}

// ListPlans godoc
// @ID           listInvestmentPlans
// @Summary      List active investment plans
// @Tags         investment
// @Produce      json
// @Success      200 {object} APIResponse[[]PlanResponse]
// @Security     BearerAuth
// @Router       /investment/plans [get]
func (h *InvestmentHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PlanResponse, len(plans))
	for i, plan := range plans {
		responses[i] = planToResponse(plan)
	}
	h.Success(c, responses)
}

// Subscribe godoc
// @ID           subscribeInvestmentPlan
// @Summary      Subscribe to an investment plan
// @Description  Moves the stake from the user's main account into the investment holding account
// @Tags         investment
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Param        request body SubscribeRequest true "Subscription amount"
// @Success      201 {object} APIResponse[PositionResponse]
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /investment/plans/{id}/subscribe [post]
func (h *InvestmentHandler) Subscribe(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	position, err := h.service.Subscribe(c.Request.Context(), userID, planID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, positionToResponse(*position))
}

// Redeem godoc
// @ID           redeemInvestmentPosition
// @Summary      Redeem a matured position
// @Description  Returns the principal to the user's main account
// @Tags         investment
// @Produce      json
// @Param        id path string true "Position ID" format(uuid)
// @Success      200 {object} APIResponse[PositionResponse]
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /investment/positions/{id}/redeem [post]
func (h *InvestmentHandler) Redeem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	positionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid position ID format")
		return
	}

	position, err := h.service.GetPosition(c.Request.Context(), positionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// Only the position owner (or an admin) may redeem
	if position.UserID != userID && !middleware.GetJWTRole(c).IsAtLeast(auth.RoleAdmin) {
		h.NotFound(c, "Position not found")
		return
	}

	position, err = h.service.Redeem(c.Request.Context(), positionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, positionToResponse(*position))
}

// ListPositions godoc
// @ID           listInvestmentPositions
// @Summary      List own investment positions
// @Tags         investment
// @Produce      json
// @Success      200 {object} APIResponse[[]PositionResponse]
// @Security     BearerAuth
// @Router       /investment/positions [get]
func (h *InvestmentHandler) ListPositions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	positions, err := h.service.ListPositions(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PositionResponse, len(positions))
	for i, position := range positions {
		responses[i] = positionToResponse(position)
	}
	h.Success(c, responses)
}
