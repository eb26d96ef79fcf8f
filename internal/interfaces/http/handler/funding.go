package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appfunding "github.com/vestfolio/backend/internal/application/funding"
	"github.com/vestfolio/backend/internal/domain/funding"
	"github.com/vestfolio/backend/internal/infrastructure/auth"
	"github.com/vestfolio/backend/internal/interfaces/http/dto"
	"github.com/vestfolio/backend/internal/interfaces/http/middleware"
)

// FundingHandler handles deposit and withdrawal request API endpoints
type FundingHandler struct {
	BaseHandler
	requestService *appfunding.RequestService
}

// NewFundingHandler creates a new FundingHandler
func NewFundingHandler(requestService *appfunding.RequestService) *FundingHandler {
	return &FundingHandler{requestService: requestService}
}

// SubmitFundingRequest represents a user's deposit or withdrawal request
// @Description Request body for submitting a funding request
type SubmitFundingRequest struct {
	Kind            string          `json:"kind" binding:"required,oneof=DEPOSIT WITHDRAWAL"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
	Note            string          `json:"note" binding:"max=2000"`
	PaymentProofURL string          `json:"payment_proof_url" binding:"omitempty,max=500"`
}

// ReviewFundingRequest represents an accountant's first-stage decision
// @Description Request body for the accountant review decision
type ReviewFundingRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" binding:"max=2000"`
}

// FinalizeFundingRequest represents an admin's final decision
// @Description Request body for the admin finalize decision
type FinalizeFundingRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" binding:"max=2000"`
}

// PayoutFundingRequest confirms an approved withdrawal was paid out
// @Description Request body for confirming a withdrawal payout
type PayoutFundingRequest struct {
	PayoutRef string `json:"payout_ref" binding:"required,max=200"`
}

// FundingRequestResponse represents a funding request in API responses
// @Description Funding request response
type FundingRequestResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	Note            string          `json:"note,omitempty"`
	PaymentProofURL string          `json:"payment_proof_url,omitempty"`
	ReviewedBy      *string         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	ReviewNote      string          `json:"review_note,omitempty"`
	FinalizedBy     *string         `json:"finalized_by,omitempty"`
	FinalizedAt     *time.Time      `json:"finalized_at,omitempty"`
	FinalizeNote    string          `json:"finalize_note,omitempty"`
	TransactionID   *string         `json:"transaction_id,omitempty"`
	PayoutRef       string          `json:"payout_ref,omitempty"`
	PayoutSentAt    *time.Time      `json:"payout_sent_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// fundingListFilter represents filter options for funding request listing
type fundingListFilter struct {
	dto.ListRequest
	Kind   string `form:"kind" binding:"omitempty,oneof=DEPOSIT WITHDRAWAL"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING_ACCOUNTANT PENDING_ADMIN_FINAL APPROVED REJECTED"`
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func requestToResponse(r *funding.Request) FundingRequestResponse {
	return FundingRequestResponse{
		ID:              r.ID.String(),
		UserID:          r.UserID.String(),
		Kind:            string(r.Kind),
		Amount:          r.Amount,
		Currency:        r.Currency,
		Status:          string(r.Status),
		Note:            r.Note,
		PaymentProofURL: r.PaymentProofURL,
		ReviewedBy:      uuidPtrToString(r.ReviewedBy),
		ReviewedAt:      r.ReviewedAt,
		ReviewNote:      r.ReviewNote,
		FinalizedBy:     uuidPtrToString(r.FinalizedBy),
		FinalizedAt:     r.FinalizedAt,
		FinalizeNote:    r.FinalizeNote,
		TransactionID:   uuidPtrToString(r.TransactionID),
		PayoutRef:       r.PayoutRef,
		PayoutSentAt:    r.PayoutSentAt,
		CreatedAt:       r.CreatedAt,
	}
}

// Submit godoc
// @ID           submitFundingRequest
// @Summary      Submit a deposit or withdrawal request
// @Tags         funding
// @Accept       json
// @Produce      json
// @Param        request body SubmitFundingRequest true "Funding request"
// @Success      201 {object} APIResponse[FundingRequestResponse]
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /funding/requests [post]
func (h *FundingHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SubmitFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.Submit(c.Request.Context(), appfunding.SubmitParams{
		UserID:          userID,
		Kind:            funding.RequestKind(req.Kind),
		Amount:          req.Amount,
		Currency:        req.Currency,
		Note:            req.Note,
		PaymentProofURL: req.PaymentProofURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, requestToResponse(request))
}

// List godoc
// @ID           listFundingRequests
// @Summary      List funding requests
// @Description  Users see their own requests; accountants and admins see all
// @Tags         funding
// @Produce      json
// @Param        kind query string false "Filter by kind" Enums(DEPOSIT, WITHDRAWAL)
// @Param        status query string false "Filter by status"
// @Success      200 {object} APIResponse[[]FundingRequestResponse]
// @Security     BearerAuth
// @Router       /funding/requests [get]
func (h *FundingHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req fundingListFilter
	req.ListRequest = dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := funding.RequestFilter{Filter: toSharedFilter(req.ListRequest)}
	if req.Kind != "" {
		kind := funding.RequestKind(req.Kind)
		filter.Kind = &kind
	}
	if req.Status != "" {
		status := funding.RequestStatus(req.Status)
		filter.Status = &status
	}
	// Plain users only ever see their own requests
	if !middleware.GetJWTRole(c).IsAtLeast(auth.RoleAccountant) {
		filter.UserID = &userID
	}

	page, err := h.requestService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]FundingRequestResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = requestToResponse(&page.Items[i])
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getFundingRequest
// @Summary      Get a funding request
// @Tags         funding
// @Produce      json
// @Param        id path string true "Request ID" format(uuid)
// @Success      200 {object} APIResponse[FundingRequestResponse]
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /funding/requests/{id} [get]
func (h *FundingHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	request, err := h.requestService.Get(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// A request is visible to its owner and to staff
	if request.UserID != userID && !middleware.GetJWTRole(c).IsAtLeast(auth.RoleAccountant) {
		h.NotFound(c, "Funding request not found")
		return
	}
	h.Success(c, requestToResponse(request))
}

// Review godoc
// @ID           reviewFundingRequest
// @Summary      Accountant first-stage review
// @Description  Approving forwards the request to admin finalization; no balances move
// @Tags         funding
// @Accept       json
// @Produce      json
// @Param        id path string true "Request ID" format(uuid)
// @Param        request body ReviewFundingRequest true "Review decision"
// @Success      200 {object} APIResponse[FundingRequestResponse]
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /funding/requests/{id}/review [post]
func (h *FundingHandler) Review(c *gin.Context) {
	accountantID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	var req ReviewFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.AccountantReview(c.Request.Context(), requestID, accountantID, req.Approve, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requestToResponse(request))
}

// Finalize godoc
// @ID           finalizeFundingRequest
// @Summary      Admin final decision
// @Description  Approving posts the ledger movement exactly once, atomically with the status change
// @Tags         funding
// @Accept       json
// @Produce      json
// @Param        id path string true "Request ID" format(uuid)
// @Param        request body FinalizeFundingRequest true "Final decision"
// @Success      200 {object} APIResponse[FundingRequestResponse]
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /funding/requests/{id}/finalize [post]
func (h *FundingHandler) Finalize(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	var req FinalizeFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.AdminFinalize(c.Request.Context(), requestID, adminID, req.Approve, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requestToResponse(request))
}

// ConfirmPayout godoc
// @ID           confirmFundingPayout
// @Summary      Confirm a withdrawal payout
// @Tags         funding
// @Accept       json
// @Produce      json
// @Param        id path string true "Request ID" format(uuid)
// @Param        request body PayoutFundingRequest true "Payout confirmation"
// @Success      200 {object} APIResponse[FundingRequestResponse]
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /funding/requests/{id}/payout [post]
func (h *FundingHandler) ConfirmPayout(c *gin.Context) {
	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	var req PayoutFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.ConfirmPayout(c.Request.Context(), requestID, operatorID, req.PayoutRef)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requestToResponse(request))
}
