package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appprofit "github.com/vestfolio/backend/internal/application/profit"
	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/interfaces/http/dto"
)

// ProfitHandler handles profit batch API endpoints
type ProfitHandler struct {
	BaseHandler
	batchService      *appprofit.BatchService
	allocationService *appprofit.AllocationService
}

// NewProfitHandler creates a new ProfitHandler
func NewProfitHandler(batchService *appprofit.BatchService, allocationService *appprofit.AllocationService) *ProfitHandler {
	return &ProfitHandler{
		batchService:      batchService,
		allocationService: allocationService,
	}
}

// CreateBatchRequest represents an accountant's profit submission
// @Description Request body for submitting a profit batch
type CreateBatchRequest struct {
	PeriodType    string          `json:"period_type" binding:"required,oneof=DAILY WEEKLY"`
	PeriodStart   time.Time       `json:"period_start" binding:"required"`
	PeriodEnd     time.Time       `json:"period_end" binding:"required"`
	TotalProfit   decimal.Decimal `json:"total_profit" binding:"required"`
	Note          string          `json:"note" binding:"max=2000"`
	AttachmentURL string          `json:"attachment_url" binding:"omitempty,max=500"`
}

// RejectBatchRequest represents an admin's rejection decision
// @Description Request body for rejecting a profit batch
type RejectBatchRequest struct {
	Mode                string           `json:"mode" binding:"required,oneof=REQUEST_CHANGES FINAL_REJECT"`
	AdjustedTotalProfit *decimal.Decimal `json:"adjusted_total_profit"`
	Note                string           `json:"note" binding:"max=2000"`
}

// ResubmitBatchRequest represents an accountant's revised submission
// @Description Request body for resubmitting a rejected batch
type ResubmitBatchRequest struct {
	TotalProfit   *decimal.Decimal `json:"total_profit"`
	Note          string           `json:"note" binding:"max=2000"`
	AttachmentURL string           `json:"attachment_url" binding:"omitempty,max=500"`
}

// ApproveBatchRequest represents an admin's final approval
// @Description Request body for approving a profit batch
type ApproveBatchRequest struct {
	Note string `json:"note" binding:"max=2000"`
}

// BatchResponse represents a profit batch in API responses
// @Description Profit batch response
type BatchResponse struct {
	ID                    string           `json:"id"`
	PeriodType            string           `json:"period_type"`
	PeriodStart           time.Time        `json:"period_start"`
	PeriodEnd             time.Time        `json:"period_end"`
	TotalProfit           decimal.Decimal  `json:"total_profit"`
	NetProfit             decimal.Decimal  `json:"net_profit"`
	BusinessReserveAmount decimal.Decimal  `json:"business_reserve_amount"`
	InvestorPoolAmount    decimal.Decimal  `json:"investor_pool_amount"`
	ReferralPoolAmount    decimal.Decimal  `json:"referral_pool_amount"`
	Status                string           `json:"status"`
	SubmittedBy           string           `json:"submitted_by"`
	FinalizedBy           *string          `json:"finalized_by,omitempty"`
	RevisionCount         int              `json:"revision_count"`
	TotalInvestmentAmount *decimal.Decimal `json:"total_investment_amount,omitempty"`
	RecipientCount        *int             `json:"recipient_count,omitempty"`
	ApprovedAt            *time.Time       `json:"approved_at,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
}

// AllocationResponse represents one investor's share of a batch
// @Description Profit allocation response
type AllocationResponse struct {
	ID                 string          `json:"id"`
	BatchID            string          `json:"batch_id"`
	UserID             string          `json:"user_id"`
	InvestmentSnapshot decimal.Decimal `json:"investment_snapshot"`
	SharePercent       decimal.Decimal `json:"share_percent"`
	ProfitAmount       decimal.Decimal `json:"profit_amount"`
	Status             string          `json:"status"`
	CreditedAt         *time.Time      `json:"credited_at,omitempty"`
}

// CommentResponse represents one timeline comment of a batch
// @Description Batch timeline comment response
type CommentResponse struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	Kind          string    `json:"kind"`
	Body          string    `json:"body"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// batchListFilter represents filter options for batch listing
type batchListFilter struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=PENDING_ADMIN_FINAL APPROVED REJECTED"`
	Format string `form:"format" binding:"omitempty,oneof=json csv"`
}

func batchToResponse(b *profit.Batch) BatchResponse {
	resp := BatchResponse{
		ID:                    b.ID.String(),
		PeriodType:            string(b.PeriodType),
		PeriodStart:           b.PeriodStart,
		PeriodEnd:             b.PeriodEnd,
		TotalProfit:           b.TotalProfit,
		NetProfit:             b.NetProfit,
		BusinessReserveAmount: b.BusinessReserveAmount,
		InvestorPoolAmount:    b.InvestorPoolAmount,
		ReferralPoolAmount:    b.ReferralPoolAmount,
		Status:                string(b.Status),
		SubmittedBy:           b.SubmittedBy.String(),
		RevisionCount:         b.RevisionCount,
		TotalInvestmentAmount: b.TotalInvestmentAmount,
		RecipientCount:        b.RecipientCount,
		ApprovedAt:            b.ApprovedAt,
		CreatedAt:             b.CreatedAt,
	}
	if b.FinalizedBy != nil {
		finalizedBy := b.FinalizedBy.String()
		resp.FinalizedBy = &finalizedBy
	}
	return resp
}

func allocationToResponse(a profit.Allocation) AllocationResponse {
	return AllocationResponse{
		ID:                 a.ID.String(),
		BatchID:            a.BatchID.String(),
		UserID:             a.UserID.String(),
		InvestmentSnapshot: a.InvestmentSnapshot,
		SharePercent:       a.SharePercent,
		ProfitAmount:       a.ProfitAmount,
		Status:             string(a.Status),
		CreditedAt:         a.CreditedAt,
	}
}

// CreateBatch godoc
// @ID           createProfitBatch
// @Summary      Submit a profit batch
// @Description  Submits one period's profit for admin finalization
// @Tags         profit
// @Accept       json
// @Produce      json
// @Param        request body CreateBatchRequest true "Batch submission"
// @Success      201 {object} APIResponse[BatchResponse]
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Security     BearerAuth
// @Router       /profit/batches [post]
func (h *ProfitHandler) CreateBatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), appprofit.CreateBatchParams{
		PeriodType:    profit.PeriodType(req.PeriodType),
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		TotalProfit:   req.TotalProfit,
		SubmittedBy:   userID,
		Note:          req.Note,
		AttachmentURL: req.AttachmentURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batchToResponse(batch))
}

// ListBatches godoc
// @ID           listProfitBatches
// @Summary      List profit batches
// @Tags         profit
// @Produce      json
// @Produce      text/csv
// @Param        status query string false "Filter by status" Enums(PENDING_ADMIN_FINAL, APPROVED, REJECTED)
// @Param        format query string false "Response format" Enums(json, csv)
// @Success      200 {object} APIResponse[[]BatchResponse]
// @Security     BearerAuth
// @Router       /profit/batches [get]
func (h *ProfitHandler) ListBatches(c *gin.Context) {
	var req batchListFilter
	req.ListRequest = dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := profit.BatchFilter{Filter: toSharedFilter(req.ListRequest)}
	if req.Status != "" {
		status := profit.BatchStatus(req.Status)
		filter.Status = &status
	}

	page, err := h.batchService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename=profit-batches.csv")
		c.Status(http.StatusOK)
		writeBatchesCSV(c.Writer, page.Items)
		return
	}

	responses := make([]BatchResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = batchToResponse(&page.Items[i])
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// writeBatchesCSV renders the batch list in the same column order the
// JSON response uses
func writeBatchesCSV(w io.Writer, batches []profit.Batch) {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	_ = writer.Write([]string{"batch_id", "period_type", "period_start", "period_end",
		"total_profit", "net_profit", "business_reserve", "investor_pool", "referral_pool",
		"status", "revision_count", "created_at"})
	for i := range batches {
		b := &batches[i]
		_ = writer.Write([]string{
			b.ID.String(),
			string(b.PeriodType),
			b.PeriodStart.Format(time.RFC3339),
			b.PeriodEnd.Format(time.RFC3339),
			b.TotalProfit.String(),
			b.NetProfit.String(),
			b.BusinessReserveAmount.String(),
			b.InvestorPoolAmount.String(),
			b.ReferralPoolAmount.String(),
			string(b.Status),
			strconv.Itoa(b.RevisionCount),
			b.CreatedAt.Format(time.RFC3339),
		})
	}
}

// GetBatch godoc
// @ID           getProfitBatch
// @Summary      Get a profit batch
// @Tags         profit
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} APIResponse[BatchResponse]
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /profit/batches/{id} [get]
func (h *ProfitHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	batch, err := h.batchService.Get(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batchToResponse(batch))
}

// GetTimeline godoc
// @ID           getProfitBatchTimeline
// @Summary      Get a batch's comment timeline
// @Tags         profit
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} APIResponse[[]CommentResponse]
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /profit/batches/{id}/timeline [get]
func (h *ProfitHandler) GetTimeline(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	comments, err := h.batchService.GetTimeline(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		responses[i] = CommentResponse{
			ID:            comment.ID.String(),
			AuthorID:      comment.AuthorID.String(),
			Kind:          string(comment.Kind),
			Body:          comment.Body,
			AttachmentURL: comment.AttachmentURL,
			CreatedAt:     comment.CreatedAt,
		}
	}
	h.Success(c, responses)
}

// ApproveBatch godoc
// @ID           approveProfitBatch
// @Summary      Finally approve a batch
// @Description  Approves the batch and credits every allocation and referral commission atomically
// @Tags         profit
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Param        request body ApproveBatchRequest false "Approval note"
// @Success      200 {object} APIResponse[BatchResponse]
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /profit/batches/{id}/approve [post]
func (h *ProfitHandler) ApproveBatch(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req ApproveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	batch, err := h.allocationService.FinalApprove(c.Request.Context(), batchID, adminID, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batchToResponse(batch))
}

// RejectBatch godoc
// @ID           rejectProfitBatch
// @Summary      Reject a batch
// @Description  Requests changes or finally rejects a pending batch
// @Tags         profit
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Param        request body RejectBatchRequest true "Rejection decision"
// @Success      200 {object} APIResponse[BatchResponse]
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /profit/batches/{id}/reject [post]
func (h *ProfitHandler) RejectBatch(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req RejectBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	batch, err := h.batchService.FinalReject(c.Request.Context(), appprofit.RejectBatchParams{
		BatchID:             batchID,
		FinalizedBy:         adminID,
		Mode:                profit.RejectMode(req.Mode),
		AdjustedTotalProfit: req.AdjustedTotalProfit,
		Note:                req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batchToResponse(batch))
}

// ResubmitBatch godoc
// @ID           resubmitProfitBatch
// @Summary      Resubmit a rejected batch
// @Tags         profit
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Param        request body ResubmitBatchRequest true "Revised submission"
// @Success      200 {object} APIResponse[BatchResponse]
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /profit/batches/{id}/resubmit [post]
func (h *ProfitHandler) ResubmitBatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req ResubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	batch, err := h.batchService.Resubmit(c.Request.Context(), appprofit.ResubmitBatchParams{
		BatchID:       batchID,
		By:            userID,
		TotalProfit:   req.TotalProfit,
		Note:          req.Note,
		AttachmentURL: req.AttachmentURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batchToResponse(batch))
}

// ListAllocations godoc
// @ID           listProfitAllocations
// @Summary      List a batch's allocations
// @Tags         profit
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} APIResponse[[]AllocationResponse]
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /profit/batches/{id}/allocations [get]
func (h *ProfitHandler) ListAllocations(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	allocations, err := h.allocationService.ListAllocations(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AllocationResponse, len(allocations))
	for i, allocation := range allocations {
		responses[i] = allocationToResponse(allocation)
	}
	h.Success(c, responses)
}

// ExportAllocations godoc
// @ID           exportProfitAllocations
// @Summary      Export a batch's allocations as CSV
// @Tags         profit
// @Produce      text/csv
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {string} string "CSV payload"
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /profit/batches/{id}/allocations/export [get]
func (h *ProfitHandler) ExportAllocations(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	allocations, err := h.allocationService.ListAllocations(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=allocations-%s.csv", batchID))
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write([]string{"allocation_id", "user_id", "investment_snapshot", "share_percent", "profit_amount", "status", "credited_at"})
	for _, a := range allocations {
		creditedAt := ""
		if a.CreditedAt != nil {
			creditedAt = a.CreditedAt.Format(time.RFC3339)
		}
		_ = writer.Write([]string{
			a.ID.String(),
			a.UserID.String(),
			a.InvestmentSnapshot.String(),
			a.SharePercent.String(),
			a.ProfitAmount.String(),
			string(a.Status),
			creditedAt,
		})
	}
}
