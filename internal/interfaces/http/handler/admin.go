package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/domain/ledger"
)

// AdminLedgerHandler exposes the operator-only manual posting endpoints.
// All routes behind it are admin role gated.
type AdminLedgerHandler struct {
	BaseHandler
	manualService *appledger.ManualPostingService
}

// NewAdminLedgerHandler creates a new AdminLedgerHandler
func NewAdminLedgerHandler(manualService *appledger.ManualPostingService) *AdminLedgerHandler {
	return &AdminLedgerHandler{manualService: manualService}
}

// ManualPostingRequest represents a manual posting between two accounts
// @Description Manual posting request
type ManualPostingRequest struct {
	DebitAccountID  string          `json:"debit_account_id" binding:"required,uuid"`
	CreditAccountID string          `json:"credit_account_id" binding:"required,uuid"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Reference       string          `json:"reference" binding:"omitempty,max=200"`
	Note            string          `json:"note" binding:"omitempty,max=2000"`
}

// TransactionResponse represents a posted ledger transaction
// @Description Ledger transaction response
type TransactionResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Reference *string         `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func transactionToResponse(tx *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        tx.ID.String(),
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		Status:    string(tx.Status),
		Reference: tx.Reference,
		CreatedAt: tx.CreatedAt,
	}
}

func (h *AdminLedgerHandler) post(c *gin.Context, action string, targetUserID *uuid.UUID) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ManualPostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	debitID, err := uuid.Parse(req.DebitAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid debit account ID")
		return
	}
	creditID, err := uuid.Parse(req.CreditAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid credit account ID")
		return
	}

	tx, err := h.manualService.Post(c.Request.Context(), appledger.ManualPostParams{
		Action:          action,
		DebitAccountID:  debitID,
		CreditAccountID: creditID,
		Amount:          req.Amount,
		Reference:       req.Reference,
		Note:            req.Note,
		ActorID:         actorID,
		TargetUserID:    targetUserID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transactionToResponse(tx))
}

// Adjust godoc
// @ID           adjustLedger
// @Summary      Manual balance adjustment
// @Description  Posts a balanced correction between two explicit accounts
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body ManualPostingRequest true "Posting"
// @Success      201 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/ledger/adjust [post]
func (h *AdminLedgerHandler) Adjust(c *gin.Context) {
	h.post(c, "ledger.adjust", nil)
}

// Transfer godoc
// @ID           transferLedger
// @Summary      Manual transfer between accounts
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body ManualPostingRequest true "Posting"
// @Success      201 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/ledger/transfer [post]
func (h *AdminLedgerHandler) Transfer(c *gin.Context) {
	h.post(c, "ledger.transfer", nil)
}

// AdjustUserFunds godoc
// @ID           adjustUserFunds
// @Summary      Manual funds adjustment for a user
// @Description  Posts between two accounts, one of which must belong to the target user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body ManualPostingRequest true "Posting"
// @Success      201 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/users/{id}/funds [post]
func (h *AdminLedgerHandler) AdjustUserFunds(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	h.post(c, "user.funds_adjust", &targetID)
}
