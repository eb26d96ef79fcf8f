package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/interfaces/http/dto"
)

// WalletHandler handles wallet and ledger API endpoints
type WalletHandler struct {
	BaseHandler
	accountService *appledger.AccountService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(accountService *appledger.AccountService) *WalletHandler {
	return &WalletHandler{accountService: accountService}
}

// BalanceResponse represents an account balance
// @Description Account balance response
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// EntryResponse represents one ledger entry in API responses
// @Description Ledger entry response
type EntryResponse struct {
	ID            string          `json:"id"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IntegrityResponse reports the ledger-wide debit/credit check
// @Description Ledger integrity response
type IntegrityResponse struct {
	Balanced   bool            `json:"balanced"`
	Difference decimal.Decimal `json:"difference"`
}

// entryListFilter represents filter options for entry listing
type entryListFilter struct {
	dto.ListRequest
	Direction string `form:"direction" binding:"omitempty,oneof=DEBIT CREDIT"`
}

func entryToResponse(e ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:            e.ID.String(),
		Direction:     string(e.Direction),
		Amount:        e.Amount,
		TransactionID: e.TransactionID.String(),
		CreatedAt:     e.CreatedAt,
	}
}

// toSharedFilter converts list request parameters to a domain filter
func toSharedFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	return filter
}

// GetBalance godoc
// @ID           getWalletBalance
// @Summary      Get own balance
// @Description  Returns the authenticated user's main account balance
// @Tags         wallet
// @Produce      json
// @Success      200 {object} APIResponse[BalanceResponse]
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /wallet/balance [get]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	account, err := h.accountService.GetOrCreateUserMainAccount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	balance, err := h.accountService.GetBalance(c.Request.Context(), account.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BalanceResponse{AccountID: account.ID.String(), Balance: balance})
}

// ListEntries godoc
// @ID           listWalletEntries
// @Summary      List own ledger entries
// @Description  Returns the entry history of the authenticated user's main account
// @Tags         wallet
// @Produce      json
// @Param        direction query string false "Filter by direction" Enums(DEBIT, CREDIT)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]EntryResponse]
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /wallet/entries [get]
func (h *WalletHandler) ListEntries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req entryListFilter
	req.ListRequest = dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.GetOrCreateUserMainAccount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filter := ledger.EntryFilter{Filter: toSharedFilter(req.ListRequest)}
	if req.Direction != "" {
		direction := ledger.Direction(req.Direction)
		filter.Direction = &direction
	}

	page, err := h.accountService.ListEntries(c.Request.Context(), account.ID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]EntryResponse, len(page.Items))
	for i, entry := range page.Items {
		responses[i] = entryToResponse(entry)
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// VerifyIntegrity godoc
// @ID           verifyLedgerIntegrity
// @Summary      Verify ledger integrity
// @Description  Checks that ledger-wide debits equal credits
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[IntegrityResponse]
// @Failure      403 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/ledger/integrity [get]
func (h *WalletHandler) VerifyIntegrity(c *gin.Context) {
	balanced, difference, err := h.accountService.VerifyLedgerIntegrity(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, IntegrityResponse{Balanced: balanced, Difference: difference})
}

// GetSystemAccount godoc
// @ID           getSystemAccount
// @Summary      Get a system account and its balance
// @Tags         admin
// @Produce      json
// @Param        code path string true "Reserved system account code"
// @Success      200 {object} APIResponse[BalanceResponse]
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/ledger/system-accounts/{code} [get]
func (h *WalletHandler) GetSystemAccount(c *gin.Context) {
	code := c.Param("code")

	account, err := h.accountService.GetSystemAccountByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	balance, err := h.accountService.GetBalance(c.Request.Context(), account.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BalanceResponse{AccountID: account.ID.String(), Balance: balance})
}
