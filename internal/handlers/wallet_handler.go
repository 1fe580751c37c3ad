package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	walletdomain "github.com/barberbook/barberbook-api/internal/domain/wallet"
	"github.com/barberbook/barberbook-api/internal/gateway"
	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/middleware"
	uc "github.com/barberbook/barberbook-api/internal/usecase/wallet"
)

// ======================================================
// HANDLER
// ======================================================

type WalletHandler struct {
	repo walletdomain.Repository

	payFromWallet *uc.PayFromWallet
	payGateway    *uc.RecordGatewayPayment
	topUp         *uc.TopUpFromCoins
}

func NewWalletHandler(
	repo walletdomain.Repository,
	payFromWallet *uc.PayFromWallet,
	payGateway *uc.RecordGatewayPayment,
	topUp *uc.TopUpFromCoins,
) *WalletHandler {
	return &WalletHandler{
		repo:          repo,
		payFromWallet: payFromWallet,
		payGateway:    payGateway,
		topUp:         topUp,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type PayRequest struct {
	AppointmentID uint   `json:"appointment_id" binding:"required"`
	Method        string `json:"method" binding:"required"` // wallet, jazzcash, easypaisa
}

type TopUpRequest struct {
	Coins int64 `json:"coins" binding:"required"`
}

// ======================================================
// BALANCE + HISTORY
// ======================================================

func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	user, err := h.repo.GetUser(c.Request.Context(), userID)
	if err != nil {
		httperr.Internal(c, "user_not_found", "Could not load wallet.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_balance": user.WalletBalance,
		"coins":          user.Coins,
	})
}

func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	txs, err := h.repo.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		httperr.Internal(c, "failed_to_list_transactions", "Could not list transactions.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"limit":        limit,
		"offset":       offset,
	})
}

// ======================================================
// PAY
// ======================================================

func (h *WalletHandler) Pay(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	if req.Method == "wallet" {
		res, err := h.payFromWallet.Execute(c.Request.Context(), req.AppointmentID, userID)
		if err != nil {
			writeError(c, err)
			return
		}
		h.writePayment(c, res)
		return
	}

	method, err := gateway.ParseMethod(req.Method)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.payGateway.Execute(c.Request.Context(), req.AppointmentID, userID, method)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writePayment(c, res)
}

func (h *WalletHandler) writePayment(c *gin.Context, res *walletdomain.PaymentResult) {
	c.JSON(http.StatusOK, gin.H{
		"appointment": gin.H{
			"id":             res.Appointment.ID,
			"status":         res.Appointment.Status,
			"payment_status": res.Appointment.PaymentStatus,
			"payment_method": res.Appointment.PaymentMethod,
			"amount_paid":    res.Appointment.AmountPaid,
		},
		"wallet_balance": res.PayerBalance,
		"transaction":    res.Sent,
	})
}

// ======================================================
// TOP UP (COINS -> PKR)
// ======================================================

func (h *WalletHandler) TopUpCoins(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	res, err := h.topUp.Execute(c.Request.Context(), userID, req.Coins)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_balance": res.WalletBalance,
		"coins":          res.Coins,
		"transaction":    res.Transaction,
	})
}

func queryInt(c *gin.Context, name string, def int) int {
	s := c.Query(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
