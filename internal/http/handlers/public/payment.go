package public

import (
	"github.com/megano/internal/constants"
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/i18n"
	"github.com/megano/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitPaymentRequest 提交付款账号
type SubmitPaymentRequest struct {
	Account string `json:"account"`
}

var paymentOutcomeKeys = map[string]string{
	constants.PaymentOutcomePassed:   "payment.passed",
	constants.PaymentOutcomeDeclined: "payment.declined",
	constants.PaymentOutcomeSettled:  "payment.settled",
}

// SubmitPayment 模拟支付
func (h *Handler) SubmitPayment(c *gin.Context) {
	buyerID, ok := currentBuyerID(c)
	if !ok {
		return
	}
	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	outcome, err := h.PaymentService.Submit(c.Request.Context(), service.SubmitPaymentInput{
		BuyerID: buyerID,
		State:   sessionState(c),
		Account: req.Account,
	})
	// 购物车在校验账号之前已交出，失败时同样需要回写
	persistSession(c)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	msg := i18n.T(i18n.ResolveLocale(c), paymentOutcomeKeys[outcome.Outcome])
	response.SuccessWithMsg(c, msg, outcome)
}

// GetPaymentProgress 支付进度
func (h *Handler) GetPaymentProgress(c *gin.Context) {
	buyerID, ok := currentBuyerID(c)
	if !ok {
		return
	}
	progress, err := h.PaymentService.Progress(buyerID, sessionState(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, progress)
}
