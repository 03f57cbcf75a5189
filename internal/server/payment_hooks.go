package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/paymentslog/internal/observability/context"
)

const (
	triggerPaymentComplete = "payment_complete"
	triggerRefundCreated   = "refund_created"
)

// HandlePaymentComplete records the payment of a completed order.
func (s *Server) HandlePaymentComplete(c *gin.Context) {
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := obscontext.WithTrigger(c.Request.Context(), triggerPaymentComplete)
	c.Request = c.Request.WithContext(ctx)
	if err := s.paymentLog.RecordPayment(ctx, orderID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

// HandleRefundCreated records a newly created refund.
func (s *Server) HandleRefundCreated(c *gin.Context) {
	refundID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := obscontext.WithTrigger(c.Request.Context(), triggerRefundCreated)
	c.Request = c.Request.WithContext(ctx)
	if err := s.paymentLog.RecordRefund(ctx, refundID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}
