package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) ListPaymentEvents(c *gin.Context) {
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.paymentLog.ListEvents(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// RenderPaymentsLog serves the order's payment history as an HTML fragment.
func (s *Server) RenderPaymentsLog(c *gin.Context) {
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.paymentLog.ListEvents(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := s.history.Render(c.Request.Context(), items)
	if err != nil {
		s.log.Error("render payments log failed", zap.Int64("order_id", orderID), zap.Error(err))
		AbortWithError(c, ErrInternal)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}
