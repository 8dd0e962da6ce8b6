package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, jwtSecret string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	v1 := r.Group("/v1")

	// Razorpay handoff posts back without our bearer token; the signature is
	// the authentication on this route.
	v1.POST("/payments/verify", h.VerifyPayment)

	authed := v1.Group("", JWTAuth(jwtSecret))
	authed.POST("/orders", h.CreateOrder)
	authed.GET("/orders", h.ListOrders)
	authed.GET("/orders/:id", h.GetOrder)
	authed.POST("/orders/:id/mark-paid", h.MarkPaid)

	return r
}
