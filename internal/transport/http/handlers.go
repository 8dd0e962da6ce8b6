package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devxankit/indistylo-sub000/internal/domain"
	"github.com/devxankit/indistylo-sub000/internal/service"
)

type Handler struct {
	orders      *service.OrderService
	settlements *service.SettlementService
	logger      *zap.Logger
}

func NewHandler(orders *service.OrderService, settlements *service.SettlementService, logger *zap.Logger) *Handler {
	return &Handler{orders: orders, settlements: settlements, logger: logger}
}

type createOrderBody struct {
	Items          []domain.CartLineItem `json:"items" binding:"required,min=1,dive"`
	Date           string                `json:"date" binding:"required"`
	Time           string                `json:"time" binding:"required"`
	Notes          string                `json:"notes"`
	Address        map[string]any        `json:"address"`
	ProfessionalID string                `json:"professional_id"` // staff id, or "any"/empty
	SalonID        string                `json:"salon_id"`
	PaymentMethod  string                `json:"payment_method" binding:"omitempty,oneof=online"`
}

// POST /v1/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	var body createOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// "any" is a client-side sentinel; internally absence of a preference is
	// a nil staff id.
	var staffID *string
	if body.ProfessionalID != "" && body.ProfessionalID != "any" {
		staffID = &body.ProfessionalID
	}

	out, err := h.orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:  userID(c),
		Items:   body.Items,
		Date:    body.Date,
		Time:    body.Time,
		Notes:   body.Notes,
		Address: body.Address,
		StaffID: staffID,
		SalonID: body.SalonID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"order":            out.Order,
		"gateway_order_id": out.GatewayOrderID,
		"key_id":           out.KeyID,
	})
}

type markPaidBody struct {
	PaymentGateway string `json:"payment_gateway"`
	TransactionID  string `json:"transaction_id"`
}

// POST /v1/orders/:id/mark-paid
func (h *Handler) MarkPaid(c *gin.Context) {
	var body markPaidBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	order, err := h.settlements.MarkPaid(c.Request.Context(), c.Param("id"), body.TransactionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type verifyPaymentBody struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

// POST /v1/payments/verify
func (h *Handler) VerifyPayment(c *gin.Context) {
	var body verifyPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.settlements.VerifyPayment(c.Request.Context(),
		body.GatewayOrderID, body.GatewayPaymentID, body.Signature)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /v1/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if order.UserID != userID(c) && role(c) != "ADMIN" {
		h.writeError(c, domain.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /v1/orders
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListByUser(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var slot *domain.ErrSlotUnavailable
	switch {
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMixedSalons),
		errors.Is(err, domain.ErrSalonRequired),
		errors.Is(err, domain.ErrInvalidSchedule),
		errors.As(err, &slot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidSignature):
		// Logged upstream as potential tampering; keep the response terse.
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidSignature.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func userID(c *gin.Context) string {
	v, _ := c.Get("sub")
	s, _ := v.(string)
	return s
}

func role(c *gin.Context) string {
	v, _ := c.Get("role")
	s, _ := v.(string)
	return s
}
