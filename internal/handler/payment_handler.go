package handler

import (
	"net/http"

	"beautyhub-backend/internal/middleware"
	"beautyhub-backend/internal/service"
	"beautyhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	{
		payments.POST("", middleware.RequireRole("admin", "salon_owner"), h.RecordPayment)
		payments.GET("/:id", middleware.RequireRole("admin", "salon_owner", "customer"), h.GetPayment)
		payments.PUT("/:id/complete", middleware.RequireRole("admin", "salon_owner"), h.CompletePayment)
		payments.PUT("/:id/fail", middleware.RequireRole("admin", "salon_owner"), h.FailPayment)
		payments.PUT("/:id/refund", middleware.RequireRole("admin", "salon_owner"), h.RefundPayment)
	}

	router.GET("/api/bookings/:id/payments", middleware.RequireRole("admin", "salon_owner", "customer"), h.ListBookingPayments)
	router.GET("/api/salons/:id/payments", middleware.RequireRole("admin", "salon_owner"), h.ListSalonPayments)
}

// RecordPayment handles POST /payments
// @Summary      Record payment
// @Description  Records a payment against a booking. Cash payments may be marked completed immediately.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                    false  "Dedupe key for safe retries"
// @Param        payload          body      service.RecordPaymentDTO  true   "Payment Payload"
// @Success      201              {object}  response.Response{data=service.PaymentResponse}
// @Failure      400              {object}  response.Response
// @Failure      403              {object}  response.Response
// @Router       /payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, actorRole := actorFrom(c)
	payment, err := h.paymentService.Record(c.Request.Context(), actorID, actorRole, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// GetPayment handles GET /payments/:id
// @Summary      Get payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      404  {object}  response.Response
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	payment, err := h.paymentService.Get(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// CompletePayment handles PUT /payments/:id/complete
// @Summary      Complete payment
// @Description  Settles a pending payment and emails the customer a receipt.
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      409  {object}  response.Response
// @Router       /payments/{id}/complete [put]
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	payment, err := h.paymentService.Complete(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// FailPayment handles PUT /payments/:id/fail
// @Summary      Mark payment failed
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      409  {object}  response.Response
// @Router       /payments/{id}/fail [put]
func (h *PaymentHandler) FailPayment(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	payment, err := h.paymentService.Fail(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// RefundPayment handles PUT /payments/:id/refund
// @Summary      Refund payment
// @Description  Refunds a completed payment.
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      409  {object}  response.Response
// @Router       /payments/{id}/refund [put]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	payment, err := h.paymentService.Refund(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// ListBookingPayments handles GET /bookings/:id/payments
func (h *PaymentHandler) ListBookingPayments(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	payments, err := h.paymentService.ListByBooking(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}

// ListSalonPayments handles GET /salons/:id/payments
// @Summary      List salon payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Salon ID"
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.ListResponse
// @Failure      403     {object}  response.Response
// @Router       /salons/{id}/payments [get]
func (h *PaymentHandler) ListSalonPayments(c *gin.Context) {
	page, limit := pageParams(c, 20)
	actorID, actorRole := actorFrom(c)

	payments, total, err := h.paymentService.ListBySalon(c.Request.Context(), c.Param("id"), actorID, actorRole, c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, payments, total, page, limit))
}
