package handler

import (
	"net/http"

	"beautyhub-backend/internal/middleware"
	"beautyhub-backend/internal/service"
	"beautyhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService  service.BookingService
	reminderService service.ReminderService
}

func NewBookingHandler(bookingService service.BookingService, reminderService service.ReminderService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, reminderService: reminderService}
}

func (h *BookingHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/api/bookings")
	{
		bookings.POST("", middleware.RequireRole("admin", "customer"), h.CreateBooking)
		bookings.GET("/:id", middleware.RequireRole("admin", "relationship_manager", "salon_owner", "customer"), h.GetBooking)
		bookings.PUT("/:id/status", middleware.RequireRole("admin", "salon_owner"), h.UpdateBookingStatus)
		bookings.PUT("/:id/cancel", middleware.RequireRole("admin", "salon_owner", "customer"), h.CancelBooking)
		bookings.GET("/:id/reminders", middleware.RequireRole("admin", "salon_owner"), h.ListReminders)
	}

	router.GET("/api/salons/:id/bookings", middleware.RequireRole("admin", "salon_owner"), h.ListSalonBookings)

	my := router.Group("/api/my", middleware.RequireRole("admin", "customer"))
	{
		my.GET("/bookings", h.ListMyBookings)
		my.GET("/cart", h.ListCart)
		my.POST("/cart", h.AddCartItem)
		my.DELETE("/cart/:serviceId", h.RemoveCartItem)
	}
}

// CreateBooking handles POST /bookings
// @Summary      Create booking
// @Description  Books a service at an approved salon. Any cart items for that salon are cleared in the same transaction.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                    false  "Dedupe key for safe retries"
// @Param        payload          body      service.CreateBookingDTO  true   "Booking Payload"
// @Success      201              {object}  response.Response{data=service.BookingResponse}
// @Failure      400              {object}  response.Response
// @Failure      409              {object}  response.Response
// @Router       /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req service.CreateBookingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, _ := actorFrom(c)
	booking, err := h.bookingService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, booking))
}

// GetBooking handles GET /bookings/:id
// @Summary      Get booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=service.BookingResponse}
// @Failure      404  {object}  response.Response
// @Router       /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// ListMyBookings handles GET /my/bookings
// @Summary      List my bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.ListResponse
// @Router       /my/bookings [get]
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	page, limit := pageParams(c, 20)
	actorID, _ := actorFrom(c)

	bookings, total, err := h.bookingService.ListMine(c.Request.Context(), actorID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, bookings, total, page, limit))
}

// ListSalonBookings handles GET /salons/:id/bookings for the salon dashboard
// @Summary      List salon bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Salon ID"
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.ListResponse
// @Failure      403     {object}  response.Response
// @Router       /salons/{id}/bookings [get]
func (h *BookingHandler) ListSalonBookings(c *gin.Context) {
	page, limit := pageParams(c, 20)
	actorID, actorRole := actorFrom(c)

	bookings, total, err := h.bookingService.ListForSalon(c.Request.Context(), c.Param("id"), actorID, actorRole, c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, bookings, total, page, limit))
}

// UpdateBookingStatus handles PUT /bookings/:id/status
// @Summary      Update booking status
// @Description  Moves a booking to confirmed, completed, cancelled or no_show following the allowed transitions.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Booking ID"
// @Param        payload  body      object{status=string}  true  "Target status"
// @Success      200      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /bookings/{id}/status [put]
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "status is required"))
		return
	}

	actorID, actorRole := actorFrom(c)
	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), c.Param("id"), actorID, actorRole, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// CancelBooking handles PUT /bookings/:id/cancel
// @Summary      Cancel booking
// @Description  Customers may cancel their own bookings; owners and admins may cancel any booking at their salon.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=service.BookingResponse}
// @Failure      409  {object}  response.Response
// @Router       /bookings/{id}/cancel [put]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	booking, err := h.bookingService.Cancel(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// ListReminders handles GET /bookings/:id/reminders
func (h *BookingHandler) ListReminders(c *gin.Context) {
	logs, err := h.reminderService.ListForBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}

// AddCartItem handles POST /my/cart
// @Summary      Add service to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AddCartItemDTO  true  "Cart Item"
// @Success      201      {object}  response.Response{data=service.CartItemResponse}
// @Failure      404      {object}  response.Response
// @Router       /my/cart [post]
func (h *BookingHandler) AddCartItem(c *gin.Context) {
	var req service.AddCartItemDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, _ := actorFrom(c)
	item, err := h.bookingService.AddCartItem(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// ListCart handles GET /my/cart
func (h *BookingHandler) ListCart(c *gin.Context) {
	actorID, _ := actorFrom(c)

	items, err := h.bookingService.ListCart(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// RemoveCartItem handles DELETE /my/cart/:serviceId
func (h *BookingHandler) RemoveCartItem(c *gin.Context) {
	actorID, _ := actorFrom(c)

	if err := h.bookingService.RemoveCartItem(c.Request.Context(), actorID, c.Param("serviceId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Removed from cart"))
}
