package handler

import (
	"net/http"
	"strconv"

	"beautyhub-backend/internal/middleware"
	"beautyhub-backend/internal/service"
	"beautyhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SalonHandler struct {
	salonService service.SalonService
}

func NewSalonHandler(salonService service.SalonService) *SalonHandler {
	return &SalonHandler{salonService: salonService}
}

func (h *SalonHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public browse endpoints. OptionalAuth lets staff and owners see
	// salons that are hidden from anonymous visitors.
	salons := router.Group("/api/salons", middleware.OptionalAuth())
	{
		salons.GET("", h.ListSalons)
		salons.GET("/nearby", h.NearbySalons)
		salons.GET("/search", h.SearchSalons)
		salons.GET("/:id", h.GetSalon)
		salons.GET("/:id/services", h.ListServices)
		salons.GET("/:id/reviews", h.ListReviews)
	}

	manage := router.Group("/api/salons")
	{
		manage.PUT("/:id", middleware.RequireRole("admin", "salon_owner"), h.UpdateSalon)
		manage.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteSalon)
		manage.POST("/:id/services", middleware.RequireRole("admin", "salon_owner"), h.AddService)
		manage.PUT("/:id/services/:serviceId", middleware.RequireRole("admin", "salon_owner"), h.UpdateService)
		manage.DELETE("/:id/services/:serviceId", middleware.RequireRole("admin", "salon_owner"), h.RemoveService)
		manage.POST("/:id/reviews", middleware.RequireRole("admin", "customer"), h.AddReview)
	}

	router.GET("/api/my/salons", middleware.RequireRole("admin", "salon_owner"), h.ListMySalons)
}

// ListSalons handles GET /salons with status/city/search filters
// @Summary      List salons
// @Description  Anonymous callers only see approved salons. Admins may filter by any status.
// @Tags         salons
// @Produce      json
// @Param        status  query     string  false  "Status filter (staff only)"
// @Param        city    query     string  false  "City filter"
// @Param        search  query     string  false  "Name search"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.ListResponse
// @Failure      500     {object}  response.Response
// @Router       /salons [get]
func (h *SalonHandler) ListSalons(c *gin.Context) {
	page, limit := pageParams(c, 20)

	filter := service.SalonFilter{
		Status: c.Query("status"),
		City:   c.Query("city"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	_, actorRole := actorFrom(c)
	salons, total, err := h.salonService.List(c.Request.Context(), filter, actorRole)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, salons, total, page, limit))
}

// NearbySalons handles GET /salons/nearby returning approved salons ordered by distance
// @Summary      Find salons nearby
// @Description  Returns approved salons within radius_km of the given point, closest first.
// @Tags         salons
// @Produce      json
// @Param        lat        query     number  true   "Latitude"
// @Param        lon        query     number  true   "Longitude"
// @Param        radius_km  query     number  false  "Search radius in km (default 10, max 100)"
// @Param        limit      query     int     false  "Max results (default 50)"
// @Success      200        {object}  response.Response{data=[]service.NearbySalonResponse}
// @Failure      400        {object}  response.Response
// @Router       /salons/nearby [get]
func (h *SalonHandler) NearbySalons(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "lat and lon query parameters are required"))
		return
	}

	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius_km", "10"), 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	results, err := h.salonService.Nearby(c.Request.Context(), service.NearbyQuery{
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radius,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// SearchSalons handles GET /salons/search with relevance-ranked name matching
// @Summary      Search salons
// @Description  Ranks approved salons by how well the query matches name, description and city.
// @Tags         salons
// @Produce      json
// @Param        q           query     string  true   "Search query"
// @Param        city        query     string  false  "City filter"
// @Param        min_rating  query     number  false  "Minimum average rating (0-5)"
// @Param        limit       query     int     false  "Max results (default 50)"
// @Success      200         {object}  response.Response{data=[]service.SearchSalonResponse}
// @Failure      400         {object}  response.Response
// @Router       /salons/search [get]
func (h *SalonHandler) SearchSalons(c *gin.Context) {
	minRating, _ := strconv.ParseFloat(c.DefaultQuery("min_rating", "0"), 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	results, err := h.salonService.Search(c.Request.Context(), service.SearchQuery{
		Query:     c.Query("q"),
		City:      c.Query("city"),
		MinRating: minRating,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// GetSalon handles GET /salons/:id
// @Summary      Get salon
// @Description  Fetch a salon with its active services. Non-approved salons are only visible to staff and the owner.
// @Tags         salons
// @Produce      json
// @Param        id   path      string  true  "Salon ID"
// @Success      200  {object}  response.Response{data=service.SalonResponse}
// @Failure      404  {object}  response.Response
// @Router       /salons/{id} [get]
func (h *SalonHandler) GetSalon(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	salon, err := h.salonService.Get(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, salon))
}

// ListMySalons returns the salons owned by the authenticated user
// @Summary      List my salons
// @Tags         salons
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.SalonResponse}
// @Failure      500  {object}  response.Response
// @Router       /my/salons [get]
func (h *SalonHandler) ListMySalons(c *gin.Context) {
	actorID, _ := actorFrom(c)

	salons, err := h.salonService.ListMine(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, salons))
}

// UpdateSalon handles PUT /salons/:id for owners and admins
// @Summary      Update salon profile
// @Tags         salons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Salon ID"
// @Param        payload  body      service.UpdateSalonRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.SalonResponse}
// @Failure      403      {object}  response.Response
// @Router       /salons/{id} [put]
func (h *SalonHandler) UpdateSalon(c *gin.Context) {
	var req service.UpdateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, actorRole := actorFrom(c)
	salon, err := h.salonService.Update(c.Request.Context(), c.Param("id"), actorID, actorRole, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, salon))
}

// DeleteSalon handles DELETE /salons/:id (admin only, blocked while bookings exist)
// @Summary      Delete salon
// @Tags         salons
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Salon ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /salons/{id} [delete]
func (h *SalonHandler) DeleteSalon(c *gin.Context) {
	actorID, _ := actorFrom(c)

	if err := h.salonService.Delete(c.Request.Context(), c.Param("id"), actorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Salon deleted successfully"))
}

// AddService handles POST /salons/:id/services
// @Summary      Add salon service
// @Tags         salon-services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Salon ID"
// @Param        payload  body      service.ServicePayload  true  "Service Payload"
// @Success      201      {object}  response.Response{data=service.ServiceResponse}
// @Failure      403      {object}  response.Response
// @Router       /salons/{id}/services [post]
func (h *SalonHandler) AddService(c *gin.Context) {
	var req service.ServicePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, actorRole := actorFrom(c)
	result, err := h.salonService.AddService(c.Request.Context(), c.Param("id"), actorID, actorRole, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// UpdateService handles PUT /salons/:id/services/:serviceId
// @Summary      Update salon service
// @Tags         salon-services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string                        true  "Salon ID"
// @Param        serviceId  path      string                        true  "Service ID"
// @Param        payload    body      service.UpdateServicePayload  true  "Fields to update"
// @Success      200        {object}  response.Response{data=service.ServiceResponse}
// @Failure      404        {object}  response.Response
// @Router       /salons/{id}/services/{serviceId} [put]
func (h *SalonHandler) UpdateService(c *gin.Context) {
	var req service.UpdateServicePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, actorRole := actorFrom(c)
	result, err := h.salonService.UpdateService(c.Request.Context(), c.Param("id"), c.Param("serviceId"), actorID, actorRole, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RemoveService handles DELETE /salons/:id/services/:serviceId
// @Summary      Remove salon service
// @Tags         salon-services
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Salon ID"
// @Param        serviceId  path      string  true  "Service ID"
// @Success      200        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /salons/{id}/services/{serviceId} [delete]
func (h *SalonHandler) RemoveService(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	if err := h.salonService.RemoveService(c.Request.Context(), c.Param("id"), c.Param("serviceId"), actorID, actorRole); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Service removed"))
}

// ListServices handles GET /salons/:id/services
func (h *SalonHandler) ListServices(c *gin.Context) {
	services, err := h.salonService.ListServices(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, services))
}

// AddReview handles POST /salons/:id/reviews and recomputes the salon rating
// @Summary      Review a salon
// @Tags         salons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Salon ID"
// @Param        payload  body      service.ReviewPayload  true  "Rating 1-5 with optional comment"
// @Success      201      {object}  response.Response{data=service.ReviewResponse}
// @Failure      400      {object}  response.Response
// @Router       /salons/{id}/reviews [post]
func (h *SalonHandler) AddReview(c *gin.Context) {
	var req service.ReviewPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, _ := actorFrom(c)
	result, err := h.salonService.AddReview(c.Request.Context(), c.Param("id"), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListReviews handles GET /salons/:id/reviews
func (h *SalonHandler) ListReviews(c *gin.Context) {
	page, limit := pageParams(c, 20)

	reviews, total, err := h.salonService.ListReviews(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, reviews, total, page, limit))
}
