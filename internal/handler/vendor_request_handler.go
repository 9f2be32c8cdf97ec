package handler

import (
	"net/http"

	"beautyhub-backend/internal/middleware"
	"beautyhub-backend/internal/service"
	"beautyhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type VendorRequestHandler struct {
	approvalService service.ApprovalService
}

func NewVendorRequestHandler(approvalService service.ApprovalService) *VendorRequestHandler {
	return &VendorRequestHandler{approvalService: approvalService}
}

func (h *VendorRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/vendor-requests")
	{
		requests.POST("", middleware.RequirePermission("vendor_requests.write"), h.CreateRequest)
		requests.GET("", middleware.RequirePermission("vendor_requests.read"), h.ListRequests)
		requests.GET("/:id", middleware.RequirePermission("vendor_requests.read"), h.GetRequest)
		requests.PUT("/:id", middleware.RequirePermission("vendor_requests.write"), h.UpdateRequest)
		requests.POST("/:id/submit", middleware.RequirePermission("vendor_requests.write"), h.SubmitRequest)
		requests.PUT("/:id/approve", middleware.RequirePermission("vendor_requests.review"), h.ApproveRequest)
		requests.PUT("/:id/reject", middleware.RequirePermission("vendor_requests.review"), h.RejectRequest)
	}

	// Public: an approved vendor redeems the emailed token to claim their salon
	router.POST("/api/registration/complete", h.CompleteRegistration)
}

// CreateRequest opens a vendor request, as a draft or submitted directly
// @Summary      Create vendor request
// @Description  Creates a vendor onboarding request. Set draft=true to keep it editable before submission.
// @Tags         vendor-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateVendorRequestDTO  true  "Vendor Request Payload"
// @Success      201      {object}  response.Response{data=service.VendorRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /vendor-requests [post]
func (h *VendorRequestHandler) CreateRequest(c *gin.Context) {
	var req service.CreateVendorRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, _ := actorFrom(c)
	result, err := h.approvalService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequests returns vendor requests, optionally filtered by status
// @Summary      List vendor requests
// @Description  Admins see every request; relationship managers see their own submissions.
// @Tags         vendor-requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "draft | pending | approved | rejected"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.ListResponse
// @Failure      500     {object}  response.Response
// @Router       /vendor-requests [get]
func (h *VendorRequestHandler) ListRequests(c *gin.Context) {
	page, limit := pageParams(c, 20)

	filter := service.VendorRequestFilter{
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	}

	actorID, actorRole := actorFrom(c)
	requests, total, err := h.approvalService.List(c.Request.Context(), filter, actorID, actorRole)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, requests, total, page, limit))
}

// GetRequest fetches one vendor request with submitter and reviewer loaded
// @Summary      Get vendor request
// @Tags         vendor-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vendor Request ID"
// @Success      200  {object}  response.Response{data=service.VendorRequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /vendor-requests/{id} [get]
func (h *VendorRequestHandler) GetRequest(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	result, err := h.approvalService.Get(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// UpdateRequest edits a draft request before submission
// @Summary      Update vendor request
// @Description  Only drafts can be edited, and only by the submitter or an admin.
// @Tags         vendor-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Vendor Request ID"
// @Param        payload  body      service.UpdateVendorRequestDTO  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.VendorRequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /vendor-requests/{id} [put]
func (h *VendorRequestHandler) UpdateRequest(c *gin.Context) {
	var req service.UpdateVendorRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, actorRole := actorFrom(c)
	result, err := h.approvalService.Update(c.Request.Context(), c.Param("id"), actorID, actorRole, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// SubmitRequest moves a draft into the review queue
// @Summary      Submit vendor request
// @Tags         vendor-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vendor Request ID"
// @Success      200  {object}  response.Response{data=service.VendorRequestResponse}
// @Failure      409  {object}  response.Response
// @Router       /vendor-requests/{id}/submit [post]
func (h *VendorRequestHandler) SubmitRequest(c *gin.Context) {
	actorID, actorRole := actorFrom(c)

	result, err := h.approvalService.Submit(c.Request.Context(), c.Param("id"), actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApproveRequest approves a pending vendor request
// @Summary      Approve vendor request
// @Description  Creates the salon listing, issues a registration token and emails the vendor.
// @Tags         vendor-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true   "Vendor Request ID"
// @Param        payload  body      service.ApproveVendorRequestDTO  false  "Optional review notes"
// @Success      200      {object}  response.Response{data=service.ReviewOutcome}
// @Failure      409      {object}  response.Response
// @Router       /vendor-requests/{id}/approve [put]
func (h *VendorRequestHandler) ApproveRequest(c *gin.Context) {
	actorID, _ := actorFrom(c)

	var req service.ApproveVendorRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		// Notes are optional, an empty body is fine
		req.Notes = ""
	}

	result, err := h.approvalService.Approve(c.Request.Context(), c.Param("id"), actorID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectRequest rejects a pending vendor request
// @Summary      Reject vendor request
// @Description  Requires a reason. The submitting manager is notified by email.
// @Tags         vendor-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Vendor Request ID"
// @Param        payload  body      service.RejectVendorRequestDTO  true  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.ReviewOutcome}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /vendor-requests/{id}/reject [put]
func (h *VendorRequestHandler) RejectRequest(c *gin.Context) {
	actorID, _ := actorFrom(c)

	var req service.RejectVendorRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Rejection reason is required"))
		return
	}

	result, err := h.approvalService.Reject(c.Request.Context(), c.Param("id"), actorID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CompleteRegistration redeems a registration token and creates the owner account
// @Summary      Complete vendor registration
// @Description  Redeems the emailed token, creates the salon owner account and claims the salon.
// @Tags         vendor-requests
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CompleteRegistrationDTO  true  "Token and credentials"
// @Success      201      {object}  response.Response{data=service.RegistrationResult}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /registration/complete [post]
func (h *VendorRequestHandler) CompleteRegistration(c *gin.Context) {
	var req service.CompleteRegistrationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.CompleteRegistration(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}
