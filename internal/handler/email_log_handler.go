package handler

import (
	"net/http"

	"beautyhub-backend/internal/middleware"
	"beautyhub-backend/internal/service"
	"beautyhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EmailLogHandler struct {
	notificationService service.NotificationService
}

func NewEmailLogHandler(notificationService service.NotificationService) *EmailLogHandler {
	return &EmailLogHandler{notificationService: notificationService}
}

func (h *EmailLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notifications")
	{
		notifications.GET("", middleware.RequirePermission("notifications.read"), h.ListLogs)
		notifications.GET("/:id", middleware.RequirePermission("notifications.read"), h.GetLog)
		notifications.GET("/entity/:type/:entityId", middleware.RequirePermission("notifications.read"), h.LogsByEntity)
		notifications.POST("/:id/resend", middleware.RequirePermission("notifications.resend"), h.ResendLog)
	}
}

// ListLogs handles GET /notifications with status/type filters
// @Summary      List notification logs
// @Description  Paginated email delivery log, newest first, filterable by status and email type.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending | sent | failed"
// @Param        type    query     string  false  "Email type filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.ListResponse
// @Failure      500     {object}  response.Response
// @Router       /notifications [get]
func (h *EmailLogHandler) ListLogs(c *gin.Context) {
	page, limit := pageParams(c, 20)

	filter := service.EmailLogFilter{
		Status:    c.Query("status"),
		EmailType: c.Query("type"),
		Page:      page,
		Limit:     limit,
	}

	logs, total, err := h.notificationService.ListLogs(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, page, limit))
}

// GetLog handles GET /notifications/:id
// @Summary      Get notification log
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Email Log ID"
// @Success      200  {object}  response.Response{data=model.EmailLog}
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id} [get]
func (h *EmailLogHandler) GetLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid log ID"))
		return
	}

	entry, err := h.notificationService.GetLog(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// LogsByEntity handles GET /notifications/entity/:type/:entityId
// @Summary      List notifications for an entity
// @Description  Every email logged against one vendor request, salon, booking or payment, newest first.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        type      path      string  true  "vendor_request | salon | booking | payment"
// @Param        entityId  path      string  true  "Entity ID"
// @Success      200       {object}  response.Response{data=[]model.EmailLog}
// @Failure      400       {object}  response.Response
// @Router       /notifications/entity/{type}/{entityId} [get]
func (h *EmailLogHandler) LogsByEntity(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("entityId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid entity ID"))
		return
	}

	logs, err := h.notificationService.LogsByEntity(c.Request.Context(), c.Param("type"), entityID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}

// ResendLog handles POST /notifications/:id/resend
// @Summary      Resend a logged email
// @Description  Re-renders and re-sends the email behind a log entry. Works on any entry, including ones past the automatic retry cap.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Email Log ID"
// @Success      200  {object}  response.Response{data=model.EmailLog}
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/resend [post]
func (h *EmailLogHandler) ResendLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid log ID"))
		return
	}

	entry, err := h.notificationService.Resend(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}
