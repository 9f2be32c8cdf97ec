package handler

import (
	"strconv"

	"beautyhub-backend/pkg/apperror"
	"beautyhub-backend/pkg/pagination"
	"beautyhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// actorFrom pulls the authenticated identity out of the gin context.
// Both values are empty for anonymous requests on OptionalAuth routes.
func actorFrom(c *gin.Context) (userID, role string) {
	raw, _ := c.Get("userID")
	userID, _ = raw.(string)
	role = c.GetString("userRole")
	return userID, role
}

// respondError maps a service error onto the matching HTTP status.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// pageParams reads page/limit query values, clamped to the shared bounds.
func pageParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	p := pagination.Normalize(page, limit)
	return p.Page, p.Limit
}
