package handler

import (
	"net/http"

	"chauffeur-backend/internal/middleware"
	"chauffeur-backend/internal/service"
	"chauffeur-backend/pkg/pagination"
	"chauffeur-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/activity")
	group.Use(middleware.RequireRole("admin", "manager")) // Protect history logs
	{
		group.GET("", h.ListActivity)
		group.GET("/entity/:entityID", h.ListEntityActivity)
	}
}

func (h *ActivityHandler) ListActivity(c *gin.Context) {
	p := pagination.Parse(c)
	logs, total, err := h.activityService.ListActivity(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, logs, p.Page, p.Limit, total))
}

// ListEntityActivity returns the timeline for one quotation or pricing record
func (h *ActivityHandler) ListEntityActivity(c *gin.Context) {
	p := pagination.Parse(c)
	logs, total, err := h.activityService.ListEntityActivity(c.Request.Context(), c.Param("entityID"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, logs, p.Page, p.Limit, total))
}
