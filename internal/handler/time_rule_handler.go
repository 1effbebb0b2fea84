package handler

import (
	"net/http"
	"time"

	"chauffeur-backend/internal/middleware"
	"chauffeur-backend/internal/service"
	"chauffeur-backend/pkg/pagination"
	"chauffeur-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TimeRuleHandler struct {
	timeRuleService service.TimeRuleService
}

func NewTimeRuleHandler(timeRuleService service.TimeRuleService) *TimeRuleHandler {
	return &TimeRuleHandler{timeRuleService: timeRuleService}
}

func (h *TimeRuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := router.Group("/api/time-rules")
	read.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		read.GET("", h.ListRules)
		read.GET("/match", h.MatchRules)
	}

	write := router.Group("/api/time-rules")
	write.Use(middleware.RequireRole("admin", "manager"))
	{
		write.POST("", h.CreateRule)
		write.PUT("/:id", h.UpdateRule)
		write.DELETE("/:id", h.DeleteRule)
	}
}

func (h *TimeRuleHandler) ListRules(c *gin.Context) {
	p := pagination.Parse(c)
	rules, total, err := h.timeRuleService.ListRules(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, rules, p.Page, p.Limit, total))
}

// MatchRules shows which rules would fire for a given pickup moment, so
// admins can sanity-check a rule before saving it.
func (h *TimeRuleHandler) MatchRules(c *gin.Context) {
	raw := c.Query("pickup_at")
	if raw == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "pickup_at query parameter is required (format: 2006-01-02 15:04)"))
		return
	}

	pickup, err := time.ParseInLocation("2006-01-02 15:04", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid pickup_at: "+err.Error()))
		return
	}

	matched, err := h.timeRuleService.MatchForPickup(c.Request.Context(), pickup)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"matched_rules":         matched,
		"adjustment_percentage": service.SumAdjustments(matched).String(),
	}))
}

func (h *TimeRuleHandler) CreateRule(c *gin.Context) {
	var req service.TimeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.timeRuleService.CreateRule(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

func (h *TimeRuleHandler) UpdateRule(c *gin.Context) {
	var req service.TimeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.timeRuleService.UpdateRule(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

func (h *TimeRuleHandler) DeleteRule(c *gin.Context) {
	if err := h.timeRuleService.DeleteRule(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
