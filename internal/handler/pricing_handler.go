package handler

import (
	"net/http"

	"chauffeur-backend/internal/middleware"
	"chauffeur-backend/internal/service"
	"chauffeur-backend/pkg/pagination"
	"chauffeur-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	pricingService service.PricingService
}

func NewPricingHandler(pricingService service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := router.Group("/api/pricing")
	read.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		read.GET("/items", h.ListItems)
		read.GET("/items/:id", h.GetItem)
		read.GET("/packages", h.ListPackages)
		read.GET("/promotions", h.ListPromotions)
		read.GET("/promotions/validate", h.ValidatePromotion)
	}

	write := router.Group("/api/pricing")
	write.Use(middleware.RequireRole("admin", "manager"))
	{
		write.POST("/items", h.CreateItem)
		write.PUT("/items/:id", h.UpdateItem)
		write.DELETE("/items/:id", h.DeleteItem)
	}
}

func (h *PricingHandler) ListItems(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.pricingService.ListItems(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, items, p.Page, p.Limit, total))
}

func (h *PricingHandler) GetItem(c *gin.Context) {
	item, err := h.pricingService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

func (h *PricingHandler) CreateItem(c *gin.Context) {
	var req service.PricingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.pricingService.CreateItem(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

func (h *PricingHandler) UpdateItem(c *gin.Context) {
	var req service.PricingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.pricingService.UpdateItem(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

func (h *PricingHandler) DeleteItem(c *gin.Context) {
	if err := h.pricingService.DeleteItem(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

func (h *PricingHandler) ListPackages(c *gin.Context) {
	pkgs, err := h.pricingService.ListPackages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pkgs))
}

func (h *PricingHandler) ListPromotions(c *gin.Context) {
	promos, err := h.pricingService.ListPromotions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, promos))
}

// ValidatePromotion checks a promotion code before it is attached to a quote
func (h *PricingHandler) ValidatePromotion(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "code query parameter is required"))
		return
	}

	promo, err := h.pricingService.ValidatePromotionCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, promo))
}
