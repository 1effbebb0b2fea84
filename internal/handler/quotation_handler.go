package handler

import (
	"net/http"

	"chauffeur-backend/internal/middleware"
	"chauffeur-backend/internal/repository"
	"chauffeur-backend/internal/service"
	"chauffeur-backend/pkg/pagination"
	"chauffeur-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuotationHandler struct {
	quotationService service.QuotationService
}

func NewQuotationHandler(quotationService service.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

func (h *QuotationHandler) RegisterRoutes(router *gin.RouterGroup) {
	quotes := router.Group("/api/quotations")
	quotes.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		quotes.POST("", h.CreateQuotation)
		quotes.POST("/preview", h.PreviewQuotation)
		quotes.GET("", h.ListQuotations)
		quotes.GET("/:id", h.GetQuotation)
		quotes.PUT("/:id", h.UpdateQuotation)
		quotes.POST("/:id/send", h.SendQuotation)
	}

	// Approval decisions are restricted to managers and admins.
	decisions := router.Group("/api/quotations")
	decisions.Use(middleware.RequireRole("admin", "manager"))
	{
		decisions.POST("/:id/approve", h.ApproveQuotation)
		decisions.POST("/:id/reject", h.RejectQuotation)
	}
}

// CreateQuotation prices and stores a new quotation
// @Summary      Create quotation
// @Description  Resolves prices for all service lines, applies time-based adjustments, packages, promotions, discounts and tax, then stores the quotation as a draft
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateQuotationRequest  true  "Quotation Payload"
// @Success      201      {object}  response.Response{data=service.QuotationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotations [post]
func (h *QuotationHandler) CreateQuotation(c *gin.Context) {
	var req service.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.quotationService.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// PreviewQuotation prices a quotation without storing it
// @Summary      Preview quotation totals
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateQuotationRequest  true  "Quotation Payload"
// @Success      200      {object}  response.Response{data=service.QuotationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotations/preview [post]
func (h *QuotationHandler) PreviewQuotation(c *gin.Context) {
	var req service.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.quotationService.Preview(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListQuotations returns quotations filtered by status, customer email and team
func (h *QuotationHandler) ListQuotations(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.QuotationListFilter{
		Status:        c.Query("status"),
		CustomerEmail: c.Query("customer_email"),
		TeamLocation:  c.Query("team_location"),
		Page:          p.Page,
		Limit:         p.Limit,
	}

	quotations, total, err := h.quotationService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, quotations, p.Page, p.Limit, total))
}

func (h *QuotationHandler) GetQuotation(c *gin.Context) {
	res, err := h.quotationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// UpdateQuotation reprices a draft quotation in full
func (h *QuotationHandler) UpdateQuotation(c *gin.Context) {
	var req service.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.quotationService.Update(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

func (h *QuotationHandler) SendQuotation(c *gin.Context) {
	res, err := h.quotationService.Send(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

func (h *QuotationHandler) ApproveQuotation(c *gin.Context) {
	res, err := h.quotationService.Approve(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

func (h *QuotationHandler) RejectQuotation(c *gin.Context) {
	res, err := h.quotationService.Reject(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
