package handler

import (
	"net/http"

	"chauffeur-backend/internal/middleware"
	"chauffeur-backend/internal/service"
	"chauffeur-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CurrencyHandler struct {
	currencyService service.CurrencyService
}

func NewCurrencyHandler(currencyService service.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService}
}

func (h *CurrencyHandler) RegisterRoutes(router *gin.RouterGroup) {
	currency := router.Group("/api/currency")
	currency.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		currency.GET("/rates", h.GetRates)
		currency.GET("/convert", h.Convert)
	}
}

func (h *CurrencyHandler) GetRates(c *gin.Context) {
	rates := h.currencyService.Rates(c.Request.Context())

	out := make(map[string]string, len(rates))
	for code, rate := range rates {
		out[code] = rate.String()
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"base":      "JPY",
		"supported": h.currencyService.SupportedCurrencies(),
		"rates":     out,
	}))
}

// Convert translates an amount between two supported currencies and returns
// both the raw and display-formatted result
func (h *CurrencyHandler) Convert(c *gin.Context) {
	amountRaw := c.Query("amount")
	from := c.DefaultQuery("from", "JPY")
	to := c.Query("to")

	if amountRaw == "" || to == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "amount and to query parameters are required"))
		return
	}

	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid amount: "+err.Error()))
		return
	}

	converted, err := h.currencyService.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"from":      from,
		"to":        to,
		"amount":    amount.String(),
		"converted": converted.String(),
		"formatted": h.currencyService.Format(converted, to),
	}))
}
