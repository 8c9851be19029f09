package handler

import (
	"strconv"

	"github.com/bitfantasy/pcb-stock/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, logger: logger}
}

// ConsumptionSummary 全部元器件的消耗汇总，from/to 可选
func (h *AnalyticsHandler) ConsumptionSummary(c *gin.Context) {
	from, to, err := service.ParseTimeRange(c.Query("from"), c.Query("to"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	items, err := h.analyticsService.ConsumptionSummary(c.Request.Context(), from, to)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, items)
}

func (h *AnalyticsHandler) LowStock(c *gin.Context) {
	items, err := h.analyticsService.LowStock(c.Request.Context())
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, gin.H{"count": len(items), "low_stock_components": items})
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	dash, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, dash)
}

func (h *AnalyticsHandler) TopConsumed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, err := h.analyticsService.TopConsumed(c.Request.Context(), limit)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, items)
}

func (h *AnalyticsHandler) MonthlyTrend(c *gin.Context) {
	points, err := h.analyticsService.MonthlyTrend(c.Request.Context())
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, points)
}

func (h *AnalyticsHandler) ProductionSummary(c *gin.Context) {
	from, to, err := service.ParseTimeRange(c.Query("from"), c.Query("to"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	items, err := h.analyticsService.ProductionSummary(c.Request.Context(), from, to)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, items)
}
