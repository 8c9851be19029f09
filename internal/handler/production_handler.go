package handler

import (
	"strconv"

	"github.com/bitfantasy/pcb-stock/internal/repository"
	"github.com/bitfantasy/pcb-stock/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductionHandler struct {
	productionService *service.ProductionService
	logger            *zap.Logger
}

func NewProductionHandler(productionService *service.ProductionService, logger *zap.Logger) *ProductionHandler {
	return &ProductionHandler{productionService: productionService, logger: logger}
}

// Record 记录一次生产。缺料时返回409，data里带完整缺料清单。
func (h *ProductionHandler) Record(c *gin.Context) {
	var req service.RecordProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.productionService.RecordProduction(c.Request.Context(), req)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Created(c, result)
}

func (h *ProductionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	from, to, err := service.ParseTimeRange(c.Query("from"), c.Query("to"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	logs, total, err := h.productionService.ListProductionLogs(c.Request.Context(), repository.ProductionListParams{
		PCBID: c.Query("pcb_id"),
		From:  from,
		To:    to,
		Page:  page,
		Size:  size,
	})
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, gin.H{"items": logs, "total": total, "page": page, "size": size})
}

// Get 单条生产记录，附带该次生产的消耗明细
func (h *ProductionHandler) Get(c *gin.Context) {
	detail, err := h.productionService.GetProductionLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, detail)
}
