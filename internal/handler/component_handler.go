package handler

import (
	"strconv"

	"github.com/bitfantasy/pcb-stock/internal/repository"
	"github.com/bitfantasy/pcb-stock/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ComponentHandler struct {
	componentService *service.ComponentService
	logger           *zap.Logger
}

func NewComponentHandler(componentService *service.ComponentService, logger *zap.Logger) *ComponentHandler {
	return &ComponentHandler{componentService: componentService, logger: logger}
}

func (h *ComponentHandler) Create(c *gin.Context) {
	var req service.CreateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	comp, err := h.componentService.Create(c.Request.Context(), req)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Created(c, comp)
}

func (h *ComponentHandler) Get(c *gin.Context) {
	comp, err := h.componentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, comp)
}

func (h *ComponentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	items, total, err := h.componentService.List(c.Request.Context(), repository.ComponentListParams{
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    size,
	})
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, gin.H{"items": items, "total": total, "page": page, "size": size})
}

func (h *ComponentHandler) Update(c *gin.Context) {
	var req service.UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	comp, err := h.componentService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, comp)
}

func (h *ComponentHandler) Delete(c *gin.Context) {
	if err := h.componentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, nil)
}

func (h *ComponentHandler) Consumption(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	rows, err := h.componentService.ConsumptionHistory(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, rows)
}
