package handler

import (
	"github.com/bitfantasy/pcb-stock/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PCBHandler struct {
	pcbService *service.PCBService
	logger     *zap.Logger
}

func NewPCBHandler(pcbService *service.PCBService, logger *zap.Logger) *PCBHandler {
	return &PCBHandler{pcbService: pcbService, logger: logger}
}

func (h *PCBHandler) Create(c *gin.Context) {
	var req service.CreatePCBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	pcb, err := h.pcbService.Create(c.Request.Context(), req)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Created(c, pcb)
}

func (h *PCBHandler) Get(c *gin.Context) {
	pcb, err := h.pcbService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, pcb)
}

func (h *PCBHandler) List(c *gin.Context) {
	pcbs, err := h.pcbService.List(c.Request.Context())
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, pcbs)
}

func (h *PCBHandler) Delete(c *gin.Context) {
	if err := h.pcbService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, nil)
}

func (h *PCBHandler) BOM(c *gin.Context) {
	lines, err := h.pcbService.BOM(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, lines)
}

func (h *PCBHandler) LinkComponent(c *gin.Context) {
	var req service.LinkComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.pcbService.LinkComponent(c.Request.Context(), c.Param("id"), req); err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, nil)
}

func (h *PCBHandler) UpdateComponentLink(c *gin.Context) {
	var req service.UpdateComponentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	err := h.pcbService.UpdateComponentLink(c.Request.Context(), c.Param("id"), c.Param("componentId"), req)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, nil)
}

func (h *PCBHandler) UnlinkComponent(c *gin.Context) {
	err := h.pcbService.UnlinkComponent(c.Request.Context(), c.Param("id"), c.Param("componentId"))
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, nil)
}
