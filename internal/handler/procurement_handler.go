package handler

import (
	"github.com/bitfantasy/pcb-stock/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProcurementHandler struct {
	procurementService *service.ProcurementService
	logger             *zap.Logger
}

func NewProcurementHandler(procurementService *service.ProcurementService, logger *zap.Logger) *ProcurementHandler {
	return &ProcurementHandler{procurementService: procurementService, logger: logger}
}

func (h *ProcurementHandler) List(c *gin.Context) {
	triggers, err := h.procurementService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, triggers)
}

func (h *ProcurementHandler) Resolve(c *gin.Context) {
	if err := h.procurementService.Resolve(c.Request.Context(), c.Param("id")); err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, nil)
}

func (h *ProcurementHandler) PurgeResolved(c *gin.Context) {
	count, err := h.procurementService.PurgeResolved(c.Request.Context())
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, gin.H{"deleted": count})
}
