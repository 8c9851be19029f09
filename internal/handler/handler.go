package handler

import (
	"errors"
	"net/http"

	"github.com/bitfantasy/pcb-stock/internal/config"
	"github.com/bitfantasy/pcb-stock/internal/excel"
	"github.com/bitfantasy/pcb-stock/internal/middleware"
	"github.com/bitfantasy/pcb-stock/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 业务错误码
const (
	CodeOK                = 0
	CodeBadRequest        = 10001
	CodeNotFound          = 10002
	CodeEmptyBOM          = 10003
	CodeInsufficientStock = 10004
	CodeConflict          = 10005
	CodeUnauthorized      = 40101
	CodeInternalError     = 50001
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "success", Data: data})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: message})
}

func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: message})
}

func InternalError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Error("Internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{Code: CodeInternalError, Message: "internal server error"})
}

// FailWith 按错误类型映射HTTP状态和业务码
func FailWith(c *gin.Context, logger *zap.Logger, err error) {
	var insufficient *service.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, Response{
			Code:    CodeInsufficientStock,
			Message: insufficient.Error(),
			Data:    gin.H{"shortages": insufficient.Shortages},
		})
	case errors.Is(err, service.ErrEmptyBOM):
		c.JSON(http.StatusBadRequest, Response{Code: CodeEmptyBOM, Message: err.Error()})
	case errors.Is(err, service.ErrInvalidOKScrap),
		errors.Is(err, service.ErrInvalidImportType),
		errors.Is(err, excel.ErrSheetNotFound):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrPCBNotFound),
		errors.Is(err, service.ErrComponentNotFound),
		errors.Is(err, service.ErrBOMLineNotFound),
		errors.Is(err, service.ErrTriggerNotFound),
		errors.Is(err, service.ErrProductionLogNotFound),
		errors.Is(err, service.ErrUserNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrPartNumberTaken),
		errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, Response{Code: CodeConflict, Message: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, Response{Code: CodeUnauthorized, Message: err.Error()})
	default:
		InternalError(c, logger, err)
	}
}

// Handlers HTTP处理器集合
type Handlers struct {
	Component   *ComponentHandler
	PCB         *PCBHandler
	Production  *ProductionHandler
	Procurement *ProcurementHandler
	Import      *ImportHandler
	Analytics   *AnalyticsHandler
	Auth        *AuthHandler
}

func NewHandlers(services *service.Services, logger *zap.Logger) *Handlers {
	return &Handlers{
		Component:   NewComponentHandler(services.Component, logger),
		PCB:         NewPCBHandler(services.PCB, logger),
		Production:  NewProductionHandler(services.Production, logger),
		Procurement: NewProcurementHandler(services.Procurement, logger),
		Import:      NewImportHandler(services.Import, logger),
		Analytics:   NewAnalyticsHandler(services.Analytics, logger),
		Auth:        NewAuthHandler(services.Auth, logger),
	}
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(r *gin.Engine, h *Handlers, cfg *config.Config) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		protected.GET("/auth/me", h.Auth.Me)

		protected.GET("/components", h.Component.List)
		protected.POST("/components", h.Component.Create)
		protected.GET("/components/:id", h.Component.Get)
		protected.PUT("/components/:id", h.Component.Update)
		protected.DELETE("/components/:id", h.Component.Delete)
		protected.GET("/components/:id/consumption", h.Component.Consumption)

		protected.GET("/pcbs", h.PCB.List)
		protected.POST("/pcbs", h.PCB.Create)
		protected.GET("/pcbs/:id", h.PCB.Get)
		protected.DELETE("/pcbs/:id", h.PCB.Delete)
		protected.GET("/pcbs/:id/components", h.PCB.BOM)
		protected.POST("/pcbs/:id/components", h.PCB.LinkComponent)
		protected.PUT("/pcbs/:id/components/:componentId", h.PCB.UpdateComponentLink)
		protected.DELETE("/pcbs/:id/components/:componentId", h.PCB.UnlinkComponent)

		protected.POST("/production", h.Production.Record)
		protected.GET("/production", h.Production.List)
		protected.GET("/production/:id", h.Production.Get)

		protected.GET("/import/files", h.Import.Files)
		protected.POST("/import/analyze", h.Import.Analyze)
		protected.POST("/import/upload", h.Import.Upload)
		protected.POST("/import/excel", h.Import.ImportExcel)

		protected.GET("/analytics/consumption-summary", h.Analytics.ConsumptionSummary)
		protected.GET("/analytics/top-consumed", h.Analytics.TopConsumed)
		protected.GET("/analytics/low-stock", h.Analytics.LowStock)
		protected.GET("/analytics/production-stats", h.Analytics.ProductionSummary)
		protected.GET("/analytics/monthly-trend", h.Analytics.MonthlyTrend)
		protected.GET("/analytics/dashboard", h.Analytics.Dashboard)
		protected.GET("/analytics/procurement-alerts", h.Procurement.List)
		protected.PUT("/analytics/procurement-alerts/:id/resolve", h.Procurement.Resolve)
		protected.DELETE("/analytics/procurement-alerts", h.Procurement.PurgeResolved)
	}
}
