package handler

import (
	"mime/multipart"

	"github.com/bitfantasy/pcb-stock/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ImportHandler struct {
	importService *service.ImportService
	logger        *zap.Logger
}

func NewImportHandler(importService *service.ImportService, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{importService: importService, logger: logger}
}

func openUpload(c *gin.Context) (multipart.File, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return nil, "", false
	}
	file, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "failed to open uploaded file")
		return nil, "", false
	}
	return file, fileHeader.Filename, true
}

// Upload 上传并导入一个工作簿。import_type 表单字段控制只导元器件、
// 只导BOM还是两段都做（默认auto）。
func (h *ImportHandler) Upload(c *gin.Context) {
	file, filename, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	opts := service.ImportOptions{
		SheetName:  c.PostForm("sheet_name"),
		ImportType: c.PostForm("import_type"),
	}

	summary, err := h.importService.ImportWorkbook(c.Request.Context(), filename, file, opts)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, summary)
}

type importExcelRequest struct {
	Filename   string `json:"filename" binding:"required"`
	SheetName  string `json:"sheet_name"`
	ImportType string `json:"import_type"`
}

// ImportExcel 导入服务器数据目录里的文件
func (h *ImportHandler) ImportExcel(c *gin.Context) {
	var req importExcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	summary, err := h.importService.ImportFromDataDir(c.Request.Context(), req.Filename, service.ImportOptions{
		SheetName:  req.SheetName,
		ImportType: req.ImportType,
	})
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, summary)
}

// Files 数据目录里可导入的文件列表
func (h *ImportHandler) Files(c *gin.Context) {
	files, err := h.importService.ListDataFiles()
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, gin.H{"files": files})
}

// Analyze 只解析不入库，返回每个工作表的列映射推断
func (h *ImportHandler) Analyze(c *gin.Context) {
	file, filename, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	previews, err := h.importService.AnalyzeWorkbook(filename, file)
	if err != nil {
		FailWith(c, h.logger, err)
		return
	}
	Success(c, previews)
}
