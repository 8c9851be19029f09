package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bitfantasy/pcb-stock/internal/excel"
	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 导入类型
const (
	ImportTypeAuto       = "auto"
	ImportTypeComponents = "components"
	ImportTypeBOM        = "bom"
)

// ErrInvalidImportType 未知的导入类型
var ErrInvalidImportType = errors.New("import type must be auto, components or bom")

type ImportService struct {
	db          *gorm.DB
	minioClient *minio.Client
	bucket      string
	dataDir     string
	logger      *zap.Logger
}

func NewImportService(db *gorm.DB, minioClient *minio.Client, bucket, dataDir string, logger *zap.Logger) *ImportService {
	return &ImportService{
		db:          db,
		minioClient: minioClient,
		bucket:      bucket,
		dataDir:     dataDir,
		logger:      logger,
	}
}

// ImportOptions 一次导入的范围
type ImportOptions struct {
	// SheetName 只处理指定工作表，空串表示全部
	SheetName string
	// ImportType components 跳过BOM段；元器件段所有类型都执行
	ImportType string
}

// RowError 导入时跳过的行及原因
type RowError struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummary 一次导入的结果汇总
type ImportSummary struct {
	SheetsProcessed   int        `json:"sheets_processed"`
	ComponentsCreated int        `json:"components_created"`
	ComponentsUpdated int        `json:"components_updated"`
	PCBsCreated       int        `json:"pcbs_created"`
	BOMLinesUpserted  int        `json:"bom_lines_upserted"`
	RowErrors         []RowError `json:"row_errors,omitempty"`
	ArchiveObject     string     `json:"archive_object,omitempty"`
}

// ImportWorkbook 从工作簿导入数据。每个工作表先走元器件提取，
// auto/bom 下再走BOM提取，和既有导入流程一致。整个文件一个事务，
// 文件级错误整体回滚；行级问题记入 RowErrors 并跳过该行。
//
// 元器件按料号合并：已存在的库存累加、月需求取较大值、名称用新值
// 覆盖。BOM行按 (pcb, component) 更新数量，PCB不存在则创建。
func (s *ImportService) ImportWorkbook(ctx context.Context, filename string, r io.Reader, opts ImportOptions) (*ImportSummary, error) {
	if opts.ImportType == "" {
		opts.ImportType = ImportTypeAuto
	}
	switch opts.ImportType {
	case ImportTypeAuto, ImportTypeComponents, ImportTypeBOM:
	default:
		return nil, ErrInvalidImportType
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	wb, err := excel.Open(filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	sheetNames := wb.SheetNames()
	if opts.SheetName != "" {
		sheetNames = []string{opts.SheetName}
	}

	summary := &ImportSummary{}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// PCB可能跨表重复出现，事务内缓存避免反复查库
		pcbIDs := make(map[string]string)

		for _, sheetName := range sheetNames {
			headers, rows, err := wb.Sheet(sheetName)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				continue
			}
			summary.SheetsProcessed++

			// 元器件段所有导入类型都跑，BOM段只在 auto/bom 下跑，
			// 这样BOM表里新出现的子件会先入库再被挂接
			for _, comp := range excel.ExtractComponents(headers, rows) {
				if err := s.mergeComponent(tx, comp, summary); err != nil {
					summary.RowErrors = append(summary.RowErrors, RowError{
						Sheet:  sheetName,
						Row:    comp.SourceRow,
						Reason: err.Error(),
					})
				}
			}

			if opts.ImportType != ImportTypeComponents {
				for _, line := range excel.ExtractBOM(headers, rows, sheetName) {
					if err := s.mergeBOMLine(tx, line, pcbIDs, summary); err != nil {
						summary.RowErrors = append(summary.RowErrors, RowError{
							Sheet:  sheetName,
							Row:    line.SourceRow,
							Reason: err.Error(),
						})
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.ArchiveObject = s.archive(ctx, filename, data)

	s.logger.Info("Import finished",
		zap.String("file", filename),
		zap.String("type", opts.ImportType),
		zap.Int("components_created", summary.ComponentsCreated),
		zap.Int("components_updated", summary.ComponentsUpdated),
		zap.Int("pcbs_created", summary.PCBsCreated),
		zap.Int("bom_lines", summary.BOMLinesUpserted),
		zap.Int("row_errors", len(summary.RowErrors)))

	return summary, nil
}

// ImportComponents 只做元器件段的导入
func (s *ImportService) ImportComponents(ctx context.Context, filename string, r io.Reader) (*ImportSummary, error) {
	return s.ImportWorkbook(ctx, filename, r, ImportOptions{ImportType: ImportTypeComponents})
}

// ImportBOM 导入BOM段。元器件段照常先执行，BOM表里新出现的
// 子件会先建档再挂接。
func (s *ImportService) ImportBOM(ctx context.Context, filename string, r io.Reader) (*ImportSummary, error) {
	return s.ImportWorkbook(ctx, filename, r, ImportOptions{ImportType: ImportTypeBOM})
}

// ImportFromDataDir 从服务器数据目录导入指定文件。
// 文件名取basename，不接受路径穿越。
func (s *ImportService) ImportFromDataDir(ctx context.Context, filename string, opts ImportOptions) (*ImportSummary, error) {
	name := filepath.Base(filename)
	path := filepath.Join(s.dataDir, name)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file %q: %w", name, err)
	}
	defer f.Close()

	return s.ImportWorkbook(ctx, name, f, opts)
}

func (s *ImportService) mergeComponent(tx *gorm.DB, row excel.ComponentRow, summary *ImportSummary) error {
	var existing entity.Component
	err := tx.Where("part_number = ?", row.PartNumber).First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{
			"current_stock":             gorm.Expr("current_stock + ?", row.CurrentStock),
			"monthly_required_quantity": gorm.Expr("GREATEST(monthly_required_quantity, ?)", row.MonthlyRequiredQuantity),
		}
		if row.Name != "" {
			updates["name"] = row.Name
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return fmt.Errorf("merge %s: %w", row.PartNumber, err)
		}
		summary.ComponentsUpdated++
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup %s: %w", row.PartNumber, err)
	}

	comp := entity.Component{
		Name:                    row.Name,
		PartNumber:              row.PartNumber,
		CurrentStock:            row.CurrentStock,
		MonthlyRequiredQuantity: row.MonthlyRequiredQuantity,
	}
	if err := tx.Create(&comp).Error; err != nil {
		return fmt.Errorf("create %s: %w", row.PartNumber, err)
	}
	summary.ComponentsCreated++
	return nil
}

func (s *ImportService) mergeBOMLine(tx *gorm.DB, line excel.BOMRow, pcbIDs map[string]string, summary *ImportSummary) error {
	pcbID, ok := pcbIDs[line.PCBName]
	if !ok {
		var pcb entity.PCB
		err := tx.Where("pcb_name = ?", line.PCBName).First(&pcb).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pcb = entity.PCB{PCBName: line.PCBName}
			if err := tx.Create(&pcb).Error; err != nil {
				return fmt.Errorf("create pcb %q: %w", line.PCBName, err)
			}
			summary.PCBsCreated++
		} else if err != nil {
			return fmt.Errorf("lookup pcb %q: %w", line.PCBName, err)
		}
		pcbID = pcb.ID
		pcbIDs[line.PCBName] = pcbID
	}

	var comp entity.Component
	err := tx.Where("name = ? OR part_number = ?", line.ComponentIdentifier, line.ComponentIdentifier).
		First(&comp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("component %q not found", line.ComponentIdentifier)
	}
	if err != nil {
		return fmt.Errorf("lookup component %q: %w", line.ComponentIdentifier, err)
	}

	var link entity.PCBComponent
	err = tx.Where("pcb_id = ? AND component_id = ?", pcbID, comp.ID).First(&link).Error
	if err == nil {
		if err := tx.Model(&link).Update("quantity_per_pcb", line.QuantityPerPCB).Error; err != nil {
			return fmt.Errorf("update bom line: %w", err)
		}
		summary.BOMLinesUpserted++
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup bom line: %w", err)
	}

	link = entity.PCBComponent{
		PCBID:          pcbID,
		ComponentID:    comp.ID,
		QuantityPerPCB: line.QuantityPerPCB,
	}
	if err := tx.Create(&link).Error; err != nil {
		return fmt.Errorf("create bom line: %w", err)
	}
	summary.BOMLinesUpserted++
	return nil
}

// SheetPreview 单个工作表的分析结果
type SheetPreview struct {
	Name       string              `json:"name"`
	Headers    []string            `json:"headers"`
	Mapping    excel.ColumnMapping `json:"mapping"`
	RowCount   int                 `json:"row_count"`
	SampleRows []excel.Row         `json:"sample_rows"`
}

// AnalyzeWorkbook 只解析不入库，返回各表的列映射推断结果供前端确认
func (s *ImportService) AnalyzeWorkbook(filename string, r io.Reader) ([]SheetPreview, error) {
	wb, err := excel.Open(filename, r)
	if err != nil {
		return nil, err
	}

	var previews []SheetPreview
	for _, sheetName := range wb.SheetNames() {
		headers, rows, err := wb.Sheet(sheetName)
		if err != nil {
			return nil, err
		}
		sample := rows
		if len(sample) > 5 {
			sample = sample[:5]
		}
		previews = append(previews, SheetPreview{
			Name:       sheetName,
			Headers:    headers,
			Mapping:    excel.DetectColumnMapping(headers),
			RowCount:   len(rows),
			SampleRows: sample,
		})
	}
	return previews, nil
}

// ListDataFiles 服务器数据目录里可导入的表格文件
func (s *ImportService) ListDataFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".xlsx", ".xlsm", ".csv":
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// archive 原始文件归档到对象存储，失败只告警不影响导入结果
func (s *ImportService) archive(ctx context.Context, filename string, data []byte) string {
	if s.minioClient == nil {
		return ""
	}

	objectName := fmt.Sprintf("imports/%s-%s", time.Now().Format("20060102-150405"), filepath.Base(filename))
	contentType := "application/octet-stream"
	if filepath.Ext(filename) == ".xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	_, err := s.minioClient.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Warn("Failed to archive import file",
			zap.String("object", objectName), zap.Error(err))
		return ""
	}
	return objectName
}
