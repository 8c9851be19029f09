package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"github.com/bitfantasy/pcb-stock/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reorderThresholdRatio 库存低于月需求的该比例时触发采购
const reorderThresholdRatio = 0.2

type ProductionService struct {
	db             *gorm.DB
	pcbRepo        *repository.PCBRepository
	productionRepo *repository.ProductionRepository
	redisClient    *redis.Client
	logger         *zap.Logger
}

func NewProductionService(
	db *gorm.DB,
	pcbRepo *repository.PCBRepository,
	productionRepo *repository.ProductionRepository,
	redisClient *redis.Client,
	logger *zap.Logger,
) *ProductionService {
	return &ProductionService{
		db:             db,
		pcbRepo:        pcbRepo,
		productionRepo: productionRepo,
		redisClient:    redisClient,
		logger:         logger,
	}
}

// RecordProductionRequest 记录生产的入参
type RecordProductionRequest struct {
	PCBID            string `json:"pcb_id" binding:"required,uuid"`
	QuantityProduced int    `json:"quantity_produced" binding:"required,gt=0"`
	QuantityOK       *int   `json:"quantity_ok" binding:"omitempty,gte=0"`
	QuantityScrap    *int   `json:"quantity_scrap" binding:"omitempty,gte=0"`
}

// StockDeduction 单条BOM行的扣减明细，带扣减前后的库存
type StockDeduction struct {
	ComponentID             string  `json:"component_id"`
	ComponentName           string  `json:"component_name"`
	QuantityToDeduct        float64 `json:"quantity_to_deduct"`
	CurrentStock            float64 `json:"current_stock"`
	NewStock                float64 `json:"new_stock"`
	MonthlyRequiredQuantity float64 `json:"monthly_required_quantity"`
}

// ProductionResult 一次成功生产的结果
type ProductionResult struct {
	ProductionLog     *entity.ProductionLog       `json:"production_log"`
	PCBName           string                      `json:"pcb_name"`
	StockDeductions   []StockDeduction            `json:"stock_deductions"`
	Consumptions      []entity.ConsumptionHistory `json:"consumptions"`
	TriggersCreated   []entity.ProcurementTrigger `json:"triggers_created"`
	ComponentsUpdated int                         `json:"components_updated"`
}

// ErrInvalidOKScrap 良品数+报废数与生产数不一致
var ErrInvalidOKScrap = errors.New("quantity_ok plus quantity_scrap must equal quantity_produced")

// RecordProduction 记录一次生产：校验库存、写生产记录、扣减库存、
// 写消耗流水、必要时创建采购触发器。整个过程单事务，任一元器件
// 缺料则整单失败，不做部分扣减。
func (s *ProductionService) RecordProduction(ctx context.Context, req RecordProductionRequest) (*ProductionResult, error) {
	if req.QuantityOK != nil && req.QuantityScrap != nil {
		if *req.QuantityOK+*req.QuantityScrap != req.QuantityProduced {
			return nil, ErrInvalidOKScrap
		}
	}

	var result ProductionResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pcb entity.PCB
		if err := tx.Where("id = ?", req.PCBID).First(&pcb).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPCBNotFound
			}
			return fmt.Errorf("failed to load pcb: %w", err)
		}

		// 锁住BOM涉及的元器件行，固定顺序取锁
		lines, err := s.pcbRepo.BOMForUpdate(tx, pcb.ID)
		if err != nil {
			return fmt.Errorf("failed to load bom: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyBOM
		}

		// 先算齐全部缺料再决定回滚，让调用方一次看到完整清单
		var shortages []Shortage
		for _, line := range lines {
			required := float64(line.QuantityPerPCB) * float64(req.QuantityProduced)
			if line.CurrentStock < required {
				shortages = append(shortages, Shortage{
					ComponentID: line.ComponentID,
					Component:   line.Name,
					PartNumber:  line.PartNumber,
					Required:    required,
					Available:   line.CurrentStock,
					Shortage:    required - line.CurrentStock,
				})
			}
		}
		if len(shortages) > 0 {
			return &InsufficientStockError{Shortages: shortages}
		}

		log := entity.ProductionLog{
			PCBID:            pcb.ID,
			QuantityProduced: req.QuantityProduced,
			QuantityOK:       req.QuantityOK,
			QuantityScrap:    req.QuantityScrap,
		}
		if err := tx.Create(&log).Error; err != nil {
			return fmt.Errorf("failed to create production log: %w", err)
		}

		for _, line := range lines {
			required := float64(line.QuantityPerPCB) * float64(req.QuantityProduced)

			// 带守卫条件的扣减，行锁下正常必定命中
			res := tx.Model(&entity.Component{}).
				Where("id = ? AND current_stock >= ?", line.ComponentID, required).
				Update("current_stock", gorm.Expr("current_stock - ?", required))
			if res.Error != nil {
				return fmt.Errorf("failed to deduct stock for %s: %w", line.PartNumber, res.Error)
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{Shortages: []Shortage{{
					ComponentID: line.ComponentID,
					Component:   line.Name,
					PartNumber:  line.PartNumber,
					Required:    required,
					Available:   line.CurrentStock,
					Shortage:    required - line.CurrentStock,
				}}}
			}

			consumption := entity.ConsumptionHistory{
				ComponentID:      line.ComponentID,
				ProductionLogID:  log.ID,
				QuantityDeducted: required,
			}
			if err := tx.Create(&consumption).Error; err != nil {
				return fmt.Errorf("failed to record consumption: %w", err)
			}
			result.Consumptions = append(result.Consumptions, consumption)

			newStock := line.CurrentStock - required
			result.StockDeductions = append(result.StockDeductions, StockDeduction{
				ComponentID:             line.ComponentID,
				ComponentName:           line.Name,
				QuantityToDeduct:        required,
				CurrentStock:            line.CurrentStock,
				NewStock:                newStock,
				MonthlyRequiredQuantity: line.MonthlyRequiredQuantity,
			})
			if line.MonthlyRequiredQuantity > 0 && newStock < reorderThresholdRatio*line.MonthlyRequiredQuantity {
				trigger, err := s.ensureOpenTrigger(tx, line.ComponentID)
				if err != nil {
					return err
				}
				if trigger != nil {
					result.TriggersCreated = append(result.TriggersCreated, *trigger)
				}
			}
		}

		result.ProductionLog = &log
		result.PCBName = pcb.PCBName
		result.ComponentsUpdated = len(lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAnalyticsCache(ctx)

	s.logger.Info("Production recorded",
		zap.String("pcb_id", req.PCBID),
		zap.Int("quantity", req.QuantityProduced),
		zap.Int("components_updated", result.ComponentsUpdated),
		zap.Int("triggers_created", len(result.TriggersCreated)))

	return &result, nil
}

// ensureOpenTrigger 同一元器件已有open触发器时不再重复创建。
// 调用方已持有该元器件的行锁，判重在锁内是安全的。
func (s *ProductionService) ensureOpenTrigger(tx *gorm.DB, componentID string) (*entity.ProcurementTrigger, error) {
	var count int64
	err := tx.Model(&entity.ProcurementTrigger{}).
		Where("component_id = ? AND status = ?", componentID, entity.TriggerStatusOpen).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check open triggers: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	trigger := entity.ProcurementTrigger{
		ComponentID: componentID,
		Status:      entity.TriggerStatusOpen,
	}
	if err := tx.Create(&trigger).Error; err != nil {
		return nil, fmt.Errorf("failed to create procurement trigger: %w", err)
	}
	return &trigger, nil
}

func (s *ProductionService) invalidateAnalyticsCache(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, analyticsCacheKeys...).Err(); err != nil {
		s.logger.Warn("Failed to invalidate analytics cache", zap.Error(err))
	}
}

// ListProductionLogs 生产记录列表，按时间倒序
func (s *ProductionService) ListProductionLogs(ctx context.Context, params repository.ProductionListParams) ([]repository.ProductionLogView, int64, error) {
	return s.productionRepo.List(ctx, params)
}

// ProductionLogDetail 单条生产记录及其消耗明细
type ProductionLogDetail struct {
	Log         repository.ProductionLogView `json:"log"`
	Consumption []repository.ConsumptionView `json:"consumption"`
}

// GetProductionLog 按ID取生产记录，连同该次生产的元器件消耗
func (s *ProductionService) GetProductionLog(ctx context.Context, id string) (*ProductionLogDetail, error) {
	log, err := s.productionRepo.FindLogByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductionLogNotFound
		}
		return nil, err
	}
	consumption, err := s.productionRepo.ConsumptionByLog(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductionLogDetail{Log: *log, Consumption: consumption}, nil
}

// ParseTimeRange 解析查询参数里的时间区间，空串表示不限
func ParseTimeRange(from, to string) (*time.Time, *time.Time, error) {
	var fromT, toT *time.Time
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from time: %w", err)
		}
		fromT = &t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to time: %w", err)
		}
		toT = &t
	}
	return fromT, toT, nil
}
