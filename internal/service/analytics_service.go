package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	analyticsCacheTTL       = 30 * time.Second
	cacheKeyDashboard       = "analytics:dashboard"
	cacheKeyTopConsumed     = "analytics:top_consumed"
	cacheKeyMonthlyTrend    = "analytics:monthly_trend"
	cacheKeyProductionByPCB = "analytics:production_by_pcb"
)

// analyticsCacheKeys 生产提交后需要失效的缓存键
var analyticsCacheKeys = []string{
	cacheKeyDashboard,
	cacheKeyTopConsumed,
	cacheKeyMonthlyTrend,
	cacheKeyProductionByPCB,
}

type AnalyticsService struct {
	db          *gorm.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewAnalyticsService(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{db: db, redisClient: redisClient, logger: logger}
}

// Dashboard 库存总览
type Dashboard struct {
	TotalComponents   int64 `json:"total_components"`
	TotalPCBs         int64 `json:"total_pcbs"`
	LowStockCount     int64 `json:"low_stock_count"`
	OutOfStockCount   int64 `json:"out_of_stock_count"`
	OpenTriggerCount  int64 `json:"open_trigger_count"`
	ProductionRuns30d int64 `json:"production_runs_30d"`
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var dash Dashboard
	if s.cacheGet(ctx, cacheKeyDashboard, &dash) {
		return &dash, nil
	}

	err := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM components) AS total_components,
			(SELECT COUNT(*) FROM pcbs) AS total_pcbs,
			(SELECT COUNT(*) FROM components
			 WHERE monthly_required_quantity > 0
			   AND current_stock < 0.2 * monthly_required_quantity) AS low_stock_count,
			(SELECT COUNT(*) FROM components WHERE current_stock <= 0) AS out_of_stock_count,
			(SELECT COUNT(*) FROM procurement_triggers WHERE status = 'open') AS open_trigger_count,
			(SELECT COUNT(*) FROM production_logs
			 WHERE produced_at >= NOW() - INTERVAL '30 days') AS production_runs_30d
	`).Scan(&dash).Error
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKeyDashboard, &dash)
	return &dash, nil
}

// ComponentConsumptionSummary 元器件消耗汇总条目
type ComponentConsumptionSummary struct {
	ComponentID             string  `gorm:"column:component_id" json:"component_id"`
	ComponentName           string  `gorm:"column:component_name" json:"component_name"`
	PartNumber              string  `gorm:"column:part_number" json:"part_number"`
	CurrentStock            float64 `gorm:"column:current_stock" json:"current_stock"`
	MonthlyRequiredQuantity float64 `gorm:"column:monthly_required_quantity" json:"monthly_required_quantity"`
	TotalConsumed           float64 `gorm:"column:total_consumed" json:"total_consumed"`
	ProductionCount         int64   `gorm:"column:production_count" json:"production_count"`
}

// ConsumptionSummary 全部元器件的消耗汇总，可按时间区间过滤。
// 未消耗过的元器件也在列表里，总量为0。
func (s *AnalyticsService) ConsumptionSummary(ctx context.Context, from, to *time.Time) ([]ComponentConsumptionSummary, error) {
	join := "LEFT JOIN consumption_history ch ON ch.component_id = c.id"
	var args []interface{}
	if from != nil && to != nil {
		join += " AND ch.created_at BETWEEN ? AND ?"
		args = append(args, *from, *to)
	} else if from != nil {
		join += " AND ch.created_at >= ?"
		args = append(args, *from)
	} else if to != nil {
		join += " AND ch.created_at <= ?"
		args = append(args, *to)
	}

	var items []ComponentConsumptionSummary
	err := s.db.WithContext(ctx).Raw(`
		SELECT c.id AS component_id, c.name AS component_name, c.part_number,
		       c.current_stock, c.monthly_required_quantity,
		       COALESCE(SUM(ch.quantity_deducted), 0) AS total_consumed,
		       COUNT(DISTINCT ch.production_log_id) AS production_count
		FROM components c
		`+join+`
		GROUP BY c.id, c.name, c.part_number, c.current_stock, c.monthly_required_quantity
		ORDER BY total_consumed DESC
	`, args...).Scan(&items).Error
	return items, err
}

// LowStockComponent 低库存条目，stock_percentage = 库存/月需求 × 100
type LowStockComponent struct {
	ID                      string  `gorm:"column:id" json:"id"`
	Name                    string  `gorm:"column:name" json:"name"`
	PartNumber              string  `gorm:"column:part_number" json:"part_number"`
	CurrentStock            float64 `gorm:"column:current_stock" json:"current_stock"`
	MonthlyRequiredQuantity float64 `gorm:"column:monthly_required_quantity" json:"monthly_required_quantity"`
	StockPercentage         float64 `gorm:"column:stock_percentage" json:"stock_percentage"`
}

// LowStock 库存低于月需求20%的元器件，按紧缺程度升序
func (s *AnalyticsService) LowStock(ctx context.Context) ([]LowStockComponent, error) {
	var items []LowStockComponent
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, name, part_number, current_stock, monthly_required_quantity,
		       ROUND((current_stock / NULLIF(monthly_required_quantity, 0)) * 100, 2) AS stock_percentage
		FROM components
		WHERE monthly_required_quantity > 0
		  AND current_stock < monthly_required_quantity * 0.2
		ORDER BY stock_percentage ASC
	`).Scan(&items).Error
	return items, err
}

// TopConsumedComponent 消耗量排名条目
type TopConsumedComponent struct {
	ComponentID   string  `gorm:"column:component_id" json:"component_id"`
	Name          string  `gorm:"column:name" json:"name"`
	PartNumber    string  `gorm:"column:part_number" json:"part_number"`
	TotalConsumed float64 `gorm:"column:total_consumed" json:"total_consumed"`
	CurrentStock  float64 `gorm:"column:current_stock" json:"current_stock"`
}

// TopConsumed 近90天消耗量最大的元器件
func (s *AnalyticsService) TopConsumed(ctx context.Context, limit int) ([]TopConsumedComponent, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var items []TopConsumedComponent
	if limit == 10 && s.cacheGet(ctx, cacheKeyTopConsumed, &items) {
		return items, nil
	}

	err := s.db.WithContext(ctx).Raw(`
		SELECT ch.component_id, c.name, c.part_number,
		       SUM(ch.quantity_deducted) AS total_consumed,
		       c.current_stock
		FROM consumption_history ch
		JOIN components c ON c.id = ch.component_id
		WHERE ch.created_at >= NOW() - INTERVAL '90 days'
		GROUP BY ch.component_id, c.name, c.part_number, c.current_stock
		ORDER BY total_consumed DESC
		LIMIT ?
	`, limit).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	if limit == 10 {
		s.cacheSet(ctx, cacheKeyTopConsumed, items)
	}
	return items, nil
}

// MonthlyConsumptionPoint 某月的总消耗
type MonthlyConsumptionPoint struct {
	Month         string  `gorm:"column:month" json:"month"`
	TotalConsumed float64 `gorm:"column:total_consumed" json:"total_consumed"`
}

// MonthlyTrend 近12个月的消耗趋势
func (s *AnalyticsService) MonthlyTrend(ctx context.Context) ([]MonthlyConsumptionPoint, error) {
	var points []MonthlyConsumptionPoint
	if s.cacheGet(ctx, cacheKeyMonthlyTrend, &points) {
		return points, nil
	}

	err := s.db.WithContext(ctx).Raw(`
		SELECT TO_CHAR(DATE_TRUNC('month', created_at), 'YYYY-MM') AS month,
		       SUM(quantity_deducted) AS total_consumed
		FROM consumption_history
		WHERE created_at >= NOW() - INTERVAL '12 months'
		GROUP BY 1
		ORDER BY 1 ASC
	`).Scan(&points).Error
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKeyMonthlyTrend, points)
	return points, nil
}

// ProductionByPCB 按PCB汇总的生产量
type ProductionByPCB struct {
	PCBID         string `gorm:"column:pcb_id" json:"pcb_id"`
	PCBName       string `gorm:"column:pcb_name" json:"pcb_name"`
	TotalProduced int64  `gorm:"column:total_produced" json:"total_produced"`
	TotalOK       int64  `gorm:"column:total_ok" json:"total_ok"`
	TotalScrap    int64  `gorm:"column:total_scrap" json:"total_scrap"`
	RunCount      int64  `gorm:"column:run_count" json:"run_count"`
}

// ProductionSummary 各PCB的生产汇总，含良品率所需的分量。
// 只有不带时间区间的默认查询走缓存。
func (s *AnalyticsService) ProductionSummary(ctx context.Context, from, to *time.Time) ([]ProductionByPCB, error) {
	cacheable := from == nil && to == nil

	var items []ProductionByPCB
	if cacheable && s.cacheGet(ctx, cacheKeyProductionByPCB, &items) {
		return items, nil
	}

	where := ""
	var args []interface{}
	if from != nil && to != nil {
		where = "WHERE pl.produced_at BETWEEN ? AND ?"
		args = append(args, *from, *to)
	} else if from != nil {
		where = "WHERE pl.produced_at >= ?"
		args = append(args, *from)
	} else if to != nil {
		where = "WHERE pl.produced_at <= ?"
		args = append(args, *to)
	}

	err := s.db.WithContext(ctx).Raw(`
		SELECT pl.pcb_id, p.pcb_name,
		       SUM(pl.quantity_produced) AS total_produced,
		       COALESCE(SUM(pl.quantity_ok), 0) AS total_ok,
		       COALESCE(SUM(pl.quantity_scrap), 0) AS total_scrap,
		       COUNT(*) AS run_count
		FROM production_logs pl
		JOIN pcbs p ON p.id = pl.pcb_id
		`+where+`
		GROUP BY pl.pcb_id, p.pcb_name
		ORDER BY total_produced DESC
	`, args...).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cacheSet(ctx, cacheKeyProductionByPCB, items)
	}
	return items, nil
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.redisClient == nil {
		return false
	}
	data, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false
	}
	return true
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.redisClient == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, key, data, analyticsCacheTTL).Err(); err != nil {
		s.logger.Warn("Failed to cache analytics result", zap.String("key", key), zap.Error(err))
	}
}
