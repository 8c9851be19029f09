package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"gorm.io/gorm"
)

type ProductionRepository struct {
	db *gorm.DB
}

func NewProductionRepository(db *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

// ProductionLogView 生产记录与PCB名称的联查视图
type ProductionLogView struct {
	ID               string    `gorm:"column:id" json:"id"`
	PCBID            string    `gorm:"column:pcb_id" json:"pcb_id"`
	PCBName          string    `gorm:"column:pcb_name" json:"pcb_name"`
	QuantityProduced int       `gorm:"column:quantity_produced" json:"quantity_produced"`
	QuantityOK       *int      `gorm:"column:quantity_ok" json:"quantity_ok"`
	QuantityScrap    *int      `gorm:"column:quantity_scrap" json:"quantity_scrap"`
	ProducedAt       time.Time `gorm:"column:produced_at" json:"produced_at"`
}

type ProductionListParams struct {
	PCBID string
	From  *time.Time
	To    *time.Time
	Page  int
	Size  int
}

func (r *ProductionRepository) List(ctx context.Context, params ProductionListParams) ([]ProductionLogView, int64, error) {
	query := r.db.WithContext(ctx).
		Table("production_logs pl").
		Joins("JOIN pcbs p ON p.id = pl.pcb_id")
	if params.PCBID != "" {
		query = query.Where("pl.pcb_id = ?", params.PCBID)
	}
	if params.From != nil {
		query = query.Where("pl.produced_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("pl.produced_at <= ?", *params.To)
	}

	var total int64
	query.Count(&total)

	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 50
	}

	var logs []ProductionLogView
	err := query.
		Select("pl.id, pl.pcb_id, p.pcb_name, pl.quantity_produced, pl.quantity_ok, pl.quantity_scrap, pl.produced_at").
		Order("pl.produced_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Scan(&logs).Error
	return logs, total, err
}

// FindLogByID 单条生产记录及PCB名称
func (r *ProductionRepository) FindLogByID(ctx context.Context, id string) (*ProductionLogView, error) {
	var log ProductionLogView
	err := r.db.WithContext(ctx).Raw(`
		SELECT pl.id, pl.pcb_id, p.pcb_name, pl.quantity_produced,
		       pl.quantity_ok, pl.quantity_scrap, pl.produced_at
		FROM production_logs pl
		JOIN pcbs p ON p.id = pl.pcb_id
		WHERE pl.id = ?
	`, id).Scan(&log).Error
	if err != nil {
		return nil, err
	}
	if log.ID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &log, nil
}

// ConsumptionView 消耗流水与元器件信息的联查视图
type ConsumptionView struct {
	ID               string    `gorm:"column:id" json:"id"`
	ComponentID      string    `gorm:"column:component_id" json:"component_id"`
	Name             string    `gorm:"column:name" json:"name"`
	PartNumber       string    `gorm:"column:part_number" json:"part_number"`
	QuantityDeducted float64   `gorm:"column:quantity_deducted" json:"quantity_deducted"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

// ConsumptionByLog 某次生产记录的元器件消耗明细
func (r *ProductionRepository) ConsumptionByLog(ctx context.Context, productionLogID string) ([]ConsumptionView, error) {
	var rows []ConsumptionView
	err := r.db.WithContext(ctx).Raw(`
		SELECT ch.id, ch.component_id, c.name, c.part_number,
		       ch.quantity_deducted, ch.created_at
		FROM consumption_history ch
		JOIN components c ON c.id = ch.component_id
		WHERE ch.production_log_id = ?
		ORDER BY c.part_number ASC
	`, productionLogID).Scan(&rows).Error
	return rows, err
}

// ConsumptionByComponent 某元器件的历史消耗流水
func (r *ProductionRepository) ConsumptionByComponent(ctx context.Context, componentID string, limit int) ([]entity.ConsumptionHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []entity.ConsumptionHistory
	err := r.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("created_at DESC").Limit(limit).
		Find(&rows).Error
	return rows, err
}
