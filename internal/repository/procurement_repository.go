package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"gorm.io/gorm"
)

type ProcurementRepository struct {
	db *gorm.DB
}

func NewProcurementRepository(db *gorm.DB) *ProcurementRepository {
	return &ProcurementRepository{db: db}
}

// TriggerView 采购触发器与元器件信息的联查视图
type TriggerView struct {
	ID                      string    `gorm:"column:id" json:"id"`
	ComponentID             string    `gorm:"column:component_id" json:"component_id"`
	Name                    string    `gorm:"column:name" json:"name"`
	PartNumber              string    `gorm:"column:part_number" json:"part_number"`
	CurrentStock            float64   `gorm:"column:current_stock" json:"current_stock"`
	MonthlyRequiredQuantity float64   `gorm:"column:monthly_required_quantity" json:"monthly_required_quantity"`
	TriggerDate             time.Time `gorm:"column:trigger_date" json:"trigger_date"`
	Status                  string    `gorm:"column:status" json:"status"`
}

func (r *ProcurementRepository) List(ctx context.Context, status string) ([]TriggerView, error) {
	query := r.db.WithContext(ctx).
		Table("procurement_triggers pt").
		Joins("JOIN components c ON c.id = pt.component_id").
		Select("pt.id, pt.component_id, c.name, c.part_number, c.current_stock, c.monthly_required_quantity, pt.trigger_date, pt.status")
	if status != "" {
		query = query.Where("pt.status = ?", status)
	}
	var triggers []TriggerView
	err := query.Order("pt.trigger_date DESC").Scan(&triggers).Error
	return triggers, err
}

func (r *ProcurementRepository) FindByID(ctx context.Context, id string) (*entity.ProcurementTrigger, error) {
	var trigger entity.ProcurementTrigger
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&trigger).Error
	if err != nil {
		return nil, err
	}
	return &trigger, nil
}

func (r *ProcurementRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.ProcurementTrigger{}).
		Where("id = ?", id).Update("status", status).Error
}

func (r *ProcurementRepository) DeleteResolved(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ?", entity.TriggerStatusResolved).
		Delete(&entity.ProcurementTrigger{})
	return result.RowsAffected, result.Error
}
