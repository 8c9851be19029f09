package repository

import (
	"context"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"gorm.io/gorm"
)

type PCBRepository struct {
	db *gorm.DB
}

func NewPCBRepository(db *gorm.DB) *PCBRepository {
	return &PCBRepository{db: db}
}

func (r *PCBRepository) FindByID(ctx context.Context, id string) (*entity.PCB, error) {
	var pcb entity.PCB
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pcb).Error
	if err != nil {
		return nil, err
	}
	return &pcb, nil
}

func (r *PCBRepository) FindByName(ctx context.Context, name string) (*entity.PCB, error) {
	var pcb entity.PCB
	err := r.db.WithContext(ctx).Where("pcb_name = ?", name).First(&pcb).Error
	if err != nil {
		return nil, err
	}
	return &pcb, nil
}

func (r *PCBRepository) List(ctx context.Context) ([]entity.PCB, error) {
	var pcbs []entity.PCB
	err := r.db.WithContext(ctx).Order("pcb_name ASC").Find(&pcbs).Error
	return pcbs, err
}

func (r *PCBRepository) Create(ctx context.Context, pcb *entity.PCB) error {
	return r.db.WithContext(ctx).Create(pcb).Error
}

func (r *PCBRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.PCB{}).Error
}

// BOMLine BOM行与对应元器件当前状态的联查结果
type BOMLine struct {
	ComponentID             string  `gorm:"column:component_id"`
	Name                    string  `gorm:"column:name"`
	PartNumber              string  `gorm:"column:part_number"`
	QuantityPerPCB          int     `gorm:"column:quantity_per_pcb"`
	CurrentStock            float64 `gorm:"column:current_stock"`
	MonthlyRequiredQuantity float64 `gorm:"column:monthly_required_quantity"`
}

// BOM 读取BOM（不加锁），用于展示
func (r *PCBRepository) BOM(ctx context.Context, pcbID string) ([]BOMLine, error) {
	var lines []BOMLine
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS component_id, c.name, c.part_number,
		       pc.quantity_per_pcb, c.current_stock, c.monthly_required_quantity
		FROM pcb_components pc
		JOIN components c ON c.id = pc.component_id
		WHERE pc.pcb_id = ?
		ORDER BY c.part_number ASC
	`, pcbID).Scan(&lines).Error
	return lines, err
}

// BOMForUpdate 在事务内读取BOM并锁住涉及的元器件行。
// 排序保证多个并发生产事务以相同顺序取锁，避免死锁。
func (r *PCBRepository) BOMForUpdate(tx *gorm.DB, pcbID string) ([]BOMLine, error) {
	var lines []BOMLine
	err := tx.Raw(`
		SELECT c.id AS component_id, c.name, c.part_number,
		       pc.quantity_per_pcb, c.current_stock, c.monthly_required_quantity
		FROM pcb_components pc
		JOIN components c ON c.id = pc.component_id
		WHERE pc.pcb_id = ?
		ORDER BY c.id ASC
		FOR UPDATE OF c
	`, pcbID).Scan(&lines).Error
	return lines, err
}

// LinkComponent BOM行存在则更新数量，不存在则新建
func (r *PCBRepository) LinkComponent(ctx context.Context, pcbID, componentID string, quantity int) error {
	var existing entity.PCBComponent
	err := r.db.WithContext(ctx).
		Where("pcb_id = ? AND component_id = ?", pcbID, componentID).
		First(&existing).Error
	if err == nil {
		return r.db.WithContext(ctx).Model(&existing).
			Update("quantity_per_pcb", quantity).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	link := entity.PCBComponent{
		PCBID:          pcbID,
		ComponentID:    componentID,
		QuantityPerPCB: quantity,
	}
	return r.db.WithContext(ctx).Create(&link).Error
}

// UpdateLinkQuantity 只改已有BOM行的数量，行不存在返回ErrRecordNotFound
func (r *PCBRepository) UpdateLinkQuantity(ctx context.Context, pcbID, componentID string, quantity int) error {
	result := r.db.WithContext(ctx).Model(&entity.PCBComponent{}).
		Where("pcb_id = ? AND component_id = ?", pcbID, componentID).
		Update("quantity_per_pcb", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PCBRepository) UnlinkComponent(ctx context.Context, pcbID, componentID string) error {
	return r.db.WithContext(ctx).
		Where("pcb_id = ? AND component_id = ?", pcbID, componentID).
		Delete(&entity.PCBComponent{}).Error
}

func (r *PCBRepository) DB() *gorm.DB {
	return r.db
}
