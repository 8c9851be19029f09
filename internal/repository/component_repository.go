package repository

import (
	"context"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"gorm.io/gorm"
)

type ComponentRepository struct {
	db *gorm.DB
}

func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

func (r *ComponentRepository) FindByID(ctx context.Context, id string) (*entity.Component, error) {
	var comp entity.Component
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comp).Error
	if err != nil {
		return nil, err
	}
	return &comp, nil
}

func (r *ComponentRepository) FindByPartNumber(ctx context.Context, partNumber string) (*entity.Component, error) {
	var comp entity.Component
	err := r.db.WithContext(ctx).Where("part_number = ?", partNumber).First(&comp).Error
	if err != nil {
		return nil, err
	}
	return &comp, nil
}

// FindByIdentifier 按名称或料号匹配，导入时BOM行用标识反查元器件
func (r *ComponentRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.Component, error) {
	var comp entity.Component
	err := r.db.WithContext(ctx).
		Where("name = ? OR part_number = ?", identifier, identifier).
		First(&comp).Error
	if err != nil {
		return nil, err
	}
	return &comp, nil
}

type ComponentListParams struct {
	Keyword string
	Page    int
	Size    int
}

func (r *ComponentRepository) List(ctx context.Context, params ComponentListParams) ([]entity.Component, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Component{})
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("name ILIKE ? OR part_number ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 50
	}
	var items []entity.Component
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&items).Error
	return items, total, err
}

func (r *ComponentRepository) Create(ctx context.Context, comp *entity.Component) error {
	return r.db.WithContext(ctx).Create(comp).Error
}

// ComponentPatch 部分更新：nil 字段保持不变
type ComponentPatch struct {
	Name                    *string
	PartNumber              *string
	CurrentStock            *float64
	MonthlyRequiredQuantity *float64
}

// ApplyPatch 参数化的部分更新，只更新明确给出的列
func (r *ComponentRepository) ApplyPatch(ctx context.Context, id string, patch ComponentPatch) error {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.PartNumber != nil {
		updates["part_number"] = *patch.PartNumber
	}
	if patch.CurrentStock != nil {
		updates["current_stock"] = *patch.CurrentStock
	}
	if patch.MonthlyRequiredQuantity != nil {
		updates["monthly_required_quantity"] = *patch.MonthlyRequiredQuantity
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.Component{}).
		Where("id = ?", id).Updates(updates).Error
}

func (r *ComponentRepository) Delete(ctx context.Context, id string) error {
	// 级联删除BOM行/消耗流水/采购触发器由外键约束处理
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Component{}).Error
}

// DB 返回底层db用于事务
func (r *ComponentRepository) DB() *gorm.DB {
	return r.db
}
