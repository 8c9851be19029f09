package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"github.com/bitfantasy/pcb-stock/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ComponentService struct {
	componentRepo  *repository.ComponentRepository
	productionRepo *repository.ProductionRepository
	logger         *zap.Logger
}

func NewComponentService(
	componentRepo *repository.ComponentRepository,
	productionRepo *repository.ProductionRepository,
	logger *zap.Logger,
) *ComponentService {
	return &ComponentService{
		componentRepo:  componentRepo,
		productionRepo: productionRepo,
		logger:         logger,
	}
}

// CreateComponentRequest 新建元器件
type CreateComponentRequest struct {
	Name                    string  `json:"name" binding:"required"`
	PartNumber              string  `json:"part_number"`
	CurrentStock            float64 `json:"current_stock" binding:"gte=0"`
	MonthlyRequiredQuantity float64 `json:"monthly_required_quantity" binding:"gte=0"`
}

func (s *ComponentService) Create(ctx context.Context, req CreateComponentRequest) (*entity.Component, error) {
	partNumber := req.PartNumber
	if partNumber != "" {
		if _, err := s.componentRepo.FindByPartNumber(ctx, partNumber); err == nil {
			return nil, ErrPartNumberTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check part number: %w", err)
		}
	}

	comp := entity.Component{
		Name:                    req.Name,
		PartNumber:              partNumber,
		CurrentStock:            req.CurrentStock,
		MonthlyRequiredQuantity: req.MonthlyRequiredQuantity,
	}
	if err := s.componentRepo.Create(ctx, &comp); err != nil {
		return nil, fmt.Errorf("failed to create component: %w", err)
	}
	return &comp, nil
}

func (s *ComponentService) Get(ctx context.Context, id string) (*entity.Component, error) {
	comp, err := s.componentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComponentNotFound
		}
		return nil, err
	}
	return comp, nil
}

func (s *ComponentService) List(ctx context.Context, params repository.ComponentListParams) ([]entity.Component, int64, error) {
	return s.componentRepo.List(ctx, params)
}

// UpdateComponentRequest 部分更新，未出现的字段保持原值
type UpdateComponentRequest struct {
	Name                    *string  `json:"name"`
	PartNumber              *string  `json:"part_number"`
	CurrentStock            *float64 `json:"current_stock" binding:"omitempty,gte=0"`
	MonthlyRequiredQuantity *float64 `json:"monthly_required_quantity" binding:"omitempty,gte=0"`
}

func (s *ComponentService) Update(ctx context.Context, id string, req UpdateComponentRequest) (*entity.Component, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	patch := repository.ComponentPatch{
		Name:                    req.Name,
		PartNumber:              req.PartNumber,
		CurrentStock:            req.CurrentStock,
		MonthlyRequiredQuantity: req.MonthlyRequiredQuantity,
	}
	if err := s.componentRepo.ApplyPatch(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update component: %w", err)
	}
	return s.componentRepo.FindByID(ctx, id)
}

func (s *ComponentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.componentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	s.logger.Info("Component deleted", zap.String("component_id", id))
	return nil
}

// ConsumptionHistory 某元器件的历史消耗流水
func (s *ComponentService) ConsumptionHistory(ctx context.Context, componentID string, limit int) ([]entity.ConsumptionHistory, error) {
	if _, err := s.Get(ctx, componentID); err != nil {
		return nil, err
	}
	return s.productionRepo.ConsumptionByComponent(ctx, componentID, limit)
}
