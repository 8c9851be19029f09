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

type PCBService struct {
	pcbRepo       *repository.PCBRepository
	componentRepo *repository.ComponentRepository
	logger        *zap.Logger
}

func NewPCBService(
	pcbRepo *repository.PCBRepository,
	componentRepo *repository.ComponentRepository,
	logger *zap.Logger,
) *PCBService {
	return &PCBService{
		pcbRepo:       pcbRepo,
		componentRepo: componentRepo,
		logger:        logger,
	}
}

// CreatePCBRequest 新建PCB
type CreatePCBRequest struct {
	PCBName     string `json:"pcb_name" binding:"required"`
	Revision    string `json:"revision"`
	Description string `json:"description"`
}

func (s *PCBService) Create(ctx context.Context, req CreatePCBRequest) (*entity.PCB, error) {
	pcb := entity.PCB{
		PCBName:     req.PCBName,
		Revision:    req.Revision,
		Description: req.Description,
	}
	if err := s.pcbRepo.Create(ctx, &pcb); err != nil {
		return nil, fmt.Errorf("failed to create pcb: %w", err)
	}
	return &pcb, nil
}

func (s *PCBService) Get(ctx context.Context, id string) (*entity.PCB, error) {
	pcb, err := s.pcbRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPCBNotFound
		}
		return nil, err
	}
	return pcb, nil
}

func (s *PCBService) List(ctx context.Context) ([]entity.PCB, error) {
	return s.pcbRepo.List(ctx)
}

func (s *PCBService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.pcbRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete pcb: %w", err)
	}
	s.logger.Info("PCB deleted", zap.String("pcb_id", id))
	return nil
}

// BOM PCB的完整BOM及元器件当前库存
func (s *PCBService) BOM(ctx context.Context, pcbID string) ([]repository.BOMLine, error) {
	if _, err := s.Get(ctx, pcbID); err != nil {
		return nil, err
	}
	return s.pcbRepo.BOM(ctx, pcbID)
}

// LinkComponentRequest 在BOM中增加或更新一行
type LinkComponentRequest struct {
	ComponentID    string `json:"component_id" binding:"required,uuid"`
	QuantityPerPCB int    `json:"quantity_per_pcb" binding:"required,gt=0"`
}

func (s *PCBService) LinkComponent(ctx context.Context, pcbID string, req LinkComponentRequest) error {
	if _, err := s.Get(ctx, pcbID); err != nil {
		return err
	}
	if _, err := s.componentRepo.FindByID(ctx, req.ComponentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrComponentNotFound
		}
		return err
	}
	return s.pcbRepo.LinkComponent(ctx, pcbID, req.ComponentID, req.QuantityPerPCB)
}

// UpdateComponentLinkRequest 修改已有BOM行的数量
type UpdateComponentLinkRequest struct {
	QuantityPerPCB int `json:"quantity_per_pcb" binding:"required,gt=0"`
}

func (s *PCBService) UpdateComponentLink(ctx context.Context, pcbID, componentID string, req UpdateComponentLinkRequest) error {
	if _, err := s.Get(ctx, pcbID); err != nil {
		return err
	}
	err := s.pcbRepo.UpdateLinkQuantity(ctx, pcbID, componentID, req.QuantityPerPCB)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBOMLineNotFound
	}
	return err
}

func (s *PCBService) UnlinkComponent(ctx context.Context, pcbID, componentID string) error {
	if _, err := s.Get(ctx, pcbID); err != nil {
		return err
	}
	return s.pcbRepo.UnlinkComponent(ctx, pcbID, componentID)
}
