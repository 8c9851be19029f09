package service

import (
	"context"
	"errors"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"github.com/bitfantasy/pcb-stock/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProcurementService struct {
	procurementRepo *repository.ProcurementRepository
	logger          *zap.Logger
}

func NewProcurementService(procurementRepo *repository.ProcurementRepository, logger *zap.Logger) *ProcurementService {
	return &ProcurementService{procurementRepo: procurementRepo, logger: logger}
}

// List 触发器列表，status 为空时返回全部
func (s *ProcurementService) List(ctx context.Context, status string) ([]repository.TriggerView, error) {
	return s.procurementRepo.List(ctx, status)
}

// Resolve 把触发器标记为已处理。触发器不影响库存，
// 补货后把新库存写回元器件即可。
func (s *ProcurementService) Resolve(ctx context.Context, id string) error {
	if _, err := s.procurementRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTriggerNotFound
		}
		return err
	}
	if err := s.procurementRepo.UpdateStatus(ctx, id, entity.TriggerStatusResolved); err != nil {
		return err
	}
	s.logger.Info("Procurement trigger resolved", zap.String("trigger_id", id))
	return nil
}

// PurgeResolved 清理已处理的触发器，返回删除条数
func (s *ProcurementService) PurgeResolved(ctx context.Context) (int64, error) {
	return s.procurementRepo.DeleteResolved(ctx)
}
