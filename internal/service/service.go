package service

import (
	"github.com/bitfantasy/pcb-stock/internal/config"
	"github.com/bitfantasy/pcb-stock/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 业务服务集合
type Services struct {
	Component   *ComponentService
	PCB         *PCBService
	Production  *ProductionService
	Procurement *ProcurementService
	Import      *ImportService
	Analytics   *AnalyticsService
	Auth        *AuthService
}

func NewServices(
	db *gorm.DB,
	repos *repository.Repositories,
	redisClient *redis.Client,
	minioClient *minio.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *Services {
	return &Services{
		Component:   NewComponentService(repos.Component, repos.Production, logger),
		PCB:         NewPCBService(repos.PCB, repos.Component, logger),
		Production:  NewProductionService(db, repos.PCB, repos.Production, redisClient, logger),
		Procurement: NewProcurementService(repos.Procurement, logger),
		Import:      NewImportService(db, minioClient, cfg.MinIO.Bucket, cfg.Import.DataDir, logger),
		Analytics:   NewAnalyticsService(db, redisClient, logger),
		Auth:        NewAuthService(repos.User, redisClient, cfg.JWT, logger),
	}
}
