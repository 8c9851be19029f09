package repository

import "gorm.io/gorm"

// Repositories 仓库集合
type Repositories struct {
	Component   *ComponentRepository
	PCB         *PCBRepository
	Production  *ProductionRepository
	Procurement *ProcurementRepository
	User        *UserRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Component:   NewComponentRepository(db),
		PCB:         NewPCBRepository(db),
		Production:  NewProductionRepository(db),
		Procurement: NewProcurementRepository(db),
		User:        NewUserRepository(db),
	}
}
