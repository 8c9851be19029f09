package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 账号
		&User{},

		// 主数据
		&Component{},
		&PCB{},
		&PCBComponent{},

		// 生产
		&ProductionLog{},
		&ConsumptionHistory{},

		// 采购
		&ProcurementTrigger{},
	)
}
