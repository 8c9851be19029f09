package entity

import (
	"time"
)

// ProductionLog 生产记录，每次成功的生产事务写入一条，之后不可变更
type ProductionLog struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PCBID            string    `json:"pcb_id" gorm:"type:uuid;not null;index"`
	QuantityProduced int       `json:"quantity_produced" gorm:"not null"`
	QuantityOK       *int      `json:"quantity_ok" gorm:"check:quantity_ok >= 0"`
	QuantityScrap    *int      `json:"quantity_scrap" gorm:"check:quantity_scrap >= 0"`
	ProducedAt       time.Time `json:"produced_at" gorm:"autoCreateTime"`

	PCB *PCB `json:"pcb,omitempty" gorm:"foreignKey:PCBID;constraint:OnDelete:CASCADE"`
}

func (ProductionLog) TableName() string {
	return "production_logs"
}

// ConsumptionHistory 消耗流水：一次生产对某元器件的扣减，只追加
type ConsumptionHistory struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ComponentID      string    `json:"component_id" gorm:"type:uuid;not null;index"`
	ProductionLogID  string    `json:"production_log_id" gorm:"type:uuid;not null;index"`
	QuantityDeducted float64   `json:"quantity_deducted" gorm:"type:decimal(12,4);not null"`
	CreatedAt        time.Time `json:"created_at"`

	Component     *Component     `json:"component,omitempty" gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
	ProductionLog *ProductionLog `json:"production_log,omitempty" gorm:"foreignKey:ProductionLogID;constraint:OnDelete:CASCADE"`
}

func (ConsumptionHistory) TableName() string {
	return "consumption_history"
}
