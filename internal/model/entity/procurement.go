package entity

import (
	"time"
)

// TriggerStatus 采购触发器状态
const (
	TriggerStatusOpen     = "open"
	TriggerStatusResolved = "resolved"
)

// ProcurementTrigger 采购触发器：库存跌破阈值时由生产事务创建。
// 不变量：任一元器件同时最多一条 open 状态的触发器。
type ProcurementTrigger struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ComponentID string    `json:"component_id" gorm:"type:uuid;not null;index"`
	TriggerDate time.Time `json:"trigger_date" gorm:"autoCreateTime"`
	Status      string    `json:"status" gorm:"size:16;not null;default:open;index"`

	Component *Component `json:"component,omitempty" gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
}

func (ProcurementTrigger) TableName() string {
	return "procurement_triggers"
}
