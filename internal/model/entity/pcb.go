package entity

import (
	"time"
)

// PCB 电路板型号
type PCB struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PCBName     string    `json:"pcb_name" gorm:"size:256;not null;uniqueIndex"`
	Revision    string    `json:"revision" gorm:"size:32"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Components []PCBComponent `json:"components,omitempty" gorm:"foreignKey:PCBID"`
}

func (PCB) TableName() string {
	return "pcbs"
}

// PCBComponent BOM行：某PCB每块板消耗的元器件数量
type PCBComponent struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PCBID          string    `json:"pcb_id" gorm:"type:uuid;not null;uniqueIndex:uniq_pcb_component;index"`
	ComponentID    string    `json:"component_id" gorm:"type:uuid;not null;uniqueIndex:uniq_pcb_component"`
	QuantityPerPCB int       `json:"quantity_per_pcb" gorm:"not null;default:1"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	PCB       *PCB       `json:"pcb,omitempty" gorm:"foreignKey:PCBID;constraint:OnDelete:CASCADE"`
	Component *Component `json:"component,omitempty" gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
}

func (PCBComponent) TableName() string {
	return "pcb_components"
}
