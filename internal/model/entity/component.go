package entity

import (
	"time"
)

// Component 电子元器件（单一库存数量，不分仓）
type Component struct {
	ID                      string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name                    string    `json:"name" gorm:"size:256;not null"`
	PartNumber              string    `json:"part_number" gorm:"size:128;not null;uniqueIndex"`
	CurrentStock            float64   `json:"current_stock" gorm:"type:decimal(12,4);not null;default:0"`
	MonthlyRequiredQuantity float64   `json:"monthly_required_quantity" gorm:"type:decimal(12,4);not null;default:0"` // 0=未跟踪月需求
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (Component) TableName() string {
	return "components"
}
