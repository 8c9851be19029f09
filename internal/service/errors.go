package service

import (
	"errors"
	"fmt"
)

var (
	// ErrPCBNotFound 指定的PCB不存在
	ErrPCBNotFound = errors.New("pcb not found")
	// ErrComponentNotFound 指定的元器件不存在
	ErrComponentNotFound = errors.New("component not found")
	// ErrEmptyBOM PCB没有任何BOM行，无法生产
	ErrEmptyBOM = errors.New("pcb has no bom entries")
	// ErrBOMLineNotFound PCB的BOM里没有该元器件
	ErrBOMLineNotFound = errors.New("component not found in bom")
	// ErrTriggerNotFound 采购触发器不存在
	ErrTriggerNotFound = errors.New("procurement trigger not found")
	// ErrProductionLogNotFound 生产记录不存在
	ErrProductionLogNotFound = errors.New("production log not found")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken refresh token无效或已撤销
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUsernameTaken 用户名已被占用
	ErrUsernameTaken = errors.New("username already taken")
	// ErrPartNumberTaken 料号已存在
	ErrPartNumberTaken = errors.New("part number already exists")
)

// Shortage 一条缺料明细
type Shortage struct {
	ComponentID string  `json:"component_id"`
	Component   string  `json:"component"`
	PartNumber  string  `json:"part_number"`
	Required    float64 `json:"required"`
	Available   float64 `json:"available"`
	Shortage    float64 `json:"shortage"`
}

// InsufficientStockError 任一元器件缺料时生产整单失败，携带全部缺料明细
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d component(s)", len(e.Shortages))
}
