package excel

import (
	"strings"
)

// ColumnMapping 表头到语义字段的映射结果。
// 字段保存命中的原始表头文本，空串表示未识别；
// 未识别的字段由下游降级处理（默认值/回退列）。
type ColumnMapping struct {
	ComponentName           string `json:"component_name"`
	PartNumber              string `json:"part_number"`
	CurrentStock            string `json:"current_stock"`
	MonthlyRequiredQuantity string `json:"monthly_required_quantity"`
	PCBName                 string `json:"pcb_name"`
	QuantityPerPCB          string `json:"quantity_per_pcb"`
}

// DetectColumnMapping 按顺序扫描全部表头做模糊匹配。
// 同一类别后命中的表头覆盖先命中的（last-match-wins），
// 这是既有导入行为的一部分，不要改成首次命中。
func DetectColumnMapping(headers []string) ColumnMapping {
	var m ColumnMapping

	for _, original := range headers {
		h := strings.ToLower(strings.TrimSpace(original))
		if h == "" {
			continue
		}

		// 元器件名称
		if strings.Contains(h, "component") ||
			strings.Contains(h, "description") ||
			strings.Contains(h, "item") ||
			strings.Contains(h, "material") ||
			strings.Contains(h, "change") { // "Component Change" 之类的变更列
			m.ComponentName = original
		}

		// 料号
		if strings.Contains(h, "part") ||
			strings.Contains(h, "code") ||
			strings.Contains(h, "sku") ||
			strings.Contains(h, "material code") ||
			strings.Contains(h, "item code") {
			m.PartNumber = original
		}

		// 当前库存
		if strings.Contains(h, "stock") ||
			strings.Contains(h, "inventory") ||
			strings.Contains(h, "available") ||
			strings.Contains(h, "balance") ||
			strings.Contains(h, "bal qty") ||
			h == "qty" {
			m.CurrentStock = original
		}

		// 月需求量：排除 "Consumption Entry" / "Component Consumption"
		if (strings.Contains(h, "monthly") ||
			strings.Contains(h, "required") ||
			strings.Contains(h, "requirement") ||
			strings.Contains(h, "consumption") ||
			strings.Contains(h, "req qty")) &&
			!strings.Contains(h, "entry") &&
			!strings.Contains(h, "component") {
			m.MonthlyRequiredQuantity = original
		}

		// PCB名称："Part Code" 在这批表格里通常指板型号
		if strings.Contains(h, "pcb") ||
			strings.Contains(h, "board") ||
			strings.Contains(h, "assembly") ||
			strings.Contains(h, "part code") {
			m.PCBName = original
		}

		// 单板用量
		if strings.Contains(h, "per pcb") ||
			strings.Contains(h, "usage") ||
			strings.Contains(h, "qty/pcb") ||
			strings.Contains(h, "quantity per pcb") {
			m.QuantityPerPCB = original
		}
	}

	return m
}
