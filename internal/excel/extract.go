package excel

import (
	"strconv"
	"strings"
)

// ComponentRow 从表格提取出的一条元器件数据。
// SourceRow 是表格里的行号（表头为第1行），跳过的行不占号。
type ComponentRow struct {
	Name                    string  `json:"name"`
	PartNumber              string  `json:"part_number"`
	CurrentStock            float64 `json:"current_stock"`
	MonthlyRequiredQuantity float64 `json:"monthly_required_quantity"`
	SourceRow               int     `json:"-"`
}

// BOMRow 从表格提取出的一条BOM映射。斜杠拆分出的子件共享同一 SourceRow。
type BOMRow struct {
	PCBName             string `json:"pcb_name"`
	ComponentIdentifier string `json:"component_identifier"`
	QuantityPerPCB      int    `json:"quantity_per_pcb"`
	SourceRow           int    `json:"-"`
}

// ExtractComponents 按推断出的列映射提取元器件行。
// 名称缺失时回退到料号；料号缺失时由名称合成 AUTO- 料号；
// 两者都缺的行丢弃。数值列解析失败按 0 处理。
func ExtractComponents(headers []string, rows []Row) []ComponentRow {
	mapping := DetectColumnMapping(headers)

	var components []ComponentRow
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}

		comp := ComponentRow{
			Name:       cell(row, mapping.ComponentName),
			PartNumber: cell(row, mapping.PartNumber),
			SourceRow:  i + 2,
		}
		if mapping.CurrentStock != "" {
			comp.CurrentStock = parseFloatOr(row[mapping.CurrentStock], 0)
		}
		if mapping.MonthlyRequiredQuantity != "" {
			comp.MonthlyRequiredQuantity = parseFloatOr(row[mapping.MonthlyRequiredQuantity], 0)
		}

		if comp.Name == "" && comp.PartNumber != "" {
			comp.Name = comp.PartNumber
		}
		if comp.Name == "" && comp.PartNumber == "" {
			continue
		}
		if comp.PartNumber == "" {
			comp.PartNumber = SynthesizePartNumber(comp.Name)
		}

		components = append(components, comp)
	}
	return components
}

// ExtractBOM 提取 (pcb_name, component_identifier, quantity_per_pcb) 元组。
// pcb_name 未映射时回退到工作表名；标识含 "/" 时按子件拆分，
// 每个子件数量固定为 1（表示各取一个，不是按总量平摊）。
func ExtractBOM(headers []string, rows []Row, sheetName string) []BOMRow {
	mapping := DetectColumnMapping(headers)

	var bom []BOMRow
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		sourceRow := i + 2

		// 回退只看列有没有映射上，映射上了但单元格为空的行照常跳过
		pcbName := sheetName
		if mapping.PCBName != "" {
			pcbName = cell(row, mapping.PCBName)
		}

		identifier := cell(row, mapping.ComponentName)
		if mapping.ComponentName == "" {
			identifier = cell(row, mapping.PartNumber)
		}

		quantity := 1
		if mapping.QuantityPerPCB != "" {
			quantity = parseIntOr(row[mapping.QuantityPerPCB], 1)
		}

		if pcbName == "" || identifier == "" {
			continue
		}

		if strings.Contains(identifier, "/") {
			for _, sub := range strings.Split(identifier, "/") {
				sub = strings.TrimSpace(sub)
				if sub == "" {
					continue
				}
				bom = append(bom, BOMRow{PCBName: pcbName, ComponentIdentifier: sub, QuantityPerPCB: 1, SourceRow: sourceRow})
			}
			continue
		}

		bom = append(bom, BOMRow{PCBName: pcbName, ComponentIdentifier: identifier, QuantityPerPCB: quantity, SourceRow: sourceRow})
	}
	return bom
}

// SynthesizePartNumber 由名称合成料号：取前20个字符（按字符数，
// 不能在多字节字符中间截断），大写化并把非字母数字替换为连字符，
// 前缀 AUTO-。
func SynthesizePartNumber(name string) string {
	runes := []rune(name)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	prefix := strings.ToUpper(string(runes))

	var b strings.Builder
	for _, r := range prefix {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return "AUTO-" + b.String()
}

func cell(row Row, column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(row[column])
}

func parseFloatOr(s string, fallback float64) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseIntOr(s string, fallback int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	// 表格里数量列常以 "2.0" 形式出现
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return fallback
}
