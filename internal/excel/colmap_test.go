package excel

import (
	"testing"
)

func TestDetectColumnMapping_StandardInventorySheet(t *testing.T) {
	headers := []string{"Component Name", "Part Number", "Current Stock", "Monthly Required Quantity"}
	m := DetectColumnMapping(headers)

	if m.ComponentName != "Component Name" {
		t.Errorf("ComponentName = %q, want %q", m.ComponentName, "Component Name")
	}
	if m.PartNumber != "Part Number" {
		t.Errorf("PartNumber = %q, want %q", m.PartNumber, "Part Number")
	}
	if m.CurrentStock != "Current Stock" {
		t.Errorf("CurrentStock = %q, want %q", m.CurrentStock, "Current Stock")
	}
	if m.MonthlyRequiredQuantity != "Monthly Required Quantity" {
		t.Errorf("MonthlyRequiredQuantity = %q, want %q", m.MonthlyRequiredQuantity, "Monthly Required Quantity")
	}
}

func TestDetectColumnMapping_LastMatchWins(t *testing.T) {
	// 两个表头都命中库存类别时，取后出现的那个
	headers := []string{"Opening Stock", "Closing Stock"}
	m := DetectColumnMapping(headers)

	if m.CurrentStock != "Closing Stock" {
		t.Errorf("CurrentStock = %q, want last match %q", m.CurrentStock, "Closing Stock")
	}
}

func TestDetectColumnMapping_MonthlyExclusions(t *testing.T) {
	// "Consumption Entry" 和 "Component Consumption" 不是月需求列
	cases := []struct {
		name    string
		headers []string
		want    string
	}{
		{"entry excluded", []string{"Consumption Entry"}, ""},
		{"component excluded", []string{"Component Consumption"}, ""},
		{"plain consumption matches", []string{"Consumption"}, "Consumption"},
		{"req qty matches", []string{"Req Qty"}, "Req Qty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := DetectColumnMapping(tc.headers)
			if m.MonthlyRequiredQuantity != tc.want {
				t.Errorf("MonthlyRequiredQuantity = %q, want %q", m.MonthlyRequiredQuantity, tc.want)
			}
		})
	}
}

func TestDetectColumnMapping_QtyExactMatchOnly(t *testing.T) {
	m := DetectColumnMapping([]string{"Qty"})
	if m.CurrentStock != "Qty" {
		t.Errorf("bare Qty should map to stock, got %q", m.CurrentStock)
	}

	// "Req Qty" 包含 qty 但不是精确匹配，不应落到库存列
	m = DetectColumnMapping([]string{"Req Qty"})
	if m.CurrentStock != "" {
		t.Errorf("Req Qty should not map to stock, got %q", m.CurrentStock)
	}
}

func TestDetectColumnMapping_BOMSheet(t *testing.T) {
	headers := []string{"Component", "Usage", "PCB Name"}
	m := DetectColumnMapping(headers)

	if m.PCBName != "PCB Name" {
		t.Errorf("PCBName = %q, want %q", m.PCBName, "PCB Name")
	}
	if m.ComponentName != "Component" {
		t.Errorf("ComponentName = %q, want %q", m.ComponentName, "Component")
	}
	if m.QuantityPerPCB != "Usage" {
		t.Errorf("QuantityPerPCB = %q, want %q", m.QuantityPerPCB, "Usage")
	}
}

func TestDetectColumnMapping_QtyPerPCBAlsoHitsPCBName(t *testing.T) {
	// "Quantity Per PCB" 同时含 "pcb"，后出现时会覆盖板名列，
	// 这是既有行为，下游靠表名回退兜底
	m := DetectColumnMapping([]string{"PCB Name", "Quantity Per PCB"})
	if m.QuantityPerPCB != "Quantity Per PCB" {
		t.Errorf("QuantityPerPCB = %q", m.QuantityPerPCB)
	}
	if m.PCBName != "Quantity Per PCB" {
		t.Errorf("PCBName = %q, want %q", m.PCBName, "Quantity Per PCB")
	}
}

func TestDetectColumnMapping_PartCodeMapsToBothPCBAndPartNumber(t *testing.T) {
	// "Part Code" 同时含 part 和 code，也符合板名的历史惯用法
	m := DetectColumnMapping([]string{"Part Code"})
	if m.PartNumber != "Part Code" {
		t.Errorf("PartNumber = %q, want %q", m.PartNumber, "Part Code")
	}
	if m.PCBName != "Part Code" {
		t.Errorf("PCBName = %q, want %q", m.PCBName, "Part Code")
	}
}

func TestDetectColumnMapping_EmptyAndWhitespaceHeaders(t *testing.T) {
	m := DetectColumnMapping([]string{"", "   ", "Stock"})
	if m.CurrentStock != "Stock" {
		t.Errorf("CurrentStock = %q, want %q", m.CurrentStock, "Stock")
	}
	if m.ComponentName != "" {
		t.Errorf("ComponentName should be unset, got %q", m.ComponentName)
	}
}

func TestDetectColumnMapping_CaseInsensitive(t *testing.T) {
	m := DetectColumnMapping([]string{"CURRENT STOCK", "component name"})
	if m.CurrentStock != "CURRENT STOCK" {
		t.Errorf("CurrentStock = %q", m.CurrentStock)
	}
	if m.ComponentName != "component name" {
		t.Errorf("ComponentName = %q", m.ComponentName)
	}
}
