package excel

import (
	"strings"
	"testing"
)

func TestExtractComponents_BasicRows(t *testing.T) {
	headers := []string{"Component Name", "Part Number", "Current Stock", "Monthly Required Quantity"}
	rows := []Row{
		{"Component Name": "Resistor 10K", "Part Number": "R-10K", "Current Stock": "1,500", "Monthly Required Quantity": "300"},
		{"Component Name": "Capacitor 100nF", "Part Number": "C-100N", "Current Stock": "80.5", "Monthly Required Quantity": "0"},
	}

	comps := ExtractComponents(headers, rows)
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}

	if comps[0].Name != "Resistor 10K" || comps[0].PartNumber != "R-10K" {
		t.Errorf("unexpected first component: %+v", comps[0])
	}
	if comps[0].CurrentStock != 1500 {
		t.Errorf("CurrentStock = %v, want 1500 (comma stripped)", comps[0].CurrentStock)
	}
	if comps[1].CurrentStock != 80.5 {
		t.Errorf("CurrentStock = %v, want 80.5", comps[1].CurrentStock)
	}
}

func TestExtractComponents_NameFallsBackToPartNumber(t *testing.T) {
	headers := []string{"Component Name", "Part Number"}
	rows := []Row{{"Component Name": "", "Part Number": "X-42"}}

	comps := ExtractComponents(headers, rows)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if comps[0].Name != "X-42" {
		t.Errorf("Name = %q, want fallback to part number", comps[0].Name)
	}
}

func TestExtractComponents_SynthesizesPartNumber(t *testing.T) {
	headers := []string{"Component Name"}
	rows := []Row{{"Component Name": "LED red 5mm"}}

	comps := ExtractComponents(headers, rows)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if comps[0].PartNumber != "AUTO-LED-RED-5MM" {
		t.Errorf("PartNumber = %q, want %q", comps[0].PartNumber, "AUTO-LED-RED-5MM")
	}
}

func TestExtractComponents_DropsRowsWithoutIdentity(t *testing.T) {
	headers := []string{"Component Name", "Part Number", "Current Stock"}
	rows := []Row{{"Component Name": "", "Part Number": "", "Current Stock": "50"}}

	if comps := ExtractComponents(headers, rows); len(comps) != 0 {
		t.Errorf("row without name and part number should be dropped, got %+v", comps)
	}
}

func TestExtractComponents_BadNumbersDefaultToZero(t *testing.T) {
	headers := []string{"Component Name", "Current Stock", "Monthly Required Quantity"}
	rows := []Row{{"Component Name": "Fuse", "Current Stock": "n/a", "Monthly Required Quantity": "-"}}

	comps := ExtractComponents(headers, rows)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if comps[0].CurrentStock != 0 || comps[0].MonthlyRequiredQuantity != 0 {
		t.Errorf("unparseable numbers should be 0, got %+v", comps[0])
	}
}

func TestExtractBOM_SlashSplit(t *testing.T) {
	headers := []string{"PCB Name", "Component", "Usage"}
	rows := []Row{
		{"PCB Name": "MainBoard", "Component": "C1/C2/R1", "Usage": "5"},
	}

	bom := ExtractBOM(headers, rows, "Sheet1")
	if len(bom) != 3 {
		t.Fatalf("got %d bom rows, want 3 after slash split", len(bom))
	}
	for i, want := range []string{"C1", "C2", "R1"} {
		if bom[i].ComponentIdentifier != want {
			t.Errorf("bom[%d].ComponentIdentifier = %q, want %q", i, bom[i].ComponentIdentifier, want)
		}
		// 拆分后的子件数量固定为1，不继承原行数量
		if bom[i].QuantityPerPCB != 1 {
			t.Errorf("bom[%d].QuantityPerPCB = %d, want 1", i, bom[i].QuantityPerPCB)
		}
	}
}

func TestExtractBOM_PCBNameFallsBackToSheetName(t *testing.T) {
	headers := []string{"Component", "Usage"}
	rows := []Row{{"Component": "R5", "Usage": "2"}}

	bom := ExtractBOM(headers, rows, "PowerBoard")
	if len(bom) != 1 {
		t.Fatalf("got %d bom rows, want 1", len(bom))
	}
	if bom[0].PCBName != "PowerBoard" {
		t.Errorf("PCBName = %q, want sheet name fallback", bom[0].PCBName)
	}
	if bom[0].QuantityPerPCB != 2 {
		t.Errorf("QuantityPerPCB = %d, want 2", bom[0].QuantityPerPCB)
	}
}

func TestExtractComponents_SourceRowSurvivesSkippedRows(t *testing.T) {
	// 行号按表格行计（表头为第1行），丢弃的行不挤占后续行的号
	headers := []string{"Component Name", "Part Number"}
	rows := []Row{
		{"Component Name": "", "Part Number": ""},
		{"Component Name": "Resistor", "Part Number": "R-1"},
	}

	comps := ExtractComponents(headers, rows)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if comps[0].SourceRow != 3 {
		t.Errorf("SourceRow = %d, want 3", comps[0].SourceRow)
	}
}

func TestExtractBOM_MappedButEmptyPCBCellSkipsRow(t *testing.T) {
	// PCB列映射上了就不再回退到表名，空单元格的行跳过
	headers := []string{"PCB Name", "Component", "Usage"}
	rows := []Row{
		{"PCB Name": "", "Component": "R5", "Usage": "2"},
		{"PCB Name": "MainBoard", "Component": "R6", "Usage": "1"},
	}

	bom := ExtractBOM(headers, rows, "PowerBoard")
	if len(bom) != 1 {
		t.Fatalf("got %d bom rows, want 1", len(bom))
	}
	if bom[0].ComponentIdentifier != "R6" {
		t.Errorf("ComponentIdentifier = %q, want %q", bom[0].ComponentIdentifier, "R6")
	}
}

func TestExtractBOM_QuantityDefaultsToOne(t *testing.T) {
	headers := []string{"Component", "Usage"}
	rows := []Row{
		{"Component": "R5", "Usage": ""},
		{"Component": "R6", "Usage": "abc"},
		{"Component": "R7", "Usage": "3.0"},
	}

	bom := ExtractBOM(headers, rows, "Board")
	if len(bom) != 3 {
		t.Fatalf("got %d bom rows, want 3", len(bom))
	}
	if bom[0].QuantityPerPCB != 1 || bom[1].QuantityPerPCB != 1 {
		t.Errorf("missing/bad quantity should default to 1: %+v", bom[:2])
	}
	if bom[2].QuantityPerPCB != 3 {
		t.Errorf("decimal quantity should truncate to 3, got %d", bom[2].QuantityPerPCB)
	}
}

func TestExtractBOM_IdentifierFallsBackToPartNumberColumn(t *testing.T) {
	// 没有元器件名称列时用料号列做标识
	headers := []string{"Part Number", "Usage"}
	rows := []Row{{"Part Number": "R-10K", "Usage": "4"}}

	bom := ExtractBOM(headers, rows, "Board")
	if len(bom) != 1 {
		t.Fatalf("got %d bom rows, want 1", len(bom))
	}
	if bom[0].ComponentIdentifier != "R-10K" {
		t.Errorf("ComponentIdentifier = %q, want %q", bom[0].ComponentIdentifier, "R-10K")
	}
}

func TestSynthesizePartNumber(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Resistor 10K", "AUTO-RESISTOR-10K"},
		{"a very long component name here", "AUTO-A-VERY-LONG-COMPONEN"},
		{"100nF/50V", "AUTO-100NF-50V"},
	}
	for _, tc := range cases {
		got := SynthesizePartNumber(tc.name)
		if got != tc.want {
			t.Errorf("SynthesizePartNumber(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSynthesizePartNumber_TruncatesAtTwentyChars(t *testing.T) {
	got := SynthesizePartNumber(strings.Repeat("x", 40))
	if len(got) != len("AUTO-")+20 {
		t.Errorf("synthesized part number length = %d, want %d", len(got), len("AUTO-")+20)
	}
}

func TestSynthesizePartNumber_TruncatesMultibyteOnRuneBoundary(t *testing.T) {
	// 截断按字符数，多字节名称不能切在字符中间留下残余字节
	got := SynthesizePartNumber(strings.Repeat("电", 19) + "R5")
	want := "AUTO-" + strings.Repeat("-", 19) + "R"
	if got != want {
		t.Errorf("SynthesizePartNumber = %q, want %q", got, want)
	}
}
