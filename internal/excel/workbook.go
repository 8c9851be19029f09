package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound 引用了不存在的工作表。导入方应跳过该表继续处理其它表。
var ErrSheetNotFound = errors.New("sheet not found")

// Row 一行数据：列名 -> 单元格文本，缺失的单元格为空串
type Row map[string]string

// Workbook 统一的工作簿读取接口，xlsx/xlsm 和多Tab CSV 各有一个实现
type Workbook interface {
	SheetNames() []string
	Sheet(name string) (headers []string, rows []Row, err error)
}

// ExcelWorkbook excelize 实现
type ExcelWorkbook struct {
	f *excelize.File
}

// OpenExcel 从数据流打开 xlsx/xlsm 工作簿
func OpenExcel(r io.Reader) (*ExcelWorkbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	return &ExcelWorkbook{f: f}, nil
}

// OpenExcelFile 从文件路径打开 xlsx/xlsm 工作簿
func OpenExcelFile(path string) (*ExcelWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	return &ExcelWorkbook{f: f}, nil
}

func (w *ExcelWorkbook) SheetNames() []string {
	return w.f.GetSheetList()
}

func (w *ExcelWorkbook) Sheet(name string) ([]string, []Row, error) {
	if idx, err := w.f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	raw, err := w.f.GetRows(name)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return tableFromCells(raw), rowsFromCells(raw), nil
}

func (w *ExcelWorkbook) Close() error {
	return w.f.Close()
}

// Open 按文件名后缀选择实现：.csv 走多Tab CSV 容器，其余按 xlsx 处理
func Open(filename string, r io.Reader) (Workbook, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return OpenCSV(r)
	}
	return OpenExcel(r)
}

// tabMarker 多Tab CSV 的分隔行：=== TAB: SheetName ===
var tabMarker = regexp.MustCompile(`(?m)^=== TAB: (.*?) ===\r?$`)

// CSVWorkbook 多Tab CSV 容器实现。文件内不含分隔行时整体视为单表 "Sheet1"。
type CSVWorkbook struct {
	names  []string
	sheets map[string][][]string
}

// OpenCSV 解析多Tab CSV 容器
func OpenCSV(r io.Reader) (*CSVWorkbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	content := string(data)

	wb := &CSVWorkbook{sheets: make(map[string][][]string)}

	markers := tabMarker.FindAllStringSubmatchIndex(content, -1)
	if len(markers) == 0 {
		cells, err := parseCSVChunk(content)
		if err != nil {
			return nil, err
		}
		wb.names = []string{"Sheet1"}
		wb.sheets["Sheet1"] = cells
		return wb, nil
	}

	for i, mk := range markers {
		name := strings.TrimSpace(content[mk[2]:mk[3]])
		if name == "" {
			continue
		}
		start := mk[1]
		end := len(content)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		cells, err := parseCSVChunk(content[start:end])
		if err != nil {
			return nil, fmt.Errorf("parse tab %q: %w", name, err)
		}
		wb.names = append(wb.names, name)
		wb.sheets[name] = cells
	}
	return wb, nil
}

func parseCSVChunk(chunk string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(chunk)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func (w *CSVWorkbook) SheetNames() []string {
	return w.names
}

func (w *CSVWorkbook) Sheet(name string) ([]string, []Row, error) {
	cells, ok := w.sheets[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return tableFromCells(cells), rowsFromCells(cells), nil
}

// tableFromCells 首行作为表头
func tableFromCells(cells [][]string) []string {
	if len(cells) == 0 {
		return nil
	}
	headers := make([]string, len(cells[0]))
	copy(headers, cells[0])
	return headers
}

// rowsFromCells 将数据行按表头转成 Row，全空行丢弃
func rowsFromCells(cells [][]string) []Row {
	if len(cells) < 2 {
		return nil
	}
	headers := cells[0]
	var rows []Row
	for _, line := range cells[1:] {
		row := make(Row, len(headers))
		empty := true
		for i, h := range headers {
			// key 用原始表头文本，和 ColumnMapping 保存的一致
			if strings.TrimSpace(h) == "" {
				continue
			}
			var v string
			if i < len(line) {
				v = strings.TrimSpace(line[i])
			}
			row[h] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
