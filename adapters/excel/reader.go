package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonarrate/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// DataReader reads Excel workbooks and CSV files into datasets
type DataReader struct {
	config ExcelConfig
}

// NewDataReader creates a reader for both Excel and CSV files
func NewDataReader(config ExcelConfig) *DataReader {
	return &DataReader{config: config}
}

// Supports reports whether ref names a file this reader understands
func Supports(ref string) bool {
	path, _ := splitSheet(ref)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Read decodes ref ("file.csv", "book.xlsx" or "book.xlsx#Sheet2")
func (r *DataReader) Read(ctx context.Context, name, ref string) (*dataset.Dataset, error) {
	path, sheet := splitSheet(ref)
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	log.Printf("[DataReader] Starting to read %s file: %s", fileType, path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s file not found: %s: %w", strings.ToUpper(fileType), path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows [][]string
	var err error
	switch fileType {
	case "csv":
		rows, err = r.readCSVRows(path)
	case "xlsx":
		rows, err = r.readExcelRows(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}
	data := rows[1:]
	if r.config.MaxRows > 0 && len(data) > r.config.MaxRows {
		return nil, fmt.Errorf("%s has %d rows, limit is %d", path, len(data), r.config.MaxRows)
	}

	ds, err := dataset.FromStringRows(name, ref, headers, data)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(fileType), len(headers), ds.RowCount())
	return ds, nil
}

// readExcelRows reads the configured sheet, defaulting to the first one
func (r *DataReader) readExcelRows(path, sheet string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = r.config.Sheet
	}
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readCSVRows reads CSV rows, tolerating ragged records
func (r *DataReader) readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if r.config.Comma != 0 {
		reader.Comma = r.config.Comma
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func splitSheet(ref string) (string, string) {
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}
