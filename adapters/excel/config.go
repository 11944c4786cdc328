package excel

// ExcelConfig holds configuration for spreadsheet data sources
type ExcelConfig struct {
	Sheet   string `json:"sheet"`
	Comma   rune   `json:"comma"`
	MaxRows int    `json:"max_rows"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Comma:   ',',
		MaxRows: 5_000_000,
	}
}
