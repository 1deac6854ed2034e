// Package exporter renders attempt statistics as xlsx workbooks.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/m-ce-m1/html-bot/models"
)

const sheetName = "Statistics"

var headers = []string{"Student", "Topic", "Score", "Max score", "Attempt", "Date"}

// Exporter writes workbooks into a local directory. Every export gets a
// fresh file name, old exports are kept for audit.
type Exporter struct {
	dir string
}

func New(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create exports dir: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// WriteStats saves the rows as an xlsx workbook and returns its path.
func (e *Exporter) WriteStats(rows []models.StatRow) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", err
	}
	if err := f.SetColWidth(sheetName, "A", "B", 30); err != nil {
		return "", err
	}
	for c, h := range headers {
		if err := f.SetCellValue(sheetName, cell(c, 1), h); err != nil {
			return "", err
		}
	}
	for r, row := range rows {
		values := []interface{}{
			row.FullName,
			row.TopicTitle,
			row.Score,
			row.MaxScore,
			row.AttemptNumber,
			row.Timestamp.Format("2006-01-02 15:04"),
		}
		for c, v := range values {
			if err := f.SetCellValue(sheetName, cell(c, r+2), v); err != nil {
				return "", err
			}
		}
	}

	name := fmt.Sprintf("stats_%s_%s.xlsx", time.Now().Format("20060102"), uuid.NewString()[:8])
	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// cell names the spreadsheet cell for a 0-based column and 1-based row.
// Six columns fit in A..F.
func cell(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}
