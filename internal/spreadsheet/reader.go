// Package spreadsheet reads uploaded .xlsx workbooks into file workspaces.
package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Column layout of every worksheet; the first row is a header
const (
	categoryColumn = 0
	textColumn     = 1
	headerRows     = 1
)

// ExcelReader implements domain.FileReader for .xlsx workbooks.
// Each worksheet is one workspace named after the trimmed sheet title; sheets with a
// blank title are skipped.
type ExcelReader struct{}

var _ domain.FileReader = (*ExcelReader)(nil)

// NewExcelReader creates a new ExcelReader
func NewExcelReader() *ExcelReader {
	return &ExcelReader{}
}

// Read parses data. Rows with a blank category or text are skipped, and rows sharing a
// category are grouped in first-seen order.
func (r *ExcelReader) Read(data []byte) ([]domain.FileWorkspace, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSpreadsheet, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no worksheets", domain.ErrInvalidSpreadsheet)
	}

	workspaces := make([]domain.FileWorkspace, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", domain.ErrInvalidSpreadsheet, sheet, err)
		}
		name := strings.TrimSpace(sheet)
		if name == "" {
			continue
		}
		workspaces = append(workspaces, domain.FileWorkspace{
			Name:       name,
			Categories: groupRows(rows),
		})
	}

	return domain.MergeFileWorkspaces(workspaces), nil
}

func groupRows(rows [][]string) []domain.FileCategory {
	if len(rows) <= headerRows {
		return []domain.FileCategory{}
	}

	categories := make([]domain.FileCategory, 0)
	for _, row := range rows[headerRows:] {
		category := cell(row, categoryColumn)
		text := cell(row, textColumn)
		if category == "" || text == "" {
			continue
		}
		categories = append(categories, domain.FileCategory{
			Name:      category,
			Documents: []domain.FileDocument{{Text: text}},
		})
	}
	return domain.MergeFileCategories(categories)
}

func cell(row []string, column int) string {
	if column >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[column])
}
