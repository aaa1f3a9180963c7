package spreadsheet

import (
	"fmt"
	"testing"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes each sheet's rows (header included) into an in-memory workbook
func buildWorkbook(t *testing.T, sheets map[string][][]string, order ...string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for _, name := range order {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range sheets[name] {
			for j, value := range row {
				cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cellName, value))
			}
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExcelReader_Read(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Alpha": {
			{"category", "text"},
			{"Greetings", "hi"},
			{"Farewell", "bye"},
			{"Greetings", "yo"},
			{"Greetings", "hi"},
		},
		"Beta": {
			{"category", "text"},
			{"Other", "something"},
		},
	}, "Alpha", "Beta")

	workspaces, err := NewExcelReader().Read(data)
	require.NoError(t, err)
	require.Len(t, workspaces, 2)

	alpha := workspaces[0]
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, []domain.FileCategory{
		{Name: "Greetings", Documents: []domain.FileDocument{{Text: "hi"}, {Text: "yo"}}},
		{Name: "Farewell", Documents: []domain.FileDocument{{Text: "bye"}}},
	}, alpha.Categories)

	beta := workspaces[1]
	assert.Equal(t, "Beta", beta.Name)
	assert.Equal(t, []domain.FileCategory{
		{Name: "Other", Documents: []domain.FileDocument{{Text: "something"}}},
	}, beta.Categories)
}

func TestExcelReader_SkipsBlankCells(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Alpha": {
			{"category", "text"},
			{"Greetings", ""},
			{"", "orphan"},
			{"  Greetings ", " hi "},
		},
	}, "Alpha")

	workspaces, err := NewExcelReader().Read(data)
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, []domain.FileCategory{
		{Name: "Greetings", Documents: []domain.FileDocument{{Text: "hi"}}},
	}, workspaces[0].Categories)
}

func TestExcelReader_TrimsSheetTitles(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		" Alpha ": {
			{"category", "text"},
			{"Greetings", "hi"},
		},
		"Alpha": {
			{"category", "text"},
			{"Greetings", "yo"},
		},
	}, " Alpha ", "Alpha")

	workspaces, err := NewExcelReader().Read(data)
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, "Alpha", workspaces[0].Name)
	assert.Equal(t, []domain.FileCategory{
		{Name: "Greetings", Documents: []domain.FileDocument{{Text: "hi"}, {Text: "yo"}}},
	}, workspaces[0].Categories)
}

func TestExcelReader_HeaderOnly(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Empty": {{"category", "text"}},
	}, "Empty")

	workspaces, err := NewExcelReader().Read(data)
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, "Empty", workspaces[0].Name)
	assert.Empty(t, workspaces[0].Categories)
}

func TestExcelReader_NumericCells(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Alpha": {
			{"category", "text"},
			{"Codes", "42"},
		},
	}, "Alpha")

	workspaces, err := NewExcelReader().Read(data)
	require.NoError(t, err)
	assert.Equal(t, "42", workspaces[0].Categories[0].Documents[0].Text)
}

func TestExcelReader_InvalidBytes(t *testing.T) {
	inputs := [][]byte{nil, []byte("not a workbook"), []byte(fmt.Sprintf("%x", 12345))}

	for i, input := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := NewExcelReader().Read(input)
			assert.ErrorIs(t, err, domain.ErrInvalidSpreadsheet)
		})
	}
}
