package render

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docforge/internal/model"
)

func writeStyledFixture(t *testing.T) (path string, styleFont *excelize.Font) {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "{{name}}"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "{{date}}"))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "Hello {{name}}!"))
	require.NoError(t, f.SetCellValue("Sheet1", "D1", "{{missing}}"))
	require.NoError(t, f.SetCellValue("Sheet1", "E1", "{{num}}"))

	styleFont = &excelize.Font{Bold: true, Size: 14, Color: "C00000"}
	styleID, err := f.NewStyle(&excelize.Style{Font: styleFont})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A1", "A1", styleID))
	require.NoError(t, f.SetColWidth("Sheet1", "A", "A", 42))
	require.NoError(t, f.SetRowHeight("Sheet1", 1, 33))

	path = filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path, styleFont
}

func TestRenderSpreadsheet(t *testing.T) {
	tmplPath, styleFont := writeStyledFixture(t)
	destPath := filepath.Join(t.TempDir(), "out.xlsx")

	data := model.FormData{
		"name": "Acme",
		"date": "2024-01-01",
		"num":  "42.5",
	}
	require.NoError(t, RenderSpreadsheet(tmplPath, destPath, data))

	out, err := excelize.OpenFile(destPath)
	require.NoError(t, err)
	defer out.Close()

	t.Run("single-token cell gets the string value", func(t *testing.T) {
		v, err := out.GetCellValue("Sheet1", "A1")
		assert.NoError(t, err)
		assert.Equal(t, "Acme", v)
	})

	t.Run("ISO date value is stored as a date", func(t *testing.T) {
		raw, err := out.GetCellValue("Sheet1", "B1", excelize.Options{RawCellValue: true})
		assert.NoError(t, err)
		serial, err := strconv.ParseFloat(raw, 64)
		require.NoError(t, err)
		d, err := excelize.ExcelDateToTime(serial, false)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", d.Format("2006-01-02"))
	})

	t.Run("embedded token substitutes inline", func(t *testing.T) {
		v, err := out.GetCellValue("Sheet1", "C1")
		assert.NoError(t, err)
		assert.Equal(t, "Hello Acme!", v)
	})

	t.Run("absent placeholder keeps its literal token", func(t *testing.T) {
		v, err := out.GetCellValue("Sheet1", "D1")
		assert.NoError(t, err)
		assert.Equal(t, "{{missing}}", v)
	})

	t.Run("numeric string is stored as a number", func(t *testing.T) {
		raw, err := out.GetCellValue("Sheet1", "E1", excelize.Options{RawCellValue: true})
		assert.NoError(t, err)
		assert.Equal(t, "42.5", raw)
	})

	t.Run("substituted cell keeps a deep copy of the template style", func(t *testing.T) {
		id, err := out.GetCellStyle("Sheet1", "A1")
		require.NoError(t, err)
		style, err := out.GetStyle(id)
		require.NoError(t, err)
		require.NotNil(t, style.Font)
		assert.Equal(t, styleFont.Bold, style.Font.Bold)
		assert.Equal(t, styleFont.Size, style.Font.Size)
		assert.Equal(t, styleFont.Color, style.Font.Color)
	})

	t.Run("column width and row height survive rendering", func(t *testing.T) {
		w, err := out.GetColWidth("Sheet1", "A")
		assert.NoError(t, err)
		assert.InDelta(t, 42, w, 0.01)
		h, err := out.GetRowHeight("Sheet1", 1)
		assert.NoError(t, err)
		assert.InDelta(t, 33, h, 0.01)
	})
}

func TestRenderSpreadsheet_Idempotent(t *testing.T) {
	tmplPath, _ := writeStyledFixture(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.xlsx")
	second := filepath.Join(dir, "second.xlsx")

	data := model.FormData{"name": "Acme", "date": "2024-01-01", "num": "1"}
	require.NoError(t, RenderSpreadsheet(tmplPath, first, data))
	// A filled document contains no further tokens; re-rendering changes nothing.
	require.NoError(t, RenderSpreadsheet(first, second, data))

	a, err := excelize.OpenFile(first)
	require.NoError(t, err)
	defer a.Close()
	b, err := excelize.OpenFile(second)
	require.NoError(t, err)
	defer b.Close()

	for _, cell := range []string{"A1", "B1", "C1", "D1", "E1"} {
		va, err := a.GetCellValue("Sheet1", cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		vb, err := b.GetCellValue("Sheet1", cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		assert.Equal(t, va, vb, "cell %s", cell)
	}
}

func TestRenderSpreadsheet_UnparsableTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(tmplPath, []byte("not a spreadsheet"), 0o644))

	err := RenderSpreadsheet(tmplPath, filepath.Join(dir, "out.xlsx"), model.FormData{})

	var styleErr *StyleCopyError
	assert.ErrorAs(t, err, &styleErr)
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "x", "x"},
		{"float", float64(12.5), "12.5"},
		{"integral float stays plain", float64(3), "3"},
		{"bool", true, "true"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceString(tt.in))
		})
	}
}
