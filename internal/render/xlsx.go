// Package render fills templates with caller-supplied form data. The
// spreadsheet path is implemented here; the word-processing path delegates
// substitution to the go-stencil engine.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tiendc/go-deepcopy"
	"github.com/xuri/excelize/v2"

	"docforge/internal/model"
	"docforge/internal/template"
)

// StyleCopyError reports that a template's internal structure could not be
// parsed or restored during style-preserving substitution.
type StyleCopyError struct {
	Path string
	Err  error
}

func (e *StyleCopyError) Error() string {
	return fmt.Sprintf("style copy failed for %q: %v", e.Path, e.Err)
}

func (e *StyleCopyError) Unwrap() error {
	return e.Err
}

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// RenderSpreadsheet fills the spreadsheet template at templatePath with data
// and writes the result to destPath.
//
// The template is loaded twice: a pristine reference copy that is never
// mutated and a working copy that receives edits. Every structural property
// (cell styles, column widths, row heights and outline state, sheet
// properties, page setup, workbook properties and view state) is restored
// from the reference after editing, so the output's visual formatting never
// depends on side effects of value assignment in the working copy.
func RenderSpreadsheet(templatePath, destPath string, data model.FormData) error {
	ref, err := excelize.OpenFile(templatePath)
	if err != nil {
		return &StyleCopyError{Path: templatePath, Err: err}
	}
	defer ref.Close()

	work, err := excelize.OpenFile(templatePath)
	if err != nil {
		return &StyleCopyError{Path: templatePath, Err: err}
	}
	defer work.Close()

	for _, sheet := range work.GetSheetList() {
		rows, err := work.GetRows(sheet)
		if err != nil {
			return &StyleCopyError{Path: templatePath, Err: err}
		}

		maxCols := 0
		for rowIdx, row := range rows {
			if len(row) > maxCols {
				maxCols = len(row)
			}
			for colIdx, text := range row {
				if text == "" || !template.TokenPattern.MatchString(text) {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return err
				}
				changed, err := substituteCell(work, sheet, cell, text, data)
				if err != nil {
					return err
				}
				if !changed {
					continue
				}
				if err := copyCellStyle(ref, work, sheet, cell); err != nil {
					return &StyleCopyError{Path: templatePath, Err: err}
				}
			}
		}

		if err := restoreSheet(ref, work, sheet, len(rows), maxCols); err != nil {
			return &StyleCopyError{Path: templatePath, Err: err}
		}
	}

	if err := restoreWorkbook(ref, work); err != nil {
		return &StyleCopyError{Path: templatePath, Err: err}
	}

	return work.SaveAs(destPath)
}

// substituteCell replaces the placeholder tokens of one cell. A cell that is
// exactly one token receives a typed value; tokens embedded in surrounding
// text substitute inline and the cell stays a string. Tokens whose name is
// absent from data keep their literal text. The bool reports whether the cell
// was written.
func substituteCell(f *excelize.File, sheet, cell, text string, data model.FormData) (bool, error) {
	if m := template.TokenPattern.FindStringSubmatch(text); m != nil && m[0] == text {
		v, ok := data[m[1]]
		if !ok {
			return false, nil
		}
		return true, setTypedValue(f, sheet, cell, coerceString(v))
	}

	out := template.TokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		name := tok[2 : len(tok)-2]
		if v, ok := data[name]; ok {
			return coerceString(v)
		}
		return tok
	})
	if out == text {
		return false, nil
	}
	return true, f.SetCellStr(sheet, cell, out)
}

// setTypedValue stores s as a date when it carries an ISO-date prefix, as a
// number when it parses fully and is not blank, and as a string otherwise.
func setTypedValue(f *excelize.File, sheet, cell, s string) error {
	if isoDatePrefix.MatchString(s) {
		if d, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return f.SetCellValue(sheet, cell, d)
		}
	}
	if strings.TrimSpace(s) != "" {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return f.SetCellValue(sheet, cell, n)
		}
	}
	return f.SetCellStr(sheet, cell, s)
}

// coerceString renders a decoded JSON value as substitution text.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// copyCellStyle overwrites the working cell's style with a deep copy of the
// reference cell's style. Writing a value can mutate style metadata inside
// the library's object graph, so the working copy's own style is not trusted
// once any cell has been edited.
func copyCellStyle(ref, work *excelize.File, sheet, cell string) error {
	refID, err := ref.GetCellStyle(sheet, cell)
	if err != nil {
		return err
	}
	style, err := ref.GetStyle(refID)
	if err != nil {
		return err
	}

	var clone excelize.Style
	if err := deepcopy.Copy(&clone, style); err != nil {
		return err
	}

	id, err := work.NewStyle(&clone)
	if err != nil {
		return err
	}
	return work.SetCellStyle(sheet, cell, cell, id)
}

// restoreSheet copies column widths, row heights, row visibility and outline
// levels, sheet properties, and page setup from the reference sheet.
func restoreSheet(ref, work *excelize.File, sheet string, rowCount, colCount int) error {
	for col := 1; col <= colCount; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		width, err := ref.GetColWidth(sheet, name)
		if err != nil {
			return err
		}
		if err := work.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}

	for row := 1; row <= rowCount; row++ {
		height, err := ref.GetRowHeight(sheet, row)
		if err != nil {
			return err
		}
		if err := work.SetRowHeight(sheet, row, height); err != nil {
			return err
		}
		visible, err := ref.GetRowVisible(sheet, row)
		if err != nil {
			return err
		}
		if err := work.SetRowVisible(sheet, row, visible); err != nil {
			return err
		}
		level, err := ref.GetRowOutlineLevel(sheet, row)
		if err != nil {
			return err
		}
		if level > 0 {
			if err := work.SetRowOutlineLevel(sheet, row, level); err != nil {
				return err
			}
		}
	}

	props, err := ref.GetSheetProps(sheet)
	if err != nil {
		return err
	}
	if err := work.SetSheetProps(sheet, &props); err != nil {
		return err
	}

	layout, err := ref.GetPageLayout(sheet)
	if err != nil {
		return err
	}
	if err := work.SetPageLayout(sheet, &layout); err != nil {
		return err
	}

	margins, err := ref.GetPageMargins(sheet)
	if err != nil {
		return err
	}
	return work.SetPageMargins(sheet, &margins)
}

// restoreWorkbook copies workbook-level properties and per-sheet view state
// from the reference workbook.
func restoreWorkbook(ref, work *excelize.File) error {
	props, err := ref.GetWorkbookProps()
	if err != nil {
		return err
	}
	if err := work.SetWorkbookProps(&props); err != nil {
		return err
	}

	for _, sheet := range ref.GetSheetList() {
		view, err := ref.GetSheetView(sheet, 0)
		if err != nil {
			return err
		}
		if err := work.SetSheetView(sheet, 0, &view); err != nil {
			return err
		}
	}
	return nil
}
