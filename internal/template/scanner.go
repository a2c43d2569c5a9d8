// Package template implements placeholder discovery for uploaded templates.
// The spreadsheet path walks cells itself; the word-processing path delegates
// tag parsing to the go-stencil engine.
package template

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/benjaminschreck/go-stencil/pkg/stencil"
	"github.com/xuri/excelize/v2"

	"docforge/internal/model"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported template format")
	ErrNoPlaceholders    = errors.New("template contains no placeholders")
)

// TokenPattern matches a {{name}} placeholder token. The name is any run of
// characters excluding the closing brace.
var TokenPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Scan returns the distinct placeholder names found in the template at path,
// in order of first appearance. It fails with ErrUnsupportedFormat when the
// extension is neither supported format and with ErrNoPlaceholders when the
// resulting set is empty.
func Scan(path string) ([]string, error) {
	format, ok := model.FormatFromExtension(strings.ToLower(filepath.Ext(path)))
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	var (
		names []string
		err   error
	)
	switch format {
	case model.FormatSpreadsheet:
		names, err = ScanSpreadsheet(path)
	case model.FormatWordProcessing:
		names, err = ScanDocument(path)
	}
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoPlaceholders
	}
	return names, nil
}

// ScanSpreadsheet walks every sheet, row, and cell in sheet order then
// row-major order and collects placeholder tokens from each cell's textual
// representation: literal strings as-is, the cached computed result for
// formula cells, and concatenated plain text for rich-text cells. Cells with
// no matches contribute nothing.
func ScanSpreadsheet(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set := newNameSet()
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			for _, text := range row {
				if text == "" {
					continue
				}
				for _, m := range TokenPattern.FindAllStringSubmatch(text, -1) {
					set.add(m[1])
				}
			}
		}
	}
	return set.names, nil
}

// ScanDocument delegates tag parsing to go-stencil and treats every variable
// reference it reports as a placeholder name.
func ScanDocument(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	res, err := stencil.ExtractReferences(stencil.ExtractReferencesInput{DocxBytes: b})
	if err != nil {
		return nil, err
	}

	set := newNameSet()
	for _, ref := range res.References {
		if ref.Kind != stencil.TokenKindVariable {
			continue
		}
		if name := strings.TrimSpace(ref.Expression); name != "" {
			set.add(name)
		}
	}
	return set.names, nil
}

// nameSet keeps distinct names in first-appearance order for stable
// presentation to the caller.
type nameSet struct {
	names []string
	seen  map[string]struct{}
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]struct{})}
}

func (s *nameSet) add(name string) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}
