package model

import "time"

// TemplateFormat tags the document format of an uploaded template.
type TemplateFormat string

const (
	FormatSpreadsheet    TemplateFormat = "xlsx"
	FormatWordProcessing TemplateFormat = "docx"
)

// FormatFromExtension maps a file extension (with or without the leading dot)
// to a template format. The bool reports whether the extension is supported.
func FormatFromExtension(ext string) (TemplateFormat, bool) {
	switch ext {
	case ".xlsx", "xlsx":
		return FormatSpreadsheet, true
	case ".docx", "docx":
		return FormatWordProcessing, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type of the template format.
func (f TemplateFormat) ContentType() string {
	switch f {
	case FormatSpreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatWordProcessing:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// Template represents an uploaded template document.
// This is a pure domain model with no database-specific dependencies or tags;
// it is shared across the HTTP, service, storage, and repository layers.
type Template struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	OriginalFilename string         `json:"original_filename"`
	Format           TemplateFormat `json:"format"`
	Size             int64          `json:"size"`
	StoragePath      string         `json:"storage_path"`
	CreatedAt        time.Time      `json:"created_at"`
}
