package model

import "time"

// ArtifactType tags a generated output file. The three values double as the
// names of the typed directories artifacts are stored under and as the type
// path segment of the download endpoint.
type ArtifactType string

const (
	ArtifactPDF  ArtifactType = "pdf"
	ArtifactXLSX ArtifactType = "xlsx"
	ArtifactDOCX ArtifactType = "docx"
)

// ParseArtifactType validates a type path segment against the fixed set of
// artifact types.
func ParseArtifactType(s string) (ArtifactType, bool) {
	switch ArtifactType(s) {
	case ArtifactPDF, ArtifactXLSX, ArtifactDOCX:
		return ArtifactType(s), true
	default:
		return "", false
	}
}

// Extension returns the file extension for the artifact type, without the dot.
func (t ArtifactType) Extension() string {
	return string(t)
}

// ContentType returns the MIME type served for the artifact type.
func (t ArtifactType) ContentType() string {
	switch t {
	case ArtifactPDF:
		return "application/pdf"
	case ArtifactXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ArtifactDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// GeneratedArtifact describes one generated output file. Filenames are derived
// from a generation timestamp, never from caller input, so a stored artifact
// name can always be used verbatim as a path component of its typed directory.
type GeneratedArtifact struct {
	Type        ArtifactType `json:"type"`
	Filename    string       `json:"filename"`
	Size        int64        `json:"size"`
	StoragePath string       `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}
