package render

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/benjaminschreck/go-stencil/pkg/stencil"
	_ "golang.org/x/image/bmp"

	"docforge/internal/model"
)

// Defaults applied to image fields when the caller omits them.
const (
	defaultImageWidth        = 150
	defaultImageHeight       = 100
	defaultImageTransparency = 0
)

// Image is a normalized image value: raw bytes, an explicit format, and
// dimension/presentation attributes with defaults applied.
type Image struct {
	Data         []byte
	Format       string
	Width        int
	Height       int
	AltText      string
	Transparency int
}

// DataURI renders the image in the encoding the templating engine consumes.
func (i Image) DataURI() string {
	return "data:image/" + i.Format + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// RenderDocument fills the word-processing template at templatePath with data
// and writes the result to destPath. Substitution itself is delegated to
// go-stencil; the only core-owned step is normalizing image fields before
// delegation. Non-image values pass through unmodified.
func RenderDocument(templatePath, destPath string, data model.FormData) error {
	tmpl, err := stencil.PrepareFile(templatePath)
	if err != nil {
		return err
	}
	defer tmpl.Close()

	td := stencil.TemplateData{}
	for name, v := range data {
		field, ok := asImageField(v)
		if !ok {
			td[name] = v
			continue
		}
		img, err := NormalizeImage(name, field)
		if err != nil {
			return fmt.Errorf("normalize image field %q: %w", name, err)
		}
		td[name] = img.DataURI()
	}

	out, err := tmpl.Render(td)
	if err != nil {
		return err
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, out); err != nil {
		return err
	}
	return nil
}

// NormalizeImage converts an image field from its transport encoding into raw
// binary with an explicit format. Width, height, and transparency fall back
// to defaults when omitted; alt text falls back to the placeholder name.
func NormalizeImage(name string, field model.ImageField) (Image, error) {
	payload := field.Data
	// Accept a full data URI as transport encoding; keep only the payload.
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decode image data: %w", err)
	}
	if len(raw) == 0 {
		return Image{}, fmt.Errorf("empty image data")
	}

	format := strings.ToLower(strings.TrimPrefix(field.Format, "image/"))
	if format == "" {
		_, sniffed, err := image.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			return Image{}, fmt.Errorf("detect image format: %w", err)
		}
		format = sniffed
	}
	if format == "jpg" {
		format = "jpeg"
	}

	img := Image{
		Data:         raw,
		Format:       format,
		Width:        field.Width,
		Height:       field.Height,
		AltText:      field.AltText,
		Transparency: field.Transparency,
	}
	if img.Width <= 0 {
		img.Width = defaultImageWidth
	}
	if img.Height <= 0 {
		img.Height = defaultImageHeight
	}
	if img.Transparency < 0 {
		img.Transparency = defaultImageTransparency
	}
	if img.AltText == "" {
		img.AltText = name
	}
	return img, nil
}

// asImageField reports whether a decoded JSON value is an image descriptor
// (an object carrying an "image" key) and converts it when it is.
func asImageField(v any) (model.ImageField, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		if field, ok := v.(model.ImageField); ok {
			return field, true
		}
		return model.ImageField{}, false
	}
	if _, ok := m["image"]; !ok {
		return model.ImageField{}, false
	}

	b, err := json.Marshal(m)
	if err != nil {
		return model.ImageField{}, false
	}
	var field model.ImageField
	if err := json.Unmarshal(b, &field); err != nil {
		return model.ImageField{}, false
	}
	return field, field.Data != ""
}
