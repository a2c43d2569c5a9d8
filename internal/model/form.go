package model

// FormData maps placeholder names to caller-supplied values. Values come from
// a decoded JSON object: strings, numbers (float64), booleans, or an image
// descriptor object. It is produced once per generation request and consumed
// exactly once by the renderer.
type FormData map[string]any

// ImageField is the wire shape of an image value inside FormData. The Data
// field carries base64-encoded bytes; everything else is optional and filled
// with defaults during normalization.
type ImageField struct {
	Data         string `json:"image"`
	Format       string `json:"format,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	AltText      string `json:"alt,omitempty"`
	Transparency int    `json:"transparency,omitempty"`
}
