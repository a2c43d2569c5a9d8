// Package convert adapts the external page-layout converter process.
package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"docforge/internal/config"
)

// ConversionError reports a failed conversion: a missing input, an unusable
// output directory, or a converter run that did not produce the expected
// output file.
type ConversionError struct {
	Input string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of %q failed: %v", e.Input, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Converter invokes the external converter binary to produce fixed-layout
// output. It is safe for concurrent use; each call spawns its own process.
// The converter commonly holds a single-instance profile lock, so overlapping
// invocations are an operational risk the caller accepts.
type Converter struct {
	cfg    config.ConverterConfig
	outDir string
}

// New creates a Converter writing converted files into outDir.
func New(cfg config.ConverterConfig, outDir string) *Converter {
	return &Converter{cfg: cfg, outDir: outDir}
}

// Convert transforms the document at inputPath into a PDF inside the
// converter's output directory and returns the output path. Success is
// defined purely by the expected output file existing non-empty within the
// grace window after invocation, never by the process's own exit code.
func (c *Converter) Convert(ctx context.Context, inputPath string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", &ConversionError{Input: inputPath, Err: err}
	}
	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return "", &ConversionError{Input: inputPath, Err: err}
	}

	target := "pdf"
	if c.cfg.Filter != "" {
		target = "pdf:" + c.cfg.Filter
	}

	runCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.cfg.Binary,
		"--headless",
		"--norestore",
		"--convert-to", target,
		"--outdir", c.outDir,
		inputPath,
	)
	// The exit code is deliberately ignored; some converter builds exit
	// non-zero after writing a perfectly good output file.
	runErr := cmd.Run()

	outputPath := c.expectedOutput(inputPath)
	if err := c.awaitOutput(ctx, outputPath); err != nil {
		if runErr != nil {
			return "", &ConversionError{Input: inputPath, Err: fmt.Errorf("%v (converter: %v)", err, runErr)}
		}
		return "", &ConversionError{Input: inputPath, Err: err}
	}
	return outputPath, nil
}

// expectedOutput derives the deterministic output path: the input's base name
// with its extension swapped for .pdf, inside the output directory.
func (c *Converter) expectedOutput(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(c.outDir, base+".pdf")
}

// awaitOutput polls for the expected file until it exists non-empty or the
// grace window elapses.
func (c *Converter) awaitOutput(ctx context.Context, path string) error {
	grace := c.cfg.OutputGrace
	if grace <= 0 {
		grace = 3 * time.Second
	}
	deadline := time.Now().Add(grace)

	for {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("expected output %q not produced", path)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
