package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docforge/internal/config"
)

// writeFakeConverter writes an executable standing in for the converter
// binary. It receives the real argument layout (--headless --norestore
// --convert-to pdf --outdir <dir> <input>).
func writeFakeConverter(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-soffice")
	full := "#!/bin/sh\nout=\"$6\"\nin=\"$7\"\nbase=$(basename \"$in\")\nbase=\"${base%.*}\"\n" + script + "\n"
	require.NoError(t, os.WriteFile(path, []byte(full), 0o755))
	return path
}

func testConfig(binary string) config.ConverterConfig {
	return config.ConverterConfig{
		Binary:      binary,
		Timeout:     10 * time.Second,
		OutputGrace: 500 * time.Millisecond,
	}
}

func TestConvert(t *testing.T) {
	inputDir := t.TempDir()
	inputPath := filepath.Join(inputDir, "generated-1700000000000.xlsx")
	require.NoError(t, os.WriteFile(inputPath, []byte("doc"), 0o644))

	t.Run("expected output produced", func(t *testing.T) {
		bin := writeFakeConverter(t, `printf 'pdf-bytes' > "$out/$base.pdf"`)
		conv := New(testConfig(bin), t.TempDir())

		outPath, err := conv.Convert(context.Background(), inputPath)

		require.NoError(t, err)
		assert.Equal(t, "generated-1700000000000.pdf", filepath.Base(outPath))
		info, err := os.Stat(outPath)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("non-zero exit code is ignored when output exists", func(t *testing.T) {
		bin := writeFakeConverter(t, `printf 'pdf-bytes' > "$out/$base.pdf"`+"\nexit 3")
		conv := New(testConfig(bin), t.TempDir())

		_, err := conv.Convert(context.Background(), inputPath)

		assert.NoError(t, err)
	})

	t.Run("no output within grace window", func(t *testing.T) {
		bin := writeFakeConverter(t, `exit 0`)
		conv := New(testConfig(bin), t.TempDir())

		_, err := conv.Convert(context.Background(), inputPath)

		var convErr *ConversionError
		assert.ErrorAs(t, err, &convErr)
		assert.Equal(t, inputPath, convErr.Input)
	})

	t.Run("empty output file is a failure", func(t *testing.T) {
		bin := writeFakeConverter(t, `: > "$out/$base.pdf"`)
		conv := New(testConfig(bin), t.TempDir())

		_, err := conv.Convert(context.Background(), inputPath)

		var convErr *ConversionError
		assert.ErrorAs(t, err, &convErr)
	})

	t.Run("missing input", func(t *testing.T) {
		bin := writeFakeConverter(t, `exit 0`)
		conv := New(testConfig(bin), t.TempDir())

		_, err := conv.Convert(context.Background(), filepath.Join(inputDir, "nope.xlsx"))

		var convErr *ConversionError
		assert.ErrorAs(t, err, &convErr)
	})
}

func TestExpectedOutput(t *testing.T) {
	conv := New(testConfig("soffice"), "/tmp/out")

	assert.Equal(t, filepath.Join("/tmp/out", "report.pdf"), conv.expectedOutput("/data/in/report.xlsx"))
	assert.Equal(t, filepath.Join("/tmp/out", "noext.pdf"), conv.expectedOutput("/data/in/noext"))
}
