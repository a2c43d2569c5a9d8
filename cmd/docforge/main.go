// Package main provides an offline CLI mirroring the HTTP generation flow:
// scan a template for placeholders, fill it from a JSON file, and convert
// the result to PDF.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docforge/internal/config"
	"docforge/internal/convert"
	"docforge/internal/model"
	"docforge/internal/render"
	"docforge/internal/template"
)

var (
	dataPath   string
	outputPath string
	outDir     string
	binary     string
	filter     string
	timeout    time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docforge",
		Short: "Fill document templates and convert them to PDF",
	}

	scanCmd := &cobra.Command{
		Use:   "scan [template]",
		Short: "List the placeholders found in a template",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	renderCmd := &cobra.Command{
		Use:   "render [template]",
		Short: "Fill a template with values from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&dataPath, "data", "d", "", "JSON file with placeholder values (default: empty)")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: <template>.out.<ext>)")

	convertCmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Convert a document to PDF using the external converter",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvert,
	}
	convertCmd.Flags().StringVar(&outDir, "outdir", ".", "Directory the PDF is written to")
	convertCmd.Flags().StringVar(&binary, "binary", "soffice", "Converter binary")
	convertCmd.Flags().StringVar(&filter, "filter", "", "Explicit PDF export filter")
	convertCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Converter process timeout")

	rootCmd.AddCommand(scanCmd, renderCmd, convertCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	names, err := template.Scan(args[0])
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	out, err := json.MarshalIndent(map[string]any{"placeholders": names}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	data := model.FormData{}
	if dataPath != "" {
		b, err := os.ReadFile(dataPath)
		if err != nil {
			return fmt.Errorf("read data file: %w", err)
		}
		if err := json.Unmarshal(b, &data); err != nil {
			return fmt.Errorf("parse data file: %w", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	format, ok := model.FormatFromExtension(ext)
	if !ok {
		return template.ErrUnsupportedFormat
	}

	dest := outputPath
	if dest == "" {
		dest = strings.TrimSuffix(inputPath, ext) + ".out" + ext
	}

	var err error
	switch format {
	case model.FormatSpreadsheet:
		err = render.RenderSpreadsheet(inputPath, dest, data)
	case model.FormatWordProcessing:
		err = render.RenderDocument(inputPath, dest, data)
	}
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	fmt.Println(dest)
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := config.ConverterConfig{
		Binary:      binary,
		Filter:      filter,
		Timeout:     timeout,
		OutputGrace: 3 * time.Second,
	}

	conv := convert.New(cfg, outDir)
	pdfPath, err := conv.Convert(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	fmt.Println(pdfPath)
	return nil
}
