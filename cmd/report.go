package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"

	"github.com/namvh1209/posture-cli/internal/scanner"
	sharederrors "github.com/namvh1209/posture-cli/internal/shared/errors"
)

const markdownReportTemplate = `# Security Posture Report

Target: {{ .URL }}
Score: **{{ .Score }}/100**

| Status | Check | Title |
|--------|-------|-------|
{{- range .Findings }}
| {{ .Status }} | {{ .Key }} | {{ .Title }} |
{{- end }}

## Remediation

{{ range .Findings }}{{ if needsAction .Status }}### {{ .Title }} ({{ .Status }}, risk {{ .Risk }})

{{ .Recommendation }}

{{ end }}{{ end }}`

var mdReportTemplate = template.Must(
	template.New("report.md").Funcs(template.FuncMap{
		"needsAction": func(s scanner.Status) bool {
			return s == scanner.StatusWarn || s == scanner.StatusFail
		},
	}).Parse(markdownReportTemplate),
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a saved scan (posture scan --json output) as markdown or PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		data, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("read scan file: %w", err)
		}
		var scan scanner.Scan
		if err := json.Unmarshal(data, &scan); err != nil {
			return fmt.Errorf("parse scan file: %w", err)
		}

		switch strings.ToLower(format) {
		case "markdown", "md":
			return writeMarkdownReport(&scan, output)
		case "pdf":
			return writePDFReport(&scan, output)
		default:
			return fmt.Errorf("%w: %q (want markdown or pdf)", sharederrors.ErrUnsupportedFormat, format)
		}
	},
}

func writeMarkdownReport(scan *scanner.Scan, output string) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := mdReportTemplate.Execute(f, scan); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	fmt.Printf("%s Report written to %s\n", colorPass("✓"), output)
	return nil
}

func writePDFReport(scan *scanner.Scan, output string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Security Posture Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Target: %s", scan.URL))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Score: %d/100", scan.Score))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(20, 7, "Status", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Check", "1", 0, "L", false, 0, "")
	pdf.CellFormat(120, 7, "Title", "1", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, f := range scan.Findings {
		pdf.CellFormat(20, 7, string(f.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, f.Key, "1", 0, "L", false, 0, "")
		pdf.CellFormat(120, 7, f.Title, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Remediation")
	pdf.Ln(10)
	for _, f := range scan.Findings {
		if f.Status != scanner.StatusWarn && f.Status != scanner.StatusFail {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(190, 5, fmt.Sprintf("%s (%s, risk %s)", f.Title, f.Status, f.Risk), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(190, 5, f.Recommendation, "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.OutputFileAndClose(output); err != nil {
		return fmt.Errorf("write PDF: %w", err)
	}
	fmt.Printf("%s Report written to %s\n", colorPass("✓"), output)
	return nil
}

func init() {
	reportCmd.Flags().String("input", "scan.json", "Scan JSON file produced by 'posture scan --json'")
	reportCmd.Flags().String("output", "report.md", "Report output path")
	reportCmd.Flags().String("format", "markdown", "Report format: markdown or pdf")
}
