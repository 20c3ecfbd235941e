// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-10
// Last Modified: 2026-10-19

package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/similigh/fb2gh/internal/migrate"
)

// csvHeader lists the columns of the CSV report, one row per case.
var csvHeader = []string{
	"case_id",
	"title",
	"status",
	"issue_number",
	"issue_url",
	"labels",
	"milestone",
	"comments",
	"closed",
	"assignee",
	"skip_reason",
	"error",
}

// resolveFormat picks the report format, inferring it from the output file
// extension when no format is given.
func resolveFormat(format, outFile string) (string, error) {
	if format == "" && outFile != "" {
		if strings.ToLower(filepath.Ext(outFile)) == ".csv" {
			format = "csv"
		}
	}
	if format == "" {
		format = "json"
	}
	switch format {
	case "json", "csv":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use json or csv)", format)
	}
}

// writeReport formats the report and writes it to outFile, or to w when
// outFile is empty.
func writeReport(w io.Writer, report *migrate.Report, format, outFile string) error {
	format, err := resolveFormat(format, outFile)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "csv":
		data, err = formatCSV(report)
	default:
		data, err = formatJSON(report)
	}
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if outFile != "" {
		if err := os.WriteFile(outFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write report file: %w", err)
		}
		fmt.Fprintf(w, "✓ Report written to %s\n", outFile)
		return nil
	}
	_, err = w.Write(data)
	return err
}

// formatJSON formats the report as JSON
func formatJSON(report *migrate.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// formatCSV formats the per-case records as CSV
func formatCSV(report *migrate.Report) ([]byte, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, r := range report.Records {
		row := []string{
			strconv.Itoa(r.CaseID),
			r.Title,
			string(r.Status),
			"",
			r.IssueURL,
			strings.Join(r.Labels, ";"),
			r.Milestone,
			strconv.Itoa(r.Comments),
			strconv.FormatBool(r.Closed),
			r.Assignee,
			r.SkipReason,
			r.Error,
		}
		if r.IssueNumber != 0 {
			row[3] = strconv.Itoa(r.IssueNumber)
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return []byte(buf.String()), nil
}
