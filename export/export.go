// Package export writes report tables to disk as JSON, CSV or an XLSX
// workbook, followed by a run manifest.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"

	"funnelscope/api/charts"
	"funnelscope/api/config"
	"funnelscope/api/funnel"
)

const (
	ManifestFile = "manifest.json"
	WorkbookFile = "funnel_report.xlsx"
)

// Manifest describes one export run.
type Manifest struct {
	RunID       string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Formats     []string     `json:"formats"`
	Files       []string     `json:"files"`
	Stats       funnel.Stats `json:"stats"`
	Charts      *charts.URLs `json:"charts,omitempty"`
}

// Write exports every report table in each format to dir and then writes
// manifest.json. urls may be nil.
func Write(dir string, r *funnel.Report, formats []string, urls *charts.URLs) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	m := &Manifest{
		RunID:       ulid.Make().String(),
		GeneratedAt: time.Now().UTC(),
		Formats:     formats,
		Stats:       r.Stats,
		Charts:      urls,
	}
	tabs := tables(r)

	for _, format := range formats {
		var (
			files []string
			err   error
		)
		switch format {
		case config.FormatJSON:
			files, err = writeJSONTables(dir, tabs)
		case config.FormatCSV:
			files, err = writeCSVTables(dir, tabs)
		case config.FormatXLSX:
			files, err = writeWorkbook(dir, tabs)
		default:
			err = fmt.Errorf("unsupported export format %q", format)
		}
		if err != nil {
			return nil, err
		}
		m.Files = append(m.Files, files...)
	}

	if err := writeJSON(filepath.Join(dir, ManifestFile), m); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"run_id": m.RunID, "dir": dir, "files": len(m.Files)}).Info("Report exported.")
	return m, nil
}

func writeJSONTables(dir string, tabs []table) ([]string, error) {
	var files []string
	for _, t := range tabs {
		name := t.name + ".json"
		if err := writeJSON(filepath.Join(dir, name), t.records); err != nil {
			return nil, err
		}
		files = append(files, name)
	}
	return files, nil
}

func writeJSON(path string, data interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to write JSON %s: %w", path, err)
	}
	return nil
}

func writeCSVTables(dir string, tabs []table) ([]string, error) {
	var files []string
	for _, t := range tabs {
		name := t.name + ".csv"
		if err := writeCSV(filepath.Join(dir, name), t); err != nil {
			return nil, err
		}
		files = append(files, name)
	}
	return files, nil
}

func writeCSV(path string, t table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.header); err != nil {
		return fmt.Errorf("failed to write CSV header %s: %w", path, err)
	}
	record := make([]string, len(t.header))
	for _, row := range t.rows {
		for i, v := range row {
			record[i] = cellString(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV %s: %w", path, err)
	}
	return nil
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

const defaultSheet = "Sheet1"

// writeWorkbook writes one sheet per table into a single workbook.
func writeWorkbook(dir string, tabs []table) ([]string, error) {
	f := excelize.NewFile()
	for i, t := range tabs {
		if i == 0 {
			f.SetSheetName(defaultSheet, t.name)
		} else {
			f.NewSheet(t.name)
		}
		header := make([]interface{}, len(t.header))
		for j, h := range t.header {
			header[j] = h
		}
		if err := f.SetSheetRow(t.name, "A1", &header); err != nil {
			return nil, fmt.Errorf("failed to write sheet header %s: %w", t.name, err)
		}
		for j := range t.rows {
			axis, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(t.name, axis, &t.rows[j]); err != nil {
				return nil, fmt.Errorf("failed to write sheet %s row %d: %w", t.name, j+1, err)
			}
		}
	}

	if err := f.SaveAs(filepath.Join(dir, WorkbookFile)); err != nil {
		return nil, fmt.Errorf("failed to save workbook: %w", err)
	}
	return []string{WorkbookFile}, nil
}
