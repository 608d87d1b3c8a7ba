package csvdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"adlift/domain/core"
	"adlift/domain/creative"
	"adlift/domain/metrics"
	"adlift/domain/themes"

	"github.com/xuri/excelize/v2"
)

// Reader loads survey exports (CSV or XLSX) and creative element manifests
// (JSON) into the row shapes the engine consumes. It performs no semantic
// validation beyond column presence; malformed values are left for the
// normalizer so that per-row warnings end up in one place.
type Reader struct{}

// NewReader creates an evidence reader.
func NewReader() *Reader {
	return &Reader{}
}

// table is a parsed spreadsheet: trimmed headers plus one map per data row.
type table struct {
	headers []string
	rows    []map[string]string
}

// readTable reads a CSV or XLSX file into header-keyed rows. Headers are
// trimmed and lower-cased; cell values are trimmed only.
func readTable(path string) (*table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("data file not found: %s", path)
	}

	var raw [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		raw, err = readXLSXRows(path)
	default:
		raw, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("%s: need a header row and at least one data row", filepath.Base(path))
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]map[string]string, 0, len(raw)-1)
	for _, line := range raw[1:] {
		row := make(map[string]string, len(headers))
		for j, cell := range line {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(cell)
			}
		}
		rows = append(rows, row)
	}
	return &table{headers: headers, rows: rows}, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// pick returns the first present column among aliases, or "".
func pick(row map[string]string, aliases ...string) string {
	for _, a := range aliases {
		if v, ok := row[a]; ok && v != "" {
			return v
		}
	}
	return ""
}

func hasAnyColumn(headers []string, aliases ...string) bool {
	for _, h := range headers {
		for _, a := range aliases {
			if h == a {
				return true
			}
		}
	}
	return false
}

// ReadMetricRows loads the quantitative RCT results export. The metric,
// segment and delta columns are required; everything else is optional and
// the normalizer decides what to do when it is missing.
func (r *Reader) ReadMetricRows(path string) ([]metrics.RawRow, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	required := map[string][]string{
		"metric":  {"metric", "metric_name"},
		"segment": {"segment", "segment_name"},
		"delta":   {"delta", "lift", "effect"},
	}
	for name, aliases := range required {
		if !hasAnyColumn(t.headers, aliases...) {
			return nil, core.NewInvalidInputError("results", fmt.Sprintf("missing required column %q", name))
		}
	}

	rows := make([]metrics.RawRow, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, metrics.RawRow{
			Metric:              pick(row, "metric", "metric_name"),
			Segment:             pick(row, "segment", "segment_name"),
			Breakdown:           pick(row, "breakdown", "breakdown_name"),
			Delta:               pick(row, "delta", "lift", "effect"),
			MarginOfError:       pick(row, "margin_of_error", "moe"),
			CI95Interval:        pick(row, "ci_95_interval", "ci95", "confidence_interval"),
			BaselineMean:        pick(row, "baseline_mean", "control_mean"),
			TestGroupMean:       pick(row, "test_group_mean", "treatment_mean"),
			BaselineSampleSize:  pick(row, "baseline_sample_size", "control_n"),
			TestGroupSampleSize: pick(row, "test_group_sample_size", "treatment_n"),
			TotalWeight:         pick(row, "total_weight", "weight"),
		})
	}
	return rows, nil
}

// Reserved column names of the comments export. Every other column whose
// values are all boolean-shaped is treated as a segment flag.
var commentReservedColumns = map[string]bool{
	"response_id":     true,
	"respondent_id":   true,
	"treatment_group": true,
	"weight":          true,
	"sentiment":       true,
	"theme":           true,
	"theme_label":     true,
	"keywords":        true,
	"text":            true,
	"comment":         true,
	"open_text":       true,
}

// ReadCommentRows loads the qualitative comments export. Segment membership
// columns are detected rather than configured: any non-reserved column whose
// non-empty values all parse as booleans becomes a segment flag.
func (r *Reader) ReadCommentRows(path string) ([]themes.CommentRow, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if !hasAnyColumn(t.headers, "text", "comment", "open_text") {
		return nil, core.NewInvalidInputError("comments", "missing required text column")
	}

	flagCols := detectSegmentColumns(t)

	rows := make([]themes.CommentRow, 0, len(t.rows))
	for i, row := range t.rows {
		sentiment, err := themes.ParseSentiment(pick(row, "sentiment"))
		if err != nil {
			return nil, core.NewInvalidInputError("comments", fmt.Sprintf("row %d: %v", i+1, err))
		}

		flags := make(map[string]bool, len(flagCols))
		for _, col := range flagCols {
			if b, ok := parseBool(row[col]); ok && b {
				flags[col] = true
			}
		}

		rows = append(rows, themes.CommentRow{
			ResponseID:   pick(row, "response_id", "respondent_id"),
			SegmentFlags: flags,
			Sentiment:    sentiment,
			ThemeLabel:   pick(row, "theme_label", "theme"),
			Keywords:     splitKeywords(pick(row, "keywords")),
			Text:         pick(row, "text", "comment", "open_text"),
		})
	}
	return rows, nil
}

// detectSegmentColumns returns non-reserved columns whose non-empty values
// are all boolean-shaped, in header order.
func detectSegmentColumns(t *table) []string {
	var cols []string
	for _, h := range t.headers {
		if h == "" || commentReservedColumns[h] {
			continue
		}
		binary := true
		seen := false
		for _, row := range t.rows {
			v := row[h]
			if v == "" {
				continue
			}
			seen = true
			if _, ok := parseBool(v); !ok {
				binary = false
				break
			}
		}
		if seen && binary {
			cols = append(cols, h)
		}
	}
	return cols
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, true
	case "false", "f", "0", "no", "n":
		return false, true
	}
	return false, false
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	sep := ";"
	if !strings.Contains(s, ";") {
		sep = ","
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// elementManifest is the JSON shape the video understanding provider emits.
type elementManifest struct {
	Scenes     []creative.SceneElement     `json:"scenes"`
	Attributes []creative.AttributeElement `json:"attributes"`
}

// ReadCreativeElements loads the pre-computed creative element manifest.
// Scenes come first ordered by start time, then attributes in declaration
// order, so that downstream tie-breaks see a stable element ordering.
func (r *Reader) ReadCreativeElements(path string) ([]creative.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read elements manifest: %w", err)
	}

	var manifest elementManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, core.NewInvalidInputError("elements", err.Error())
	}

	sort.SliceStable(manifest.Scenes, func(i, j int) bool {
		return manifest.Scenes[i].StartTime < manifest.Scenes[j].StartTime
	})

	elements := make([]creative.Element, 0, len(manifest.Scenes)+len(manifest.Attributes))
	for _, s := range manifest.Scenes {
		if s.SceneID == "" {
			return nil, core.NewInvalidInputError("elements", "scene missing scene_id")
		}
		elements = append(elements, s)
	}
	for _, a := range manifest.Attributes {
		switch a.Attribute {
		case creative.KindAudioTone, creative.KindMessaging, creative.KindPacing:
		default:
			return nil, core.NewInvalidInputError("elements", fmt.Sprintf("unknown attribute kind %q", a.Attribute))
		}
		elements = append(elements, a)
	}
	return elements, nil
}
