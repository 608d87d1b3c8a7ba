package excel

import (
	"bytes"
	"fmt"
	"strings"

	"adlift/domain/recommend"
	"adlift/models"

	"github.com/xuri/excelize/v2"
)

// Exporter renders a ranked recommendation run as an XLSX workbook with a
// summary sheet and one row per recommendation.
type Exporter struct{}

// NewExporter creates an XLSX exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *Exporter) FileExtension() string { return "xlsx" }

var recommendationHeaders = []string{
	"Rank", "Priority", "Type", "Segment", "Breakdown", "Brand Goal",
	"Creative Element", "Impact Score", "Delta", "95% CI", "P-Value",
	"Significant", "Top Theme", "Theme Prevalence", "Example Comment",
}

// Export writes the workbook into memory.
func (e *Exporter) Export(exp *models.Experiment, recs []recommend.Recommendation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Recommendations"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for i, h := range recommendationHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for r, rec := range recs {
		rowIdx := r + 2
		for c, v := range recommendationRow(r+1, rec) {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := e.writeSummarySheet(f, exp, len(recs)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func recommendationRow(rank int, rec recommend.Recommendation) []interface{} {
	element := "General creative approach"
	if rec.CreativeElement != nil {
		element = rec.CreativeElement.Description
	}

	topTheme, prevalence, exampleComment := "", 0.0, ""
	if len(rec.QualitativeSupport) > 0 {
		q := rec.QualitativeSupport[0]
		topTheme = q.Theme
		prevalence = q.ThemePrevalence
		exampleComment = q.Comment
	}

	return []interface{}{
		rank,
		string(rec.Priority),
		string(rec.Type),
		rec.Segment,
		rec.Breakdown,
		string(rec.BrandGoal),
		element,
		rec.ImpactScore,
		rec.QuantitativeSupport.Delta,
		rec.QuantitativeSupport.CI95.String(),
		rec.QuantitativeSupport.PValue,
		rec.QuantitativeSupport.StatisticalSignificance,
		topTheme,
		prevalence,
		exampleComment,
	}
}

func (e *Exporter) writeSummarySheet(f *excelize.File, exp *models.Experiment, recCount int) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Experiment", exp.Title},
		{"Status", string(exp.Status)},
		{"Recommendations", recCount},
	}
	if strings.TrimSpace(exp.Description) != "" {
		rows = append(rows, []interface{}{"Description", exp.Description})
	}
	if exp.Summary != nil {
		rows = append(rows,
			[]interface{}{"Overall favorability delta", exp.Summary.OverallFavorability},
			[]interface{}{"Overall purchase intent delta", exp.Summary.OverallIntent},
			[]interface{}{"Overall brand associations delta", exp.Summary.OverallAssociations},
			[]interface{}{"Top segment", exp.Summary.TopSegment},
			[]interface{}{"Weakest segment", exp.Summary.WeakSegment},
		)
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
