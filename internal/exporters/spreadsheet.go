package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/utils"
)

const (
	sessionsSheet      = "Sessions"
	spreadsheetTimeFmt = "2006-01-02 15:04"
)

// SessionColumns are the header cells of the sessions spreadsheet.
var SessionColumns = []string{
	"ID", "Name", "Technical Level", "Speakers", "Distinguished Speaker?",
	"Technologies", "Start", "End", "Abstract",
}

// SpreadsheetExporter writes one row per session to an .xlsx file.
type SpreadsheetExporter struct {
	Path string
}

func NewSpreadsheetExporter(path string) *SpreadsheetExporter {
	return &SpreadsheetExporter{Path: path}
}

// SessionRow returns the cells of one session in SessionColumns order.
// Unknown times are empty cells.
func SessionRow(s entities.Session) []any {
	var start, end string
	if t, ok := s.StartTime(); ok {
		start = t.Format(spreadsheetTimeFmt)
	}
	if t, ok := s.EndTime(); ok {
		end = t.Format(spreadsheetTimeFmt)
	}

	return []any{
		s.ID,
		s.Name,
		string(s.Level),
		joinOrEmpty(s.SpeakerNames()),
		strconv.FormatBool(s.IsDistinguishedSpeaker()),
		joinOrEmpty(s.Technologies),
		start,
		end,
		s.Abstract,
	}
}

func (e *SpreadsheetExporter) Export(sessions []entities.Session) (ExportResult, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sessionsSheet); err != nil {
		return ExportResult{}, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeHeader(f, sessionsSheet, SessionColumns); err != nil {
		return ExportResult{}, err
	}

	levelStyles, err := levelFillStyles(f)
	if err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{}
	for i, s := range sessions {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := SessionRow(s)
		if err := f.SetSheetRow(sessionsSheet, cell, &values); err != nil {
			log.Printf("[SPREADSHEET] Failed to write %s: %v", s.ID, err)
			result.SessionsFailed++
			continue
		}
		if style, ok := levelStyles[s.Level]; ok {
			levelCell, _ := excelize.CoordinatesToCellName(3, row)
			if err := f.SetCellStyle(sessionsSheet, levelCell, levelCell, style); err != nil {
				return result, fmt.Errorf("failed to style %s: %w", levelCell, err)
			}
		}
		result.SessionsProcessed++
	}

	if err := saveWorkbook(f, e.Path); err != nil {
		return result, err
	}
	result.Files = append(result.Files, e.Path)
	return result, nil
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	return f.SetCellStyle(sheet, "A1", last, bold)
}

func levelFillStyles(f *excelize.File) (map[entities.Level]int, error) {
	styles := make(map[entities.Level]int, len(entities.Levels))
	for _, level := range entities.Levels {
		hex := utils.ColorToHexRGB(utils.LevelColor(level, utils.FillAlpha))
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s style: %w", level, err)
		}
		styles[level] = id
	}
	return styles, nil
}

func saveWorkbook(f *excelize.File, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

var _ SessionExporter = (*SpreadsheetExporter)(nil)
