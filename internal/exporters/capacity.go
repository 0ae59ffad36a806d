package exporters

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/session-catalog/internal/entities"
)

const (
	capacitySheet = "Open Sessions"
	unknownCell   = "Unknown"
)

var CapacityColumns = []string{
	"Session Name", "Day", "Timeslot", "Total Capacity", "Empty Seats", "% Available", "Room", "Status",
}

type CapacityStatus string

const (
	StatusFull         CapacityStatus = "Full"
	StatusOvercapacity CapacityStatus = "Overcapacity"
	StatusOk           CapacityStatus = "Ok"
	StatusUnknown      CapacityStatus = "Unknown"
)

// ClassifyAvailability maps the share of empty seats to a status. Plenty of
// empty seats is reported as Overcapacity: the room is bigger than demand.
func ClassifyAvailability(percent int) CapacityStatus {
	switch {
	case percent <= 0:
		return StatusFull
	case percent > 20:
		return StatusOvercapacity
	default:
		return StatusOk
	}
}

// CapacityRow is one line of the open sessions report. Nil numbers are
// rendered as Unknown.
type CapacityRow struct {
	SessionName      string
	Day              string
	Timeslot         string
	Total            *int
	EmptySeats       *int
	PercentAvailable *int
	Room             string
	Status           CapacityStatus
}

func NewCapacityRow(s entities.Session) CapacityRow {
	row := CapacityRow{SessionName: s.String(), Status: StatusUnknown}
	if s.IsIncomplete {
		return row
	}

	if s.Schedule != nil {
		row.Day = s.Schedule.DayName
	}
	row.Timeslot = timeslot(s)

	c := s.Capacity
	if c == nil {
		return row
	}
	row.Total = c.Total
	row.EmptySeats = c.SeatsRemaining
	row.Room = c.Room

	if c.Total != nil && c.SeatsRemaining != nil && *c.Total > 0 {
		percent := *c.SeatsRemaining * 100 / *c.Total
		row.PercentAvailable = &percent
		row.Status = ClassifyAvailability(percent)
	}
	return row
}

func (r CapacityRow) cells() []any {
	text := func(s string) any {
		if s == "" {
			return unknownCell
		}
		return s
	}
	number := func(n *int) any {
		if n == nil {
			return unknownCell
		}
		return *n
	}
	return []any{
		r.SessionName,
		text(r.Day),
		text(r.Timeslot),
		number(r.Total),
		number(r.EmptySeats),
		number(r.PercentAvailable),
		text(r.Room),
		string(r.Status),
	}
}

type CapacitySummary struct {
	Sessions int
	Full     int
}

// PercentFull is the whole-number share of sessions with no seats left.
func (s CapacitySummary) PercentFull() int {
	if s.Sessions == 0 {
		return 0
	}
	return s.Full * 100 / s.Sessions
}

// SummarizeCapacity counts sessions whose remaining seats are known and
// below one.
func SummarizeCapacity(sessions []entities.Session) CapacitySummary {
	summary := CapacitySummary{Sessions: len(sessions)}
	for _, s := range sessions {
		if s.Capacity != nil && s.Capacity.SeatsRemaining != nil && *s.Capacity.SeatsRemaining < 1 {
			summary.Full++
		}
	}
	return summary
}

// CapacityReport writes the open sessions report for one session type.
type CapacityReport struct {
	Path  string
	Label string
}

func NewCapacityReport(path, label string) *CapacityReport {
	return &CapacityReport{Path: path, Label: label}
}

func (r *CapacityReport) Export(sessions []entities.Session) (ExportResult, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", capacitySheet); err != nil {
		return ExportResult{}, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeHeader(f, capacitySheet, CapacityColumns); err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{}
	for i, s := range sessions {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := NewCapacityRow(s).cells()
		if err := f.SetSheetRow(capacitySheet, cell, &values); err != nil {
			log.Printf("[CAPACITY] Failed to write %s: %v", s.ID, err)
			result.SessionsFailed++
			continue
		}
		if s.IsIncomplete {
			result.SessionsSkipped++
			continue
		}
		result.SessionsProcessed++
	}

	if err := saveWorkbook(f, r.Path); err != nil {
		return result, err
	}
	result.Files = append(result.Files, r.Path)

	summary := SummarizeCapacity(sessions)
	log.Printf("[CAPACITY] %d percent of %s sessions are full (%d/%d)",
		summary.PercentFull(), r.Label, summary.Full, summary.Sessions)

	return result, nil
}

var _ SessionExporter = (*CapacityReport)(nil)
