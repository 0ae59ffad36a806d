package exporters

import (
	"strings"
	"time"

	"github.com/mrlokans/session-catalog/internal/entities"
)

const timeslotLayout = "15:04"

// SessionDocument is the flat JSON form of a session shared by the search
// index and the event topic.
type SessionDocument struct {
	ID            string     `json:"id"`
	Event         string     `json:"event,omitempty"`
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Abstract      string     `json:"abstract,omitempty"`
	Level         string     `json:"level"`
	Start         *time.Time `json:"start,omitempty"`
	End           *time.Time `json:"end,omitempty"`
	Day           string     `json:"day,omitempty"`
	Speakers      []string   `json:"speakers"`
	Distinguished bool       `json:"distinguished_speaker"`
	Technologies  []string   `json:"technologies"`
	Room          string     `json:"room,omitempty"`
	Capacity      *int       `json:"capacity,omitempty"`
	SeatsLeft     *int       `json:"seats_remaining,omitempty"`
	Incomplete    bool       `json:"incomplete"`
	ExportedAt    time.Time  `json:"exported_at"`
}

// NewSessionDocument flattens s. event tags the document with the deployment.
func NewSessionDocument(s entities.Session, event string, now time.Time) SessionDocument {
	doc := SessionDocument{
		ID:            s.ID,
		Event:         event,
		Type:          s.Type,
		Name:          s.Name,
		Abstract:      s.Abstract,
		Level:         string(s.Level),
		Speakers:      s.SpeakerNames(),
		Distinguished: s.IsDistinguishedSpeaker(),
		Technologies:  s.Technologies,
		Incomplete:    s.IsIncomplete,
		ExportedAt:    now.UTC(),
	}
	if doc.Speakers == nil {
		doc.Speakers = []string{}
	}
	if doc.Technologies == nil {
		doc.Technologies = []string{}
	}
	if s.Schedule != nil {
		doc.Start = s.Schedule.Start
		doc.End = s.Schedule.End
		doc.Day = s.Schedule.DayName
	}
	if s.Capacity != nil {
		doc.Room = s.Capacity.Room
		doc.Capacity = s.Capacity.Total
		doc.SeatsLeft = s.Capacity.SeatsRemaining
	}
	return doc
}

// timeslot renders "HH:MM - HH:MM", or "" when either end is unknown.
func timeslot(s entities.Session) string {
	start, ok := s.StartTime()
	if !ok {
		return ""
	}
	end, ok := s.EndTime()
	if !ok {
		return ""
	}
	return start.Format(timeslotLayout) + " - " + end.Format(timeslotLayout)
}

func joinOrEmpty(values []string) string {
	return strings.Join(values, ", ")
}
