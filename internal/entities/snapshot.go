package entities

import (
	"strings"
	"time"
)

// Snapshot is one persisted pipeline run for an event and filter.
type Snapshot struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	RunID         string          `gorm:"uniqueIndex;size:36" json:"run_id"`
	Event         string          `gorm:"index;size:100" json:"event"`
	Filter        string          `gorm:"index;size:256" json:"filter"`
	SessionCount  int             `json:"session_count"`
	RejectedCount int             `json:"rejected_count"`
	TakenAt       time.Time       `gorm:"index" json:"taken_at"`
	Sessions      []SessionRecord `gorm:"foreignKey:SnapshotID" json:"sessions,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SessionRecord is the flattened, persisted form of a Session.
type SessionRecord struct {
	ID                uint       `gorm:"primaryKey" json:"-"`
	SnapshotID        uint       `gorm:"index" json:"snapshot_id"`
	Code              string     `gorm:"index;size:32" json:"code"`
	Type              string     `gorm:"size:100" json:"type"`
	Name              string     `gorm:"size:512" json:"name"`
	Level             Level      `gorm:"size:20" json:"level"`
	StartAt           *time.Time `json:"start_at,omitempty"`
	EndAt             *time.Time `json:"end_at,omitempty"`
	DayName           string     `gorm:"size:20" json:"day_name,omitempty"`
	Speakers          string     `gorm:"type:text" json:"speakers,omitempty"`
	Distinguished     bool       `json:"distinguished"`
	Technologies      string     `gorm:"type:text" json:"technologies,omitempty"`
	Capacity          *int       `json:"capacity,omitempty"`
	SeatsRemaining    *int       `json:"seats_remaining,omitempty"`
	WaitlistRemaining *int       `json:"waitlist_remaining,omitempty"`
	Room              string     `gorm:"size:256" json:"room,omitempty"`
	Incomplete        bool       `json:"incomplete"`
}

func (Snapshot) TableName() string {
	return "snapshots"
}

func (SessionRecord) TableName() string {
	return "session_records"
}

// NewSessionRecord flattens a session for storage.
func NewSessionRecord(s Session) SessionRecord {
	rec := SessionRecord{
		Code:          s.ID,
		Type:          s.Type,
		Name:          s.Name,
		Level:         s.Level,
		Speakers:      strings.Join(s.SpeakerNames(), ", "),
		Distinguished: s.IsDistinguishedSpeaker(),
		Technologies:  strings.Join(s.Technologies, ", "),
		Incomplete:    s.IsIncomplete,
	}
	if s.Schedule != nil {
		rec.StartAt = s.Schedule.Start
		rec.EndAt = s.Schedule.End
		rec.DayName = s.Schedule.DayName
	}
	if s.Capacity != nil {
		rec.Capacity = s.Capacity.Total
		rec.SeatsRemaining = s.Capacity.SeatsRemaining
		rec.WaitlistRemaining = s.Capacity.WaitlistRemaining
		rec.Room = s.Capacity.Room
	}
	return rec
}
