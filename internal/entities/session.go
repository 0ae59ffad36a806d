package entities

import "time"

// RawItem is one search result as decoded from the Rainfocus API.
// Its shape varies with the session (schedule, participants, attributes).
type RawItem map[string]any

type Level string

const (
	LevelIntroductory Level = "Introductory"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
	LevelGeneral      Level = "General"
)

// Levels lists every level in code-digit order (1..4).
var Levels = []Level{LevelIntroductory, LevelIntermediate, LevelAdvanced, LevelGeneral}

const SessionTypeWalkInLab = "Walk-in Lab"

// Schedule is present only when the source item carried a times block.
// Either timestamp may still be missing inside a present block.
type Schedule struct {
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
	DayName string     `json:"day_name,omitempty"`
}

// Speakers is present only when the source item carried a participants block.
type Speakers struct {
	Names         []string `json:"names"`
	Distinguished bool     `json:"distinguished"`
}

// Capacity is filled only by capacity-tracking runs.
type Capacity struct {
	Total             *int   `json:"total,omitempty"`
	SeatsRemaining    *int   `json:"seats_remaining,omitempty"`
	WaitlistRemaining *int   `json:"waitlist_remaining,omitempty"`
	Room              string `json:"room,omitempty"`
	RoomID            string `json:"room_id,omitempty"`
}

// Session is a normalized conference session. Values are built once by the
// normalizer and never modified afterwards.
type Session struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Name         string    `json:"name"`
	Abstract     string    `json:"abstract,omitempty"`
	Level        Level     `json:"level"`
	Schedule     *Schedule `json:"schedule,omitempty"`
	Speakers     *Speakers `json:"speakers,omitempty"`
	Technologies []string  `json:"technologies"`
	Capacity     *Capacity `json:"capacity,omitempty"`
	IsIncomplete bool      `json:"is_incomplete"`
}

func (s Session) String() string {
	return s.ID + " - " + s.Name
}

// StartTime returns the start time and whether it is known.
func (s Session) StartTime() (time.Time, bool) {
	if s.Schedule == nil || s.Schedule.Start == nil {
		return time.Time{}, false
	}
	return *s.Schedule.Start, true
}

// EndTime returns the end time and whether it is known.
func (s Session) EndTime() (time.Time, bool) {
	if s.Schedule == nil || s.Schedule.End == nil {
		return time.Time{}, false
	}
	return *s.Schedule.End, true
}

// SpeakerNames returns the speaker names, or nil without a participants block.
func (s Session) SpeakerNames() []string {
	if s.Speakers == nil {
		return nil
	}
	return s.Speakers.Names
}

// IsDistinguishedSpeaker reports whether any speaker is a distinguished speaker.
func (s Session) IsDistinguishedSpeaker() bool {
	return s.Speakers != nil && s.Speakers.Distinguished
}

// LearningMap is a named grouping of sessions inside a category.
type LearningMap struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	ID       string `json:"id"`
}

func (m LearningMap) String() string {
	return m.Category + " / " + m.Name
}
