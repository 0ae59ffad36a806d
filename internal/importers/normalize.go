package importers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/session-catalog/internal/entities"
)

// TimeLayout is the format of utcStartTime/utcEndTime in search results.
const TimeLayout = "2006/01/02 15:04:05"

const (
	attrTechnology    = "Technology"
	attrDistinguished = "distinguished_speaker"
)

var codePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*-([0-9]+)[A-Za-z]?$`)

// ClassifyLevel derives the technical level from the leading digit of the
// numeric part of a session code such as BRK-1234.
func ClassifyLevel(code string) (entities.Level, error) {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return "", &MalformedRecordError{Code: code, Field: "code", Reason: "does not match PREFIX-NNNN"}
	}

	digit := m[1][0]
	if digit < '1' || digit > '4' {
		return "", &ClassificationError{Code: code, Digit: digit}
	}
	return entities.Levels[digit-'1'], nil
}

// Normalizer turns raw search items into sessions for one deployment.
type Normalizer struct {
	// Location presents the API's UTC timestamps. Nil means UTC.
	Location *time.Location
	// TrackCapacity reads room and seat numbers from the first time slot.
	TrackCapacity bool
}

// NewNormalizer returns a normalizer that shifts timestamps by offset.
func NewNormalizer(offset time.Duration) *Normalizer {
	return &Normalizer{Location: FixedOffset(offset)}
}

// FixedOffset returns a zone named after the offset, e.g. UTC+01:00.
func FixedOffset(offset time.Duration) *time.Location {
	sign := '+'
	abs := offset
	if offset < 0 {
		sign = '-'
		abs = -offset
	}
	name := fmt.Sprintf("UTC%c%02d:%02d", sign, int(abs.Hours()), int(abs.Minutes())%60)
	return time.FixedZone(name, int(offset/time.Second))
}

// Normalize converts one raw item. Missing optional groups leave the
// matching Session field nil; missing mandatory fields, a bad code or an
// unparsable timestamp reject the item.
func (n *Normalizer) Normalize(item entities.RawItem) (entities.Session, error) {
	code, err := requiredString(item, "code", "")
	if err != nil {
		return entities.Session{}, err
	}
	sessionType, err := requiredString(item, "type", code)
	if err != nil {
		return entities.Session{}, err
	}
	title, err := requiredString(item, "title", code)
	if err != nil {
		return entities.Session{}, err
	}

	level, err := ClassifyLevel(code)
	if err != nil {
		return entities.Session{}, err
	}

	session := entities.Session{
		ID:           code,
		Type:         sessionType,
		Name:         Sanitize(title),
		Level:        level,
		Technologies: technologies(item),
	}
	if abstract, ok := item["abstract"].(string); ok {
		session.Abstract = Sanitize(abstract)
	}

	slot, err := firstTimeSlot(item, code)
	if err != nil {
		return entities.Session{}, err
	}
	if slot == nil {
		session.IsIncomplete = true
	} else {
		if session.Schedule, err = n.schedule(slot, code); err != nil {
			return entities.Session{}, err
		}
		if n.TrackCapacity {
			if session.Capacity, err = capacity(slot, code); err != nil {
				return entities.Session{}, err
			}
		}
	}

	if session.Speakers, err = speakers(item, code); err != nil {
		return entities.Session{}, err
	}

	return session, nil
}

func (n *Normalizer) location() *time.Location {
	if n.Location == nil {
		return time.UTC
	}
	return n.Location
}

func requiredString(item entities.RawItem, key, code string) (string, error) {
	v, ok := item[key]
	if !ok || v == nil {
		return "", &MalformedRecordError{Code: code, Field: key, Reason: "is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &MalformedRecordError{Code: code, Field: key, Reason: fmt.Sprintf("is %T, not a string", v)}
	}
	if strings.TrimSpace(s) == "" {
		return "", &MalformedRecordError{Code: code, Field: key, Reason: "is empty"}
	}
	return s, nil
}

// firstTimeSlot returns nil when the item has no schedule.
func firstTimeSlot(item entities.RawItem, code string) (map[string]any, error) {
	v, ok := item["times"]
	if !ok || v == nil {
		return nil, nil
	}
	slots, ok := v.([]any)
	if !ok {
		return nil, &MalformedRecordError{Code: code, Field: "times", Reason: "is not a list"}
	}
	if len(slots) == 0 {
		return nil, nil
	}
	slot, ok := slots[0].(map[string]any)
	if !ok {
		return nil, &MalformedRecordError{Code: code, Field: "times[0]", Reason: "is not an object"}
	}
	return slot, nil
}

func (n *Normalizer) schedule(slot map[string]any, code string) (*entities.Schedule, error) {
	start, err := n.parseTime(slot, "utcStartTime", code)
	if err != nil {
		return nil, err
	}
	end, err := n.parseTime(slot, "utcEndTime", code)
	if err != nil {
		return nil, err
	}
	day, _ := slot["dayName"].(string)
	return &entities.Schedule{Start: start, End: end, DayName: day}, nil
}

func (n *Normalizer) parseTime(slot map[string]any, key, code string) (*time.Time, error) {
	raw, ok := slot[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, &MalformedRecordError{Code: code, Field: key, Reason: fmt.Sprintf("is %T, not a string", raw)}
	}
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return nil, &MalformedRecordError{Code: code, Field: key, Reason: fmt.Sprintf("%q is not %s", s, TimeLayout)}
	}
	t = t.In(n.location())
	return &t, nil
}

func capacity(slot map[string]any, code string) (*entities.Capacity, error) {
	c := &entities.Capacity{}
	var err error
	if c.Total, err = optionalInt(slot, "capacity", code); err != nil {
		return nil, err
	}
	if c.SeatsRemaining, err = optionalInt(slot, "seatsRemaining", code); err != nil {
		return nil, err
	}
	if c.WaitlistRemaining, err = optionalInt(slot, "waitlistRemaining", code); err != nil {
		return nil, err
	}
	c.Room, _ = slot["room"].(string)
	c.RoomID, _ = slot["roomId"].(string)
	return c, nil
}

func optionalInt(m map[string]any, key, code string) (*int, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var n int
	switch v := raw.(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, &MalformedRecordError{Code: code, Field: key, Reason: "is not an integer"}
		}
		n = int(i)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, &MalformedRecordError{Code: code, Field: key, Reason: fmt.Sprintf("%q is not an integer", v)}
		}
		n = i
	default:
		return nil, &MalformedRecordError{Code: code, Field: key, Reason: fmt.Sprintf("is %T, not a number", raw)}
	}
	return &n, nil
}

// attributes returns the objects under attributevalues, skipping anything
// that is not an object.
func attributes(m map[string]any) []map[string]any {
	list, _ := m["attributevalues"].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if attr, ok := v.(map[string]any); ok {
			out = append(out, attr)
		}
	}
	return out
}

func technologies(item entities.RawItem) []string {
	techs := []string{}
	for _, attr := range attributes(item) {
		if attr["attribute_id"] != attrTechnology {
			continue
		}
		if value, ok := attr["value"].(string); ok && value != "" {
			techs = append(techs, Sanitize(value))
		}
	}
	return techs
}

// speakers returns nil when the item has no participants block. The
// distinguished flag is set if any participant carries the attribute.
func speakers(item entities.RawItem, code string) (*entities.Speakers, error) {
	v, ok := item["participants"]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &MalformedRecordError{Code: code, Field: "participants", Reason: "is not a list"}
	}

	sp := &entities.Speakers{Names: []string{}}
	for _, p := range list {
		participant, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := participant["globalFullName"].(string); ok && name != "" {
			sp.Names = append(sp.Names, Sanitize(name))
		}
		for _, attr := range attributes(participant) {
			if attr["attribute_id"] == attrDistinguished {
				sp.Distinguished = true
			}
		}
	}
	return sp, nil
}
