package importers

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/session-catalog/internal/entities"
)

func decodeItem(t *testing.T, s string) entities.RawItem {
	t.Helper()
	var item entities.RawItem
	require.NoError(t, json.Unmarshal([]byte(s), &item))
	return item
}

func TestClassifyLevel(t *testing.T) {
	tests := []struct {
		code string
		want entities.Level
	}{
		{"BRK-1234", entities.LevelIntroductory},
		{"LTRCRT-2001", entities.LevelIntermediate},
		{"TECSEC-3100", entities.LevelAdvanced},
		{"PSOGEN-4000", entities.LevelGeneral},
		{"BRKENS-1999b", entities.LevelIntroductory},
		{"brk-2", entities.LevelIntermediate},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			level, err := ClassifyLevel(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestClassifyLevel_UnknownDigit(t *testing.T) {
	for _, code := range []string{"BRK-5123", "BRK-0123", "BRK-9000"} {
		_, err := ClassifyLevel(code)

		var classErr *ClassificationError
		require.True(t, errors.As(err, &classErr), code)
		assert.Equal(t, code, classErr.Code)
		assert.Equal(t, code[4], classErr.Digit)
	}
}

func TestClassifyLevel_MalformedCode(t *testing.T) {
	for _, code := range []string{"", "BRK1234", "BRK-", "-1234", "BRK-12-34", "BRK-abc"} {
		_, err := ClassifyLevel(code)

		var malformed *MalformedRecordError
		assert.True(t, errors.As(err, &malformed), "code %q", code)
	}
}

func TestClassifyLevel_OnlyLeadingDigitMatters(t *testing.T) {
	for i, level := range entities.Levels {
		digit := byte('1' + i)
		for _, rest := range []string{"", "0", "999", "2345"} {
			got, err := ClassifyLevel("ABC-" + string(digit) + rest)
			require.NoError(t, err)
			assert.Equal(t, level, got)
		}
	}
}

func TestNormalize_EndToEnd(t *testing.T) {
	item := decodeItem(t, `{
		"type": "Breakout",
		"title": "<b>Intro</b> to Routing\n",
		"code": "BRK-1234",
		"times": [{"utcStartTime": "2024/02/06 09:00:00", "utcEndTime": "2024/02/06 10:00:00"}]
	}`)

	session, err := NewNormalizer(time.Hour).Normalize(item)
	require.NoError(t, err)

	assert.Equal(t, "BRK-1234", session.ID)
	assert.Equal(t, "Breakout", session.Type)
	assert.Equal(t, "Intro to Routing", session.Name)
	assert.Equal(t, entities.LevelIntroductory, session.Level)
	assert.False(t, session.IsIncomplete)

	start, ok := session.StartTime()
	require.True(t, ok)
	end, ok := session.EndTime()
	require.True(t, ok)
	assert.Equal(t, "2024-02-06T10:00:00", start.Format("2006-01-02T15:04:05"))
	assert.Equal(t, "2024-02-06T11:00:00", end.Format("2006-01-02T15:04:05"))
	assert.True(t, start.Equal(time.Date(2024, 2, 6, 9, 0, 0, 0, time.UTC)))

	assert.Nil(t, session.Speakers)
	assert.Nil(t, session.Capacity)
	assert.NotNil(t, session.Technologies)
	assert.Empty(t, session.Technologies)
}

func TestNormalize_NegativeOffset(t *testing.T) {
	item := decodeItem(t, `{"type":"Breakout","title":"T","code":"BRK-2000",
		"times":[{"utcStartTime":"2023/06/05 02:00:00"}]}`)

	session, err := NewNormalizer(-7 * time.Hour).Normalize(item)
	require.NoError(t, err)

	start, ok := session.StartTime()
	require.True(t, ok)
	assert.Equal(t, "2023-06-04 19:00", start.Format("2006-01-02 15:04"))

	_, ok = session.EndTime()
	assert.False(t, ok, "missing end stays unset")
}

func TestNormalize_NoTimesIsIncomplete(t *testing.T) {
	for _, body := range []string{
		`{"type":"Walk-in Lab","title":"Lab","code":"LABSEC-2001"}`,
		`{"type":"Walk-in Lab","title":"Lab","code":"LABSEC-2001","times":[]}`,
		`{"type":"Walk-in Lab","title":"Lab","code":"LABSEC-2001","times":null}`,
	} {
		session, err := NewNormalizer(time.Hour).Normalize(decodeItem(t, body))
		require.NoError(t, err, body)
		assert.True(t, session.IsIncomplete)
		assert.Nil(t, session.Schedule)
		_, ok := session.StartTime()
		assert.False(t, ok)
	}
}

func TestNormalize_EmptyTimeSlotIsScheduledWithoutTimes(t *testing.T) {
	n := NewNormalizer(time.Hour)
	n.TrackCapacity = true

	session, err := n.Normalize(decodeItem(t, `{"type":"Walk-in Lab","title":"Lab","code":"LABSEC-2001","times":[{}]}`))
	require.NoError(t, err)

	assert.False(t, session.IsIncomplete, "a schedule block is present")
	require.NotNil(t, session.Schedule)
	assert.Nil(t, session.Schedule.Start)
	assert.Nil(t, session.Schedule.End)
	_, ok := session.StartTime()
	assert.False(t, ok)
	require.NotNil(t, session.Capacity)
	assert.Nil(t, session.Capacity.Total)
}

func TestNormalize_MissingMandatoryFields(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		code  string
	}{
		{"missing code", `{"type":"Breakout","title":"T"}`, "code", ""},
		{"missing type", `{"title":"T","code":"BRK-1000"}`, "type", "BRK-1000"},
		{"missing title", `{"type":"Breakout","code":"BRK-1000"}`, "title", "BRK-1000"},
		{"numeric code", `{"type":"Breakout","title":"T","code":1000}`, "code", ""},
		{"bad code", `{"type":"Breakout","title":"T","code":"BRK1000"}`, "code", "BRK1000"},
		{"bad time", `{"type":"Breakout","title":"T","code":"BRK-1000","times":[{"utcStartTime":"06.02.2024 09:00"}]}`, "utcStartTime", "BRK-1000"},
		{"times not a list", `{"type":"Breakout","title":"T","code":"BRK-1000","times":"soon"}`, "times", "BRK-1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizer(0).Normalize(decodeItem(t, tt.body))

			var malformed *MalformedRecordError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.field, malformed.Field)
			assert.Equal(t, tt.code, malformed.Code)
		})
	}
}

func TestNormalize_SpeakersAndTechnologies(t *testing.T) {
	item := decodeItem(t, `{
		"type": "Breakout",
		"title": "Routing at scale",
		"code": "BRKENT-3001",
		"abstract": "<p>Deep\ndive</p>\u0007",
		"attributevalues": [
			{"attribute_id": "Technology", "value": "Routing"},
			{"attribute_id": "Level", "value": "Advanced"},
			{"attribute_id": "Technology", "value": "<i>SD-WAN</i>"}
		],
		"participants": [
			{"globalFullName": "Ada Lovelace", "attributevalues": [{"attribute_id": "distinguished_speaker"}]},
			{"globalFullName": "Alan Turing", "attributevalues": [{"attribute_id": "cisco_employee"}]},
			{"globalFullName": "Grace Hopper"}
		]
	}`)

	session, err := NewNormalizer(0).Normalize(item)
	require.NoError(t, err)

	assert.Equal(t, []string{"Routing", "SD-WAN"}, session.Technologies)
	assert.Equal(t, "Deepdive", session.Abstract)
	require.NotNil(t, session.Speakers)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing", "Grace Hopper"}, session.SpeakerNames())
	assert.True(t, session.IsDistinguishedSpeaker(), "a later participant must not clear the flag")
}

func TestNormalize_EmptyParticipants(t *testing.T) {
	session, err := NewNormalizer(0).Normalize(decodeItem(t,
		`{"type":"Breakout","title":"T","code":"BRK-1000","participants":[]}`))
	require.NoError(t, err)
	require.NotNil(t, session.Speakers)
	assert.Empty(t, session.Speakers.Names)
	assert.False(t, session.IsDistinguishedSpeaker())
}

func TestNormalize_Capacity(t *testing.T) {
	item := decodeItem(t, `{"type":"Technical Seminar","title":"T","code":"TECENT-2001",
		"times":[{"utcStartTime":"2024/02/05 08:00:00","utcEndTime":"2024/02/05 16:00:00",
			"dayName":"Monday","capacity":200,"seatsRemaining":"12","room":"Hall 7","roomId":"r-7"}]}`)

	withoutTracking, err := NewNormalizer(time.Hour).Normalize(item)
	require.NoError(t, err)
	assert.Nil(t, withoutTracking.Capacity)
	assert.Equal(t, "Monday", withoutTracking.Schedule.DayName)

	n := NewNormalizer(time.Hour)
	n.TrackCapacity = true
	session, err := n.Normalize(item)
	require.NoError(t, err)

	require.NotNil(t, session.Capacity)
	require.NotNil(t, session.Capacity.Total)
	assert.Equal(t, 200, *session.Capacity.Total)
	require.NotNil(t, session.Capacity.SeatsRemaining)
	assert.Equal(t, 12, *session.Capacity.SeatsRemaining)
	assert.Nil(t, session.Capacity.WaitlistRemaining)
	assert.Equal(t, "Hall 7", session.Capacity.Room)
	assert.Equal(t, "r-7", session.Capacity.RoomID)
}

func TestNormalize_BadCapacity(t *testing.T) {
	n := &Normalizer{TrackCapacity: true}
	_, err := n.Normalize(decodeItem(t, `{"type":"Breakout","title":"T","code":"BRK-1000",
		"times":[{"capacity":"lots"}]}`))

	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "capacity", malformed.Field)
}

func TestNormalize_DoesNotShareState(t *testing.T) {
	n := NewNormalizer(time.Hour)
	item := decodeItem(t, `{"type":"Breakout","title":"T","code":"BRK-1000",
		"attributevalues":[{"attribute_id":"Technology","value":"A"}]}`)

	a, err := n.Normalize(item)
	require.NoError(t, err)
	b, err := n.Normalize(item)
	require.NoError(t, err)

	a.Technologies[0] = "changed"
	assert.Equal(t, "A", b.Technologies[0])
}

func TestFixedOffset(t *testing.T) {
	name, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, FixedOffset(90*time.Minute)).Zone()
	assert.Equal(t, "UTC+01:30", name)
	assert.Equal(t, 5400, offset)

	name, _ = time.Date(2024, 1, 1, 0, 0, 0, 0, FixedOffset(-7*time.Hour)).Zone()
	assert.Equal(t, "UTC-07:00", name)
}
