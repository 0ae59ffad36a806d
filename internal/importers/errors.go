package importers

import (
	"errors"
	"fmt"
)

// ErrNoLearningMaps indicates a catalogue without a learningmap attribute.
var ErrNoLearningMaps = errors.New("catalogue has no learningmap attribute")

// MalformedRecordError rejects a raw item whose mandatory fields are
// missing or unparsable. Code is empty when the code itself is missing.
type MalformedRecordError struct {
	Code   string
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("malformed record: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed record %s: %s %s", e.Code, e.Field, e.Reason)
}

// ClassificationError rejects a code whose level digit is not 1-4.
type ClassificationError struct {
	Code  string
	Digit byte
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("session %s: unknown technical level digit %q", e.Code, e.Digit)
}
