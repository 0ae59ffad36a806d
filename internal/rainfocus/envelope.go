package rainfocus

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mrlokans/session-catalog/internal/entities"
)

// MaxTotal bounds the total a search may report. A conference catalogue
// holds a few thousand sessions; anything past this is a broken response.
const MaxTotal = 100_000

// flexInt accepts JSON numbers and numeric strings; the API uses both.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(fl) || math.Abs(fl) > math.MaxInt32 {
			return fmt.Errorf("invalid integer %s", string(b))
		}
		n = int(fl)
	}
	f.value = n
	f.set = true
	return nil
}

type pageFields struct {
	Total    flexInt            `json:"total"`
	From     flexInt            `json:"from"`
	Size     flexInt            `json:"size"`
	NumItems flexInt            `json:"numItems"`
	Items    []entities.RawItem `json:"items"`
}

// envelope covers both response shapes. The first call of a search returns
// totalSearchItems plus a sectionList whose first entry holds the page;
// later calls return the page fields at the top level.
type envelope struct {
	pageFields
	ResponseCode     string             `json:"responseCode"`
	ResponseMessage  string             `json:"responseMessage"`
	TotalSearchItems flexInt            `json:"totalSearchItems"`
	SectionList      []pageFields       `json:"sectionList"`
	Attributes       []entities.RawItem `json:"attributes"`
}

// Page is one decoded page of search results.
type Page struct {
	Total     int
	From      int
	Size      int
	NumItems  int
	Items     []entities.RawItem
	Sectioned bool
}

// Advance returns how far this page moves the offset cursor.
func (p *Page) Advance() int {
	if p.Size > 0 {
		return p.Size
	}
	if p.NumItems > 0 {
		return p.NumItems
	}
	return len(p.Items)
}

func decodeEnvelope(r io.Reader) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &env, nil
}

// page picks whichever shape the response used.
func (env *envelope) page() (*Page, error) {
	fields := env.pageFields
	sectioned := false
	if len(env.SectionList) > 0 {
		fields = env.SectionList[0]
		sectioned = true
	}

	var total flexInt
	switch {
	case env.Total.set:
		total = env.Total
	case env.TotalSearchItems.set:
		total = env.TotalSearchItems
	case fields.Total.set:
		total = fields.Total
	default:
		return nil, ErrMissingTotal
	}
	if total.value < 0 {
		return nil, fmt.Errorf("%w: negative total %d", ErrMissingTotal, total.value)
	}
	if total.value > MaxTotal {
		return nil, fmt.Errorf("%w: total %d exceeds %d", ErrMissingTotal, total.value, MaxTotal)
	}

	return &Page{
		Total:     total.value,
		From:      fields.From.value,
		Size:      fields.Size.value,
		NumItems:  fields.NumItems.value,
		Items:     fields.Items,
		Sectioned: sectioned,
	}, nil
}
