package exporters

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/utils"
)

var (
	calendarBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	calendarGrid       = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	calendarText       = color.NRGBA{R: 0x0D, G: 0x27, B: 0x4D, A: 255}
)

const (
	glyphWidth  = 7
	glyphHeight = 13
)

// CalendarLayout sizes the rendered grid. Hours are a half-open range
// [FirstHour, LastHour).
type CalendarLayout struct {
	FirstHour    int
	LastHour     int
	HourHeight   int
	DayWidth     int
	HeaderHeight int
	GutterWidth  int
}

// DefaultCalendarLayout covers working hours, 08:00 to 19:00.
func DefaultCalendarLayout() CalendarLayout {
	return CalendarLayout{
		FirstHour:    8,
		LastHour:     19,
		HourHeight:   60,
		DayWidth:     240,
		HeaderHeight: 60,
		GutterWidth:  50,
	}
}

// Size returns the image dimensions for the given number of days.
func (l CalendarLayout) Size(days int) image.Point {
	return image.Pt(l.GutterWidth+days*l.DayWidth, l.HeaderHeight+(l.LastHour-l.FirstHour)*l.HourHeight)
}

// Skipped names a session left off a calendar and why.
type Skipped struct {
	Code   string
	Reason string
}

// CalendarRenderer draws one week-style PNG per learning map.
type CalendarRenderer struct {
	Dir    string
	Days   []time.Time
	Layout CalendarLayout
}

func NewCalendarRenderer(dir string, days []time.Time) *CalendarRenderer {
	return &CalendarRenderer{Dir: dir, Days: days, Layout: DefaultCalendarLayout()}
}

// PathFor returns <dir>/<category>/<name>.png.
func (r *CalendarRenderer) PathFor(m entities.LearningMap) string {
	return filepath.Join(r.Dir, utils.SanitizeFilename(m.Category), utils.SanitizeFilename(m.Name)+".png")
}

// Render draws the sessions of one learning map and writes the PNG.
func (r *CalendarRenderer) Render(m entities.LearningMap, sessions []entities.Session) (string, int, []Skipped, error) {
	img, drawn, skipped := r.Draw(m.Name, sessions)

	path := r.PathFor(m)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", drawn, skipped, fmt.Errorf("failed to create category directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", drawn, skipped, err
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return "", drawn, skipped, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return path, drawn, skipped, nil
}

// Draw renders the calendar in memory. Walk-in labs, sessions without a
// start and end, and sessions outside the event days are skipped.
func (r *CalendarRenderer) Draw(title string, sessions []entities.Session) (*image.NRGBA, int, []Skipped) {
	l := r.Layout
	img := image.NewNRGBA(image.Rectangle{Max: l.Size(len(r.Days))})
	draw.Draw(img, img.Bounds(), image.NewUniform(calendarBackground), image.Point{}, draw.Src)

	r.drawGrid(img, title)

	byDay := make(map[int][]entities.Session)
	var skipped []Skipped
	for _, s := range sessions {
		if s.Type == entities.SessionTypeWalkInLab {
			skipped = append(skipped, Skipped{Code: s.ID, Reason: "walk-in lab"})
			continue
		}
		start, okStart := s.StartTime()
		end, okEnd := s.EndTime()
		if !okStart || !okEnd {
			skipped = append(skipped, Skipped{Code: s.ID, Reason: "no start or end time"})
			continue
		}
		if !end.After(start) {
			skipped = append(skipped, Skipped{Code: s.ID, Reason: "ends before it starts"})
			continue
		}
		day := r.dayIndex(start)
		if day < 0 {
			skipped = append(skipped, Skipped{Code: s.ID, Reason: "outside event days"})
			continue
		}
		byDay[day] = append(byDay[day], s)
	}

	drawn := 0
	for day, daySessions := range byDay {
		n, outside := r.drawDay(img, day, daySessions)
		drawn += n
		skipped = append(skipped, outside...)
	}

	for _, s := range skipped {
		log.Printf("[CALENDAR] %s: skipped %s (%s)", title, s.Code, s.Reason)
	}
	return img, drawn, skipped
}

func (r *CalendarRenderer) dayIndex(t time.Time) int {
	y, m, d := t.Date()
	for i, day := range r.Days {
		dy, dm, dd := day.Date()
		if y == dy && m == dm && d == dd {
			return i
		}
	}
	return -1
}

func (r *CalendarRenderer) drawGrid(img *image.NRGBA, title string) {
	l := r.Layout
	bounds := img.Bounds()

	drawText(img, title, l.GutterWidth, glyphHeight+4, bounds.Dx()-l.GutterWidth)

	for h := l.FirstHour; h <= l.LastHour; h++ {
		y := l.HeaderHeight + (h-l.FirstHour)*l.HourHeight
		fillRect(img, image.Rect(l.GutterWidth, y, bounds.Max.X, y+1), calendarGrid)
		if h < l.LastHour {
			drawText(img, fmt.Sprintf("%02d:00", h), 4, y+glyphHeight, l.GutterWidth-4)
		}
	}

	for i, day := range r.Days {
		x := l.GutterWidth + i*l.DayWidth
		fillRect(img, image.Rect(x, l.HeaderHeight, x+1, bounds.Max.Y), calendarGrid)
		drawText(img, day.Format("Mon 2006-01-02"), x+4, l.HeaderHeight-8, l.DayWidth-8)
	}
}

// drawDay lays out overlapping sessions side by side in lanes.
func (r *CalendarRenderer) drawDay(img *image.NRGBA, day int, sessions []entities.Session) (int, []Skipped) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, _ := sessions[i].StartTime()
		b, _ := sessions[j].StartTime()
		return a.Before(b)
	})

	var laneEnds []time.Time
	lanes := make([]int, len(sessions))
	for i, s := range sessions {
		start, _ := s.StartTime()
		end, _ := s.EndTime()
		lane := -1
		for j, laneEnd := range laneEnds {
			if !start.Before(laneEnd) {
				lane = j
				break
			}
		}
		if lane < 0 {
			laneEnds = append(laneEnds, end)
			lane = len(laneEnds) - 1
		} else {
			laneEnds[lane] = end
		}
		lanes[i] = lane
	}

	l := r.Layout
	laneWidth := l.DayWidth / len(laneEnds)
	top := l.HeaderHeight
	bottom := l.HeaderHeight + (l.LastHour-l.FirstHour)*l.HourHeight

	drawn := 0
	var outside []Skipped
	for i, s := range sessions {
		start, _ := s.StartTime()
		end, _ := s.EndTime()
		y0 := max(r.offsetY(start), top)
		y1 := min(r.offsetY(end), bottom)
		if y1 <= y0 {
			outside = append(outside, Skipped{Code: s.ID, Reason: "outside working hours"})
			continue
		}
		x0 := l.GutterWidth + day*l.DayWidth + lanes[i]*laneWidth + 2
		x1 := x0 + laneWidth - 4

		block := image.Rect(x0, y0+1, x1, y1-1)
		fillRect(img, block, utils.LevelColor(s.Level, utils.FillAlpha))
		strokeRect(img, block, utils.LevelColor(s.Level, utils.BorderAlpha))

		drawText(img, s.ID, x0+3, y0+glyphHeight+1, x1-x0-6)
		if y1-y0 > 2*glyphHeight+4 {
			drawText(img, s.Name, x0+3, y0+2*glyphHeight+3, x1-x0-6)
		}
		drawn++
	}
	return drawn, outside
}

func (r *CalendarRenderer) offsetY(t time.Time) int {
	l := r.Layout
	minutes := (t.Hour()-l.FirstHour)*60 + t.Minute()
	return l.HeaderHeight + minutes*l.HourHeight/60
}

func fillRect(img draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}

func strokeRect(img draw.Image, rect image.Rectangle, c color.Color) {
	const w = 2
	fillRect(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+w), c)
	fillRect(img, image.Rect(rect.Min.X, rect.Max.Y-w, rect.Max.X, rect.Max.Y), c)
	fillRect(img, image.Rect(rect.Min.X, rect.Min.Y+w, rect.Min.X+w, rect.Max.Y-w), c)
	fillRect(img, image.Rect(rect.Max.X-w, rect.Min.Y+w, rect.Max.X, rect.Max.Y-w), c)
}

// drawText writes s with its baseline at y, cut to fit maxWidth pixels.
func drawText(img draw.Image, s string, x, y, maxWidth int) {
	if maxWidth < glyphWidth {
		return
	}
	runes := []rune(s)
	if limit := maxWidth / glyphWidth; len(runes) > limit {
		runes = append(runes[:limit-1], '~')
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(calendarText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(string(runes))
}

// CalendarExporter adapts the renderer to one learning map's pipeline.
type CalendarExporter struct {
	renderer *CalendarRenderer
	m        entities.LearningMap
	skipped  []Skipped
}

func (r *CalendarRenderer) For(m entities.LearningMap) *CalendarExporter {
	return &CalendarExporter{renderer: r, m: m}
}

func (e *CalendarExporter) Export(sessions []entities.Session) (ExportResult, error) {
	path, drawn, skipped, err := e.renderer.Render(e.m, sessions)
	e.skipped = skipped
	result := ExportResult{SessionsProcessed: drawn, SessionsSkipped: len(skipped)}
	if err != nil {
		return result, err
	}
	result.Files = []string{path}
	return result, nil
}

// Skipped lists the sessions the last export left off the calendar.
func (e *CalendarExporter) Skipped() []Skipped {
	return e.skipped
}
