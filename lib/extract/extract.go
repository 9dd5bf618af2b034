// Package extract walks authenticated Moodle pages and produces
// best-effort course/grade/assignment records. The source DOM is not
// contractually stable, so every non-identifying field is optional and a
// single bad element never aborts the pass.
package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"unisync-backend/lib/browser"
	"unisync-backend/lib/htmlutil"
	"unisync-backend/lib/institutions"
	"unisync-backend/lib/timezone"
)

var tracer = otel.Tracer("lib/extract")

// Record kinds, matching the keys of a profile's extraction spec.
const (
	KindCourses     = "courses"
	KindGrades      = "grades"
	KindAssignments = "assignments"
)

// Record is one extracted item. Only Kind, Institution, ExtractedAt and
// Name are guaranteed; everything else is present when the page happened
// to carry it.
type Record struct {
	Kind        string    `json:"kind"`
	Institution string    `json:"institution"`
	ExtractedAt time.Time `json:"extracted_at"`

	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	Instructor string `json:"instructor,omitempty"`
	Semester   string `json:"semester,omitempty"`
	Year       string `json:"year,omitempty"`
	URL        string `json:"url,omitempty"`
	Grade      string `json:"grade,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
}

// UI labels that share the course tiles' markup but are navigation, not
// content.
var denylist = map[string]bool{
	"הודעות":        true,
	"פרטיות":        true,
	"העדפות הודעות": true,
	"כללי":          true,
	"עזרה":          true,
	"תמיכה":         true,
	"מידע שימושי":   true,
	"הקורסים שלי":   true,
}

var denylistPrefixes = []string{"תפריט", "הגדרות", "ראשי", "עדכונים"}

// Anything this short is a button label or an icon, not a course name.
const minTextLength = 6

var (
	codeRegex       = regexp.MustCompile(`\(([^)]+)\)`)
	instructorRegex = regexp.MustCompile(`מרצה:\s*([^\n]+)`)
	semesterRegex   = regexp.MustCompile(`סמ\s*(\d+)`)
	yearRegex       = regexp.MustCompile(`(\d{4})`)
	gradeValueRegex = regexp.MustCompile(`\d+(\.\d+)?`)
)

type Extractor struct {
	profile institutions.Profile
	now     func() time.Time
}

func New(profile institutions.Profile) *Extractor {
	return &Extractor{profile: profile, now: timezone.Now}
}

// Extract pulls the requested record kinds out of the current page. Kinds
// the institution does not expose are skipped silently. The returned map
// has an entry for every extracted kind, possibly with an empty list.
func (e *Extractor) Extract(ctx context.Context, page browser.Page, kinds []string) (map[string][]Record, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()
	span.SetAttributes(attribute.String("institution", e.profile.ID))

	content, err := page.HTML()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	supported := map[string]bool{}
	for _, kind := range e.profile.Extract.Kinds {
		supported[kind] = true
	}

	out := map[string][]Record{}
	for _, kind := range kinds {
		if !supported[kind] {
			slog.DebugContext(ctx, "record kind not available at institution",
				"institution", e.profile.ID, "kind", kind)
			continue
		}
		records := e.extractKind(doc, kind)
		out[kind] = records
		span.SetAttributes(attribute.Int("records."+kind, len(records)))
	}
	return out, nil
}

// extractKind tries the kind's candidate selectors in order and keeps the
// first one that yields any usable record.
func (e *Extractor) extractKind(doc *goquery.Document, kind string) []Record {
	for _, selector := range e.profile.Extract.Selectors[kind] {
		records := e.collect(doc.Find(selector), kind)
		if len(records) > 0 {
			return records
		}
	}
	return []Record{}
}

func (e *Extractor) collect(sel *goquery.Selection, kind string) []Record {
	var records []Record
	seen := map[string]bool{}

	sel.Each(func(_ int, node *goquery.Selection) {
		record, ok := e.parseNode(node, kind)
		if !ok || seen[record.Name] {
			return
		}
		seen[record.Name] = true
		records = append(records, record)
	})
	return records
}

// parseNode turns one DOM element into a record, or rejects it as UI
// chrome. A record with only a name is still a record.
func (e *Extractor) parseNode(node *goquery.Selection, kind string) (Record, bool) {
	text := htmlutil.CleanText(node)
	if len([]rune(text)) < minTextLength {
		return Record{}, false
	}
	name := text
	if i := strings.Index(text, "("); i > 0 {
		name = strings.TrimSpace(text[:i])
	}
	if denylist[name] || denylist[text] {
		return Record{}, false
	}
	for _, prefix := range denylistPrefixes {
		if strings.HasPrefix(text, prefix) {
			return Record{}, false
		}
	}

	record := Record{
		Kind:        kind,
		Institution: e.profile.ID,
		ExtractedAt: e.now(),
		Name:        name,
		URL:         htmlutil.NearestHref(node),
	}
	if m := codeRegex.FindStringSubmatch(text); m != nil {
		record.Code = strings.TrimSpace(m[1])
	}
	if m := instructorRegex.FindStringSubmatch(text); m != nil {
		record.Instructor = strings.TrimSpace(m[1])
	}
	if m := semesterRegex.FindStringSubmatch(text); m != nil {
		record.Semester = m[1]
	}
	if m := yearRegex.FindStringSubmatch(text); m != nil {
		record.Year = m[1]
	}

	switch kind {
	case KindGrades:
		if grade := htmlutil.CleanText(node.Find(".grade-value, .finalgrade").First()); grade != "" {
			record.Grade = grade
		} else if m := gradeValueRegex.FindString(text); m != "" && m != record.Year {
			record.Grade = m
		}
	case KindAssignments:
		if due := htmlutil.CleanText(node.Find(".due-date, .duedate").First()); due != "" {
			record.DueDate = due
		}
	}

	return record, true
}
