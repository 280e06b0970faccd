package note

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaketoday/daysync/pkg/model"
)

// FormatEventLine renders one fetched event as a timed line, optionally
// carrying its calendar name as a trailing tag.
func FormatEventLine(ev model.RemoteEvent, withCalendar bool, loc *time.Location) string {
	start := FormatClock(ev.Start, loc)
	end := FormatClock(ev.End, loc)
	if withCalendar {
		return fmt.Sprintf("- %s - %s %s [%s]", start, end, ev.Title, ev.CalendarName)
	}
	return fmt.Sprintf("- %s - %s %s", start, end, ev.Title)
}

// FormatEvents renders fetched events as a section body. When
// withDescription is set, each non-blank description line becomes a
// tab-indented child line.
func FormatEvents(events []model.RemoteEvent, withDescription, withCalendar bool, loc *time.Location) string {
	var lines []string
	for _, ev := range events {
		lines = append(lines, FormatEventLine(ev, withCalendar, loc))
		if !withDescription || ev.Description == "" {
			continue
		}
		for _, d := range strings.Split(ev.Description, "\n") {
			if strings.TrimSpace(d) == "" {
				continue
			}
			lines = append(lines, "\t- "+d)
		}
	}
	return strings.Join(lines, "\n")
}

// FormatCheckboxBlock renders a labeled list item with one checkbox child
// per todo, the shape used to surface remote tasks that have no home in the
// plan yet.
func FormatCheckboxBlock(label string, todos []model.Todo) string {
	lines := []string{"- " + label}
	for _, t := range todos {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf("\t- [%s] %s", mark, t.Title))
	}
	return strings.Join(lines, "\n")
}

// UpdateSection replaces the rendered body of the section whose heading
// contains header with body, leaving everything else in the document
// untouched. The operation is idempotent: the document is split into
// (before, heading, droppable body run, after) and reassembled, so applying
// the same body twice is a no-op. Stray content inside the section that is
// neither a list item, a child line, nor blank survives the rewrite. When
// several headings contain header, only the first one's section is
// rewritten; later duplicates keep their bodies. When the heading does not
// exist, a fresh one is appended at the end.
func UpdateSection(doc, header, body string) string {
	lines := strings.Split(doc, "\n")

	start := findHeading(lines, header, 0)
	if start < 0 {
		out := make([]string, 0, len(lines)+3)
		out = append(out, lines...)
		out = append(out, "", HeadingPrefix+header, body)
		return strings.Join(out, "\n")
	}

	end := start + 1
	for end < len(lines) && droppable(lines[end]) {
		end++
	}

	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[:start+1]...)
	out = append(out, body)
	if end < len(lines) {
		out = append(out, "")
		out = append(out, lines[end:]...)
	}
	return strings.Join(out, "\n")
}

// AppendAfterSection inserts block at the end of the named section, right
// before the next heading (or at end of document), without disturbing the
// section's existing lines. When the heading does not exist, the block is
// appended at the end of the document.
func AppendAfterSection(doc, header, block string) string {
	lines := strings.Split(doc, "\n")

	start := findHeading(lines, header, 0)
	if start < 0 {
		return strings.Join(append(lines, block), "\n")
	}

	at := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if Classify(lines[i]).Kind == KindHeading {
			at = i
			break
		}
	}
	// attach to the section body, below any trailing blank separator
	for at > start+1 && strings.TrimSpace(lines[at-1]) == "" {
		at--
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, block)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}

// SetTodoState rewrites the checkbox line whose title matches exactly,
// leaving every other line alone.
func SetTodoState(doc, title string, completed bool) string {
	lines := strings.Split(doc, "\n")
	for i, raw := range lines {
		l := Classify(raw)
		if l.Kind != KindCheckbox || l.Title != title {
			continue
		}
		mark := " "
		if completed {
			mark = "x"
		}
		lines[i] = fmt.Sprintf("\t- [%s] %s", mark, title)
	}
	return strings.Join(lines, "\n")
}

func findHeading(lines []string, header string, from int) int {
	for i := from; i < len(lines); i++ {
		l := Classify(lines[i])
		if l.Kind == KindHeading && strings.Contains(l.Text, header) {
			return i
		}
	}
	return -1
}

// droppable reports whether a line belongs to a section's rendered body:
// any list item, any child continuation, or a blank line.
func droppable(raw string) bool {
	if strings.HasPrefix(raw, "- ") {
		return true
	}
	switch Classify(raw).Kind {
	case KindDescription, KindCheckbox:
		return true
	}
	return strings.TrimSpace(raw) == ""
}
