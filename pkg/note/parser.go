package note

import (
	"strings"

	"github.com/jaketoday/daysync/pkg/model"
)

// EventWithTodos pairs a plan entry with the checkbox items nested under it.
type EventWithTodos struct {
	Event model.Event
	Todos []model.Todo
}

// ParseSection extracts the timed entries under the section whose heading
// contains header. Each entry consumes the contiguous run of description
// lines below it; a blank line or any other shape ends the run. Entries come
// back in document order; sorting by time is the caller's concern.
// defaultCalendar is assigned to entries without a trailing [tag].
func ParseSection(doc, header, defaultCalendar string) []model.Event {
	lines := strings.Split(doc, "\n")
	var events []model.Event

	inSection := false
	for i := 0; i < len(lines); {
		l := Classify(lines[i])

		if l.Kind == KindHeading {
			inSection = strings.Contains(l.Text, header)
			i++
			continue
		}

		if inSection && l.Kind == KindTimed {
			ev := model.Event{
				StartClock: l.StartClock,
				EndClock:   l.EndClock,
				Title:      l.Title,
				Calendar:   l.Calendar,
				RawLine:    l.Raw,
			}
			if ev.Calendar == "" {
				ev.Calendar = defaultCalendar
			}

			j := i + 1
			for j < len(lines) {
				child := Classify(lines[j])
				if child.Kind != KindDescription && child.Kind != KindCheckbox {
					break
				}
				ev.Description = append(ev.Description, child.Text)
				j++
			}

			events = append(events, ev)
			i = j
			continue
		}

		i++
	}

	return events
}

// ParseSectionWithTodos is the plan-section variant: immediate children that
// are checkboxes become the entry's todos, plain description children are
// consumed but not kept, and any other shape ends the child run. Titles are
// stripped of a trailing [tag] if one slipped in. defaultCalendar is
// assigned to every entry; plan entries are routed to a single calendar.
func ParseSectionWithTodos(doc, header, defaultCalendar string) []EventWithTodos {
	lines := strings.Split(doc, "\n")
	var results []EventWithTodos

	inSection := false
	for i := 0; i < len(lines); {
		l := Classify(lines[i])

		if l.Kind == KindHeading {
			inSection = strings.Contains(l.Text, header)
			i++
			continue
		}

		if inSection && l.Kind == KindTimed {
			entry := EventWithTodos{
				Event: model.Event{
					StartClock: l.StartClock,
					EndClock:   l.EndClock,
					Title:      StripTrailingTag(l.Title),
					Calendar:   defaultCalendar,
					RawLine:    l.Raw,
				},
			}

			j := i + 1
			for j < len(lines) {
				child := Classify(lines[j])
				if child.Kind == KindCheckbox {
					entry.Todos = append(entry.Todos, model.Todo{
						Title:       child.Title,
						Completed:   child.Checked,
						ParentStart: l.StartClock,
						ParentEnd:   l.EndClock,
					})
				} else if child.Kind != KindDescription {
					break
				}
				j++
			}

			results = append(results, entry)
			i = j
			continue
		}

		i++
	}

	return results
}

// Todos flattens the checkbox items from a parsed plan section.
func Todos(entries []EventWithTodos) []model.Todo {
	var todos []model.Todo
	for _, e := range entries {
		todos = append(todos, e.Todos...)
	}
	return todos
}
