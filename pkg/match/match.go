// Package match decides whether a parsed entry and a fetched event denote
// the same real-world item.
package match

import (
	"strings"
	"time"

	"github.com/jaketoday/daysync/pkg/model"
	"github.com/jaketoday/daysync/pkg/note"
)

// Tolerance is the maximum start/end drift between the two sides. The bound
// is exclusive: instants exactly one minute apart do not match.
const Tolerance = time.Minute

// TimesMatch reports whether a parsed entry, pinned to the pass day,
// occupies the same time slot as a fetched event. Start and end are checked
// independently; the title plays no part, so a renamed entry in the same
// slot still counts as the same item.
func TimesMatch(ev model.Event, remote model.RemoteEvent, day time.Time) bool {
	start := note.CombineDateTime(day, ev.StartClock)
	end := note.CombineDateTime(day, ev.EndClock)
	return within(start, remote.Start) && within(end, remote.End)
}

// Match is the strict form: same slot and the same title, ignoring case.
func Match(ev model.Event, remote model.RemoteEvent, day time.Time) bool {
	return TimesMatch(ev, remote, day) && strings.EqualFold(ev.Title, remote.Title)
}

func within(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < Tolerance
}
