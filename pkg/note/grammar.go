package note

import "regexp"

// HeadingPrefix marks a section heading line. A section is located by
// substring match against the heading text, so decorated headings like
// "## Daily Plan (work)" still resolve.
const HeadingPrefix = "## "

// LineKind classifies one raw line of the daily note.
type LineKind int

const (
	KindOther LineKind = iota
	KindHeading
	KindTimed
	KindDescription
	KindCheckbox
)

var (
	timedTaggedPattern = regexp.MustCompile(`^- (\d{1,2}:\d{2}) - (\d{1,2}:\d{2}) (.+?) \[(.+?)\]$`)
	timedPattern       = regexp.MustCompile(`^- (\d{1,2}:\d{2}) - (\d{1,2}:\d{2}) (.+)$`)
	checkboxPattern    = regexp.MustCompile(`^\t- \[([ x])\] (.+)$`)
	descriptionPattern = regexp.MustCompile(`^\t- (.+)$`)
	trailingTagPattern = regexp.MustCompile(`\s*\[.+?\]$`)
)

// Line is one classified line. Only the fields relevant to its Kind are set;
// Raw always holds the original text.
type Line struct {
	Kind       LineKind
	StartClock string // KindTimed
	EndClock   string // KindTimed
	Title      string // KindTimed, KindCheckbox
	Calendar   string // KindTimed with a trailing [tag], otherwise empty
	Text       string // KindHeading: heading text; KindDescription/KindCheckbox: content after the marker
	Checked    bool   // KindCheckbox
	Raw        string
}

// Classify recognizes a single line. Matching is purely syntactic: a time of
// 25:99 classifies fine and only turns into a nonsensical instant once it is
// pinned to a date. A checkbox line also matches the description shape, so
// the checkbox pattern is tried first and KindCheckbox carries the
// description reading of the line in Text.
func Classify(raw string) Line {
	l := Line{Kind: KindOther, Raw: raw}

	if len(raw) > len(HeadingPrefix) && raw[:len(HeadingPrefix)] == HeadingPrefix {
		l.Kind = KindHeading
		l.Text = raw[len(HeadingPrefix):]
		return l
	}
	if m := timedTaggedPattern.FindStringSubmatch(raw); m != nil {
		l.Kind = KindTimed
		l.StartClock, l.EndClock, l.Title, l.Calendar = m[1], m[2], m[3], m[4]
		return l
	}
	if m := timedPattern.FindStringSubmatch(raw); m != nil {
		l.Kind = KindTimed
		l.StartClock, l.EndClock, l.Title = m[1], m[2], m[3]
		return l
	}
	if m := checkboxPattern.FindStringSubmatch(raw); m != nil {
		l.Kind = KindCheckbox
		l.Checked = m[1] == "x"
		l.Title = m[2]
		l.Text = "[" + m[1] + "] " + m[2]
		return l
	}
	if m := descriptionPattern.FindStringSubmatch(raw); m != nil {
		l.Kind = KindDescription
		l.Text = m[1]
		return l
	}
	return l
}

// StripTrailingTag removes a trailing " [tag]" from a title. Plan entries
// should not carry one, but a tagged line is tolerated and its tag dropped.
func StripTrailingTag(title string) string {
	return trailingTagPattern.ReplaceAllString(title, "")
}
