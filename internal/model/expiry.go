package model

import "golang.org/x/text/language"

// Urgency is the display category derived from a due date.
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyOverdue
	UrgencyDueSoon
	UrgencyNeutral
)

// DueSoonDays is the inclusive window, in days from today, counted as due soon.
const DueSoonDays = 3

func (u Urgency) String() string {
	switch u {
	case UrgencyOverdue:
		return "overdue"
	case UrgencyDueSoon:
		return "due-soon"
	case UrgencyNeutral:
		return "neutral"
	}
	return ""
}

// Classify maps a YYYY-MM-DD due date to an urgency relative to today.
// Absent or unparsable dates yield UrgencyNone.
func Classify(expire string, today Date) Urgency {
	if expire == "" {
		return UrgencyNone
	}
	d, err := ParseDate(expire)
	if err != nil {
		return UrgencyNone
	}
	return ClassifyDate(d, today)
}

// ClassifyDate is Classify for an already parsed date.
func ClassifyDate(expire, today Date) Urgency {
	diff := today.DaysUntil(expire)
	switch {
	case diff < 0:
		return UrgencyOverdue
	case diff <= DueSoonDays:
		return UrgencyDueSoon
	default:
		return UrgencyNeutral
	}
}

// Locale selects the calendar layout used for due date labels.
type Locale struct {
	Tag    language.Tag
	layout string
}

// layouts are indexed like localeTags; entry 0 is the fallback.
var (
	localeTags = []language.Tag{
		language.Und,
		language.Japanese,
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.CanadianFrench,
		language.Chinese,
		language.Korean,
	}
	layouts = []string{
		DateLayout,
		"2006/1/2",
		"1/2/2006",
		"02/01/2006",
		"2.1.2006",
		"02/01/2006",
		DateLayout,
		"2006/1/2",
		"2006. 1. 2.",
	}
	localeMatcher = language.NewMatcher(localeTags)
)

// ISOLocale renders labels as YYYY-MM-DD.
var ISOLocale = Locale{Tag: language.Und, layout: DateLayout}

// ParseLocale resolves a BCP 47 tag such as "ja-JP" to the closest supported
// layout. Unknown or malformed tags fall back to ISOLocale.
func ParseLocale(s string) Locale {
	if s == "" {
		return ISOLocale
	}
	tag, err := language.Parse(s)
	if err != nil {
		return ISOLocale
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No || idx <= 0 || idx >= len(layouts) {
		return ISOLocale
	}
	return Locale{Tag: localeTags[idx], layout: layouts[idx]}
}

// Format renders d in the locale's calendar layout.
func (l Locale) Format(d Date) string {
	layout := l.layout
	if layout == "" {
		layout = DateLayout
	}
	return d.Time().Format(layout)
}

// FormatLabel renders a YYYY-MM-DD due date for display.
// It returns "" for absent or unparsable input.
func FormatLabel(expire string, l Locale) string {
	if expire == "" {
		return ""
	}
	d, err := ParseDate(expire)
	if err != nil {
		return ""
	}
	return l.Format(d)
}
