package nlu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Entities carries the values extracted from a single utterance. A zero
// field means the utterance did not mention it; no extractor ever fails,
// it only leaves fields empty.
type Entities struct {
	Location      string `json:"location,omitempty"`
	Day           string `json:"day,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	Title         string `json:"title,omitempty"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bin\s+([A-Za-z][A-Za-z]+(?:\s+[A-Za-z][A-Za-z]+)*)`),
	regexp.MustCompile(`(?i)\bat\s+([A-Za-z][A-Za-z]+(?:\s+[A-Za-z][A-Za-z]+)*)`),
	regexp.MustCompile(`(?i)\bfor\s+([A-Za-z][A-Za-z]+(?:\s+[A-Za-z][A-Za-z]+)*)`),
	// Bounded variant so "to Room 15" stops before a trailing preposition.
	regexp.MustCompile(`(?i)\bto\s+([A-Za-z0-9\s]+?)(?:\.|,|$|\s+for|\s+at|\s+on)`),
}

// locationStopWords are filler words that the prepositional patterns catch
// but never name a place.
var locationStopWords = map[string]struct{}{
	"the":      {},
	"a":        {},
	"an":       {},
	"my":       {},
	"tomorrow": {},
	"today":    {},
}

// ExtractLocation finds a place name after "in", "at", "for" or "to".
// Patterns are tried in order; a stop-word hit falls through to the next
// pattern. The result is title-cased.
func ExtractLocation(text string) string {
	for _, p := range locationPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		location := strings.TrimSpace(m[1])
		if _, stop := locationStopWords[strings.ToLower(location)]; stop {
			continue
		}
		return titleCase(location)
	}
	return ""
}

// weekdays is scanned in canonical order, so an utterance naming two days
// resolves to the earlier one in the week.
var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ExtractDay returns "today", "tomorrow" or a weekday lexeme, unresolved.
func ExtractDay(text string) string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "today") {
		return "today"
	}
	if strings.Contains(lower, "tomorrow") {
		return "tomorrow"
	}
	for _, day := range weekdays {
		if strings.Contains(lower, day) {
			return day
		}
	}
	return ""
}

var (
	dayOfMonthPattern  = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?([A-Z][a-z]+)`)
	monthDayPattern    = regexp.MustCompile(`([A-Z][a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?`)
	numericDatePattern = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})`)
)

// ExtractDate resolves a date phrase to ISO YYYY-MM-DD against now.
//
// "today"/"tomorrow" are checked first, then weekday names: a named weekday
// resolves to its next occurrence on or after now, except that today's own
// weekday combined with "next" skips a full week. Free-form phrases
// ("12th of January", "January 12", "12/01/2025") come last; the numeric
// form is read day/month/year as given. A date without an explicit year is
// placed in the current year unless it has already passed, in which case it
// rolls to the next year.
func ExtractDate(text string, now time.Time) string {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "today") {
		return now.Format(isoDate)
	}
	if strings.Contains(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format(isoDate)
	}

	for target, day := range weekdays {
		if !strings.Contains(lower, day) {
			continue
		}
		current := (int(now.Weekday()) + 6) % 7 // Monday-based index
		ahead := target - current
		if ahead < 0 {
			ahead += 7
		} else if ahead == 0 && strings.Contains(lower, "next") {
			ahead = 7
		}
		return now.AddDate(0, 0, ahead).Format(isoDate)
	}

	if m := dayOfMonthPattern.FindStringSubmatch(text); m != nil {
		if d, ok := resolveNamedDate(m[1], m[2], now); ok {
			return d
		}
	}
	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		if d, ok := resolveNamedDate(m[2], m[1], now); ok {
			return d
		}
	}
	if m := numericDatePattern.FindStringSubmatch(text); m != nil {
		if d, ok := resolveNumericDate(m[1], m[2], m[3]); ok {
			return d
		}
	}
	return ""
}

func resolveNamedDate(dayStr, monthName string, now time.Time) (string, bool) {
	month, ok := monthByName(monthName)
	if !ok {
		return "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return "", false
	}

	candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	if candidate.Month() != month || candidate.Day() != day {
		return "", false
	}
	if candidate.Before(now) {
		candidate = time.Date(now.Year()+1, month, day, 0, 0, 0, 0, now.Location())
		if candidate.Month() != month || candidate.Day() != day {
			return "", false
		}
	}
	return candidate.Format(isoDate), true
}

func resolveNumericDate(dayStr, monthStr, yearStr string) (string, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	monthNum, err := strconv.Atoi(monthStr)
	if err != nil || monthNum < 1 || monthNum > 12 {
		return "", false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	if year < 100 {
		year += 2000
	}

	month := time.Month(monthNum)
	candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if candidate.Month() != month || candidate.Day() != day {
		return "", false
	}
	return candidate.Format(isoDate), true
}

func monthByName(name string) (time.Month, bool) {
	switch strings.ToLower(name) {
	case "january", "jan":
		return time.January, true
	case "february", "feb":
		return time.February, true
	case "march", "mar":
		return time.March, true
	case "april", "apr":
		return time.April, true
	case "may":
		return time.May, true
	case "june", "jun":
		return time.June, true
	case "july", "jul":
		return time.July, true
	case "august", "aug":
		return time.August, true
	case "september", "sep", "sept":
		return time.September, true
	case "october", "oct":
		return time.October, true
	case "november", "nov":
		return time.November, true
	case "december", "dec":
		return time.December, true
	default:
		return 0, false
	}
}

var (
	clockPattern        = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(am|pm)?`)
	hourMeridiemPattern = regexp.MustCompile(`(?i)(\d{1,2})\s*(am|pm)\b`)
	atHourPattern       = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})\b`)
)

// ExtractTime finds a clock time as HH:MM. Patterns are tried in priority
// order: "HH:MM[am|pm]", then "H am|pm", then "at H". When nothing matches
// the caller-supplied default hour is used on the hour.
func ExtractTime(text string, defaultHour int) string {
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return formatClock(adjustMeridiem(hour, m[3]), minute)
	}
	if m := hourMeridiemPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return formatClock(adjustMeridiem(hour, m[2]), 0)
	}
	if m := atHourPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return formatClock(hour, 0)
	}
	return formatClock(defaultHour, 0)
}

func adjustMeridiem(hour int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func formatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btitled?\s+['"]?([^'"]+)['"]?`),
	regexp.MustCompile(`(?i)\bcalled\s+['"]?([^'"]+)['"]?`),
	regexp.MustCompile(`(?i)\bnamed\s+['"]?([^'"]+)['"]?`),
}

// ExtractTitle finds an appointment title after "titled", "called" or
// "named". An unquoted title runs to the end of the utterance; trailing
// sentence punctuation is trimmed.
func ExtractTitle(text string) string {
	for _, p := range titlePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[1]), ".!?,"))
		}
	}
	return ""
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
