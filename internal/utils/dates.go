package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// ParseIssueDate accepts a civil date (YYYY-MM-DD) or an RFC3339 instant.
// Instants are moved into loc before the calendar day is taken.
func ParseIssueDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// SimpleDate renders the calendar day of t as YYYY-MM-DD without shifting zones.
func SimpleDate(t time.Time) string {
	return t.Format(DateLayout)
}

var (
	dateLocales = []language.Tag{language.English, language.Hindi}
	dateMatcher = language.NewMatcher(dateLocales)

	hindiMonths = [12]string{
		"जनवरी", "फ़रवरी", "मार्च", "अप्रैल", "मई", "जून",
		"जुलाई", "अगस्त", "सितंबर", "अक्तूबर", "नवंबर", "दिसंबर",
	}
)

// DateFormatter renders long-form issue dates in a display locale.
type DateFormatter struct {
	tag language.Tag
}

// NewDateFormatter picks the closest supported locale; unknown locales fall back to English.
func NewDateFormatter(locale string) *DateFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		return &DateFormatter{tag: language.English}
	}

	_, idx, conf := dateMatcher.Match(tag)
	if conf == language.No {
		idx = 0
	}

	return &DateFormatter{tag: dateLocales[idx]}
}

func (f *DateFormatter) Locale() string {
	return f.tag.String()
}

// Long renders e.g. "16 अक्तूबर 2026" for Hindi or "16 October 2026" for English.
func (f *DateFormatter) Long(t time.Time) string {
	if f.tag == language.Hindi {
		return fmt.Sprintf("%d %s %d", t.Day(), hindiMonths[t.Month()-1], t.Year())
	}
	return t.Format("2 January 2006")
}
