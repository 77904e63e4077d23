package datehelper

import (
	"fmt"
	"strings"
	"time"
)

var monthNames = map[string][2][]string{
	// language: {long, short}
	"nl": {
		{"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"},
		{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"},
	},
	"en": {
		{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"},
		{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"},
	},
}

// GetMonthFromName returns 1-12 for a month name in language.
func GetMonthFromName(name string, language string, short bool) (int, error) {
	names, ok := monthNames[language]
	if !ok {
		return 0, fmt.Errorf("datehelper: no month names for language %q", language)
	}
	list := names[0]
	if short {
		list = names[1]
	}
	name = strings.ToLower(strings.TrimRight(strings.TrimSpace(name), "."))
	for i, n := range list {
		if n == name {
			return i + 1, nil
		}
	}
	// "maa" and "sept" style abbreviations
	if short && language == "nl" && name == "maa" {
		return 3, nil
	}
	if short && len(name) > 3 {
		return GetMonthFromName(name[:3], language, true)
	}
	return 0, fmt.Errorf("datehelper: unknown %s month %q", language, name)
}

var strftime = strings.NewReplacer(
	"%Y", "2006",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%y", "06",
	"%b", "Jan",
	"%B", "January",
	"%z", "-0700",
	"%%", "%",
)

// GetDateFromString parses value with a strftime style layout in local time.
func GetDateFromString(value string, layout string) (time.Time, error) {
	t, err := time.ParseInLocation(strftime.Replace(layout), strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("datehelper: %w", err)
	}
	return t, nil
}
