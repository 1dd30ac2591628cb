// Package dates normalizes Bengali-locale date strings into canonical
// sortable timestamps.
package dates

import (
	"fmt"
	"strconv"
	"strings"
)

// bengaliDigits maps each Bengali decimal digit glyph to its Latin equivalent.
var bengaliDigits = map[rune]rune{
	'০': '0',
	'১': '1',
	'২': '2',
	'৩': '3',
	'৪': '4',
	'৫': '5',
	'৬': '6',
	'৭': '7',
	'৮': '8',
	'৯': '9',
}

// bengaliMonths is the closed mapping of the twelve Bengali month names.
var bengaliMonths = map[string]string{
	"জানুয়ারি":   "01",
	"ফেব্রুয়ারি": "02",
	"মার্চ":     "03",
	"এপ্রিল":    "04",
	"মে":        "05",
	"জুন":       "06",
	"জুলাই":     "07",
	"আগস্ট":     "08",
	"সেপ্টেম্বর": "09",
	"অক্টোবর":   "10",
	"নভেম্বর":   "11",
	"ডিসেম্বর":  "12",
}

const dateTimeSegments = 2

// TranslateDigits maps Bengali digit glyphs to Latin digits, leaving every
// other rune untouched.
func TranslateDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if latin, ok := bengaliDigits[r]; ok {
			return latin
		}
		return r
	}, s)
}

// MonthNumber resolves a Bengali month name to its two-digit month number.
func MonthNumber(name string) (string, bool) {
	month, ok := bengaliMonths[name]
	return month, ok
}

// Normalize converts a Bengali date string of the form
// "<day> <month> <year>, <time>" into the canonical "YYYY-MM-DD HH:MM[:SS]"
// form. The second return value is false when the input cannot be parsed;
// malformed input never produces an error.
func Normalize(dateStr string) (string, bool) {
	if dateStr == "" || strings.Contains(strings.ToLower(dateStr), "not found") {
		return "", false
	}

	parts := strings.Split(strings.TrimSpace(dateStr), ",")
	if len(parts) != dateTimeSegments {
		return "", false
	}

	datePart := TranslateDigits(strings.TrimSpace(parts[0]))
	timePart := TranslateDigits(strings.ReplaceAll(strings.TrimSpace(parts[1]), " ", ""))

	fields := strings.Fields(datePart)
	if len(fields) != 3 {
		return "", false
	}

	day, monthName, year := fields[0], fields[1], fields[2]
	month, ok := MonthNumber(monthName)
	if !ok {
		return "", false
	}

	dayNum, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	if _, err = strconv.Atoi(year); err != nil {
		return "", false
	}
	clock, ok := normalizeTime(timePart)
	if !ok {
		return "", false
	}

	return fmt.Sprintf("%s-%s-%02d %s", year, month, dayNum, clock), true
}

// normalizeTime validates a colon-separated HH:MM or HH:MM:SS segment and
// zero-pads each component so the result sorts lexicographically.
func normalizeTime(s string) (string, bool) {
	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return "", false
	}
	padded := make([]string, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return "", false
		}
		padded[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(padded, ":"), true
}
