// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var englishMonths = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// nepaliMonths maps Bikram Sambat month names (with common spelling
// variants) to their month number in that calendar.
var nepaliMonths = map[string]int{
	"बैशाख": 1, "वैशाख": 1,
	"जेठ": 2,
	"असार": 3,
	"श्रावण": 4, "साउन": 4,
	"भदौ": 5,
	"असोज": 6,
	"कार्तिक": 7, "कात्तिक": 7,
	"मंसिर": 8,
	"पुष": 9, "पुस": 9,
	"माघ": 10,
	"फाल्गुन": 11, "फागुन": 11,
	"चैत": 12,
}

var (
	reNumericDate = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`)
	reISODate     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	reEnglishDate = regexp.MustCompile(`(?i)\b(\d{1,2})[ \t]+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?[ \t]+(\d{4}|\d{2})\b`)
	reNepaliDate  = regexp.MustCompile(`(\d{1,2})[ \t]+(बैशाख|वैशाख|जेठ|असार|श्रावण|साउन|भदौ|असोज|कार्तिक|कात्तिक|मंसिर|पुष|पुस|माघ|फाल्गुन|फागुन|चैत)[ \t]+(\d{4}|\d{2})`)
)

var dateMatchers = []matcher[string]{
	numericDate,
	isoDate,
	englishDate,
	nepaliDate,
}

// Date returns the first recognizable date in text as YYYY-MM-DD.
//
// Slash or dash separated dates are read month-first unless the first
// field cannot be a month, in which case they are read day-first. This
// can misread day-first dates whose day is 12 or less.
//
// Dates written with Nepali month names are returned in the Bikram Sambat
// calendar: the year and month number are not converted.
func Date(text string) (string, bool) {
	return firstMatch(text, dateMatchers)
}

func numericDate(text string) (string, bool) {
	m := reNumericDate.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	month, day := first, second
	if first > 12 && second <= 12 {
		month, day = second, first
	}
	return gregorian(expandYear(m[3]), month, day)
}

func isoDate(text string) (string, bool) {
	m := reISODate.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return gregorian(m[1], month, day)
}

func englishDate(text string) (string, bool) {
	m := reEnglishDate.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month := englishMonths[strings.ToLower(m[2])]
	return gregorian(expandYear(m[3]), month, day)
}

func nepaliDate(text string) (string, bool) {
	m := reNepaliDate.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month := nepaliMonths[m[2]]
	if month == 0 || day < 1 || day > 32 {
		return "", false
	}
	return fmt.Sprintf("%s-%02d-%02d", expandYear(m[3]), month, day), true
}

// expandYear prefixes two-digit years with 20.
func expandYear(y string) string {
	if len(y) == 2 {
		return "20" + y
	}
	return y
}

// gregorian formats a calendar date, rejecting impossible ones such as
// 31 February.
func gregorian(year string, month, day int) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
