package nntp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ArticleRange is the result of ParseRange: Low is always set, High is nil
// for the open "N-" form (the caller resolves it against a group's high
// watermark).
type ArticleRange struct {
	Low  int64
	High *int64
}

// ParseRange accepts, after whitespace trim, "N", "N-" or "N-M" per
// RFC 3977 range syntax. It returns ok=false for anything else, including
// empty components or more than one dash.
func ParseRange(s string) (r ArticleRange, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return r, false
	}
	if !strings.Contains(s, "-") {
		n, err := parseNonNegative(s)
		if err != nil {
			return r, false
		}
		return ArticleRange{Low: n, High: &n}, true
	}
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return r, false
	}
	low, err := parseNonNegative(parts[0])
	if err != nil {
		return r, false
	}
	if parts[1] == "" {
		return ArticleRange{Low: low}, true
	}
	high, err := parseNonNegative(parts[1])
	if err != nil {
		return r, false
	}
	return ArticleRange{Low: low, High: &high}, true
}

func parseNonNegative(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a decimal number: %q", s)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

// ParseDateTime parses the date+time pair given to NEWNEWS and NEWGROUPS
// (the same form FormatDateTime produces for the DATE reply). If timeStr is empty, the last 6 characters of dateStr are
// taken as the time component and the remainder as the date. dateStr is
// YYYYMMDD when at least 8 characters long, otherwise legacy YYMMDD with
// the RFC 3977 century heuristic (year<70 -> +2000, 70<=year<100 -> +1900).
func ParseDateTime(dateStr, timeStr string) (time.Time, error) {
	if timeStr == "" {
		if len(dateStr) < 6 {
			return time.Time{}, fmt.Errorf("date/time string too short: %q", dateStr)
		}
		timeStr = dateStr[len(dateStr)-6:]
		dateStr = dateStr[:len(dateStr)-6]
	}
	if len(timeStr) != 6 {
		return time.Time{}, fmt.Errorf("invalid time component: %q", timeStr)
	}
	hour, err := strconv.Atoi(timeStr[0:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour: %w", err)
	}
	minute, err := strconv.Atoi(timeStr[2:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute: %w", err)
	}
	second, err := strconv.Atoi(timeStr[4:6])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid second: %w", err)
	}

	var year, month, day int
	switch {
	case len(dateStr) >= 8:
		year, err = strconv.Atoi(dateStr[:len(dateStr)-4])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid year: %w", err)
		}
	case len(dateStr) == 6:
		year, err = strconv.Atoi(dateStr[:2])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid year: %w", err)
		}
		if year < 70 {
			year += 2000
		} else if year < 100 {
			year += 1900
		}
	default:
		return time.Time{}, fmt.Errorf("invalid date component: %q", dateStr)
	}
	month, err = strconv.Atoi(dateStr[len(dateStr)-4 : len(dateStr)-2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month: %w", err)
	}
	day, err = strconv.Atoi(dateStr[len(dateStr)-2:])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day: %w", err)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 60 {
		return time.Time{}, fmt.Errorf("date/time component out of range: %q %q", dateStr, timeStr)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// FormatDateTime inverts ParseDateTime, returning the date and time
// components separately. legacy=true yields YYMMDD instead of YYYYMMDD.
func FormatDateTime(t time.Time, legacy bool) (dateStr, timeStr string) {
	t = t.UTC()
	timeStr = fmt.Sprintf("%02d%02d%02d", t.Hour(), t.Minute(), t.Second())
	if legacy {
		dateStr = fmt.Sprintf("%02d%02d%02d", t.Year()%100, int(t.Month()), t.Day())
	} else {
		dateStr = fmt.Sprintf("%04d%02d%02d", t.Year(), int(t.Month()), t.Day())
	}
	return dateStr, timeStr
}
