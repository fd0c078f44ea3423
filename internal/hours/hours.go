// Package hours parses free-text weekly operating hours into the canonical
// per-day model and evaluates open/closed status against a reference time.
package hours

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/diaperpal/diaperpal-api/internal/domain"
)

// Matches "H:MM AM – H:MM PM" with an en-dash or hyphen between the times.
var timeRangeRe = regexp.MustCompile(`(?i)^\s*(\d{1,2}):(\d{2})\s*(AM|PM)\s*[–-]\s*(\d{1,2}):(\d{2})\s*(AM|PM)\s*$`)

var recognizedDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// ParseWeekdayText converts provider weekday_text lines into HoursJSON.
// Unrecognized days and malformed ranges are dropped, not errors: provider
// free text is untrusted. A day listed as "Closed" gets no entry. If a day
// appears twice the later line wins. Returns nil when nothing parsed, the
// no-data state.
func ParseWeekdayText(lines []string) domain.HoursJSON {
	out := domain.HoursJSON{}
	for _, line := range lines {
		day, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		day = strings.ToLower(strings.TrimSpace(day))
		if !recognizedDays[day] {
			continue
		}

		rest = strings.TrimSpace(rest)
		if strings.EqualFold(rest, "closed") {
			continue
		}

		m := timeRangeRe.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		openAt, err := to24Hour(m[1], m[2], m[3])
		if err != nil {
			continue
		}
		closeAt, err := to24Hour(m[4], m[5], m[6])
		if err != nil {
			continue
		}
		out[day] = &domain.DayHours{Open: openAt, Close: closeAt}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func to24Hour(hourStr, minuteStr, ampm string) (string, error) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return "", fmt.Errorf("bad hour %q", hourStr)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute > 59 {
		return "", fmt.Errorf("bad minute %q", minuteStr)
	}
	if strings.EqualFold(ampm, "AM") {
		if hour == 12 {
			hour = 0
		}
	} else if hour != 12 {
		hour += 12
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// OpenStatus is the derived, never-persisted open/closed result.
type OpenStatus struct {
	IsOpen     bool             `json:"is_open"`
	HoursToday *domain.DayHours `json:"hours_today"`
}

// Evaluate decides whether a venue is open at the given local wall-clock
// instant. Absent hours data always reads as closed, never as always-open.
//
// A close time numerically <= the open time is an overnight window; the
// venue is open when now is after the open OR before the close. Only
// today's entry is consulted: a window that opened yesterday and runs past
// midnight is not credited to the early hours of today. That matches the
// original behavior and is pinned by a test; see TestEvaluateOvernightGap.
func Evaluate(h domain.HoursJSON, now time.Time) OpenStatus {
	if len(h) == 0 {
		return OpenStatus{}
	}

	today := strings.ToLower(now.Weekday().String())
	entry, ok := h[today]
	if !ok || entry == nil {
		return OpenStatus{}
	}

	nowHM := now.Format("15:04")
	var open bool
	if entry.Close > entry.Open {
		open = nowHM >= entry.Open && nowHM < entry.Close
	} else {
		open = nowHM >= entry.Open || nowHM < entry.Close
	}
	return OpenStatus{IsOpen: open, HoursToday: entry}
}

// FormatWeek renders all seven days Monday-first for display, marking closed
// days and which entry is today.
func FormatWeek(h domain.HoursJSON, now time.Time) []domain.DaySchedule {
	today := strings.ToLower(now.Weekday().String())
	week := make([]domain.DaySchedule, 0, len(domain.Weekdays))
	for _, day := range domain.Weekdays {
		ds := domain.DaySchedule{Day: day, IsToday: day == today}
		if entry, ok := h[day]; ok && entry != nil {
			ds.Open = entry.Open
			ds.Close = entry.Close
		} else {
			ds.Closed = true
		}
		week = append(week, ds)
	}
	return week
}
