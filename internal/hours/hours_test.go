package hours

import (
	"reflect"
	"testing"
	"time"

	"github.com/diaperpal/diaperpal-api/internal/domain"
)

// 2024-01-01 is a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func TestParseWeekdayText_Basic(t *testing.T) {
	got := ParseWeekdayText([]string{"Monday: 6:00 AM – 8:00 PM"})

	want := domain.HoursJSON{
		"monday": {Open: "06:00", Close: "20:00"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseWeekdayText_NoonAndMidnight(t *testing.T) {
	got := ParseWeekdayText([]string{
		"Tuesday: 12:00 AM – 12:00 PM",
		"Wednesday: 12:30 PM – 11:59 PM",
	})

	if e := got["tuesday"]; e == nil || e.Open != "00:00" || e.Close != "12:00" {
		t.Errorf("expected tuesday 00:00-12:00, got %v", e)
	}
	if e := got["wednesday"]; e == nil || e.Open != "12:30" || e.Close != "23:59" {
		t.Errorf("expected wednesday 12:30-23:59, got %v", e)
	}
}

func TestParseWeekdayText_HyphenSeparator(t *testing.T) {
	got := ParseWeekdayText([]string{"Friday: 9:00 AM - 5:00 PM"})
	if e := got["friday"]; e == nil || e.Open != "09:00" || e.Close != "17:00" {
		t.Fatalf("expected friday 09:00-17:00, got %v", e)
	}
}

func TestParseWeekdayText_ClosedDayGetsNoEntry(t *testing.T) {
	got := ParseWeekdayText([]string{
		"Monday: Closed",
		"Tuesday: 9:00 AM – 5:00 PM",
	})

	if _, ok := got["monday"]; ok {
		t.Errorf("closed day should have no entry, got %v", got["monday"])
	}
	if got["tuesday"] == nil {
		t.Errorf("expected tuesday entry")
	}
}

func TestParseWeekdayText_MalformedLinesDropped(t *testing.T) {
	got := ParseWeekdayText([]string{
		"Funday: 9:00 AM – 5:00 PM",   // unknown day
		"Monday: 9 AM to 5 PM",        // wrong range format
		"Tuesday 9:00 AM – 5:00 PM",   // missing colon
		"Wednesday: 9:00 AM – 5:00 PM", // well-formed, must survive
	})

	if len(got) != 1 {
		t.Fatalf("expected exactly one parsed day, got %v", got)
	}
	if got["wednesday"] == nil {
		t.Errorf("well-formed line should parse despite malformed siblings")
	}
}

func TestParseWeekdayText_LastOccurrenceWins(t *testing.T) {
	got := ParseWeekdayText([]string{
		"Monday: 6:00 AM – 2:00 PM",
		"Monday: 8:00 AM – 10:00 PM",
	})

	if e := got["monday"]; e == nil || e.Open != "08:00" || e.Close != "22:00" {
		t.Fatalf("expected later line to win, got %v", e)
	}
}

func TestParseWeekdayText_NothingParsedReturnsNil(t *testing.T) {
	if got := ParseWeekdayText([]string{"garbage", "Monday: whenever"}); got != nil {
		t.Fatalf("expected nil for zero parsed days, got %v", got)
	}
	if got := ParseWeekdayText(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestEvaluate_OpenDuringWindow(t *testing.T) {
	h := domain.HoursJSON{"monday": {Open: "09:00", Close: "17:00"}}

	got := Evaluate(h, monday(10, 0))
	if !got.IsOpen {
		t.Errorf("expected open at Monday 10:00")
	}
	if got.HoursToday == nil || got.HoursToday.Open != "09:00" || got.HoursToday.Close != "17:00" {
		t.Errorf("expected hours_today returned verbatim, got %v", got.HoursToday)
	}
}

func TestEvaluate_ClosedOutsideWindow(t *testing.T) {
	h := domain.HoursJSON{"monday": {Open: "09:00", Close: "17:00"}}

	got := Evaluate(h, monday(18, 0))
	if got.IsOpen {
		t.Errorf("expected closed at Monday 18:00")
	}
	if got.HoursToday == nil {
		t.Errorf("hours_today must still be reported when closed")
	}
}

func TestEvaluate_CloseBoundaryExclusive(t *testing.T) {
	h := domain.HoursJSON{"monday": {Open: "09:00", Close: "17:00"}}

	if Evaluate(h, monday(17, 0)).IsOpen {
		t.Errorf("close time itself is not open")
	}
	if !Evaluate(h, monday(9, 0)).IsOpen {
		t.Errorf("open time itself is open")
	}
}

func TestEvaluate_OvernightWindow(t *testing.T) {
	h := domain.HoursJSON{"monday": {Open: "18:00", Close: "02:00"}}

	if !Evaluate(h, monday(23, 0)).IsOpen {
		t.Errorf("expected open at Monday 23:00 inside overnight window")
	}
	if Evaluate(h, monday(12, 0)).IsOpen {
		t.Errorf("expected closed at Monday noon")
	}
}

// A venue open Monday 22:00-03:00 shows closed at 01:00 Tuesday: evaluation
// consults Tuesday's own entry, never Monday's still-active overnight window.
// This one-day-late gap is the shipped behavior and is locked in here so a
// future change to it is a conscious decision, not an accident.
func TestEvaluateOvernightGap(t *testing.T) {
	h := domain.HoursJSON{"monday": {Open: "22:00", Close: "03:00"}}

	tuesday1am := time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)
	got := Evaluate(h, tuesday1am)
	if got.IsOpen {
		t.Errorf("Tuesday 01:00 reads Tuesday's entry, not Monday's overnight window")
	}
	if got.HoursToday != nil {
		t.Errorf("no Tuesday entry means hours_today nil, got %v", got.HoursToday)
	}

	// Same wall time evaluated against Monday's own entry is open: the
	// overnight rule applies relative to the day the window starts on.
	if !Evaluate(h, monday(1, 0)).IsOpen {
		t.Errorf("Monday 01:00 falls inside Monday's overnight window per the same-day rule")
	}
}

func TestEvaluate_NilHours(t *testing.T) {
	for _, now := range []time.Time{monday(0, 0), monday(12, 0), monday(23, 59)} {
		got := Evaluate(nil, now)
		if got.IsOpen || got.HoursToday != nil {
			t.Errorf("nil hours at %v: expected closed/nil, got %+v", now, got)
		}
	}
}

func TestEvaluate_NoEntryToday(t *testing.T) {
	h := domain.HoursJSON{"tuesday": {Open: "09:00", Close: "17:00"}}

	got := Evaluate(h, monday(10, 0))
	if got.IsOpen || got.HoursToday != nil {
		t.Errorf("missing day entry should read closed with nil hours_today, got %+v", got)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	h := domain.HoursJSON{"monday": {Open: "09:00", Close: "17:00"}}
	now := monday(10, 30)

	first := Evaluate(h, now)
	for i := 0; i < 5; i++ {
		if got := Evaluate(h, now); !reflect.DeepEqual(got, first) {
			t.Fatalf("evaluation not idempotent: %+v vs %+v", got, first)
		}
	}
}

func TestFormatWeek(t *testing.T) {
	h := domain.HoursJSON{
		"monday":   {Open: "09:00", Close: "17:00"},
		"saturday": {Open: "10:00", Close: "14:00"},
	}

	week := FormatWeek(h, monday(10, 0))
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	if week[0].Day != "monday" || !week[0].IsToday || week[0].Closed {
		t.Errorf("unexpected monday row: %+v", week[0])
	}
	if week[1].Day != "tuesday" || !week[1].Closed || week[1].IsToday {
		t.Errorf("unexpected tuesday row: %+v", week[1])
	}
	if week[5].Day != "saturday" || week[5].Open != "10:00" {
		t.Errorf("unexpected saturday row: %+v", week[5])
	}
	if week[6].Day != "sunday" || !week[6].Closed {
		t.Errorf("unexpected sunday row: %+v", week[6])
	}
}
