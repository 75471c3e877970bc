/*
resolver_test.go - Boundary resolution tests

PURPOSE:
  Executable specification of the cycle boundary rules: calendar-month
  cycles, custom closing-day cycles, the 1ms contiguity invariant, year
  rollover in both directions, and the inherited date-normalization
  behavior for out-of-range closing days.
*/
package cycle_test

import (
	"testing"
	"time"

	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.Local)
}

// =============================================================================
// CALENDAR MONTH (closing day 1)
// =============================================================================

func TestResolve_ClosingDay1_CalendarMonth(t *testing.T) {
	// GIVEN: closing day 1 and an instant in mid-June
	// WHEN: resolving the cycle
	// THEN: the cycle is exactly June, labeled with the calendar prefix

	d := cycle.Resolve(at(2024, time.June, 15, 13, 45), 1)

	wantStart := date(2024, time.June, 1)
	wantEnd := date(2024, time.July, 1).Add(-time.Millisecond)

	if !d.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", d.Start, wantStart)
	}
	if !d.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", d.End, wantEnd)
	}
	if d.ID != "CHU_KY-2024-06" {
		t.Errorf("id = %q, want CHU_KY-2024-06", d.ID)
	}
}

func TestResolve_ClosingDay1_LeapFebruary(t *testing.T) {
	// GIVEN: February of a leap year
	// THEN: the cycle ends at Feb 29 23:59:59.999

	d := cycle.Resolve(date(2024, time.February, 10), 1)

	wantEnd := time.Date(2024, time.February, 29, 23, 59, 59, 999000000, time.Local)
	if !d.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", d.End, wantEnd)
	}
}

func TestResolve_ClosingDay1_IDDependsOnlyOnYearAndMonth(t *testing.T) {
	// GIVEN: two instants in the same month
	// THEN: they resolve to the same identifier

	a := cycle.Resolve(date(2024, time.June, 1), 1)
	b := cycle.Resolve(at(2024, time.June, 30, 23, 59), 1)
	if a.ID != b.ID {
		t.Errorf("ids differ within one month: %q vs %q", a.ID, b.ID)
	}
}

// =============================================================================
// CUSTOM CLOSING DAY
// =============================================================================

func TestResolve_CustomDay_OnOrAfterClosingDay(t *testing.T) {
	// GIVEN: closing day 10 and an instant on June 15
	// THEN: the cycle runs June 10 .. July 10 minus 1ms, labeled June

	d := cycle.Resolve(date(2024, time.June, 15), 10)

	if !d.Start.Equal(date(2024, time.June, 10)) {
		t.Errorf("start = %v, want 2024-06-10", d.Start)
	}
	if !d.End.Equal(date(2024, time.July, 10).Add(-time.Millisecond)) {
		t.Errorf("end = %v, want 2024-07-10 minus 1ms", d.End)
	}
	if d.ID != "CHU_KY_TU_CHON-2024-06" {
		t.Errorf("id = %q, want CHU_KY_TU_CHON-2024-06", d.ID)
	}
}

func TestResolve_CustomDay_BeforeClosingDay(t *testing.T) {
	// GIVEN: closing day 28 and an instant on February 5 (5 < 28)
	// THEN: the cycle started January 28 and ends February 27 23:59:59.999,
	//       labeled after January

	d := cycle.Resolve(date(2024, time.February, 5), 28)

	if !d.Start.Equal(date(2024, time.January, 28)) {
		t.Errorf("start = %v, want 2024-01-28T00:00:00.000", d.Start)
	}
	wantEnd := time.Date(2024, time.February, 27, 23, 59, 59, 999000000, time.Local)
	if !d.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", d.End, wantEnd)
	}
	if d.ID != "CHU_KY_TU_CHON-2024-01" {
		t.Errorf("id = %q, want CHU_KY_TU_CHON-2024-01", d.ID)
	}
}

func TestResolve_CustomDay_YearRollsBack(t *testing.T) {
	// GIVEN: closing day 10 and an instant on January 5
	// THEN: the cycle started December 10 of the PREVIOUS year and the
	//       label rolls back with it

	d := cycle.Resolve(date(2025, time.January, 5), 10)

	if !d.Start.Equal(date(2024, time.December, 10)) {
		t.Errorf("start = %v, want 2024-12-10", d.Start)
	}
	if d.ID != "CHU_KY_TU_CHON-2024-12" {
		t.Errorf("id = %q, want CHU_KY_TU_CHON-2024-12", d.ID)
	}
}

func TestResolve_CustomDay_YearRollsForward(t *testing.T) {
	// GIVEN: closing day 10 and an instant on December 20
	// THEN: the cycle ends at January 10 of the NEXT year minus 1ms

	d := cycle.Resolve(date(2024, time.December, 20), 10)

	if !d.End.Equal(date(2025, time.January, 10).Add(-time.Millisecond)) {
		t.Errorf("end = %v, want 2025-01-10 minus 1ms", d.End)
	}
	if d.ID != "CHU_KY_TU_CHON-2024-12" {
		t.Errorf("id = %q, want CHU_KY_TU_CHON-2024-12", d.ID)
	}
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestResolve_CyclesAreContiguous(t *testing.T) {
	// GIVEN: any closing day in [2, 28]
	// THEN: the cycle after End is adjacent: End is exactly 1ms before the
	//       next cycle's Start, across two full years including boundaries

	for _, closingDay := range []int{2, 10, 15, 28} {
		current := cycle.Resolve(date(2024, time.January, 20), closingDay)
		for i := 0; i < 24; i++ {
			next := cycle.Resolve(current.End.Add(time.Millisecond), closingDay)
			if got := next.Start.Sub(current.End); got != time.Millisecond {
				t.Fatalf("closingDay %d: gap between %q and %q = %v, want 1ms",
					closingDay, current.ID, next.ID, got)
			}
			if next.ID == current.ID {
				t.Fatalf("closingDay %d: consecutive cycles share id %q", closingDay, next.ID)
			}
			current = next
		}
	}
}

func TestResolve_Pure(t *testing.T) {
	// GIVEN: identical inputs
	// THEN: identical outputs, every time

	now := at(2024, time.March, 3, 9, 30)
	a := cycle.Resolve(now, 15)
	b := cycle.Resolve(now, 15)
	if a != b {
		t.Errorf("resolve is not deterministic: %+v vs %+v", a, b)
	}
}

func TestResolve_PrefixesNeverCollide(t *testing.T) {
	// GIVEN: the same instant resolved under both configurations
	// THEN: identifiers differ by prefix so archives never mix them up

	now := date(2024, time.June, 15)
	calendar := cycle.Resolve(now, 1)
	custom := cycle.Resolve(now, 2)
	if calendar.ID == custom.ID {
		t.Errorf("calendar and custom cycles share id %q", calendar.ID)
	}
}

// =============================================================================
// INHERITED EDGE CASES
// =============================================================================

func TestResolve_OutOfRangeClosingDay_NormalizesForward(t *testing.T) {
	// GIVEN: a closing day of 31, which callers are supposed to clamp away
	// WHEN: the resolved month has no day 31
	// THEN: time.Date normalization rolls the boundary into the next month.
	//       Documented inherited behavior, not a supported configuration.

	d := cycle.Resolve(date(2024, time.March, 5), 31)

	// February 31, 2024 normalizes to March 2 (leap year).
	if !d.Start.Equal(date(2024, time.March, 2)) {
		t.Errorf("start = %v, want normalized 2024-03-02", d.Start)
	}
	if d.ID != "CHU_KY_TU_CHON-2024-03" {
		t.Errorf("id = %q, want label from the normalized month", d.ID)
	}
}

func TestClampClosingDay(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1}, {-3, 1}, {1, 1}, {15, 15}, {28, 28}, {29, 28}, {31, 28},
	}
	for _, c := range cases {
		if got := cycle.ClampClosingDay(c.in); got != c.want {
			t.Errorf("ClampClosingDay(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
