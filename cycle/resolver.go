/*
resolver.go - Billing cycle boundary resolution

PURPOSE:
  Pure computation of the billing cycle containing a given instant. A cycle
  is a contiguous, non-overlapping period anchored on the user's configured
  closing day (1-28). For closing day 1 the cycle is exactly the calendar
  month; otherwise it runs from the closing day of one month up to (but not
  including) the closing day of the next.

IDENTIFIER FORMAT (public, parsed by the archive display):
  Closing day 1:  "CHU_KY-{year}-{month:02d}"
  Closing day >1: "CHU_KY_TU_CHON-{startYear}-{startMonth:02d}"
  The two prefixes keep identifiers from colliding when the user switches
  between the calendar-month and custom configurations.

INVARIANTS:
  - For a fixed closing day, cycles partition the timeline with no gaps and
    no overlaps: End of cycle N is exactly 1ms before Start of cycle N+1.
  - The label always names the cycle's START month, which may roll back a
    year (e.g. a January 5 instant with closing day 10 labels December of
    the previous year).

CONTRACT:
  closingDay is assumed already clamped to [1, 28] by the configuration
  boundary. The resolver does not defend against out-of-range values; they
  inherit time.Date's normalization (day 31 in February rolls into March),
  which is covered by tests as documented behavior.
*/
package cycle

import (
	"fmt"
	"time"
)

// Identifier prefixes, part of the persisted/public format.
const (
	CalendarPrefix = "CHU_KY"
	CustomPrefix   = "CHU_KY_TU_CHON"
)

// Descriptor describes one billing cycle. Start is the first instant of
// the cycle (midnight local), End the last (1ms before the next cycle
// starts), and ID the stable public identifier.
type Descriptor struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	ID    string    `json:"id"`
}

// Contains reports whether t falls inside the cycle [Start, End].
func (d Descriptor) Contains(t time.Time) bool {
	return !t.Before(d.Start) && !t.After(d.End)
}

// Resolve computes the cycle containing now for the given closing day.
// Pure and deterministic: identical inputs always yield an identical
// descriptor.
func Resolve(now time.Time, closingDay int) Descriptor {
	loc := now.Location()
	year, month, day := now.Date()

	if closingDay == 1 {
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
		return Descriptor{
			Start: start,
			End:   end,
			ID:    fmt.Sprintf("%s-%04d-%02d", CalendarPrefix, year, int(month)),
		}
	}

	var start, nextStart time.Time
	if day >= closingDay {
		start = time.Date(year, month, closingDay, 0, 0, 0, 0, loc)
		nextStart = time.Date(year, month+1, closingDay, 0, 0, 0, 0, loc)
	} else {
		start = time.Date(year, month-1, closingDay, 0, 0, 0, 0, loc)
		nextStart = time.Date(year, month, closingDay, 0, 0, 0, 0, loc)
	}

	return Descriptor{
		Start: start,
		End:   nextStart.Add(-time.Millisecond),
		ID:    fmt.Sprintf("%s-%04d-%02d", CustomPrefix, start.Year(), int(start.Month())),
	}
}

// ClampClosingDay forces a configured closing day into the supported
// [1, 28] range. This belongs at the configuration boundary: Resolve
// itself never clamps.
func ClampClosingDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > 28 {
		return 28
	}
	return day
}
