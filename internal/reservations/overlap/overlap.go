// Package overlap decides whether a requested interval collides with the ledger.
//
// Intervals are closed: a reservation ending at the instant another begins still
// conflicts with it, which leaves a turnover buffer between back-to-back stays.
package overlap

import (
	"staydesk/pkg/model"
	"time"
)

type Result struct {
	Available bool
	Blocking  []model.Interval
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// IsBlocking reports whether r still occupies its unit at now. Cancelled records never
// block; holds block only until their expiry, whether or not the TTL sweep removed them.
func IsBlocking(r *model.Reservation, now time.Time) bool {
	switch r.Status {
	case model.StatusCancelled:
		return false
	case model.StatusHold:
		return r.HoldExpiresAt != nil && r.HoldExpiresAt.After(now)
	default:
		return true
	}
}

// Check evaluates records of a single unit against the requested interval.
func Check(records []*model.Reservation, start, end, now time.Time) Result {
	result := Result{Available: true, Blocking: []model.Interval{}}
	for _, r := range records {
		if !IsBlocking(r, now) || !Overlaps(r.PeriodStart, r.PeriodEnd, start, end) {
			continue
		}
		result.Available = false
		result.Blocking = append(result.Blocking, model.Interval{
			ReservationID: r.ID,
			Status:        r.Status,
			Start:         r.PeriodStart,
			End:           r.PeriodEnd,
		})
	}
	return result
}
