package calendar

import (
	"time"

	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// HasSameDayTurnover reports whether this event is one side of a same-day
// turnover: a different booking in the property's active set checks in on
// the calendar day this event checks out, or checks out on the day this
// event checks in. Both bookings of a back-to-back pair are flagged so both
// cleaning jobs carry the warning.
//
// Day comparison is UTC calendar-date equality, not an elapsed-time window:
// a checkout at 23:00 and a check-in at 01:00 the next UTC day are close in
// time but are not a same-day turnover.
func HasSameDayTurnover(event models.CalendarEvent, activeEvents []models.CalendarEvent) bool {
	for _, peer := range activeEvents {
		if peer.UID == event.UID {
			continue
		}
		if sameUTCDate(event.End, peer.Start) || sameUTCDate(event.Start, peer.End) {
			return true
		}
	}
	return false
}

func sameUTCDate(a, b time.Time) bool {
	au := a.UTC()
	bu := b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}
