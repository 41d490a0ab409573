// Package calendar provides iCal feed fetching and booking reconciliation.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// FeedSource retrieves the calendar events for one property's feed URL.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]models.CalendarEvent, error)
}

// FeedFetchError indicates that a feed could not be retrieved or parsed.
// The orchestrator treats it as a per-property failure: no reconciliation
// runs and no audit row is written.
type FeedFetchError struct {
	URL string
	Err error
}

func (e *FeedFetchError) Error() string {
	return fmt.Sprintf("fetching feed %s: %v", e.URL, e.Err)
}

func (e *FeedFetchError) Unwrap() error {
	return e.Err
}

// ICalFeed fetches and parses iCal feeds over HTTP.
type ICalFeed struct {
	httpClient *http.Client
}

// NewICalFeed creates a feed source with a fetch timeout.
func NewICalFeed(timeout time.Duration) *ICalFeed {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ICalFeed{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads a feed and normalizes its VEVENTs. Entries missing a UID,
// start or end are dropped silently; they are not an error.
func (f *ICalFeed) Fetch(ctx context.Context, url string) ([]models.CalendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FeedFetchError{URL: url, Err: err}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FeedFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FeedFetchError{URL: url, Err: fmt.Errorf("feed returned status %d", resp.StatusCode)}
	}

	cal, err := ical.ParseCalendar(resp.Body)
	if err != nil {
		return nil, &FeedFetchError{URL: url, Err: fmt.Errorf("parsing feed: %w", err)}
	}

	return normalizeEvents(cal), nil
}

// normalizeEvents converts parsed VEVENTs into CalendarEvents, keeping only
// entries that carry a UID and both dates.
func normalizeEvents(cal *ical.Calendar) []models.CalendarEvent {
	var events []models.CalendarEvent

	for _, ve := range cal.Events() {
		uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
		if uidProp == nil || uidProp.Value == "" {
			continue
		}

		start, err := ve.GetStartAt()
		if err != nil || start.IsZero() {
			continue
		}
		end, err := ve.GetEndAt()
		if err != nil || end.IsZero() {
			continue
		}

		event := models.CalendarEvent{
			UID:   uidProp.Value,
			Start: start,
			End:   end,
		}

		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			event.Summary = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
			event.Status = p.Value
		}

		events = append(events, event)
	}

	return events
}
