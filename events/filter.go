package events

import (
	"strings"
	"time"

	"github.com/International-Combat-Archery-Alliance/registration-client/slices"
)

type DateFilter string

const (
	FILTER_ALL      DateFilter = "all"
	FILTER_UPCOMING DateFilter = "upcoming"
	FILTER_PAST     DateFilter = "past"
)

// Filter narrows a fetched list the same way for every listing view: a
// case-insensitive match on title or location, then an optional date cut.
func Filter(list []Event, query string, when DateFilter, now time.Time) []Event {
	q := strings.ToLower(strings.TrimSpace(query))

	return slices.Filter(list, func(e Event) bool {
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Location), q) {
			return false
		}

		switch when {
		case FILTER_UPCOMING:
			return e.IsUpcoming(now)
		case FILTER_PAST:
			t, ok := e.StartsOn()
			return ok && !t.After(now)
		default:
			return true
		}
	})
}
