package post

import (
	"encoding/json"
	"time"
)

// displayLayout renders event dates the way the feed shows them.
const displayLayout = "Jan 2, 2006, 3:04 PM"

// stringLayouts are tried in order when the store delivers a string date.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// EventDate normalizes the loosely-typed eventDate field of a stored post.
// The document store delivers it in one of three shapes: an ISO string, an
// epoch-milliseconds number, or a provider timestamp object carrying seconds
// and nanoseconds. Anything else decodes to the zero EventDate, which
// formats to "".
type EventDate struct {
	t     time.Time
	valid bool
}

// NewEventDate wraps a known-good time.
func NewEventDate(t time.Time) EventDate {
	return EventDate{t: t, valid: true}
}

// EventDateFromMillis converts an epoch-milliseconds value.
func EventDateFromMillis(ms int64) EventDate {
	return EventDate{t: time.UnixMilli(ms), valid: true}
}

// Valid reports whether a usable point in time was decoded.
func (d EventDate) Valid() bool { return d.valid }

// Time returns the normalized time. Only meaningful when Valid.
func (d EventDate) Time() time.Time { return d.t }

// Format renders the date for display, or "" when no date was decoded.
func (d EventDate) Format() string {
	if !d.valid {
		return ""
	}
	return d.t.Format(displayLayout)
}

// providerTimestamp matches the document store's native timestamp encoding,
// including the underscore-prefixed form its REST export uses.
type providerTimestamp struct {
	Seconds      *int64 `json:"seconds"`
	Nanoseconds  *int64 `json:"nanoseconds"`
	USeconds     *int64 `json:"_seconds"`
	UNanoseconds *int64 `json:"_nanoseconds"`
}

// UnmarshalJSON decodes any of the three date variants. Unknown shapes and
// unparseable strings are tolerated as "no date" rather than failing the
// document: partial metadata is expected in a loosely-typed store.
func (d *EventDate) UnmarshalJSON(data []byte) error {
	*d = EventDate{}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for _, layout := range stringLayouts {
			if t, perr := time.Parse(layout, s); perr == nil {
				*d = NewEventDate(t)
				return nil
			}
		}
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		*d = EventDateFromMillis(ms)
		return nil
	}

	var ts providerTimestamp
	if err := json.Unmarshal(data, &ts); err == nil {
		sec, nsec := ts.Seconds, ts.Nanoseconds
		if sec == nil {
			sec, nsec = ts.USeconds, ts.UNanoseconds
		}
		if sec != nil {
			var n int64
			if nsec != nil {
				n = *nsec
			}
			*d = NewEventDate(time.Unix(*sec, n))
		}
		return nil
	}

	return nil
}

// MarshalJSON emits the normalized time as RFC3339, or null when absent.
func (d EventDate) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(time.RFC3339))
}
