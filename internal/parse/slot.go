package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"room-booking-backend/internal/booking"
)

// Messages for slots that cannot be booked.
const (
	MessageMalformedSlot   = "Invalid date or time."
	MessageUnavailableSlot = "This time slot is not offered."
)

const dateLayout = "2006-01-02"

// hourRe accepts "9", "09", "9:00", "09:00" and "9h".
var hourRe = regexp.MustCompile(`(?i)^(\d{1,2})(?::00|h)?$`)

// SlotRules describes which slots may be booked.
type SlotRules struct {
	Hours    []int
	Length   time.Duration
	Location *time.Location
}

// Slot turns a calendar day and an hour label into the [start, end) interval of
// that slot in the configured location.
func (r SlotRules) Slot(date, hour string) (time.Time, time.Time, error) {
	date, hour = strings.TrimSpace(date), strings.TrimSpace(hour)
	if date == "" || hour == "" {
		return time.Time{}, time.Time{}, slotError(booking.MessageMissingSlot)
	}

	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, slotError(MessageMalformedSlot)
	}

	h, err := ParseHour(hour)
	if err != nil {
		return time.Time{}, time.Time{}, slotError(MessageMalformedSlot)
	}
	if !r.offers(h) {
		return time.Time{}, time.Time{}, slotError(MessageUnavailableSlot)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, loc)
	return start, start.Add(r.Length), nil
}

func (r SlotRules) offers(h int) bool {
	for _, allowed := range r.Hours {
		if allowed == h {
			return true
		}
	}
	return false
}

// ParseHour extracts the hour of day from a label such as "9", "09:00" or "9h".
func ParseHour(raw string) (int, error) {
	m := hourRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, &strconv.NumError{Func: "ParseHour", Num: raw, Err: strconv.ErrSyntax}
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, err
	}
	if h > 23 {
		return 0, &strconv.NumError{Func: "ParseHour", Num: raw, Err: strconv.ErrRange}
	}
	return h, nil
}

// FormatHour renders an hour the way slot lists show it, e.g. "09:00".
func FormatHour(h int) string {
	return time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04")
}

func slotError(msg string) error {
	return &booking.ValidationError{Field: "slot", Message: msg}
}
