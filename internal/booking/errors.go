package booking

import "strings"

// Validation messages shown to the user.
const (
	MessageMissingRoom  = "Select a room."
	MessageUnknownRoom  = "Unknown room."
	MessageMissingStaff = "Select a staff member."
	MessageMissingSlot  = "Select a time slot."
	MessageInvalidSlot  = "The reservation must end after it starts."
)

// ValidationError reports a candidate that was rejected before touching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

// Validate checks that the candidate is complete. Unknown room labels are
// checked by the caller, which owns the room catalog.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Room) == "" {
		return &ValidationError{Field: "room", Message: MessageMissingRoom}
	}
	if strings.TrimSpace(c.Staff) == "" {
		return &ValidationError{Field: "staff", Message: MessageMissingStaff}
	}
	if c.Start.IsZero() || c.End.IsZero() {
		return &ValidationError{Field: "slot", Message: MessageMissingSlot}
	}
	if !c.End.After(c.Start) {
		return &ValidationError{Field: "slot", Message: MessageInvalidSlot}
	}
	return nil
}
