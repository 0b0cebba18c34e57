package booking

// Outcome is the result category of a conflict check.
type Outcome string

const (
	OutcomeAccepted      Outcome = "accepted"
	OutcomeRoomConflict  Outcome = "room_conflict"
	OutcomeStaffConflict Outcome = "staff_conflict"
)

// User-facing messages for each outcome.
const (
	MessageAccepted      = "Reservation created successfully!"
	MessageRoomConflict  = "Time slot already reserved."
	MessageStaffConflict = "This staff member already has a reservation at this time."
)

// Decision is the result of checking a candidate against a snapshot.
type Decision struct {
	Outcome  Outcome
	Message  string
	Conflict *Reservation // the existing reservation that caused a rejection
}

// Accepted reports whether the candidate may be written.
func (d Decision) Accepted() bool {
	return d.Outcome == OutcomeAccepted
}

// Accept returns an accepting decision.
func Accept() Decision {
	return Decision{Outcome: OutcomeAccepted, Message: MessageAccepted}
}

// RejectRoom returns a room conflict decision caused by r (which may be nil when unknown).
func RejectRoom(r *Reservation) Decision {
	return Decision{Outcome: OutcomeRoomConflict, Message: MessageRoomConflict, Conflict: r}
}

// RejectStaff returns a staff conflict decision caused by r.
func RejectStaff(r *Reservation) Decision {
	return Decision{Outcome: OutcomeStaffConflict, Message: MessageStaffConflict, Conflict: r}
}

// Check decides whether c can be committed given the reservations in snap.
// Room conflicts take priority over staff conflicts. A candidate without a
// staff name can only conflict on its room.
func Check(snap Snapshot, c Candidate) Decision {
	for _, r := range snap.ForRoom(c.Room) {
		if Overlaps(c.Start, c.End, r.Start, r.End) {
			r := r
			return RejectRoom(&r)
		}
	}
	for _, r := range snap.ForStaff(c.Staff) {
		if Overlaps(c.Start, c.End, r.Start, r.End) {
			r := r
			return RejectStaff(&r)
		}
	}
	return Accept()
}
