package delivery

// Status is the delivery state of a locally-originated message.
// It is a one-way ratchet: pending → sent → delivered → read. Failed
// is an off-ramp for rejected sends, only reachable from pending, and
// a retry moves the message back to pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusFailed    Status = "failed"
)

var statusOrdinal = map[Status]int{
	StatusPending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// ParseStatus maps a wire string onto a Status, defaulting to pending
// for anything unrecognized.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusSent, StatusDelivered, StatusRead, StatusFailed:
		return Status(s)
	default:
		return StatusPending
	}
}

// Ordinal returns the position of s in the ratchet. Failed has no
// position and reports -1.
func (s Status) Ordinal() int {
	if ord, ok := statusOrdinal[s]; ok {
		return ord
	}
	return -1
}

// CanAdvance reports whether a transition from → to moves the ratchet
// strictly forward. Transitions into or out of failed are not ratchet
// moves and always report false.
func CanAdvance(from, to Status) bool {
	f, t := from.Ordinal(), to.Ordinal()
	if f < 0 || t < 0 {
		return false
	}
	return t > f
}

// Clamp returns the later of current and incoming under the ratchet
// order, so a backend-pushed update can never move a message backward.
func Clamp(current, incoming Status) Status {
	if CanAdvance(current, incoming) {
		return incoming
	}
	return current
}

// next returns the following ratchet stage, or "" at the end.
func (s Status) next() Status {
	switch s {
	case StatusPending:
		return StatusSent
	case StatusSent:
		return StatusDelivered
	case StatusDelivered:
		return StatusRead
	default:
		return ""
	}
}
