package bus

import "time"

// Event is a domain notification published on the bus.
//
// Topic is a dotted name such as "chat.message_upserted" or
// "identity.resolved". Subscribers match on a topic prefix.
type Event struct {
	Topic      string
	OccurredAt time.Time
	Payload    any
}
