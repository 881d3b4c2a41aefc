package delivery

import "time"

// DateGroup is a run of messages sharing a viewer-local calendar date,
// in their original chronological order.
type DateGroup struct {
	Date     time.Time
	Label    string
	Messages []*Message
}

// GroupByDate partitions a chronological message sequence by calendar
// date in the viewer's local time. Order is preserved: flattening the
// groups reproduces the input exactly.
func GroupByDate(msgs []*Message, now time.Time) []DateGroup {
	var groups []DateGroup
	for _, m := range msgs {
		local := m.SentAt.Local()
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
		if n := len(groups); n > 0 && groups[n-1].Date.Equal(day) {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, DateGroup{
			Date:     day,
			Label:    dateLabel(day, now),
			Messages: []*Message{m},
		})
	}
	return groups
}

// dateLabel renders the separator for a date group: Today, Yesterday,
// or weekday plus date for anything older.
func dateLabel(day, now time.Time) string {
	local := now.Local()
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format("Monday, Jan 2")
	}
}

// ShowAvatar implements the avatar-collapse rule: within a run of
// consecutive messages from one sender, only the first shows the
// avatar. Pure function of the previous message's sender and the
// current one; pass "" for the first message of a group.
func ShowAvatar(prevSenderID, senderID string) bool {
	return prevSenderID != senderID
}
