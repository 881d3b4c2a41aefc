package delivery

import "testing"

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusSent, true},
		{StatusPending, StatusDelivered, true},
		{StatusPending, StatusRead, true},
		{StatusSent, StatusDelivered, true},
		{StatusDelivered, StatusRead, true},
		{StatusSent, StatusPending, false},
		{StatusRead, StatusDelivered, false},
		{StatusRead, StatusRead, false},
		{StatusPending, StatusPending, false},
		{StatusFailed, StatusSent, false},
		{StatusPending, StatusFailed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanAdvance(tt.from, tt.to); got != tt.want {
				t.Errorf("CanAdvance(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestClampNeverMovesBackward(t *testing.T) {
	all := []Status{StatusPending, StatusSent, StatusDelivered, StatusRead}
	for i, current := range all {
		for j, incoming := range all {
			got := Clamp(current, incoming)
			want := current
			if j > i {
				want = incoming
			}
			if got != want {
				t.Errorf("Clamp(%s, %s) = %s, want %s", current, incoming, got, want)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"sent", StatusSent},
		{"delivered", StatusDelivered},
		{"read", StatusRead},
		{"failed", StatusFailed},
		{"pending", StatusPending},
		{"", StatusPending},
		{"bogus", StatusPending},
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNextStages(t *testing.T) {
	if StatusPending.next() != StatusSent {
		t.Error("pending should advance to sent")
	}
	if StatusSent.next() != StatusDelivered {
		t.Error("sent should advance to delivered")
	}
	if StatusDelivered.next() != StatusRead {
		t.Error("delivered should advance to read")
	}
	if StatusRead.next() != "" {
		t.Error("read is terminal")
	}
	if StatusFailed.next() != "" {
		t.Error("failed does not advance on the ratchet")
	}
}
