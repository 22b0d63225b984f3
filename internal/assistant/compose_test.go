package assistant

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 11}
	h := &HourRange{Start: 13, End: 17}

	tests := []struct {
		name  string
		state State
		want  string
	}{
		{
			name:  "unknown intent",
			state: State{Intent: IntentUnknown},
			want:  ReplyNotUnderstood,
		},
		{
			name:  "unknown intent with slot",
			state: State{Intent: IntentUnknown, Date: &d, Hours: h},
			want:  ReplyNotUnderstood,
		},
		{
			name:  "missing date",
			state: State{Intent: IntentBook, Hours: h},
			want:  ReplyNeedDateTime,
		},
		{
			name:  "missing hours",
			state: State{Intent: IntentCheck, Date: &d},
			want:  ReplyNeedDateTime,
		},
		{
			name:  "booked",
			state: State{Intent: IntentBook, Date: &d, Hours: h, Available: Yes, Booked: Yes},
			want:  "Your meeting has been booked on 2024-06-11 at 13-17.",
		},
		{
			name:  "book but busy",
			state: State{Intent: IntentBook, Date: &d, Hours: h, Available: No},
			want:  "You're not free on 2024-06-11 from 13-17.",
		},
		{
			name:  "book rejected by calendar",
			state: State{Intent: IntentBook, Date: &d, Hours: h, Available: Yes, Booked: No},
			want:  "You're not free on 2024-06-11 from 13-17.",
		},
		{
			name:  "book with unknown availability",
			state: State{Intent: IntentBook, Date: &d, Hours: h},
			want:  "I couldn't book your meeting on 2024-06-11 from 13-17 because your availability could not be confirmed.",
		},
		{
			name:  "book with unknown booking result",
			state: State{Intent: IntentBook, Date: &d, Hours: h, Available: Yes},
			want:  "I couldn't book your meeting on 2024-06-11 from 13-17 because your availability could not be confirmed.",
		},
		{
			name:  "check free",
			state: State{Intent: IntentCheck, Date: &d, Hours: h, Available: Yes},
			want:  "You're free on 2024-06-11 at 13-17.",
		},
		{
			name:  "check busy",
			state: State{Intent: IntentCheck, Date: &d, Hours: h, Available: No},
			want:  "You're not free on 2024-06-11 from 13-17.",
		},
		{
			name:  "check unknown",
			state: State{Intent: IntentCheck, Date: &d, Hours: h},
			want:  "I couldn't check your availability on 2024-06-11 from 13-17.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compose(&tt.state))
		})
	}
}

func TestTristate(t *testing.T) {
	assert.Equal(t, Yes, FromBool(true))
	assert.Equal(t, No, FromBool(false))
	assert.False(t, Unknown.Known())
	assert.True(t, No.Known())

	for _, tt := range []struct {
		value Tristate
		json  string
	}{{Yes, "true"}, {No, "false"}, {Unknown, "null"}} {
		b, err := tt.value.MarshalJSON()
		assert.NoError(t, err)
		assert.Equal(t, tt.json, string(b))

		var got Tristate
		assert.NoError(t, got.UnmarshalJSON([]byte(tt.json)))
		assert.Equal(t, tt.value, got)
	}
}

func TestHourRange(t *testing.T) {
	assert.Equal(t, "3-5", HourRange{3, 5}.String())
	assert.True(t, HourRange{13, 17}.Valid())
	assert.False(t, HourRange{5, 3}.Valid())
	assert.False(t, HourRange{20, 25}.Valid())
}
