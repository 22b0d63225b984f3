package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calbot/internal/assistant"
)

// mondayPipeline runs against backend with the clock pinned to Monday
// 2024-06-10.
func mondayPipeline(backend assistant.Calendar) *assistant.Pipeline {
	now := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	return assistant.NewPipeline(backend,
		assistant.WithLocation(time.UTC),
		assistant.WithClock(func() time.Time { return now }),
		assistant.WithLogger(quietLogger()))
}

func TestChatSession(t *testing.T) {
	backend := &fakeBackend{free: true}
	in := strings.NewReader(strings.Join([]string{
		"history",
		"Book a meeting tomorrow afternoon",
		"",
		"Hello there",
		"history",
		"exit",
		"Book a meeting tomorrow between 9-10",
	}, "\n"))
	var out bytes.Buffer

	session := newChatSession(mondayPipeline(backend), in, &out)
	require.NoError(t, session.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "No messages yet.")
	assert.Contains(t, text, "Your meeting has been booked on 2024-06-11 at 13-17.")
	assert.Contains(t, text, "you: Hello there\ncalbot: "+assistant.ReplyNotUnderstood)

	assert.Equal(t, []chatTurn{
		{Speaker: speakerUser, Text: "Book a meeting tomorrow afternoon"},
		{Speaker: speakerAssistant, Text: "Your meeting has been booked on 2024-06-11 at 13-17."},
		{Speaker: speakerUser, Text: "Hello there"},
		{Speaker: speakerAssistant, Text: assistant.ReplyNotUnderstood},
	}, session.Transcript())

	// Nothing after "exit" is processed.
	assert.Equal(t, []string{"2024-06-11 Meeting via AI Bot"}, backend.reserved)
}

func TestChatSession_EOF(t *testing.T) {
	var out bytes.Buffer
	session := newChatSession(mondayPipeline(&fakeBackend{}), strings.NewReader("Am I free on Friday from 3 to 5?"), &out)

	require.NoError(t, session.Run(context.Background()))
	assert.Contains(t, out.String(), "You're not free on 2024-06-14 from 3-5.")
	assert.Len(t, session.Transcript(), 2)
}

func TestChatSession_Cancelled(t *testing.T) {
	backend := &fakeBackend{free: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := newChatSession(mondayPipeline(backend), strings.NewReader("Book a meeting tomorrow afternoon\n"), &bytes.Buffer{})
	require.NoError(t, session.Run(ctx))
	assert.Empty(t, session.Transcript())
	assert.Empty(t, backend.reserved)
}

func TestChatGreeting_ExamplesResolve(t *testing.T) {
	backend := &fakeBackend{free: true}
	p := mondayPipeline(backend)

	book := p.Run(context.Background(), "Book a meeting tomorrow afternoon")
	require.NotNil(t, book.Hours)
	assert.Equal(t, assistant.HourRange{Start: 13, End: 17}, *book.Hours)
	assert.Equal(t, assistant.Yes, book.Booked)

	check := p.Run(context.Background(), "Am I free on Friday from 3 to 5?")
	require.NotNil(t, check.Hours)
	assert.Equal(t, assistant.HourRange{Start: 3, End: 5}, *check.Hours)
	assert.Equal(t, assistant.IntentCheck, check.Intent)

	assert.Contains(t, chatGreeting, `"Book a meeting tomorrow afternoon"`)
	assert.Contains(t, chatGreeting, `"Am I free on Friday from 3 to 5?"`)
}
