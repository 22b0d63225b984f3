package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAsk_Text(t *testing.T) {
	var out bytes.Buffer
	err := runAsk(context.Background(), &out, mondayPipeline(&fakeBackend{free: true}), "Book a meeting tomorrow afternoon", false)
	require.NoError(t, err)
	assert.Equal(t, "Your meeting has been booked on 2024-06-11 at 13-17.\n", out.String())
}

func TestRunAsk_JSON(t *testing.T) {
	var out bytes.Buffer
	err := runAsk(context.Background(), &out, mondayPipeline(&fakeBackend{}), "Book a meeting tomorrow", true)
	require.NoError(t, err)

	var state map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &state))
	assert.Equal(t, "book", state["intent"])
	assert.Equal(t, "2024-06-11", state["date"])
	assert.NotContains(t, state, "hours")
	assert.Nil(t, state["available"])
	assert.Nil(t, state["booked"])
	assert.Equal(t, "I need a date and time to check or book your meeting.", state["response"])
}
