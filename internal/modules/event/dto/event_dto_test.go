package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateISO(t *testing.T) {
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, value := range []string{
		"2025-06-01T10:00:00Z",
		"2025-06-01T10:00:00",
		"2025-06-01T12:00:00+02:00",
		"2025-06-01T10:00",
		"2025-06-01 10:00:00",
	} {
		got, err := ParseDate(value, DateFormatISO)
		require.NoError(t, err, value)
		assert.True(t, want.Equal(got), value)
	}

	_, err := ParseDate("June 1st", DateFormatISO)
	assert.Error(t, err)
}

func TestParseDateForm(t *testing.T) {
	got, err := ParseDate("2025-06-01T10:00", DateFormatForm)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("2025-06-01T10:00:00", DateFormatForm)
	assert.Error(t, err)
}

func TestUpdateRequestDistinguishesNullFromAbsent(t *testing.T) {
	var absent UpdateEventRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &absent))
	assert.False(t, absent.MaxParticipants.Set)

	var null UpdateEventRequest
	require.NoError(t, json.Unmarshal([]byte(`{"max_participants":null}`), &null))
	assert.True(t, null.MaxParticipants.Set)
	assert.Nil(t, null.MaxParticipants.Value)

	var value UpdateEventRequest
	require.NoError(t, json.Unmarshal([]byte(`{"max_participants":25}`), &value))
	require.NotNil(t, value.MaxParticipants.Value)
	assert.Equal(t, 25, *value.MaxParticipants.Value)
}

func TestCreateRequestMissingField(t *testing.T) {
	var req CreateEventRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","description":"d","event_type":"event","location":"x"}`), &req))
	assert.Equal(t, "date", req.MissingField())

	req.Date = new(string)
	assert.Equal(t, "", req.MissingField())
}

func TestEventFormPatchClearsCapacity(t *testing.T) {
	form := EventForm{Title: "t", Description: "d", EventType: "event", Date: "2025-06-01T10:00", Location: "x", Status: "ongoing"}
	patch, err := form.Patch()
	require.NoError(t, err)
	assert.True(t, patch.MaxParticipants.Set)
	assert.Nil(t, patch.MaxParticipants.Value)
	require.NotNil(t, patch.Status)
	assert.Equal(t, DateFormatForm, patch.DateFormat)

	form.MaxParticipants = "lots"
	_, err = form.Patch()
	assert.Error(t, err)
}
