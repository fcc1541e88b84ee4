package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_WritesAuditFields(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "info", "json")
	defer Initialize("info", "text")

	Transition(context.Background(), 42, "PENDING", "CONFIRMED", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Booking status transition", line["msg"])
	assert.EqualValues(t, 42, line["booking_id"])
	assert.Equal(t, "PENDING", line["from_status"])
	assert.Equal(t, "CONFIRMED", line["to_status"])
	assert.EqualValues(t, 7, line["actor_id"])
}

func TestEventPublished_FailureIsWarning(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "debug", "json")
	defer Initialize("info", "text")

	EventPublished(context.Background(), "booking.created", "evt-1", errors.New("broker down"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "broker down", line["error"])
}

func TestInitialize_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "warn", "text")
	defer Initialize("info", "text")

	Info("hidden")
	assert.Empty(t, buf.String())
	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFields_AttachedToContextLogs(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "info", "json")
	defer Initialize("info", "text")

	ctx := WithFields(context.Background(), "rpc_method", "/rental.v1.BookingService/PayBooking")
	ctx = WithFields(ctx, "user_id", int32(3))
	ErrorContext(ctx, "Unhandled error", "error", "boom")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/rental.v1.BookingService/PayBooking", line["rpc_method"])
	assert.EqualValues(t, 3, line["user_id"])
	assert.Equal(t, "boom", line["error"])

	buf.Reset()
	Info("no context fields")
	line = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "rpc_method")
}
