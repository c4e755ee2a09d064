package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamtally/internal/amqp"
	"streamtally/internal/core"
	"streamtally/internal/sheets/memory"
)

type failingMirror struct{}

func (failingMirror) AppendActivity(context.Context, core.Header, core.Activity) (string, error) {
	return "", errors.New("quota exceeded")
}

func message() *amqp.ActivityAppendedMessage {
	l := core.StreamLog{
		ID:           "2024-03-10_alice_morning-stream_0123456789abcdef",
		StreamerName: "Alice",
		Date:         core.NewDate(2024, time.March, 10),
		StreamTitle:  "Morning Stream",
	}
	a := core.Activity{
		ID:        "act-1",
		Timestamp: time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC),
		Username:  "viewer",
		Kind:      core.KindSub,
		Tier:      core.Tier1,
		Count:     2,
	}
	return amqp.NewActivityAppendedMessage(l, a)
}

func TestHandleActivityAppended(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror, nil)

	require.NoError(t, w.HandleActivityAppended(context.Background(), message()))
	// Redelivery is absorbed by the mirror.
	require.NoError(t, w.HandleActivityAppended(context.Background(), message()))

	rows := mirror.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0][1])
	assert.Equal(t, "Subscription", rows[0][4])
	assert.Equal(t, 2, rows[0][7])
}

func TestHandleActivityAppendedRejectsInvalid(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror, nil)

	msg := message()
	msg.StreamerName = ""
	assert.Error(t, w.HandleActivityAppended(context.Background(), msg))
	assert.Empty(t, mirror.Rows())
}

func TestHandleActivityAppendedMirrorFailure(t *testing.T) {
	w := NewMirrorWorker(failingMirror{}, nil)
	err := w.HandleActivityAppended(context.Background(), message())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
