package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamtally/internal/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "streamtally.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "stream_logs")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Put(ctx, "stream_logs", []byte(`[{"id":"a"}]`)))
	require.NoError(t, s.Put(ctx, "stream_logs", []byte(`[{"id":"b"}]`)))

	got, err := s.Get(ctx, "stream_logs")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"b"}]`, string(got))
	require.NoError(t, s.Close())

	// Reopening runs migrations again and keeps the data.
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err = s.Get(ctx, "stream_logs")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"b"}]`, string(got))
}
