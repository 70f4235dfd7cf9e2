package eventlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.ndjson")
	ctx := context.Background()

	store, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "student", KindLoginSuccess, Details{"ip": "10.0.0.1", "ua": "curl"}))
	require.NoError(t, store.Append(ctx, "", KindBlur, Details{"reason": "window_blur"}))
	require.NoError(t, store.Close())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	events, err := reopened.List(ctx, "student")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, KindLoginSuccess, events[0].Kind)
	assert.Equal(t, "10.0.0.1", events[0].Details["ip"])

	anon, err := reopened.List(ctx, AnonymousIdentity)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, "window_blur", anon[0].Details["reason"])

	require.NoError(t, reopened.Append(ctx, "student", KindLogout, nil))
	events, _ = reopened.List(ctx, "student")
	assert.Len(t, events, 2)
}

func TestFileStore_SkipsTornLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ndjson")
	content := `{"identity":"student","time":"2024-05-01T12:00:00Z","event":"login_success","details":{}}
{"identity":"student","time":"2024-05-01T12:0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store, err := OpenFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, 1, store.Skipped())
	events, err := store.List(context.Background(), "student")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFileStore_WriteAfterClose(t *testing.T) {
	store, err := OpenFileStore(filepath.Join(t.TempDir(), "events.ndjson"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.Error(t, store.Append(context.Background(), "student", KindBlur, nil))
}

func TestFileStore_ListReturnsCopies(t *testing.T) {
	store, err := OpenFileStore(filepath.Join(t.TempDir(), "events.ndjson"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	details := Details{"reason": "window_blur"}
	require.NoError(t, store.Append(ctx, "student", KindBlur, details))
	details["reason"] = "forged"

	events, err := store.List(ctx, "student")
	require.NoError(t, err)
	require.Len(t, events, 1)
	events[0].Details["extra"] = "x"

	events, err = store.List(ctx, "student")
	require.NoError(t, err)
	assert.Equal(t, Details{"reason": "window_blur"}, events[0].Details)
}
