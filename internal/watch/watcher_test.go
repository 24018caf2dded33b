package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tutorkit/tutorkit/internal/event"
)

func waitFor(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for file event")
		return event.Event{}
	}
}

func newWatchedDir(t *testing.T) (string, <-chan event.Event, *event.Bus) {
	t.Helper()
	dir := t.TempDir()

	bus := event.NewBus()
	t.Cleanup(func() { bus.Close() })

	ch := make(chan event.Event, 16)
	bus.Subscribe(event.FileChanged, func(ev event.Event) {
		ch <- ev
	})

	w, err := NewWatcher(dir, bus)
	require.NoError(t, err)
	w.Start()
	t.Cleanup(func() { w.Stop() })

	return dir, ch, bus
}

func TestWatcher_GlobalFile(t *testing.T) {
	dir, ch, _ := newWatchedDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.md"), []byte("# A\n"), 0644))

	ev := waitFor(t, ch)
	data, ok := ev.Data.(event.FileData)
	require.True(t, ok)
	require.Equal(t, "profile.md", data.Path)
	require.Empty(t, data.SessionID)
}

func TestWatcher_NewSessionDirectory(t *testing.T) {
	dir, ch, _ := newWatchedDir(t)

	sessionDir := filepath.Join(dir, "sess1")
	require.NoError(t, os.Mkdir(sessionDir, 0755))

	// The directory watch is registered asynchronously; give it a moment
	// before writing inside it.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sessionDir, "notes.md"), []byte("x"), 0644))

	ev := waitFor(t, ch)
	data := ev.Data.(event.FileData)
	require.Equal(t, "sess1", data.SessionID)
	require.Equal(t, "notes.md", data.Path)
}

func TestWatcher_IgnoresBookkeepingFiles(t *testing.T) {
	dir, ch, _ := newWatchedDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sessions.json"), []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.md"), []byte("x"), 0644))

	ev := waitFor(t, ch)
	require.Equal(t, "visible.md", ev.Data.(event.FileData).Path)
}
