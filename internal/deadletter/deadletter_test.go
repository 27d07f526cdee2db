package deadletter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		got, err := New(&Config{})
		require.Error(t, err)
		require.Nil(t, got)
	})

	t.Run("valid config applies defaults", func(t *testing.T) {
		got, err := New(&Config{Path: t.TempDir()})
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, defaultRetention, got.retention)
		require.Equal(t, defaultSweepInterval, got.sweepInterval)
	})

	t.Run("Test Name", func(t *testing.T) {
		s := &Store{}
		require.Equal(t, "Dead Letter Store", s.Name())
	})
}

func TestStore_Bury(t *testing.T) {
	req := require.New(t)

	dir := t.TempDir()
	s, err := New(&Config{Path: dir})
	req.NoError(err)

	cause := errors.New("rowkey column \"id\" not present in record")
	req.NoError(s.Bury("orders", []byte(`orders {"url":"google.com"}`), cause))

	files, err := os.ReadDir(filepath.Join(dir, defaultDirectory))
	req.NoError(err)
	req.Len(files, 1)

	data, err := os.ReadFile(filepath.Join(dir, defaultDirectory, files[0].Name()))
	req.NoError(err)

	var entry Entry
	req.NoError(json.Unmarshal(data, &entry))
	req.Equal("orders", entry.Destination)
	req.Equal([]byte(`orders {"url":"google.com"}`), entry.Payload)
	req.Equal(cause.Error(), entry.Reason)
	req.NotEmpty(entry.ID)
}

func TestStore_sweep(t *testing.T) {
	req := require.New(t)

	dir := t.TempDir()
	s, err := New(&Config{
		Path:      dir,
		Retention: time.Hour,
	})
	req.NoError(err)

	req.NoError(s.Bury("orders", []byte("fresh"), errors.New("x")))
	req.NoError(s.Bury("orders", []byte("stale"), errors.New("x")))

	// age one entry past the retention window
	entries, err := os.ReadDir(s.dir)
	req.NoError(err)
	req.Len(entries, 2)

	stalePath := filepath.Join(s.dir, entries[0].Name())
	old := time.Now().Add(-2 * time.Hour)
	req.NoError(os.Chtimes(stalePath, old, old))

	s.sweep()

	remaining, err := os.ReadDir(s.dir)
	req.NoError(err)
	req.Len(remaining, 1)
	req.NotEqual(entries[0].Name(), remaining[0].Name())
}

func TestStore_StartStop(t *testing.T) {
	req := require.New(t)

	s, err := New(&Config{
		Path:          t.TempDir(),
		SweepInterval: 10 * time.Millisecond,
	})
	req.NoError(err)

	req.NoError(s.Start())
	time.Sleep(25 * time.Millisecond)
	req.NoError(s.Stop())
}
