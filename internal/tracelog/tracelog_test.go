package tracelog

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	Tick  int     `json:"tick"`
	Score float32 `json:"score"`
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "seed-1"+Extension)
	w, err := Create(path)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())
	for tick := range 100 {
		require.NoError(t, w.Write(entry{Tick: tick, Score: float32(tick) / 4}))
	}
	assert.Equal(t, 100, w.Len())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.Error(t, w.Write(entry{}))

	var got []entry
	require.NoError(t, Read(path, func(e entry) error {
		got = append(got, e)
		return nil
	}))
	require.Len(t, got, 100)
	assert.Equal(t, entry{Tick: 37, Score: 9.25}, got[37])
}

func TestReadStopsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace"+Extension)
	w, err := Create(path)
	require.NoError(t, err)
	for tick := range 10 {
		require.NoError(t, w.Write(entry{Tick: tick}))
	}
	require.NoError(t, w.Close())

	stop := errors.New("stop")
	count := 0
	err = Read(path, func(e entry) error {
		count++
		if e.Tick == 3 {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 4, count)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, Read(filepath.Join(dir, "missing"+Extension), func(entry) error { return nil }))

	// Not zstd compressed.
	path := filepath.Join(dir, "plain.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"tick\": 1}\n"), 0o644))
	require.Error(t, Read(path, func(entry) error { return nil }))
}

func TestEmptyTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty"+Extension)
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	count := 0
	require.NoError(t, Read(path, func(entry) error { count++; return nil }))
	assert.Zero(t, count)
}
