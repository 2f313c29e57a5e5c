package capture

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_TeeAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captures", "venue.log")

	w, err := OpenWrite(path, 0)
	require.NoError(t, err)
	got, err := io.ReadAll(io.TeeReader(strings.NewReader("HELLO 1000\nOPEN IBM\n"), w))
	require.NoError(t, err)
	assert.Equal(t, "HELLO 1000\nOPEN IBM\n", string(got))
	assert.EqualValues(t, 20, w.Offset())
	require.NoError(t, w.Close())

	// 再次打开是追加，偏移从文件末尾开始
	w, err = OpenWrite(path, 16)
	require.NoError(t, err)
	assert.EqualValues(t, 20, w.Offset())
	_, err = w.Write([]byte("ACK 1\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "HELLO 1000\nOPEN IBM\nACK 1\n", string(body))
}

func TestOpenWrite_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := OpenWrite(filepath.Join(blocker, "venue.log"), 0)
	assert.Error(t, err)
}
