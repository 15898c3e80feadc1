package headless_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cdi/cdi/backend"
	"github.com/valerio/go-cdi/cdi/backend/headless"
	"github.com/valerio/go-cdi/cdi/video"
)

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		h.SetProgressOutput(nil)

		quits := 0
		err := h.Init(backend.BackendConfig{
			Title:     "Test",
			Callbacks: backend.BackendCallbacks{OnQuit: func() { quits++ }},
		})
		require.NoError(t, err)

		frame := video.NewFrameBuffer(16, 8)
		for i := 0; i < 3; i++ {
			require.NoError(t, h.Update(frame))
			if i < 2 {
				assert.Zero(t, quits, "no quit before reaching max frames")
			}
		}
		assert.Equal(t, 1, quits)
		assert.Equal(t, 3, h.Frames())
		assert.NoError(t, h.Cleanup())
	})

	t.Run("progress bar", func(t *testing.T) {
		var out bytes.Buffer
		h := headless.New(2, headless.SnapshotConfig{})
		h.SetProgressOutput(&out)

		require.NoError(t, h.Init(backend.BackendConfig{Title: "frames"}))
		frame := video.NewFrameBuffer(16, 8)
		require.NoError(t, h.Update(frame))
		require.NoError(t, h.Update(frame))
		require.NoError(t, h.Cleanup())

		assert.NotEmpty(t, out.String())
	})

	t.Run("snapshots", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := headless.CreateSnapshotConfig(2, dir, "/images/menu.rtf")
		require.NoError(t, err)
		assert.Equal(t, "menu", cfg.BaseName)

		h := headless.New(5, cfg)
		h.SetProgressOutput(nil)
		require.NoError(t, h.Init(backend.BackendConfig{}))

		frame := video.NewFrameBuffer(16, 8)
		frame.Fill(video.WhiteColor)
		for i := 0; i < 5; i++ {
			require.NoError(t, h.Update(frame))
		}

		// Frames 2 and 4 on the interval, plus the final frame 5.
		require.Len(t, h.Snapshots(), 3)
		for _, path := range h.Snapshots() {
			assert.Equal(t, dir, filepath.Dir(path))
			_, err := os.Stat(path)
			assert.NoError(t, err)
		}
	})
}

func TestCreateSnapshotConfig(t *testing.T) {
	cfg, err := headless.CreateSnapshotConfig(0, "", "")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)

	cfg, err = headless.CreateSnapshotConfig(10, "", "")
	require.NoError(t, err)
	defer os.RemoveAll(cfg.Directory)
	assert.True(t, cfg.Enabled)
	assert.DirExists(t, cfg.Directory)
	assert.Equal(t, "cdi", cfg.BaseName)
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}
