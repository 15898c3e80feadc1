package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(30_000_000), cfg.ClockAHz)
	assert.Equal(t, int64(3), cfg.TimerDivider)
	assert.Equal(t, 262, cfg.Video.TotalLines)
	assert.Equal(t, 22, cfg.Video.FirstActiveLine)
	assert.True(t, cfg.Video.Compose)
	assert.False(t, cfg.Video.HonorDisplayEnable)
	assert.Len(t, cfg.Video.Channels, 2)
}

func TestParse(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg, err := Parse([]byte("uart:\n  echo: true\nvideo:\n  honor_display_enable: true\n"))
		require.NoError(t, err)

		assert.True(t, cfg.UART.Echo)
		assert.True(t, cfg.Video.HonorDisplayEnable)
		assert.True(t, cfg.Video.Compose)
		assert.Equal(t, 60, cfg.Video.RefreshHz)
	})

	t.Run("channel presets", func(t *testing.T) {
		data := []byte(`
video:
  channels:
    - {dcr: 0x8300, ddr: 0x0200, vsr: 0x2000, dcp: 0x1000}
`)
		cfg, err := Parse(data)
		require.NoError(t, err)

		require.Len(t, cfg.Video.Channels, 2, "missing channels are padded")
		assert.Equal(t, ChannelPreset{DCR: 0x8300, DDR: 0x0200, VSR: 0x2000, DCP: 0x1000}, cfg.Video.Channels[0])
		assert.Equal(t, ChannelPreset{}, cfg.Video.Channels[1])
	})

	t.Run("files", func(t *testing.T) {
		cfg, err := Parse([]byte("files:\n  bios: cdi200.rom\n  nvram: cdi.nv\n"))
		require.NoError(t, err)
		assert.Equal(t, "cdi200.rom", cfg.Files.BIOS)
		assert.Equal(t, "cdi.nv", cfg.Files.NVRAM)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("video: [1, 2"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero clock", func(c *Config) { c.ClockAHz = 0 }},
		{"zero divider", func(c *Config) { c.TimerDivider = 0 }},
		{"zero refresh", func(c *Config) { c.Video.RefreshHz = 0 }},
		{"active line past the frame", func(c *Config) { c.Video.FirstActiveLine = 262 }},
		{"odd width", func(c *Config) { c.Video.Width = 767 }},
		{"no ICA budget", func(c *Config) { c.Video.MaxICACommands = 0 }},
		{"three channels", func(c *Config) { c.Video.Channels = make([]ChannelPreset, 3) }},
		{"VSR too wide", func(c *Config) { c.Video.Channels[1].VSR = 0x400000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(dir, "cdi.yaml")
		require.NoError(t, os.WriteFile(path, []byte("clock_a_hz: 15000000\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, int64(15_000_000), cfg.ClockAHz)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("invalid values name the file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("timer_divider: -1\n"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.yaml")
		assert.Contains(t, err.Error(), "timer_divider")
	})
}
