// Package config loads the machine configuration from YAML.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the complete machine configuration.
type Config struct {
	ClockAHz     int64 `yaml:"clock_a_hz"`
	TimerDivider int64 `yaml:"timer_divider"`
	Video        Video `yaml:"video"`
	UART         UART  `yaml:"uart"`
	Files        Files `yaml:"files"`
}

// Video configures raster timing and the video decoder.
type Video struct {
	RefreshHz          int             `yaml:"refresh_hz"`
	TotalLines         int             `yaml:"total_lines"`
	FirstActiveLine    int             `yaml:"first_active_line"`
	Width              int             `yaml:"width"`
	HonorDisplayEnable bool            `yaml:"honor_display_enable"`
	Compose            bool            `yaml:"compose"`
	MaxICACommands     int             `yaml:"max_ica_commands"`
	Channels           []ChannelPreset `yaml:"channels"`
}

// ChannelPreset holds display channel register values applied at reset, in
// the order DCR, DDR, VSR, DCP. VSR and DCP are 22-bit addresses whose top 6
// bits share a register with DCR and DDR: a VSR preset overwrites the low 6
// bits of DCR and a DCP preset overwrites the low 6 bits of DDR.
type ChannelPreset struct {
	DCR uint16 `yaml:"dcr"`
	DDR uint16 `yaml:"ddr"`
	VSR uint32 `yaml:"vsr"`
	DCP uint32 `yaml:"dcp"`
}

// UART configures the serial port.
type UART struct {
	Echo bool `yaml:"echo"`
}

// Files names the images loaded into the machine. Empty means none.
type Files struct {
	BIOS   string `yaml:"bios"`
	PlaneA string `yaml:"plane_a"`
	PlaneB string `yaml:"plane_b"`
	NVRAM  string `yaml:"nvram"`
}

const (
	channels       = 2
	maxChipAddress = 0x3FFFFF
)

// Default returns the configuration of an NTSC machine with a 30 MHz clock.
func Default() *Config {
	return &Config{
		ClockAHz:     30_000_000,
		TimerDivider: 3,
		Video: Video{
			RefreshHz:       60,
			TotalLines:      262,
			FirstActiveLine: 22,
			Width:           768,
			Compose:         true,
			MaxICACommands:  0x20000,
			Channels:        make([]ChannelPreset, channels),
		},
	}
}

// Load reads a YAML configuration. Fields the file does not set keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}
	for len(cfg.Video.Channels) < channels {
		cfg.Video.Channels = append(cfg.Video.Channels, ChannelPreset{})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration describes a machine that can run.
func (c *Config) Validate() error {
	switch {
	case c.ClockAHz <= 0:
		return errors.Errorf("clock_a_hz must be positive, got %d", c.ClockAHz)
	case c.TimerDivider <= 0:
		return errors.Errorf("timer_divider must be positive, got %d", c.TimerDivider)
	}

	v := c.Video
	switch {
	case v.RefreshHz <= 0:
		return errors.Errorf("video.refresh_hz must be positive, got %d", v.RefreshHz)
	case v.TotalLines <= 1:
		return errors.Errorf("video.total_lines must be greater than 1, got %d", v.TotalLines)
	case v.FirstActiveLine <= 0 || v.FirstActiveLine >= v.TotalLines:
		return errors.Errorf("video.first_active_line must be in 1..%d, got %d", v.TotalLines-1, v.FirstActiveLine)
	case v.Width <= 0 || v.Width%2 != 0:
		return errors.Errorf("video.width must be positive and even, got %d", v.Width)
	case v.MaxICACommands <= 0:
		return errors.Errorf("video.max_ica_commands must be positive, got %d", v.MaxICACommands)
	case len(v.Channels) > channels:
		return errors.Errorf("video.channels has %d entries, at most %d allowed", len(v.Channels), channels)
	}

	for i, ch := range v.Channels {
		if ch.VSR > maxChipAddress || ch.DCP > maxChipAddress {
			return errors.Errorf("video.channels[%d]: vsr and dcp must fit in 22 bits", i)
		}
	}
	return nil
}
