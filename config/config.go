// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audpipe/chunk"
	"github.com/ik5/audpipe/encoder"
)

// Config is the complete configuration of the pipeline and the CLI.
type Config struct {
	Encoder  EncoderConfig  `yaml:"encoder"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Decoder  DecoderConfig  `yaml:"decoder"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// EncoderConfig controls MP3 encoding.
type EncoderConfig struct {
	BitrateKbps int  `yaml:"bitrate_kbps"`
	SampleRate  int  `yaml:"sample_rate"` // 0 keeps the input rate
	Mono        bool `yaml:"mono"`
}

// ChunkingConfig controls when and how encoded output is split.
type ChunkingConfig struct {
	MaxChunkBytes int  `yaml:"max_chunk_bytes"`
	CeilingBytes  int  `yaml:"ceiling_bytes"`
	Split         bool `yaml:"split"`
}

// DecoderConfig locates external tools.
type DecoderConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"` // stdout, stderr or a file path
}

// MetricsConfig enables the Prometheus endpoint when ListenAddress is set.
type MetricsConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Encoder: EncoderConfig{
			BitrateKbps: encoder.DefaultBitrateKbps,
		},
		Chunking: ChunkingConfig{
			MaxChunkBytes: chunk.DefaultMaxChunkBytes,
			CeilingBytes:  chunk.DefaultCeilingBytes,
			Split:         true,
		},
		Decoder: DecoderConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	if err := c.Encoder.Validate(); err != nil {
		return fmt.Errorf("encoder config: %w", err)
	}
	if err := c.Chunking.Validate(); err != nil {
		return fmt.Errorf("chunking config: %w", err)
	}
	if err := c.Decoder.Validate(); err != nil {
		return fmt.Errorf("decoder config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func (e *EncoderConfig) Validate() error {
	if e.BitrateKbps < encoder.MinBitrateKbps || e.BitrateKbps > encoder.MaxBitrateKbps {
		return fmt.Errorf("bitrate_kbps must be between %d and %d, got %d", encoder.MinBitrateKbps, encoder.MaxBitrateKbps, e.BitrateKbps)
	}
	if e.SampleRate != 0 && !encoder.IsMP3SampleRate(e.SampleRate) {
		return fmt.Errorf("sample_rate %d is not an MP3 sample rate", e.SampleRate)
	}
	return nil
}

func (c *ChunkingConfig) Validate() error {
	if c.MaxChunkBytes < 1 {
		return fmt.Errorf("max_chunk_bytes must be positive, got %d", c.MaxChunkBytes)
	}
	if c.CeilingBytes < 1 {
		return fmt.Errorf("ceiling_bytes must be positive, got %d", c.CeilingBytes)
	}
	if c.MaxChunkBytes > c.CeilingBytes {
		return fmt.Errorf("max_chunk_bytes (%d) must not exceed ceiling_bytes (%d)",
			c.MaxChunkBytes, c.CeilingBytes)
	}
	return nil
}

func (d *DecoderConfig) Validate() error {
	if d.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg_path cannot be empty")
	}
	if d.FFprobePath == "" {
		return fmt.Errorf("ffprobe_path cannot be empty")
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	if l.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}
	return nil
}
