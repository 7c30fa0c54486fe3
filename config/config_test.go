// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"bitrate too high", func(c *Config) { c.Encoder.BitrateKbps = 512 }, "bitrate_kbps"},
		{"bitrate too low", func(c *Config) { c.Encoder.BitrateKbps = 4 }, "bitrate_kbps"},
		{"bitrate 192", func(c *Config) { c.Encoder.BitrateKbps = 192 }, ""},
		{"odd sample rate", func(c *Config) { c.Encoder.SampleRate = 44000 }, "sample_rate"},
		{"mp3 sample rate", func(c *Config) { c.Encoder.SampleRate = 16000 }, ""},
		{"zero chunk size", func(c *Config) { c.Chunking.MaxChunkBytes = 0 }, "max_chunk_bytes must be positive"},
		{"chunk above ceiling", func(c *Config) { c.Chunking.MaxChunkBytes = c.Chunking.CeilingBytes + 1 }, "must not exceed"},
		{"no ffmpeg", func(c *Config) { c.Decoder.FFmpegPath = "" }, "ffmpeg_path"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "level must be one of"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "format must be"},
		{"file output", func(c *Config) { c.Logging.Output = "/var/log/audpipe.log" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Default()
			tt.mutate(c)
			err := c.Validate()

			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.errorMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	yaml := `
encoder:
  mono: true
  sample_rate: 22050
chunking:
  max_chunk_bytes: 1048576
  split: false
logging:
  level: debug
  format: json
metrics:
  listen_address: ":9090"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !c.Encoder.Mono || c.Encoder.SampleRate != 22050 || c.Encoder.BitrateKbps != 128 {
		t.Errorf("Encoder = %+v", c.Encoder)
	}
	if c.Chunking.MaxChunkBytes != 1<<20 || c.Chunking.Split || c.Chunking.CeilingBytes != 25*1024*1024 {
		t.Errorf("Chunking = %+v", c.Chunking)
	}
	if c.Logging.Level != "debug" || c.Logging.Format != "json" || c.Logging.Output != "stderr" {
		t.Errorf("Logging = %+v", c.Logging)
	}
	if c.Metrics.ListenAddress != ":9090" || c.Decoder.FFmpegPath != "ffmpeg" {
		t.Errorf("Metrics = %+v, Decoder = %+v", c.Metrics, c.Decoder)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("encoder: [not, a, map"), 0o600); err != nil {
		t.Fatal(err)
	}
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("logging:\n  level: loud\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing", filepath.Join(dir, "nope.yaml"), "failed to read"},
		{"malformed", bad, "failed to parse"},
		{"invalid", invalid, "validation failed"},
	}

	for _, tt := range tests {
		if _, err := Load(tt.path); err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: Load() error = %v, want %q", tt.name, err, tt.want)
		}
	}
}
