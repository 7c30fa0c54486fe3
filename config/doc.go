// SPDX-License-Identifier: EPL-2.0

// Package config loads the YAML configuration of audpipe.
//
// Every field has a default (see Default); a file only needs the keys it
// changes:
//
//	encoder:
//	  bitrate_kbps: 128
//	  sample_rate: 0        # keep the input rate
//	  mono: false
//	chunking:
//	  max_chunk_bytes: 20971520
//	  ceiling_bytes: 26214400
//	  split: true
//	decoder:
//	  ffmpeg_path: ffmpeg
//	  ffprobe_path: ffprobe
//	logging:
//	  level: info           # debug, info, warn, error
//	  format: text          # text or json
//	  output: stderr        # stdout, stderr or a file path
//	metrics:
//	  listen_address: ""    # e.g. ":9090" to serve /metrics
package config
