// SPDX-License-Identifier: EPL-2.0

// Package analyze inspects an input file before conversion: its format, size,
// duration and whether it must be re-encoded to MP3.
package analyze
