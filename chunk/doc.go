// SPDX-License-Identifier: EPL-2.0

// Package chunk splits an encoded payload into ordered, size bounded parts
// and names them so receivers can put them back in order:
//
//	clip.mp3 -> clip_part1of3.mp3, clip_part2of3.mp3, clip_part3of3.mp3
//
// Parts are sub-slices of the payload; nothing is copied.
package chunk
