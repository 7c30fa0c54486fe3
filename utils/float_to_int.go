// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a sample in [-1, 1] to 16-bit PCM.
// Negative values scale by 32768 and positive values by 32767, so -1 maps to
// -32768 and 1 maps to 32767. Out of range values clamp, NaN maps to 0.
func Float32ToInt16(x float32) int16 {
	if x != x {
		return 0
	}

	if x < 0 {
		v := x * 32768
		if v <= -32768 {
			return -32768
		}
		return int16(v)
	}

	v := x * 32767
	if v >= 32767 {
		return 32767
	}
	return int16(v)
}

// InterleaveInt16 converts frames frames starting at start from planar
// channels into interleaved int16 samples appended to dst.
func InterleaveInt16(dst []int16, channels [][]float32, start, frames int) []int16 {
	switch len(channels) {
	case 1:
		for _, x := range channels[0][start : start+frames] {
			dst = append(dst, Float32ToInt16(x))
		}
	case 2:
		left := channels[0][start : start+frames]
		right := channels[1][start : start+frames]
		for i := range left {
			dst = append(dst, Float32ToInt16(left[i]), Float32ToInt16(right[i]))
		}
	default:
		for f := start; f < start+frames; f++ {
			for _, ch := range channels {
				dst = append(dst, Float32ToInt16(ch[f]))
			}
		}
	}
	return dst
}
