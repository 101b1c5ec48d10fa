// Package sound holds the PCM helpers shared by capture, voice detection
// and encoding: resampling, width conversion and level measurement.
package sound

import "math"

// ResampleInt16 converts samples between rates with linear interpolation,
// which is enough fidelity for speech fed to VAD and recognition.
func ResampleInt16(samples []int16, from, to int) []int16 {
	if from == to || len(samples) == 0 {
		out := make([]int16, len(samples))
		copy(out, samples)
		return out
	}
	ratio := float64(from) / float64(to)
	out := make([]int16, int(float64(len(samples))/ratio))
	for i := range out {
		pos := float64(i) * ratio
		left := int(pos)
		right := left + 1
		if right >= len(samples) {
			out[i] = samples[left]
			continue
		}
		frac := pos - float64(left)
		out[i] = int16(float64(samples[left])*(1-frac) + float64(samples[right])*frac)
	}
	return out
}

// ConvertInt16ToInt widens samples for go-audio buffers.
func ConvertInt16ToInt(samples []int16) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(s)
	}
	return out
}

// ConvertIntToInt16 narrows decoded 16-bit PCM back to its native width.
func ConvertIntToInt16(samples []int) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(s)
	}
	return out
}

// DownmixInt16 averages interleaved frames down to mono.
func DownmixInt16(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	out := make([]int16, 0, len(samples)/channels)
	for i := 0; i+channels <= len(samples); i += channels {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += int(samples[i+c])
		}
		out = append(out, int16(sum/channels))
	}
	return out
}

// CalculateRMS16 calculates the root-mean-square of the audio buffer for
// int16 samples. The capture threshold works on this scale.
func CalculateRMS16(buffer []int16) float64 {
	if len(buffer) == 0 {
		return 0
	}
	var sumSquares float64
	for _, sample := range buffer {
		val := float64(sample)
		sumSquares += val * val
	}
	meanSquares := sumSquares / float64(len(buffer))
	return math.Sqrt(meanSquares)
}
