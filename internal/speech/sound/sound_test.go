package sound

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sine(freq float64, rate, n int, amplitude float64) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return samples
}

func TestResampleInt16Halves(t *testing.T) {
	in := sine(440, 32000, 3200, 1000)
	out := ResampleInt16(in, 32000, 16000)
	assert.Equal(t, 1600, len(out))
}

func TestResampleInt16SameRateCopies(t *testing.T) {
	in := []int16{1, 2, 3}
	out := ResampleInt16(in, 16000, 16000)
	assert.Equal(t, []int16{1, 2, 3}, out)
	out[0] = 9
	assert.Equal(t, int16(1), in[0], "input must stay untouched")
}

func TestResampleInt16PreservesLevel(t *testing.T) {
	in := sine(440, 48000, 4800, 8000)
	out := ResampleInt16(in, 48000, 16000)
	assert.InDelta(t, CalculateRMS16(in), CalculateRMS16(out), 200)
}

func TestConvertRoundTrip(t *testing.T) {
	in := []int16{-32768, -1, 0, 1, 32767}
	assert.Equal(t, in, ConvertIntToInt16(ConvertInt16ToInt(in)))
}

func TestDownmixInt16(t *testing.T) {
	stereo := []int16{100, 200, -100, -200}
	assert.Equal(t, []int16{150, -150}, DownmixInt16(stereo, 2))
	mono := []int16{1, 2, 3}
	assert.Equal(t, mono, DownmixInt16(mono, 1))
}

func TestCalculateRMS16(t *testing.T) {
	assert.Zero(t, CalculateRMS16(nil))
	assert.Zero(t, CalculateRMS16([]int16{0, 0, 0}))

	// A full-scale sine has RMS amplitude/sqrt(2).
	in := sine(440, 16000, 16000, 10000)
	assert.InDelta(t, 10000/math.Sqrt2, CalculateRMS16(in), 100)
}
