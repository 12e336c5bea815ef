package audio

import (
	"encoding/binary"
	"errors"
	"math"
)

// The buffered processing path carries 32-bit float little-endian PCM,
// mono at the configured sample rate. Clients capturing 16-bit integer
// PCM must convert before feeding the buffer.
const (
	BytesPerSample = 4
	SampleRate     = 16000
)

var ErrOddLength = errors.New("byte length is not a multiple of the sample width")

// DecodeFloat32 interprets raw buffer bytes as float32 LE samples.
func DecodeFloat32(data []byte) ([]float32, error) {
	if len(data)%BytesPerSample != 0 {
		return nil, ErrOddLength
	}
	samples := make([]float32, len(data)/BytesPerSample)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(data[i*BytesPerSample:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}

// EncodeFloat32 is the inverse of DecodeFloat32.
func EncodeFloat32(samples []float32) []byte {
	data := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*BytesPerSample:], math.Float32bits(s))
	}
	return data
}

// ToInt16 converts float samples in [-1, 1] to 16-bit PCM, clipping
// anything outside the range. Used for the WAV upload to the model server.
func ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * math.MaxInt16)
	}
	return out
}

// Silence returns the given duration of silent samples. The prompt
// translation path decodes against one second of silence.
func Silence(seconds float64, sampleRate int) []float32 {
	return make([]float32, int(seconds*float64(sampleRate)))
}
