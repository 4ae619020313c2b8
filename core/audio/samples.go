package audio

import "encoding/binary"

// BytesFromSamples converts float32 samples in [-1, 1] to little-endian
// linear16 bytes. Out-of-range samples are clipped rather than wrapped.
func BytesFromSamples(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(sample*32767)))
	}
	return out
}

// SamplesFromBytes converts little-endian linear16 bytes back to float32
// samples. A trailing odd byte is ignored.
func SamplesFromBytes(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(data[i*2:]))) / 32767
	}
	return samples
}
