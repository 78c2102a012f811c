package audio

import "encoding/binary"

// EncodePCM16 converts samples to 16-bit little-endian PCM bytes.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(pcm16(s)))
	}
	return out
}

// DecodePCM16 converts 16-bit little-endian PCM bytes to samples in [-1, 1].
// A trailing odd byte is ignored.
func DecodePCM16(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(data[2*i:]))) / 32768
	}
	return out
}
