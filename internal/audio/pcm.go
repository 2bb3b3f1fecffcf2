// Package audio provides PCM helpers and lightweight noise suppression for
// inbound session audio.
package audio

import "encoding/binary"

// DecodePCM16 converts little-endian 16-bit PCM bytes to samples. A trailing
// odd byte is dropped.
func DecodePCM16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// EncodePCM16 converts samples back to little-endian 16-bit PCM bytes.
func EncodePCM16(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}
