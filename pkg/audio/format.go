// ABOUTME: Sample format and source metadata types
// ABOUTME: SourceInfo is the immutable metadata established when a source is opened
package audio

import "fmt"

// SampleFormat is a packed, interleaved-across-channels sample encoding.
type SampleFormat uint8

const (
	FormatU8  SampleFormat = iota // packed unsigned 8-bit
	FormatS8                      // packed signed 8-bit
	FormatS16                     // packed signed 16-bit, little-endian
	FormatS32                     // packed signed 32-bit, little-endian
	FormatF32                     // packed IEEE-754 float32, little-endian
)

// Width returns the number of bytes a single mono sample occupies in this
// format, i.e. one channel's worth of one instant.
func (f SampleFormat) Width() int {
	switch f {
	case FormatU8, FormatS8:
		return 1
	case FormatS16:
		return 2
	case FormatS32, FormatF32:
		return 4
	default:
		panic(fmt.Sprintf("audio: unknown sample format %d", uint8(f)))
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "U8"
	case FormatS8:
		return "S8"
	case FormatS16:
		return "S16"
	case FormatS32:
		return "S32"
	case FormatF32:
		return "F32"
	default:
		return fmt.Sprintf("SampleFormat(%d)", uint8(f))
	}
}

// SourceInfo is the immutable metadata established when a source is opened.
type SourceInfo struct {
	Path          string
	SampleRate    uint32 // Hz, <= 2^31-1
	Channels      uint8  // 1..=255
	Format        SampleFormat
	BytesPerFrame int    // Width(Format) * Channels
	TotalFrames   uint64 // 0 if unknown
}

// NewSourceInfo builds a SourceInfo, deriving BytesPerFrame from the format
// and channel count.
func NewSourceInfo(path string, rate uint32, channels uint8, format SampleFormat, totalFrames uint64) SourceInfo {
	return SourceInfo{
		Path:          path,
		SampleRate:    rate,
		Channels:      channels,
		Format:        format,
		BytesPerFrame: format.Width() * int(channels),
		TotalFrames:   totalFrames,
	}
}

// SamplesFromMicros converts a position in microseconds to an elapsed
// sample count at the given rate. Multiplication happens before division
// to minimise rounding error on integer arithmetic.
func SamplesFromMicros(micros uint64, rate uint32) uint64 {
	return (micros * uint64(rate)) / 1000000
}

// MicrosFromSamples converts an elapsed sample count to a position in
// microseconds at the given rate. The inverse of SamplesFromMicros.
func MicrosFromSamples(samples uint64, rate uint32) uint64 {
	return (samples * 1000000) / uint64(rate)
}
