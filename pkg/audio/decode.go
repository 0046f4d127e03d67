// ABOUTME: Decode result and source interface types
// ABOUTME: AudioSource turns a file into a sequence of DecodeResults of PCM bytes
package audio

// DecodeState is the state a decoder reports after a single decode round.
type DecodeState uint8

const (
	WaitingForFrame DecodeState = iota
	Decoding
	EndOfFile
)

func (s DecodeState) String() string {
	switch s {
	case WaitingForFrame:
		return "WaitingForFrame"
	case Decoding:
		return "Decoding"
	case EndOfFile:
		return "EndOfFile"
	default:
		return "Unknown"
	}
}

// DecodeResult is the outcome of one AudioSource.Decode call: the
// decoder's state after decoding, and the bytes produced. Data's length
// is always a whole multiple of the source's BytesPerFrame, and may be
// empty if the round produced no complete frame.
type DecodeResult struct {
	State DecodeState
	Data  []byte
}

// AudioSource decodes an audio file into frames of PCM bytes.
//
// The SourceInfo returned by Info (path, sample rate, channel count,
// format, bytes per frame) is stable for the lifetime of the source.
// Calling Decode repeatedly after EndOfFile must be safe and must
// continue to report EndOfFile with an empty Data.
type AudioSource interface {
	// Decode performs one round of decoding, up to an implementation
	// defined internal buffer's worth of data.
	Decode() (DecodeResult, error)

	// Seek coerces micros to a sample offset, repositions the
	// underlying stream, and returns the sample position actually set.
	Seek(micros uint64) (uint64, error)

	Info() SourceInfo

	// Close releases any file handles or decoder state held by the source.
	Close() error
}
