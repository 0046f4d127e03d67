// ABOUTME: FLAC-backed AudioSource
// ABOUTME: Decodes via mewkiz/flac, normalising every bit depth to packed signed 32-bit samples
package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// FlacSource decodes a FLAC file, one frame at a time. mewkiz/flac
// exposes each channel's samples as a separate []int32 subframe; this
// type interleaves them and left-shifts every sample up to a full
// 32-bit range, so the rest of the pipeline only ever deals with one
// output format regardless of the file's original bit depth.
type FlacSource struct {
	stream *flac.Stream
	info   audio.SourceInfo
	shift  uint
}

// OpenFlac opens path and prepares it for decoding.
func OpenFlac(path string) (*FlacSource, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't decode %s: %v", apperrors.ErrFile, path, err)
	}

	bitsPerSample := stream.Info.BitsPerSample
	if bitsPerSample == 0 || bitsPerSample > 32 {
		stream.Close()
		return nil, fmt.Errorf("%w: %s has unsupported bit depth %d", apperrors.ErrFile, path, bitsPerSample)
	}

	format := audio.FormatS32
	rate := stream.Info.SampleRate
	channels := uint8(stream.Info.NChannels)
	totalFrames := stream.Info.NSamples

	return &FlacSource{
		stream: stream,
		info:   audio.NewSourceInfo(path, rate, channels, format, totalFrames),
		shift:  32 - uint(bitsPerSample),
	}, nil
}

func (s *FlacSource) Info() audio.SourceInfo { return s.info }

func (s *FlacSource) Decode() (audio.DecodeResult, error) {
	f, err := s.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return audio.DecodeResult{State: audio.EndOfFile}, nil
		}
		return audio.DecodeResult{}, fmt.Errorf("%w: %v", apperrors.ErrFile, err)
	}

	return audio.DecodeResult{State: audio.Decoding, Data: s.interleave(f)}, nil
}

func (s *FlacSource) interleave(f *frame.Frame) []byte {
	nsamples := f.Subframes[0].NSamples
	channels := len(f.Subframes)
	out := make([]byte, nsamples*channels*4)

	i := 0
	for sampleIdx := 0; sampleIdx < nsamples; sampleIdx++ {
		for ch := 0; ch < channels; ch++ {
			v := uint32(f.Subframes[ch].Samples[sampleIdx]) << s.shift
			out[i] = byte(v)
			out[i+1] = byte(v >> 8)
			out[i+2] = byte(v >> 16)
			out[i+3] = byte(v >> 24)
			i += 4
		}
	}
	return out
}

func (s *FlacSource) Seek(micros uint64) (uint64, error) {
	samples := audio.SamplesFromMicros(micros, s.info.SampleRate)

	actual, err := s.stream.Seek(samples)
	if err != nil {
		return 0, fmt.Errorf("%w: seek to %dus failed: %v", apperrors.ErrSeek, micros, err)
	}

	return actual, nil
}

func (s *FlacSource) Close() error {
	return s.stream.Close()
}
