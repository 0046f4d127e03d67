// ABOUTME: MP3-backed AudioSource
// ABOUTME: Decodes via hajimehoshi/go-mp3, which always yields signed 16-bit stereo PCM
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// mp3DecodeChunk bounds how much PCM Decode pulls from the underlying
// decoder per round.
const mp3DecodeChunk = 8192

// Mp3Source decodes an MP3 file. go-mp3 always produces signed 16-bit
// little-endian stereo output regardless of the source's original
// channel layout, and exposes a byte-granular io.Seeker over that PCM
// stream, which this type turns into the sample-granular seek the rest
// of the pipeline expects.
type Mp3Source struct {
	file    *os.File
	decoder *mp3.Decoder
	info    audio.SourceInfo
}

// OpenMp3 opens path and prepares it for decoding.
func OpenMp3(path string) (*Mp3Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't open %s: %v", apperrors.ErrFile, path, err)
	}

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: couldn't decode %s: %v", apperrors.ErrFile, path, err)
	}

	const channels = 2
	format := audio.FormatS16
	rate := uint32(dec.SampleRate())

	var totalFrames uint64
	if length := dec.Length(); length >= 0 {
		bytesPerFrame := format.Width() * channels
		totalFrames = uint64(length) / uint64(bytesPerFrame)
	}

	return &Mp3Source{
		file:    f,
		decoder: dec,
		info:    audio.NewSourceInfo(path, rate, channels, format, totalFrames),
	}, nil
}

func (s *Mp3Source) Info() audio.SourceInfo { return s.info }

func (s *Mp3Source) Decode() (audio.DecodeResult, error) {
	buf := make([]byte, mp3DecodeChunk)
	n, err := s.decoder.Read(buf)
	if err != nil && err != io.EOF {
		return audio.DecodeResult{}, fmt.Errorf("%w: %v", apperrors.ErrFile, err)
	}

	// go-mp3 only ever returns whole frames, but guard the invariant
	// anyway: a partial frame here would desync every sink downstream.
	n -= n % s.info.BytesPerFrame

	if n == 0 {
		return audio.DecodeResult{State: audio.EndOfFile}, nil
	}
	return audio.DecodeResult{State: audio.Decoding, Data: buf[:n]}, nil
}

func (s *Mp3Source) Seek(micros uint64) (uint64, error) {
	samples := audio.SamplesFromMicros(micros, s.info.SampleRate)
	byteOffset := int64(samples) * int64(s.info.BytesPerFrame)

	actual, err := s.decoder.Seek(byteOffset, io.SeekStart)
	if err != nil {
		return 0, fmt.Errorf("%w: seek to %dus failed: %v", apperrors.ErrSeek, micros, err)
	}

	return uint64(actual) / uint64(s.info.BytesPerFrame), nil
}

func (s *Mp3Source) Close() error {
	return s.file.Close()
}
