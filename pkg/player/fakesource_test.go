// ABOUTME: Fake AudioSource test double shared across pkg/player tests
// ABOUTME: Produces fixed-size chunks of zeroed PCM without touching a real file or decoder
package player

import (
	"io"

	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// fakeSource is a minimal in-memory AudioSource for exercising
// PipeAudio and Player without touching a real file or codec. It
// hands out chunkFrames frames per Decode call from a fixed backing
// buffer, and supports exact-sample seeking.
type fakeSource struct {
	info      audio.SourceInfo
	data      []byte
	pos       int // byte offset into data
	chunkSize int // bytes per Decode call

	decodeErr error // if set, the next Decode call fails
}

const fakeBytesPerFrame = 4 // stereo S16

func newFakeSource(totalFrames int, chunkFrames int) *fakeSource {
	data := make([]byte, totalFrames*fakeBytesPerFrame)
	for i := range data {
		data[i] = byte(i)
	}
	return &fakeSource{
		info:      audio.NewSourceInfo("fake.pcm", 44100, 2, audio.FormatS16, uint64(totalFrames)),
		data:      data,
		chunkSize: chunkFrames * fakeBytesPerFrame,
	}
}

func (s *fakeSource) Info() audio.SourceInfo { return s.info }

func (s *fakeSource) Decode() (audio.DecodeResult, error) {
	if s.decodeErr != nil {
		err := s.decodeErr
		s.decodeErr = nil
		return audio.DecodeResult{}, err
	}

	if s.pos >= len(s.data) {
		return audio.DecodeResult{State: audio.EndOfFile}, nil
	}

	end := s.pos + s.chunkSize
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := s.data[s.pos:end]
	s.pos = end

	return audio.DecodeResult{State: audio.Decoding, Data: chunk}, nil
}

func (s *fakeSource) Seek(micros uint64) (uint64, error) {
	samples := audio.SamplesFromMicros(micros, s.info.SampleRate)
	maxSamples := uint64(len(s.data)) / uint64(s.info.BytesPerFrame)
	if samples > maxSamples {
		return 0, apperrors.ErrSeek
	}
	s.pos = int(samples) * s.info.BytesPerFrame
	return samples, nil
}

func (s *fakeSource) Close() error { return nil }

var _ io.Closer = (*fakeSource)(nil)
