// ABOUTME: Hand-rolled WAV/PCM AudioSource
// ABOUTME: Parses a RIFF/WAVE header directly since no pack library exposes sample-accurate seek over PCM
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// pcmDecodeFrames bounds how many frames Decode pulls per round.
const pcmDecodeFrames = 4096

// PcmSource decodes uncompressed PCM stored in a RIFF/WAVE container.
// There's no decode state to speak of -- every frame is already in the
// output format -- so Decode is a straight, bounded file read and Seek
// is an exact byte-offset recompute into the data chunk.
type PcmSource struct {
	file      *os.File
	info      audio.SourceInfo
	dataStart int64
	dataSize  int64
}

// OpenPcm opens path, parses its RIFF/WAVE header, and positions the
// file just past it, ready to decode from frame zero.
func OpenPcm(path string) (*PcmSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't open %s: %v", apperrors.ErrFile, path, err)
	}

	hdr, err := parseWaveHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrFile, path, err)
	}

	format, err := pcmSampleFormat(hdr.bitsPerSample, hdr.audioFormat)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrFile, path, err)
	}

	info := audio.NewSourceInfo(path, hdr.sampleRate, hdr.channels, format, 0)
	info.TotalFrames = uint64(hdr.dataSize) / uint64(info.BytesPerFrame)

	return &PcmSource{
		file:      f,
		info:      info,
		dataStart: hdr.dataStart,
		dataSize:  hdr.dataSize,
	}, nil
}

func pcmSampleFormat(bitsPerSample uint16, audioFormat uint16) (audio.SampleFormat, error) {
	const (
		waveFormatPCM   = 1
		waveFormatFloat = 3
	)
	switch {
	case audioFormat == waveFormatFloat && bitsPerSample == 32:
		return audio.FormatF32, nil
	case audioFormat == waveFormatPCM && bitsPerSample == 8:
		return audio.FormatU8, nil
	case audioFormat == waveFormatPCM && bitsPerSample == 16:
		return audio.FormatS16, nil
	case audioFormat == waveFormatPCM && bitsPerSample == 32:
		return audio.FormatS32, nil
	default:
		return 0, fmt.Errorf("unsupported PCM encoding (format %d, %d bits)", audioFormat, bitsPerSample)
	}
}

func (s *PcmSource) Info() audio.SourceInfo { return s.info }

func (s *PcmSource) Decode() (audio.DecodeResult, error) {
	pos, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return audio.DecodeResult{}, fmt.Errorf("%w: %v", apperrors.ErrFile, err)
	}
	remaining := s.dataStart + s.dataSize - pos
	if remaining <= 0 {
		return audio.DecodeResult{State: audio.EndOfFile}, nil
	}

	want := int64(pcmDecodeFrames * s.info.BytesPerFrame)
	if remaining < want {
		want = remaining
	}
	want -= want % int64(s.info.BytesPerFrame)

	buf := make([]byte, want)
	n, err := io.ReadFull(s.file, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return audio.DecodeResult{}, fmt.Errorf("%w: %v", apperrors.ErrFile, err)
	}
	n -= n % s.info.BytesPerFrame

	if n == 0 {
		return audio.DecodeResult{State: audio.EndOfFile}, nil
	}
	return audio.DecodeResult{State: audio.Decoding, Data: buf[:n]}, nil
}

func (s *PcmSource) Seek(micros uint64) (uint64, error) {
	samples := audio.SamplesFromMicros(micros, s.info.SampleRate)
	maxSamples := uint64(s.dataSize) / uint64(s.info.BytesPerFrame)
	if samples > maxSamples {
		return 0, fmt.Errorf("%w: seek to %dus exceeds file length", apperrors.ErrSeek, micros)
	}

	offset := s.dataStart + int64(samples)*int64(s.info.BytesPerFrame)
	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: seek to %dus failed: %v", apperrors.ErrSeek, micros, err)
	}

	return samples, nil
}

func (s *PcmSource) Close() error {
	return s.file.Close()
}

// waveHeader is the subset of RIFF/WAVE header fields the decoder needs.
type waveHeader struct {
	audioFormat   uint16
	channels      uint8
	sampleRate    uint32
	bitsPerSample uint16
	dataStart     int64
	dataSize      int64
}

// parseWaveHeader walks a RIFF/WAVE container's chunks looking for "fmt "
// and "data", skipping any others (e.g. "LIST", "fact"). f is left
// positioned at the start of the data chunk on success.
func parseWaveHeader(f *os.File) (waveHeader, error) {
	var riffHdr [12]byte
	if _, err := io.ReadFull(f, riffHdr[:]); err != nil {
		return waveHeader{}, fmt.Errorf("truncated RIFF header: %v", err)
	}
	if string(riffHdr[0:4]) != "RIFF" || string(riffHdr[8:12]) != "WAVE" {
		return waveHeader{}, fmt.Errorf("not a RIFF/WAVE file")
	}

	var hdr waveHeader
	var haveFmt, haveData bool

	for !haveData {
		var chunkHdr [8]byte
		if _, err := io.ReadFull(f, chunkHdr[:]); err != nil {
			return waveHeader{}, fmt.Errorf("truncated chunk header: %v", err)
		}
		chunkID := string(chunkHdr[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHdr[4:8]))

		switch chunkID {
		case "fmt ":
			var fmtBody [16]byte
			if chunkSize < int64(len(fmtBody)) {
				return waveHeader{}, fmt.Errorf("fmt chunk too small (%d bytes)", chunkSize)
			}
			if _, err := io.ReadFull(f, fmtBody[:]); err != nil {
				return waveHeader{}, fmt.Errorf("truncated fmt chunk: %v", err)
			}
			hdr.audioFormat = binary.LittleEndian.Uint16(fmtBody[0:2])
			hdr.channels = uint8(binary.LittleEndian.Uint16(fmtBody[2:4]))
			hdr.sampleRate = binary.LittleEndian.Uint32(fmtBody[4:8])
			hdr.bitsPerSample = binary.LittleEndian.Uint16(fmtBody[14:16])
			haveFmt = true

			if remainder := chunkSize - int64(len(fmtBody)); remainder > 0 {
				if _, err := f.Seek(remainder, io.SeekCurrent); err != nil {
					return waveHeader{}, err
				}
			}
		case "data":
			if !haveFmt {
				return waveHeader{}, fmt.Errorf("data chunk before fmt chunk")
			}
			pos, err := f.Seek(0, io.SeekCurrent)
			if err != nil {
				return waveHeader{}, err
			}
			hdr.dataStart = pos
			hdr.dataSize = chunkSize
			haveData = true
		default:
			if _, err := f.Seek(chunkSize, io.SeekCurrent); err != nil {
				return waveHeader{}, fmt.Errorf("couldn't skip chunk %q: %v", chunkID, err)
			}
		}

		// Chunks are padded to even length.
		if chunkSize%2 != 0 && chunkID != "data" {
			if _, err := f.Seek(1, io.SeekCurrent); err != nil {
				return waveHeader{}, err
			}
		}
	}

	return hdr, nil
}
