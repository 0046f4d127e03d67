// ABOUTME: miniaudio-backed AudioSink implementation
// ABOUTME: Opens a real playback device via gen2brain/malgo and drains sinkCore's ring buffer from its callback
package device

import (
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// malgoFormat maps from audio.SampleFormat to malgo's device format.
func malgoFormat(f audio.SampleFormat) (malgo.FormatType, error) {
	switch f {
	case audio.FormatU8:
		return malgo.FormatU8, nil
	case audio.FormatS16:
		return malgo.FormatS16, nil
	case audio.FormatS32:
		return malgo.FormatS32, nil
	case audio.FormatF32:
		return malgo.FormatF32, nil
	default:
		return 0, fmt.Errorf("%w: unsupported output sample format %s", apperrors.ErrConfig, f)
	}
}

// MalgoSink is an AudioSink backed by a real output device opened through
// miniaudio. It is built on top of sinkCore, which owns the ring buffer
// and the atomics the device callback touches.
type MalgoSink struct {
	core   *sinkCore
	device *malgo.Device
}

// NewMalgoSink opens an output device matching info's rate, channel
// count and format. ctx is the process-wide library handle acquired by
// internal/devctl; deviceID, if non-nil, names a specific playback
// device, otherwise the default device is used.
func NewMalgoSink(ctx *malgo.AllocatedContext, info audio.SourceInfo, deviceID *malgo.DeviceID) (*MalgoSink, error) {
	format, err := malgoFormat(info.Format)
	if err != nil {
		return nil, err
	}

	core := newSinkCore(info.BytesPerFrame)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = format
	deviceConfig.Playback.Channels = uint32(info.Channels)
	deviceConfig.SampleRate = uint32(info.SampleRate)
	if deviceID != nil {
		deviceConfig.Playback.DeviceID = deviceID.Pointer()
	}

	sink := &MalgoSink{core: core}

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			core.Callback(out)
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't open device: %v", apperrors.ErrConfig, err)
	}
	sink.device = dev

	return sink, nil
}

func (s *MalgoSink) State() audio.SinkState   { return s.core.State() }
func (s *MalgoSink) SetSourceOut()            { s.core.SetSourceOut() }
func (s *MalgoSink) Position() uint64         { return s.core.Position() }
func (s *MalgoSink) SetPosition(samples uint64) { s.core.SetPosition(samples) }
func (s *MalgoSink) Transfer(data []byte) int { return s.core.Transfer(data) }

func (s *MalgoSink) Start() error {
	if s.core.State() != audio.SinkStopped {
		return nil
	}
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("%w: couldn't start device: %v", apperrors.ErrConfig, err)
	}
	s.core.markPlaying()
	return nil
}

func (s *MalgoSink) Stop() error {
	st := s.core.State()
	if st != audio.SinkPlaying && st != audio.SinkAtEnd {
		return nil
	}
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("%w: couldn't stop device: %v", apperrors.ErrConfig, err)
	}
	s.core.markStopped()
	return nil
}

// Close pauses the device to quiesce the callback, then releases it.
// Drop order matters: the callback must stop touching the ring buffer
// before the ring buffer's backing array can be freed.
func (s *MalgoSink) Close() error {
	if s.device == nil {
		return nil
	}
	_ = s.device.Stop()
	s.device.Uninit()
	s.device = nil
	return nil
}
