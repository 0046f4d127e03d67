// ABOUTME: Headless AudioSink with no real hardware
// ABOUTME: Used by tests and hosts without audio devices; callers drive the callback manually
package device

import "github.com/audioctl/playd/pkg/audio"

// NullSink implements audio.AudioSink without opening any real device.
// It shares sinkCore with MalgoSink, so tests exercise the exact same
// ring buffer and state machine logic a real device would drive -- the
// only difference is that nothing calls Callback on its own. Tests call
// PullCallback directly to simulate the hardware thread.
type NullSink struct {
	core *sinkCore
}

// NewNullSink builds a sink with no backing device. bytesPerFrame comes
// from the source the pipe is built on.
func NewNullSink(bytesPerFrame int) *NullSink {
	return &NullSink{core: newSinkCore(bytesPerFrame)}
}

func (s *NullSink) State() audio.SinkState     { return s.core.State() }
func (s *NullSink) SetSourceOut()              { s.core.SetSourceOut() }
func (s *NullSink) Position() uint64           { return s.core.Position() }
func (s *NullSink) SetPosition(samples uint64) { s.core.SetPosition(samples) }
func (s *NullSink) Transfer(data []byte) int   { return s.core.Transfer(data) }

func (s *NullSink) Start() error {
	if s.core.State() != audio.SinkStopped {
		return nil
	}
	s.core.markPlaying()
	return nil
}

func (s *NullSink) Stop() error {
	st := s.core.State()
	if st != audio.SinkPlaying && st != audio.SinkAtEnd {
		return nil
	}
	s.core.markStopped()
	return nil
}

func (s *NullSink) Close() error { return nil }

// PullCallback simulates one hardware callback, filling out from the
// ring buffer exactly as the real device callback would. It is exported
// only for tests.
func (s *NullSink) PullCallback(out []byte) {
	s.core.Callback(out)
}
