// ABOUTME: Tests for PipeAudio
// ABOUTME: Covers decode/transfer ticking, seek resets, and per-listener TIME throttling
package player

import (
	"testing"

	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/device"
)

// recordingSink collects every Response sent to it, for assertions.
type recordingSink struct {
	lines []string
	ids   []uint
}

func (r *recordingSink) Respond(resp Response, id uint) {
	r.lines = append(r.lines, resp.Pack())
	r.ids = append(r.ids, id)
}

func TestPipeAudioUpdateTransfersDecodedBytes(t *testing.T) {
	src := newFakeSource(10, 4)
	sink := device.NewNullSink(fakeBytesPerFrame)
	pipe := NewPipeAudio(src, sink)

	if err := pipe.SetPlaying(true); err != nil {
		t.Fatalf("SetPlaying: %v", err)
	}

	for i := 0; i < 5; i++ {
		pipe.Update()
	}

	// Position only advances when the device callback drains the ring,
	// so pull once to consume what Update transferred.
	sink.PullCallback(make([]byte, 4*fakeBytesPerFrame))

	if sink.Position() == 0 {
		t.Fatalf("expected some samples transferred, position is still 0")
	}
}

func TestPipeAudioReachesAtEndOnExhaustion(t *testing.T) {
	src := newFakeSource(4, 4) // exactly one chunk
	sink := device.NewNullSink(fakeBytesPerFrame)
	pipe := NewPipeAudio(src, sink)

	if err := pipe.SetPlaying(true); err != nil {
		t.Fatalf("SetPlaying: %v", err)
	}

	var lastState AudioState
	for i := 0; i < 8; i++ {
		lastState = pipe.Update()
		out := make([]byte, 4*fakeBytesPerFrame)
		sink.PullCallback(out)
	}

	if lastState != AudioAtEnd {
		t.Fatalf("state after exhausting source = %v, want AudioAtEnd", lastState)
	}
}

func TestPipeAudioSeekResetsBroadcastThrottleAndFrame(t *testing.T) {
	src := newFakeSource(44100, 4)
	sink := device.NewNullSink(fakeBytesPerFrame)
	pipe := NewPipeAudio(src, sink)

	rs := &recordingSink{}
	pipe.Emit(CodeTime, rs, 0)
	if len(rs.lines) != 1 {
		t.Fatalf("expected first TIME announce, got %d lines", len(rs.lines))
	}

	// A second announce within the same second is throttled.
	pipe.Emit(CodeTime, rs, 0)
	if len(rs.lines) != 1 {
		t.Fatalf("expected throttled TIME announce to be dropped, got %d lines", len(rs.lines))
	}

	if err := pipe.Seek(500000); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	// Seeking clears the throttle map, so the very next announce goes
	// through even though the position is still within the same whole
	// second.
	pipe.Emit(CodeTime, rs, 0)
	if len(rs.lines) != 2 {
		t.Fatalf("expected TIME announce right after seek, got %d lines", len(rs.lines))
	}
}

func TestPipeAudioSeekRejectsPastEnd(t *testing.T) {
	src := newFakeSource(100, 4)
	sink := device.NewNullSink(fakeBytesPerFrame)
	pipe := NewPipeAudio(src, sink)

	if err := pipe.Seek(100 * 1000000); err == nil {
		t.Fatal("Seek past end: want error, got nil")
	}
}

func TestPipeAudioEmitState(t *testing.T) {
	src := newFakeSource(10, 4)
	sink := device.NewNullSink(fakeBytesPerFrame)
	pipe := NewPipeAudio(src, sink)

	rs := &recordingSink{}
	pipe.Emit(CodeState, rs, 0)
	if len(rs.lines) != 1 || rs.lines[0] != "STATE Stopped" {
		t.Fatalf("Emit(CodeState) while stopped = %#v, want [STATE Stopped]", rs.lines)
	}

	pipe.SetPlaying(true)
	rs.lines = nil
	pipe.Emit(CodeState, rs, 0)
	if len(rs.lines) != 1 || rs.lines[0] != "STATE Playing" {
		t.Fatalf("Emit(CodeState) while playing = %#v, want [STATE Playing]", rs.lines)
	}
}

func TestPipeAudioEmitStateAtEnd(t *testing.T) {
	src := newFakeSource(4, 4) // exactly one chunk
	sink := device.NewNullSink(fakeBytesPerFrame)
	pipe := NewPipeAudio(src, sink)

	if err := pipe.SetPlaying(true); err != nil {
		t.Fatalf("SetPlaying: %v", err)
	}

	var lastState AudioState
	for i := 0; i < 8; i++ {
		lastState = pipe.Update()
		out := make([]byte, 4*fakeBytesPerFrame)
		sink.PullCallback(out)
	}
	if lastState != AudioAtEnd {
		t.Fatalf("state after exhausting source = %v, want AudioAtEnd", lastState)
	}

	rs := &recordingSink{}
	pipe.Emit(CodeState, rs, 0)
	if len(rs.lines) != 1 || rs.lines[0] != "STATE AtEnd" {
		t.Fatalf("Emit(CodeState) at end = %#v, want [STATE AtEnd]", rs.lines)
	}
}

func TestPipeAudioEmitFile(t *testing.T) {
	src := newFakeSource(10, 4)
	sink := device.NewNullSink(fakeBytesPerFrame)
	pipe := NewPipeAudio(src, sink)

	rs := &recordingSink{}
	pipe.Emit(CodeFile, rs, 0)
	if len(rs.lines) != 1 || rs.lines[0] != "FILE fake.pcm" {
		t.Fatalf("Emit(CodeFile) = %#v, want [FILE fake.pcm]", rs.lines)
	}
}

func TestPipeAudioUnicastTimeNeverThrottled(t *testing.T) {
	src := newFakeSource(10, 4)
	sink := device.NewNullSink(fakeBytesPerFrame)
	pipe := NewPipeAudio(src, sink)

	rs := &recordingSink{}
	pipe.Emit(CodeTime, rs, 7)
	pipe.Emit(CodeTime, rs, 7)
	if len(rs.lines) != 2 {
		t.Fatalf("expected both unicast TIME announces to go through, got %d", len(rs.lines))
	}
}

var _ audio.AudioSink = (*device.NullSink)(nil)
