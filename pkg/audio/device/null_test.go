// ABOUTME: Tests for NullSink and the shared sinkCore callback discipline
// ABOUTME: Drives the realtime callback manually via PullCallback to exercise underrun/AtEnd transitions
package device

import (
	"testing"

	"github.com/audioctl/playd/pkg/audio"
)

const testBytesPerFrame = 4 // stereo S16

func TestNullSinkStartStopStates(t *testing.T) {
	sink := NewNullSink(testBytesPerFrame)

	if got := sink.State(); got != audio.SinkStopped {
		t.Fatalf("initial state = %s, want Stopped", got)
	}

	if err := sink.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := sink.State(); got != audio.SinkPlaying {
		t.Fatalf("state after Start = %s, want Playing", got)
	}

	// A second Start while already playing is a silent no-op.
	if err := sink.Start(); err != nil {
		t.Fatalf("Start (already playing): %v", err)
	}
	if got := sink.State(); got != audio.SinkPlaying {
		t.Fatalf("state after redundant Start = %s, want Playing", got)
	}

	if err := sink.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := sink.State(); got != audio.SinkStopped {
		t.Fatalf("state after Stop = %s, want Stopped", got)
	}
}

func TestNullSinkCallbackFillsSilenceWhenStopped(t *testing.T) {
	sink := NewNullSink(testBytesPerFrame)

	out := make([]byte, 16)
	for i := range out {
		out[i] = 0xFF
	}

	sink.PullCallback(out)

	for i, b := range out {
		if b != 0 {
			t.Fatalf("out[%d] = %x, want 0 (silence while stopped)", i, b)
		}
	}
}

func TestNullSinkTransferAndCallbackRoundTrip(t *testing.T) {
	sink := NewNullSink(testBytesPerFrame)

	data := make([]byte, 4*testBytesPerFrame)
	for i := range data {
		data[i] = byte(i + 1)
	}

	n := sink.Transfer(data)
	if n != len(data) {
		t.Fatalf("Transfer returned %d, want %d", n, len(data))
	}

	if err := sink.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	out := make([]byte, len(data))
	sink.PullCallback(out)

	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], data[i])
		}
	}

	if sink.Position() != 4 {
		t.Fatalf("Position() = %d, want 4", sink.Position())
	}
}

func TestNullSinkCallbackMarksAtEndOnceSourceOutAndDrained(t *testing.T) {
	sink := NewNullSink(testBytesPerFrame)

	data := make([]byte, 2*testBytesPerFrame)
	sink.Transfer(data)
	sink.SetSourceOut()

	if err := sink.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	out := make([]byte, len(data))
	sink.PullCallback(out)
	if got := sink.State(); got != audio.SinkPlaying {
		t.Fatalf("state after draining exact content = %s, want Playing", got)
	}

	// The ring is now empty and source_out is set: the next callback
	// should observe end-of-stream.
	sink.PullCallback(out)
	if got := sink.State(); got != audio.SinkAtEnd {
		t.Fatalf("state after drain with source_out = %s, want AtEnd", got)
	}
}

func TestNullSinkSetPositionResetsSourceOutAndFlushesRing(t *testing.T) {
	sink := NewNullSink(testBytesPerFrame)

	data := make([]byte, 4*testBytesPerFrame)
	sink.Transfer(data)
	sink.SetSourceOut()

	sink.SetPosition(10)

	if sink.Position() != 10 {
		t.Fatalf("Position() = %d, want 10", sink.Position())
	}

	if err := sink.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The ring was flushed by SetPosition, so even though data was
	// transferred before the seek, the next callback has nothing to
	// read and source_out was cleared, so it must stay Playing, not
	// jump straight to AtEnd.
	out := make([]byte, 8)
	sink.PullCallback(out)
	if got := sink.State(); got != audio.SinkPlaying {
		t.Fatalf("state after SetPosition + drain = %s, want Playing", got)
	}
}

func TestNullSinkStopWhileStoppedIsNoOp(t *testing.T) {
	sink := NewNullSink(testBytesPerFrame)

	if err := sink.Stop(); err != nil {
		t.Fatalf("Stop while already stopped: %v", err)
	}
	if got := sink.State(); got != audio.SinkStopped {
		t.Fatalf("state = %s, want Stopped", got)
	}
}
