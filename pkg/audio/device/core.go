// ABOUTME: Shared realtime callback state for every AudioSink backend
// ABOUTME: Callback never allocates, never locks, and never calls back into decoder code
package device

import (
	"sync/atomic"

	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// ringBufferPower is the ring buffer's capacity exponent: 2^16 = 65536
// samples, per spec.
const ringBufferPower = 16

// sinkCore holds the state shared across the update thread (which calls
// the AudioSink methods) and the audio device's realtime callback thread
// (which calls Callback). Every field the callback touches is an atomic;
// Callback itself never allocates, never locks, and never calls back
// into decoder code.
type sinkCore struct {
	ring          *audio.RingBuffer
	bytesPerFrame int

	state     atomic.Uint32 // audio.SinkState
	sourceOut atomic.Bool
	position  atomic.Uint64
}

func newSinkCore(bytesPerFrame int) *sinkCore {
	c := &sinkCore{
		ring:          audio.NewRingBuffer(ringBufferPower, bytesPerFrame),
		bytesPerFrame: bytesPerFrame,
	}
	c.state.Store(uint32(audio.SinkStopped))
	return c
}

func (c *sinkCore) State() audio.SinkState {
	return audio.SinkState(c.state.Load())
}

func (c *sinkCore) SetSourceOut() {
	if c.state.Load() == uint32(audio.SinkAtEnd) && !c.sourceOut.Load() {
		apperrors.Internal("sink reported AtEnd without source_out set")
	}
	c.sourceOut.Store(true)
}

func (c *sinkCore) Position() uint64 {
	return c.position.Load()
}

func (c *sinkCore) SetPosition(samples uint64) {
	c.position.Store(samples)
	c.sourceOut.Store(false)
	if c.state.Load() == uint32(audio.SinkAtEnd) {
		c.state.Store(uint32(audio.SinkStopped))
	}
	c.ring.Flush()
}

func (c *sinkCore) Transfer(data []byte) int {
	sampleCount := uint64(len(data)) / uint64(c.bytesPerFrame)
	written := c.ring.Write(data, sampleCount)
	return int(written) * c.bytesPerFrame
}

// Callback is invoked by the OS audio thread with an output buffer to
// fill. It implements spec's five-step callback contract exactly.
func (c *sinkCore) Callback(out []byte) {
	for i := range out {
		out[i] = 0
	}

	if c.State() != audio.SinkPlaying {
		return
	}

	avail := c.ring.ReadCapacity()
	if avail == 0 {
		if c.sourceOut.Load() {
			c.state.Store(uint32(audio.SinkAtEnd))
		}
		return
	}

	reqSamples := uint64(len(out)) / uint64(c.bytesPerFrame)
	samples := reqSamples
	if avail < samples {
		samples = avail
	}

	read := c.ring.Read(out, samples)
	c.position.Add(read)
}

// markPlaying/markStopped perform the update-thread side of a state
// transition once the underlying device call has already succeeded. Per
// spec.md's concurrency model, the update thread and the callback thread
// never target the same transition, so these are plain stores, not CAS.
func (c *sinkCore) markPlaying() { c.state.Store(uint32(audio.SinkPlaying)) }
func (c *sinkCore) markStopped() { c.state.Store(uint32(audio.SinkStopped)) }
