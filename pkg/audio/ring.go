// ABOUTME: Single-producer/single-consumer atomic byte ring buffer
// ABOUTME: Never blocks or allocates on the hot path; capacity is a power of two, accounted in samples
package audio

import "sync/atomic"

// RingBuffer is a single-producer/single-consumer byte ring, accounted in
// samples (one sample = one bytesPerFrame-sized unit across all channels).
// It is safe for exactly one writer and one reader to use concurrently,
// and never blocks or allocates on the hot path.
//
// Capacity is fixed at 2^power samples. Write and Read use atomic
// load/store on the cursors so that, after a successful Write, the
// corresponding ReadCapacity observation on the consumer side is
// monotonically non-decreasing until the consumer itself reads --- the
// acquire/release discipline spec.md's concurrency model calls for.
type RingBuffer struct {
	buf           []byte
	capSamples    uint64
	bytesPerFrame int

	// writeCursor and readCursor are monotonically increasing sample
	// counts, not wrapped; wrapping happens only when indexing into buf.
	writeCursor atomic.Uint64
	readCursor  atomic.Uint64
}

// NewRingBuffer creates a ring with capacity 2^power samples, where each
// sample is bytesPerFrame bytes.
func NewRingBuffer(power uint, bytesPerFrame int) *RingBuffer {
	if bytesPerFrame <= 0 {
		panic("audio: bytesPerFrame must be positive")
	}

	capSamples := uint64(1) << power
	return &RingBuffer{
		buf:           make([]byte, capSamples*uint64(bytesPerFrame)),
		capSamples:    capSamples,
		bytesPerFrame: bytesPerFrame,
	}
}

// WriteCapacity returns the number of samples that can currently be
// written without overwriting unread data. Safe to call from the
// producer; may underestimate if the consumer is concurrently reading,
// but never overestimates.
func (r *RingBuffer) WriteCapacity() uint64 {
	read := r.readCursor.Load()
	write := r.writeCursor.Load()
	return r.capSamples - (write - read)
}

// ReadCapacity returns the number of samples currently available to read.
// Safe to call from the consumer; may underestimate if the producer is
// concurrently writing, but never overestimates.
func (r *RingBuffer) ReadCapacity() uint64 {
	write := r.writeCursor.Load()
	read := r.readCursor.Load()
	return write - read
}

// Write copies up to sampleCount samples from data into the ring and
// returns the number of samples actually written. Never blocks. len(data)
// must be a whole multiple of bytesPerFrame; only the first
// sampleCount*bytesPerFrame bytes of data are considered.
func (r *RingBuffer) Write(data []byte, sampleCount uint64) uint64 {
	avail := r.WriteCapacity()
	if sampleCount > avail {
		sampleCount = avail
	}
	maxFromData := uint64(len(data)) / uint64(r.bytesPerFrame)
	if sampleCount > maxFromData {
		sampleCount = maxFromData
	}
	if sampleCount == 0 {
		return 0
	}

	write := r.writeCursor.Load()
	start := (write % r.capSamples) * uint64(r.bytesPerFrame)
	total := sampleCount * uint64(r.bytesPerFrame)

	firstRun := uint64(len(r.buf)) - start
	if firstRun > total {
		firstRun = total
	}
	copy(r.buf[start:start+firstRun], data[:firstRun])
	if firstRun < total {
		copy(r.buf[0:total-firstRun], data[firstRun:total])
	}

	r.writeCursor.Store(write + sampleCount)
	return sampleCount
}

// Read copies up to sampleCount samples into out and returns the number
// of samples actually read. Never blocks.
func (r *RingBuffer) Read(out []byte, sampleCount uint64) uint64 {
	avail := r.ReadCapacity()
	if sampleCount > avail {
		sampleCount = avail
	}
	maxIntoOut := uint64(len(out)) / uint64(r.bytesPerFrame)
	if sampleCount > maxIntoOut {
		sampleCount = maxIntoOut
	}
	if sampleCount == 0 {
		return 0
	}

	read := r.readCursor.Load()
	start := (read % r.capSamples) * uint64(r.bytesPerFrame)
	total := sampleCount * uint64(r.bytesPerFrame)

	firstRun := uint64(len(r.buf)) - start
	if firstRun > total {
		firstRun = total
	}
	copy(out[:firstRun], r.buf[start:start+firstRun])
	if firstRun < total {
		copy(out[firstRun:total], r.buf[0:total-firstRun])
	}

	r.readCursor.Store(read + sampleCount)
	return sampleCount
}

// Flush drops all unread samples. Must only be called when the consumer
// is known to be quiesced (the sink is Stopped); calling it while the
// callback thread is reading concurrently races the cursors.
func (r *RingBuffer) Flush() {
	write := r.writeCursor.Load()
	r.readCursor.Store(write)
}

// BytesPerFrame returns the number of bytes that make up one sample
// across all channels.
func (r *RingBuffer) BytesPerFrame() int {
	return r.bytesPerFrame
}
