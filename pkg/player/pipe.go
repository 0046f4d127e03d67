// ABOUTME: PipeAudio binds one AudioSource to one AudioSink and drives the decode/transfer tick
// ABOUTME: Owns the in-flight frame and the per-listener time-broadcast throttle
package player

import (
	"strconv"

	"github.com/audioctl/playd/pkg/audio"
)

// PipeAudio is the audio pipe: it owns exactly one AudioSource and one
// AudioSink, and drives them from Update, called once per Player
// update-loop tick.
type PipeAudio struct {
	src  audio.AudioSource
	sink audio.AudioSink

	frame frame

	// lastBroadcast maps a listener id to the last whole-second
	// position value announced to it, to throttle TIME broadcasts to
	// at most once per second per listener. Cleared entirely on
	// every Seek, since the jump must always be announced.
	lastBroadcast map[uint]uint64
}

// NewPipeAudio binds src and sink into a pipe, ready for Update.
func NewPipeAudio(src audio.AudioSource, sink audio.AudioSink) *PipeAudio {
	return &PipeAudio{
		src:           src,
		sink:          sink,
		lastBroadcast: make(map[uint]uint64),
	}
}

// Close pauses the sink and releases both the source and the sink.
// Per the resource-scoping rule, the sink must quiesce its callback
// before the ring buffer backing it is freed, which Stop already
// guarantees.
func (p *PipeAudio) Close() error {
	_ = p.sink.Stop()
	sinkErr := p.sink.Close()
	srcErr := p.src.Close()
	if sinkErr != nil {
		return sinkErr
	}
	return srcErr
}

// Update performs one decode/transfer tick: if the in-flight frame is
// finished, decode a new one; if source_out was observed, tell the
// sink. Then, if there is frame data outstanding, transfer as much of
// it into the sink's ring as will fit. Returns the resulting pipe
// state.
func (p *PipeAudio) Update() AudioState {
	moreAvailable, err := p.decodeIfFrameEmpty()
	if err != nil {
		// A decode error mid-stream is treated the same as
		// exhaustion: stop feeding the sink and let it drain.
		moreAvailable = false
	}
	if !moreAvailable {
		p.sink.SetSourceOut()
	}

	if !p.frame.finished() {
		p.transferFrame()
	}

	return audioStateFromSink(p.sink.State())
}

func (p *PipeAudio) decodeIfFrameEmpty() (bool, error) {
	if !p.frame.finished() {
		return true, nil
	}

	result, err := p.src.Decode()
	if err != nil {
		return false, err
	}

	p.frame = frame{data: result.Data, cursor: 0}
	return result.State != audio.EndOfFile, nil
}

func (p *PipeAudio) transferFrame() {
	n := p.sink.Transfer(p.frame.remaining())
	p.frame.cursor += n

	if p.frame.finished() {
		p.frame.clear()
	}
}

func audioStateFromSink(s audio.SinkState) AudioState {
	switch s {
	case audio.SinkStopped:
		return AudioStopped
	case audio.SinkPlaying:
		return AudioPlaying
	case audio.SinkAtEnd:
		return AudioAtEnd
	default:
		return AudioNone
	}
}

func (p *PipeAudio) SetPlaying(playing bool) error {
	if playing {
		return p.sink.Start()
	}
	return p.sink.Stop()
}

func (p *PipeAudio) Position() (uint64, error) {
	samples := p.sink.Position()
	return audio.MicrosFromSamples(samples, p.src.Info().SampleRate), nil
}

// Seek coerces micros to a sample offset via the source, repositions
// both source and sink, and resets every bit of state a jump
// invalidates: the per-listener broadcast throttle and the in-flight
// frame.
func (p *PipeAudio) Seek(micros uint64) error {
	outSamples, err := p.src.Seek(micros)
	if err != nil {
		return err
	}

	p.sink.SetPosition(outSamples)
	p.lastBroadcast = make(map[uint]uint64)
	p.frame.clear()

	return nil
}

// Emit formats and sends one broadcast or unicast response. Unknown
// codes are silently ignored.
func (p *PipeAudio) Emit(code Code, sink ResponseSink, id uint) {
	if sink == nil {
		return
	}

	switch code {
	case CodeState:
		sink.Respond(NewResponse(CodeState).AddArg(p.sink.State().String()), id)
	case CodeFile:
		sink.Respond(NewResponse(CodeFile).AddArg(p.src.Info().Path), id)
	case CodeTime:
		micros, _ := p.Position()
		if !p.canAnnounceTime(micros, id) {
			return
		}
		sink.Respond(NewResponse(CodeTime).AddArg(strconv.FormatUint(micros, 10)), id)
	}
}

// canAnnounceTime decides whether a TIME broadcast to id may be sent:
// unicasts (id > 0) always announce; the shared broadcast id (0) is
// throttled to once per whole second.
func (p *PipeAudio) canAnnounceTime(micros uint64, id uint) bool {
	if id > 0 {
		return true
	}

	secs := micros / 1000000

	last, ok := p.lastBroadcast[id]
	if ok && last >= secs {
		return false
	}

	p.lastBroadcast[id] = secs
	return true
}
