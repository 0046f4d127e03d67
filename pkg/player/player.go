// ABOUTME: Top-level player state machine and update loop
// ABOUTME: Mediates commands against the loaded Audio; Ejected/Stopped/Playing/Quit, initial Ejected
package player

import (
	"errors"
	"fmt"

	"github.com/audioctl/playd/internal/proto"
	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// PlayerState is the top-level daemon state. Void is a sentinel never
// observed after construction.
type PlayerState uint8

const (
	Void PlayerState = iota
	Ejected
	Stopped
	Playing
	Quit
)

func (s PlayerState) String() string {
	switch s {
	case Void:
		return "Void"
	case Ejected:
		return "Ejected"
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Quit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// stateSet is a compile-time set of PlayerStates packed into a
// bitmask, replacing the variadic, sentinel-terminated gate lists of
// the original command table.
type stateSet uint8

func newStateSet(states ...PlayerState) stateSet {
	var s stateSet
	for _, st := range states {
		s |= 1 << uint(st)
	}
	return s
}

func (s stateSet) contains(st PlayerState) bool {
	return s&(1<<uint(st)) != 0
}

var (
	gatePlay  = newStateSet(Stopped)
	gateStop  = newStateSet(Playing)
	gateSeek  = newStateSet(Playing, Stopped)
	gateEject = newStateSet(Stopped, Playing)
)

// SourceOpener opens path as a decodable AudioSource, selecting a
// backend by file extension or content sniffing. OutputOpener opens an
// AudioSink matching a source's format. Both are supplied by cmd/playd
// so that Player stays decoupled from any concrete codec or device
// backend -- tests inject fakes instead.
type SourceOpener func(path string) (audio.AudioSource, error)
type OutputOpener func(info audio.SourceInfo) (audio.AudioSink, error)

// Player holds exactly one Audio (a loaded PipeAudio or the null
// NoAudio) and runs the top-level state machine described in the
// player's command table. It is driven one tick at a time by Tick,
// and commands are dispatched one line at a time by Dispatch; neither
// method blocks.
type Player struct {
	state PlayerState
	audio Audio

	openSource SourceOpener
	openOutput OutputOpener
}

// NewPlayer constructs a Player with nothing loaded, in the Ejected
// state.
func NewPlayer(openSource SourceOpener, openOutput OutputOpener) *Player {
	return &Player{
		state:      Ejected,
		audio:      NoAudio{},
		openSource: openSource,
		openOutput: openOutput,
	}
}

func (p *Player) State() PlayerState { return p.state }

// Tick performs one update-loop iteration: advances decode/transfer on
// the loaded audio (if any), detects natural end-of-stream, and
// broadcasts position while playing.
func (p *Player) Tick(sink ResponseSink) {
	if p.state != Playing && p.state != Stopped {
		return
	}

	st := p.audio.Update()

	if p.state != Playing {
		return
	}

	if st == AudioAtEnd {
		sink.Respond(NewResponse(CodeEnd), 0)
		p.doEject(sink)
		return
	}

	p.audio.Emit(CodeTime, sink, 0)
}

// Dispatch parses and runs one already-tokenised command line and
// returns its result; the caller addresses the ACK response.
// Unrecognised verbs and arity mismatches produce ResultWhat without
// touching state.
func (p *Player) Dispatch(words []string, sink ResponseSink) CommandResult {
	if len(words) == 0 {
		return Invalid("empty command")
	}

	verb, args := words[0], words[1:]

	switch verb {
	case "play":
		if len(args) != 0 {
			return Invalid("play takes no arguments")
		}
		return p.cmdPlay(sink)
	case "stop":
		if len(args) != 0 {
			return Invalid("stop takes no arguments")
		}
		return p.cmdStop(sink)
	case "eject":
		if len(args) != 0 {
			return Invalid("eject takes no arguments")
		}
		return p.cmdEject(sink)
	case "quit":
		if len(args) != 0 {
			return Invalid("quit takes no arguments")
		}
		return p.cmdQuit(sink)
	case "load":
		if len(args) != 1 {
			return Invalid("load takes exactly one argument")
		}
		return p.cmdLoad(args[0], sink)
	case "seek":
		if len(args) != 1 {
			return Invalid("seek takes exactly one argument")
		}
		return p.cmdSeek(args[0], sink)
	default:
		return Invalid(fmt.Sprintf("unrecognised command: %s", verb))
	}
}

func (p *Player) cmdLoad(path string, sink ResponseSink) CommandResult {
	// load is legal from any state and performs an implicit eject
	// first, whether or not the new file turns out to open cleanly.
	if p.state != Ejected {
		p.doEject(sink)
	}

	src, err := p.openSource(path)
	if err != nil {
		return Success()
	}

	out, err := p.openOutput(src.Info())
	if err != nil {
		src.Close()
		return Success()
	}

	p.audio = NewPipeAudio(src, out)
	p.setState(Stopped, sink)
	p.audio.Emit(CodeFile, sink, 0)

	return Success()
}

func (p *Player) cmdPlay(sink ResponseSink) CommandResult {
	if !gatePlay.contains(p.state) {
		if p.state == Ejected {
			return Invalid("nothing loaded")
		}
		return Invalid("not stopped")
	}
	if err := p.audio.SetPlaying(true); err != nil {
		return resultFromError(err)
	}
	p.setState(Playing, sink)
	return Success()
}

func (p *Player) cmdStop(sink ResponseSink) CommandResult {
	if !gateStop.contains(p.state) {
		return Invalid("not playing")
	}
	if err := p.audio.SetPlaying(false); err != nil {
		return resultFromError(err)
	}
	p.setState(Stopped, sink)
	return Success()
}

func (p *Player) cmdSeek(timeStr string, sink ResponseSink) CommandResult {
	if !gateSeek.contains(p.state) {
		return Invalid("nothing loaded to seek")
	}

	micros, err := proto.ParseTime(timeStr)
	if err != nil {
		return Invalid(err.Error())
	}

	wasPlaying := p.state == Playing
	if wasPlaying {
		if err := p.audio.SetPlaying(false); err != nil {
			return resultFromError(err)
		}
	}

	if err := p.audio.Seek(micros); err != nil {
		if wasPlaying {
			_ = p.audio.SetPlaying(true)
		}
		return resultFromError(err)
	}

	if wasPlaying {
		if err := p.audio.SetPlaying(true); err != nil {
			return resultFromError(err)
		}
	}

	return Success()
}

func (p *Player) cmdEject(sink ResponseSink) CommandResult {
	if !gateEject.contains(p.state) {
		return Invalid("nothing loaded")
	}
	p.doEject(sink)
	return Success()
}

func (p *Player) cmdQuit(sink ResponseSink) CommandResult {
	if p.state != Ejected && p.state != Quit {
		p.doEject(sink)
	}
	p.setState(Quit, sink)
	return Success()
}

// doEject releases the current audio and returns to the null object,
// broadcasting the resulting STATE transition.
func (p *Player) doEject(sink ResponseSink) {
	_ = p.audio.Close()
	p.audio = NoAudio{}
	p.setState(Ejected, sink)
}

func (p *Player) setState(next PlayerState, sink ResponseSink) {
	prev := p.state
	p.state = next
	if sink != nil {
		sink.Respond(NewResponse(CodeState).AddArg(prev.String()).AddArg(next.String()), 0)
	}
}

// resultFromError classifies an error returned from the Audio
// interface into the matching ACK code: a null-audio error is a user
// error (WHAT); everything else -- seek rejected, decoder failure --
// is an environment error (FAIL).
func resultFromError(err error) CommandResult {
	if errors.Is(err, apperrors.ErrNoAudio) {
		return Invalid(err.Error())
	}
	return Failure(err.Error())
}
