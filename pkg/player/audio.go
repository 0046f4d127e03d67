// ABOUTME: Audio interface and the null-object "nothing loaded" implementation
// ABOUTME: The Player always holds a valid Audio; forbidden operations fail on the null variant instead of a nil check
package player

import (
	"fmt"

	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// AudioState is the pipe-level state exposed to the Player, derived
// from the underlying sink's state. The null audio always reports
// AudioNone.
type AudioState uint8

const (
	AudioNone AudioState = iota
	AudioStopped
	AudioPlaying
	AudioAtEnd
)

// Audio is either a loaded playback pipe or the null object NoAudio.
// The Player holds exactly one Audio at a time and never nil-checks
// it; forbidden operations on "nothing loaded" fail through NoAudio's
// error returns instead.
type Audio interface {
	// Update performs one decode/transfer tick and returns the
	// resulting state.
	Update() AudioState

	// SetPlaying starts or stops playback.
	SetPlaying(playing bool) error

	// Seek moves to the given position, in microseconds.
	Seek(micros uint64) error

	// Position returns the current position, in microseconds.
	Position() (uint64, error)

	// Emit formats and sends an informational broadcast for code to
	// sink, addressed to id. A nil sink is a no-op.
	Emit(code Code, sink ResponseSink, id uint)

	// Close releases the underlying source and sink, if any.
	Close() error
}

// NoAudio is the null Audio: there is nothing loaded. Every operation
// that requires a real pipe fails with apperrors.ErrNoAudio; Update is
// always a no-op reporting AudioNone.
type NoAudio struct{}

func (NoAudio) Update() AudioState { return AudioNone }

func (NoAudio) SetPlaying(bool) error {
	return fmt.Errorf("%w: command needs a loaded file", apperrors.ErrNoAudio)
}

func (NoAudio) Seek(uint64) error {
	return fmt.Errorf("%w: command needs a loaded file", apperrors.ErrNoAudio)
}

func (NoAudio) Position() (uint64, error) {
	return 0, fmt.Errorf("%w: command needs a loaded file", apperrors.ErrNoAudio)
}

// Emit only ever announces STATE, with the fixed argument "Ejected";
// every other code is silently ignored, matching the reference
// implementation's behavior for the null audio.
func (NoAudio) Emit(code Code, sink ResponseSink, id uint) {
	if sink == nil {
		return
	}
	if code != CodeState {
		return
	}
	sink.Respond(NewResponse(CodeState).AddArg("Ejected"), id)
}

func (NoAudio) Close() error { return nil }
