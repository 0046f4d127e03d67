// ABOUTME: Typed error kinds for the audio pipeline and player
// ABOUTME: Lets the command layer translate a failure into the right ACK code
package apperrors

import "errors"

// Sentinel errors identifying the kind of failure that occurred. Wrap
// these with fmt.Errorf("...: %w", ErrX) at the point of failure and
// unwrap with errors.Is at the command boundary.
var (
	// ErrConfig is a device or library setup failure. Fatal at startup.
	ErrConfig = errors.New("config error")

	// ErrFile is a source open or decode failure. Caught at load: the
	// pipe is discarded and the player ejects.
	ErrFile = errors.New("file error")

	// ErrSeek is a seek past end-of-file, or a seek the decoder rejected.
	ErrSeek = errors.New("seek error")

	// ErrNoAudio is an operation requiring a loaded audio invoked on the
	// null audio.
	ErrNoAudio = errors.New("no audio loaded")
)

// Internal panics with a diagnostic, for a violated invariant that has no
// sensible recovery. There is no typed InternalError value: by the time
// one of these fires, nothing below it can be trusted to unwind cleanly.
func Internal(msg string) {
	panic("internal error: " + msg)
}
