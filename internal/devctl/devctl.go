// ABOUTME: Process-wide audio library lifecycle
// ABOUTME: Acquires the miniaudio context once before any sink and frees it after the last one
package devctl

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/audioctl/playd/pkg/audio/apperrors"
)

// Context is the process-scoped handle on the underlying audio library.
// It is acquired once at startup, before any AudioSink is built, and
// released once at shutdown, after every sink has been closed. Neither
// the audio pipe nor the player ever observes this type directly.
type Context struct {
	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	closed   bool
}

// Init acquires the process-wide audio library context.
func Init() (*Context, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize audio library: %v", apperrors.ErrConfig, err)
	}
	return &Context{malgoCtx: mctx}, nil
}

// Malgo returns the underlying allocated context, for use by
// pkg/audio/device when it opens a device.
func (c *Context) Malgo() *malgo.AllocatedContext {
	return c.malgoCtx
}

// Shutdown releases the audio library context. It is only safe to call
// once every sink built from this Context has been closed.
func (c *Context) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.malgoCtx.Uninit(); err != nil {
		return fmt.Errorf("%w: failed to uninitialize audio library: %v", apperrors.ErrConfig, err)
	}
	c.malgoCtx.Free()
	return nil
}
