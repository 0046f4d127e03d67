// ABOUTME: Concrete AudioSink backends
// ABOUTME: A real miniaudio-backed device sink and a headless null sink for tests
// Package device provides concrete audio.AudioSink implementations: a
// real hardware-backed sink using miniaudio via gen2brain/malgo, and a
// null sink with no device, used by tests and hosts without audio
// hardware.
//
// Both share sinkCore, which holds the ring buffer and the three atomics
// (state, sourceOut, position) the realtime callback touches, so that the
// callback logic -- and its "never locks, never allocates" discipline --
// is written exactly once.
package device
