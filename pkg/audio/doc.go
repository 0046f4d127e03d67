// ABOUTME: Audio fundamentals package providing core types shared by sources and sinks
// ABOUTME: Defines SampleFormat, SourceInfo, DecodeResult, RingBuffer and the AudioSource/AudioSink contracts
// Package audio defines the fundamental types that bind a decoder to a
// hardware output device: sample formats, the AudioSource and AudioSink
// interfaces, and the lock-free ring buffer that passes decoded bytes
// from the decode thread to a realtime device callback.
package audio
