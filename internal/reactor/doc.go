// ABOUTME: Line-oriented command reactor
// ABOUTME: Owns the player's single update loop; every dispatch and tick runs there
// Package reactor implements the daemon's network-facing half: a
// line-oriented TCP/stdio server that tokenises incoming bytes into
// command vectors and feeds them, one tick at a time, to a
// pkg/player.Player running on a single cooperative update loop.
package reactor
