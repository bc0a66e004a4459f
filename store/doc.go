// Package store persists user settings and transcription results.
//
// Settings live in two key-value areas mirroring the sync/local storage
// split of the options surface: "sync" roams with the user profile,
// "local" stays on the machine. Results are cached per message bubble
// so a repeat click replays without any provider call.
//
// Both in-memory and sqlite-backed implementations are provided; the
// daemon picks sqlite when a database path is configured.
package store
