// Package transcription defines the provider interface and common types
// for speech-to-text backends.
//
// It follows the provider pattern with a pluggable registry for
// runtime-selectable backends.
//
// # Backends
//
//   - transcription/openai: OpenAI hosted Whisper (audio/transcriptions)
//   - transcription/whisper: local whisper.cpp style server
package transcription
